package domain

import (
	"fmt"
	"time"
)

// Transfer errors. Each variant is a concrete type carrying its payload so
// callers can recover the fields with errors.As; the set is closed and
// propagated as values, never as panics.

// ErrBadFee rejects a transfer whose expected-fee assertion disagrees with
// the ledger's configured fee.
type ErrBadFee struct {
	ExpectedFee uint64
}

func (e ErrBadFee) Error() string {
	return fmt.Sprintf("bad fee: ledger fee is %d", e.ExpectedFee)
}

// ErrBadBurn rejects a burn below the configured minimum burn amount.
type ErrBadBurn struct {
	MinBurnAmount uint64
}

func (e ErrBadBurn) Error() string {
	return fmt.Sprintf("bad burn: minimum burn amount is %d", e.MinBurnAmount)
}

// ErrTooOld rejects a transfer whose caller timestamp is beyond the dedup
// horizon in the past.
type ErrTooOld struct{}

func (ErrTooOld) Error() string { return "transfer created_at_time is too far in the past" }

// ErrCreatedInFuture rejects a transfer whose caller timestamp is ahead of
// ledger time by more than the permitted clock skew.
type ErrCreatedInFuture struct {
	LedgerTime time.Time
}

func (e ErrCreatedInFuture) Error() string {
	return fmt.Sprintf("transfer created in the future: ledger time is %s", e.LedgerTime.UTC().Format(time.RFC3339Nano))
}

// ErrDuplicate rejects a replay of an already admitted submission.
type ErrDuplicate struct {
	DuplicateOf uint64
}

func (e ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate of block %d", e.DuplicateOf)
}

// ErrInsufficientFunds rejects a transfer the source balance cannot cover.
type ErrInsufficientFunds struct {
	Balance uint64
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: balance is %d", e.Balance)
}

// ErrTemporarilyUnavailable signals a transient internal fault. The ledger
// never retries it on the caller's behalf.
type ErrTemporarilyUnavailable struct {
	Detail string
}

func (e ErrTemporarilyUnavailable) Error() string {
	return "ledger temporarily unavailable: " + e.Detail
}

// Retrieval errors.

// ErrMalformedAddress rejects a destination address that does not parse.
type ErrMalformedAddress struct {
	Detail string
}

func (e ErrMalformedAddress) Error() string {
	return "malformed address: " + e.Detail
}

// ErrAmountTooLow rejects a retrieval below the minimum retrievable amount.
type ErrAmountTooLow struct {
	MinAmount uint64
}

func (e ErrAmountTooLow) Error() string {
	return fmt.Sprintf("amount too low: minimum is %d", e.MinAmount)
}

// ErrFeeTooLow rejects a retrieval fee below the network floor.
type ErrFeeTooLow struct {
	MinFee uint64
}

func (e ErrFeeTooLow) Error() string {
	return fmt.Sprintf("fee too low: minimum is %d", e.MinFee)
}

// ErrLedger wraps a transfer error that surfaced while a bridge flow was
// moving value on the ledger.
type ErrLedger struct {
	Err error
}

func (e ErrLedger) Error() string { return "ledger error: " + e.Err.Error() }
func (e ErrLedger) Unwrap() error { return e.Err }

// ErrExternalConnection reports a failed call to the external value-transfer
// network. The caller decides whether to retry; the service never resubmits
// a possibly-already-accepted external transfer.
type ErrExternalConnection struct {
	Code    int
	Message string
}

func (e ErrExternalConnection) Error() string {
	return fmt.Sprintf("external connection error (%d): %s", e.Code, e.Message)
}

// Coordinator errors.

// ErrAlreadyProcessing rejects an operation on an account that already has
// one in flight. Acquisition fails fast rather than queuing.
type ErrAlreadyProcessing struct{}

func (ErrAlreadyProcessing) Error() string { return "account operation already in progress" }

// ErrTooManyConcurrentRequests rejects new operations once the process-wide
// lease ceiling is reached.
type ErrTooManyConcurrentRequests struct{}

func (ErrTooManyConcurrentRequests) Error() string { return "too many concurrent requests" }

// ErrNoNewDeposits reports a clean deposit scan that found nothing to mint.
type ErrNoNewDeposits struct{}

func (ErrNoNewDeposits) Error() string { return "no new deposits" }
