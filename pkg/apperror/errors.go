package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"token-ledger/internal/core/domain"
)

// AppError is a structured error that maps to HTTP responses. Details
// carries the payload fields of the domain error variant so callers can
// act on them (expected fee, duplicate block index, current balance, ...).
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) withDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// ---- Transfer admission (LED) ----

func ErrBadFee(expected uint64) *AppError {
	return New("LED_001", "Transfer fee does not match the ledger fee", http.StatusBadRequest).
		withDetails(map[string]any{"expected_fee": expected})
}

func ErrBadBurn(minBurn uint64) *AppError {
	return New("LED_002", "Burn amount below the minimum", http.StatusBadRequest).
		withDetails(map[string]any{"min_burn_amount": minBurn})
}

func ErrTooOld() *AppError {
	return New("LED_003", "Transfer creation time is too far in the past", http.StatusBadRequest)
}

func ErrCreatedInFuture(ledgerTime time.Time) *AppError {
	return New("LED_004", "Transfer creation time is in the future", http.StatusBadRequest).
		withDetails(map[string]any{"ledger_time": ledgerTime.UTC().Format(time.RFC3339Nano)})
}

func ErrDuplicate(duplicateOf uint64) *AppError {
	return New("LED_005", "Duplicate of an already admitted transfer", http.StatusConflict).
		withDetails(map[string]any{"duplicate_of": duplicateOf})
}

func ErrInsufficientFunds(balance uint64) *AppError {
	return New("LED_006", "Insufficient funds", http.StatusPaymentRequired).
		withDetails(map[string]any{"balance": balance})
}

func ErrTemporarilyUnavailable(detail string) *AppError {
	return New("LED_007", "Ledger temporarily unavailable", http.StatusServiceUnavailable).
		withDetails(map[string]any{"detail": detail})
}

// ---- Bridge flows (BRG) ----

func ErrMalformedAddress(detail string) *AppError {
	return New("BRG_001", "Malformed destination address", http.StatusBadRequest).
		withDetails(map[string]any{"detail": detail})
}

func ErrAmountTooLow(minAmount uint64) *AppError {
	return New("BRG_002", "Retrieval amount below the minimum", http.StatusBadRequest).
		withDetails(map[string]any{"min_amount": minAmount})
}

func ErrFeeTooLow(minFee uint64) *AppError {
	return New("BRG_003", "Retrieval fee below the network floor", http.StatusBadRequest).
		withDetails(map[string]any{"min_fee": minFee})
}

func ErrLedgerError(inner *AppError) *AppError {
	details := map[string]any{"ledger_error_code": inner.Code}
	for k, v := range inner.Details {
		details[k] = v
	}
	return New("BRG_004", "Ledger rejected the transfer: "+inner.Message, inner.HTTPStatus).
		withDetails(details)
}

func ErrExternalConnection(code int, message string) *AppError {
	return New("BRG_005", "External network call failed", http.StatusBadGateway).
		withDetails(map[string]any{"code": code, "message": message})
}

// ErrSubmissionFailed reports an external submission failure after the
// burn block was committed. The block index is the caller's idempotency
// hint: reconcile or resubmit against it instead of burning again.
func ErrSubmissionFailed(blockIndex uint64, code int, message string) *AppError {
	return New("BRG_005", "External network call failed after burn", http.StatusBadGateway).
		withDetails(map[string]any{"block_index": blockIndex, "code": code, "message": message})
}

func ErrNoNewDeposits() *AppError {
	return New("BRG_006", "No new deposits", http.StatusNotFound)
}

// ---- Operation coordinator (GRD) ----

func ErrAlreadyProcessing() *AppError {
	return New("GRD_001", "An operation for this account is already in progress", http.StatusConflict)
}

func ErrTooManyConcurrentRequests() *AppError {
	return New("GRD_002", "Too many concurrent requests", http.StatusTooManyRequests)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-binding validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("SYS_404", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// FromLedger converts a domain error variant into its coded AppError.
// Unknown errors come back as SYS_001 so nothing internal leaks.
func FromLedger(err error) *AppError {
	var (
		badFee      domain.ErrBadFee
		badBurn     domain.ErrBadBurn
		tooOld      domain.ErrTooOld
		future      domain.ErrCreatedInFuture
		duplicate   domain.ErrDuplicate
		funds       domain.ErrInsufficientFunds
		unavailable domain.ErrTemporarilyUnavailable
		malformed   domain.ErrMalformedAddress
		amountLow   domain.ErrAmountTooLow
		feeLow      domain.ErrFeeTooLow
		ledgerErr   domain.ErrLedger
		external    domain.ErrExternalConnection
		processing  domain.ErrAlreadyProcessing
		tooMany     domain.ErrTooManyConcurrentRequests
		noDeposits  domain.ErrNoNewDeposits
	)

	switch {
	case errors.As(err, &badFee):
		return ErrBadFee(badFee.ExpectedFee)
	case errors.As(err, &badBurn):
		return ErrBadBurn(badBurn.MinBurnAmount)
	case errors.As(err, &tooOld):
		return ErrTooOld()
	case errors.As(err, &future):
		return ErrCreatedInFuture(future.LedgerTime)
	case errors.As(err, &duplicate):
		return ErrDuplicate(duplicate.DuplicateOf)
	case errors.As(err, &funds):
		return ErrInsufficientFunds(funds.Balance)
	case errors.As(err, &unavailable):
		return ErrTemporarilyUnavailable(unavailable.Detail)
	case errors.As(err, &malformed):
		return ErrMalformedAddress(malformed.Detail)
	case errors.As(err, &amountLow):
		return ErrAmountTooLow(amountLow.MinAmount)
	case errors.As(err, &feeLow):
		return ErrFeeTooLow(feeLow.MinFee)
	case errors.As(err, &ledgerErr):
		return ErrLedgerError(FromLedger(ledgerErr.Err))
	case errors.As(err, &external):
		return ErrExternalConnection(external.Code, external.Message)
	case errors.As(err, &processing):
		return ErrAlreadyProcessing()
	case errors.As(err, &tooMany):
		return ErrTooManyConcurrentRequests()
	case errors.As(err, &noDeposits):
		return ErrNoNewDeposits()
	default:
		return InternalError(err)
	}
}
