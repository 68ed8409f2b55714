package domain

import "time"

// Operation represents the kind of value movement a block records.
type Operation string

const (
	OperationTransfer Operation = "TRANSFER"
	OperationMint     Operation = "MINT"
	OperationBurn     Operation = "BURN"
)

// TransferRequest is a caller-constructed, immutable transfer proposal.
// Fee is an optional expected-fee assertion: when set, the ledger rejects
// the request if it disagrees with the configured fee. Memo plus CreatedAt
// form the caller-supplied uniqueness token for duplicate detection;
// requests without CreatedAt are not client-deduplicable and skip the
// time-bound and duplicate checks.
type TransferRequest struct {
	From      Account
	To        Account
	Amount    uint64
	Fee       *uint64
	Memo      []byte
	CreatedAt *time.Time
}

// ValidatedTransfer is the outcome of the validation pipeline: the exact
// debit and credit the ledger core will apply, with the operation kind
// already resolved against the mint/burn sentinel.
type ValidatedTransfer struct {
	Operation Operation  `json:"operation"`
	From      Account    `json:"from"`
	To        Account    `json:"to"`
	Amount    uint64     `json:"amount"`
	Fee       uint64     `json:"fee"`
	Memo      []byte     `json:"memo,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Debit returns the total amount removed from the source account.
func (v ValidatedTransfer) Debit() uint64 {
	if v.Operation == OperationMint {
		return 0
	}
	return v.Amount + v.Fee
}

// Credit returns the amount added to the destination account. Burned and
// fee amounts are discarded at the ledger's edge, not credited anywhere.
func (v ValidatedTransfer) Credit() uint64 {
	if v.Operation == OperationBurn {
		return 0
	}
	return v.Amount
}
