package ports

import (
	"context"
	"time"
)

// Deposit is one incoming value transfer observed on the external network.
// Ref is the network's unique reference for the transfer.
type Deposit struct {
	Ref    string
	Amount uint64
}

// NetworkAdapter talks to the external value-transfer network. Submit is
// intentionally not retried by the service: a possibly-already-accepted
// resubmission risks double spending on the external chain, so retry is a
// caller decision.
type NetworkAdapter interface {
	// DeriveAddress returns the deposit address for a subaccount.
	DeriveAddress(subaccount string) (string, error)
	// ValidateAddress checks a withdrawal destination. The returned error
	// describes why the address does not parse.
	ValidateAddress(address string) error
	// ListDeposits returns all deposits currently visible at the address.
	ListDeposits(ctx context.Context, address string) ([]Deposit, error)
	// Submit sends value to the address and returns the network's reference.
	Submit(ctx context.Context, address string, amount uint64) (string, error)
}

// Clock abstracts the ledger's time source so validation and lease expiry
// are testable.
type Clock interface {
	Now() time.Time
}
