package ports

import (
	"context"
	"time"

	"token-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// --- Ledger core ---

// BlockLocation describes where a block index currently lives.
type BlockLocation struct {
	// Block is set when the index is in the live window or was read back
	// from an archive segment.
	Block *domain.Block
	// Segment is set when the index has been archived.
	Segment *domain.ArchiveSegment
}

// LedgerStats is a consistent snapshot of the ledger's counters.
type LedgerStats struct {
	TotalSupply      uint64 `json:"total_supply"`
	Minted           uint64 `json:"minted"`
	Burned           uint64 `json:"burned"`
	FeesCollected    uint64 `json:"fees_collected"`
	LiveBlocks       int    `json:"live_blocks"`
	FirstLiveIndex   uint64 `json:"first_live_index"`
	NextIndex        uint64 `json:"next_index"`
	ArchivedSegments int    `json:"archived_segments"`
}

// LedgerService is the authoritative transfer state machine. Transfer is
// the single mutation entry point; reads observe consistent snapshots.
type LedgerService interface {
	Transfer(ctx context.Context, req domain.TransferRequest) (uint64, error)
	BalanceOf(account domain.Account) uint64
	BlockAt(ctx context.Context, index uint64) (*BlockLocation, error)
	Stats() LedgerStats
}

// --- Operation coordinator ---

// OperationKind tags what a lease holder is doing with the account.
type OperationKind string

const (
	OperationDepositScan OperationKind = "DEPOSIT_SCAN"
	OperationWithdrawal  OperationKind = "WITHDRAWAL"
)

// Lease is a live single-flight claim on an account. It is released
// explicitly by the owning flow, or reclaimed once Deadline passes.
type Lease struct {
	ID       uuid.UUID
	Account  domain.Account
	Kind     OperationKind
	Deadline time.Time
}

// OperationGuard grants at most one lease per account, bounded by a
// process-wide ceiling. TryAcquire never blocks: it fails with
// domain.ErrAlreadyProcessing or domain.ErrTooManyConcurrentRequests.
type OperationGuard interface {
	TryAcquire(account domain.Account, kind OperationKind) (*Lease, error)
	Release(lease *Lease)
}

// --- Bridge flows ---

// UpdateBalanceResult reports a deposit scan that minted new value:
// the last mint's block index and the total minted across the scan.
type UpdateBalanceResult struct {
	BlockIndex uint64 `json:"block_index"`
	Amount     uint64 `json:"amount"`
}

// RetrieveResult reports an accepted withdrawal: the burn block on the
// ledger and the external network's reference for the outgoing transfer.
type RetrieveResult struct {
	BlockIndex  uint64 `json:"block_index"`
	ExternalRef string `json:"external_ref"`
}

// BridgeService layers deposit detection and withdrawal issuance on top of
// the ledger and the external network.
type BridgeService interface {
	GetAddress(subaccount string) (string, error)
	GetDepositAccount(subaccount string) domain.Account
	UpdateBalance(ctx context.Context, subaccount string) (*UpdateBalanceResult, error)
	Retrieve(ctx context.Context, address string, amount uint64, fee *uint64) (*RetrieveResult, error)
}

// --- Operator auth ---

// TokenClaims holds the parsed JWT claims for an operator token.
type TokenClaims struct {
	Subject string
}

// TokenService validates operator bearer tokens. Tokens are minted
// out-of-band with the shared secret; the service never issues them.
type TokenService interface {
	Validate(tokenString string) (*TokenClaims, error)
}
