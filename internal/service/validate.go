package service

import (
	"math"
	"time"

	"token-ledger/internal/core/domain"
)

// LedgerRules are the configured admission parameters the validation
// pipeline checks against.
type LedgerRules struct {
	Minter        domain.Account
	Fee           uint64
	MinBurnAmount uint64
	DedupHorizon  time.Duration
	ClockSkew     time.Duration
}

// resolveOperation classifies a request against the mint/burn sentinel.
func resolveOperation(req domain.TransferRequest, minter domain.Account) domain.Operation {
	switch {
	case req.From.Equal(minter):
		return domain.OperationMint
	case req.To.Equal(minter):
		return domain.OperationBurn
	default:
		return domain.OperationTransfer
	}
}

// ValidateTransfer decides whether a proposed transfer may be admitted.
// It is pure: no state is mutated, the caller owns the snapshot it passes
// in. The check order is part of the service contract: fee, burn floor,
// time bounds, duplicate, balance; first failure wins.
//
// Mints pay no fee and are not balance-checked (value enters at the edge);
// burns pay no ledger fee. Requests without CreatedAt skip the time-bound
// and duplicate checks: they carry no uniqueness token to deduplicate on.
func ValidateTransfer(
	req domain.TransferRequest,
	rules LedgerRules,
	sourceBalance uint64,
	dedup *domain.DedupWindow,
	now time.Time,
) (*domain.ValidatedTransfer, error) {
	op := resolveOperation(req, rules.Minter)

	expectedFee := rules.Fee
	if op != domain.OperationTransfer {
		expectedFee = 0
	}

	// 1. Fee assertion.
	if req.Fee != nil && *req.Fee != expectedFee {
		return nil, domain.ErrBadFee{ExpectedFee: expectedFee}
	}

	// 2. Burn floor.
	if op == domain.OperationBurn && req.Amount < rules.MinBurnAmount {
		return nil, domain.ErrBadBurn{MinBurnAmount: rules.MinBurnAmount}
	}

	// 3. Time bounds.
	if req.CreatedAt != nil {
		created := *req.CreatedAt
		if now.Sub(created) > rules.DedupHorizon {
			return nil, domain.ErrTooOld{}
		}
		if created.Sub(now) > rules.ClockSkew {
			return nil, domain.ErrCreatedInFuture{LedgerTime: now}
		}
	}

	// 4. Duplicate.
	if req.CreatedAt != nil {
		if prior, found := dedup.Lookup(req.From, req.Memo, *req.CreatedAt); found {
			return nil, domain.ErrDuplicate{DuplicateOf: prior}
		}
	}

	// 5. Balance sufficiency.
	if op != domain.OperationMint {
		if req.Amount > math.MaxUint64-expectedFee {
			return nil, domain.ErrInsufficientFunds{Balance: sourceBalance}
		}
		if req.Amount+expectedFee > sourceBalance {
			return nil, domain.ErrInsufficientFunds{Balance: sourceBalance}
		}
	}

	return &domain.ValidatedTransfer{
		Operation: op,
		From:      req.From,
		To:        req.To,
		Amount:    req.Amount,
		Fee:       expectedFee,
		Memo:      req.Memo,
		CreatedAt: req.CreatedAt,
	}, nil
}
