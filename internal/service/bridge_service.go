package service

import (
	"context"
	"errors"
	"sync"

	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// BridgeConfig carries the bridge's policy knobs.
type BridgeConfig struct {
	// CustodyOwner is the owner string of the custody accounts that hold
	// deposited value per subaccount.
	CustodyOwner string
	// MinterOwner mirrors the ledger's mint/burn sentinel owner.
	MinterOwner string
	// MinRetrieveAmount is the smallest withdrawal the bridge accepts.
	MinRetrieveAmount uint64
	// MinRetrieveFee is the floor on caller-supplied withdrawal fees.
	MinRetrieveFee uint64
}

// BridgeServiceImpl connects the ledger to the external network: deposit
// scans mint, withdrawals burn then submit.
type BridgeServiceImpl struct {
	ledger  ports.LedgerService
	network ports.NetworkAdapter
	guard   ports.OperationGuard
	cfg     BridgeConfig
	log     zerolog.Logger

	// seen tracks deposit refs already minted, so a rescan of the same
	// address does not double mint. Refs are stamped into mint block
	// memos; at startup the wiring replays archived mint memos through
	// MarkDepositSeen to rebuild this set.
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewBridgeService creates the bridge over a ledger, an external network
// adapter and an operation guard.
func NewBridgeService(
	ledger ports.LedgerService,
	network ports.NetworkAdapter,
	guard ports.OperationGuard,
	cfg BridgeConfig,
	log zerolog.Logger,
) *BridgeServiceImpl {
	return &BridgeServiceImpl{
		ledger:  ledger,
		network: network,
		guard:   guard,
		cfg:     cfg,
		log:     log,
		seen:    make(map[string]struct{}),
	}
}

// MarkDepositSeen records a deposit ref as already minted. Used when
// rebuilding state from persisted blocks at startup.
func (s *BridgeServiceImpl) MarkDepositSeen(ref string) {
	s.mu.Lock()
	s.seen[ref] = struct{}{}
	s.mu.Unlock()
}

// GetAddress returns the external deposit address for a subaccount.
func (s *BridgeServiceImpl) GetAddress(subaccount string) (string, error) {
	addr, err := s.network.DeriveAddress(subaccount)
	if err != nil {
		return "", domain.ErrTemporarilyUnavailable{Detail: err.Error()}
	}
	return addr, nil
}

// GetDepositAccount returns the custody account credited when deposits
// to the subaccount's address are detected.
func (s *BridgeServiceImpl) GetDepositAccount(subaccount string) domain.Account {
	return domain.Account{Owner: s.cfg.CustodyOwner, Subaccount: subaccount}
}

// UpdateBalance scans the subaccount's deposit address and mints one
// ledger block per new deposit. Concurrent scans of the same subaccount
// are rejected rather than queued.
func (s *BridgeServiceImpl) UpdateBalance(ctx context.Context, subaccount string) (*ports.UpdateBalanceResult, error) {
	custody := s.GetDepositAccount(subaccount)

	lease, err := s.guard.TryAcquire(custody, ports.OperationDepositScan)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(lease)

	addr, err := s.network.DeriveAddress(subaccount)
	if err != nil {
		return nil, domain.ErrTemporarilyUnavailable{Detail: err.Error()}
	}
	deposits, err := s.network.ListDeposits(ctx, addr)
	if err != nil {
		return nil, domain.ErrTemporarilyUnavailable{Detail: err.Error()}
	}

	fresh := s.claimNewDeposits(deposits)
	if len(fresh) == 0 {
		return nil, domain.ErrNoNewDeposits{}
	}

	// The result carries the last mint's block index and the total minted
	// across every new deposit in this scan.
	var result *ports.UpdateBalanceResult
	for _, dep := range fresh {
		idx, err := s.ledger.Transfer(ctx, domain.TransferRequest{
			From:   domain.Account{Owner: s.cfg.MinterOwner},
			To:     custody,
			Amount: dep.Amount,
			Memo:   []byte(dep.Ref),
		})
		if err != nil {
			// Minting only fails on ledger-side policy errors; give the
			// ref back so the next scan retries it.
			s.unclaimDeposit(dep.Ref)
			s.log.Error().Err(err).
				Str("ref", dep.Ref).
				Uint64("amount", dep.Amount).
				Msg("deposit mint failed")
			if result != nil {
				return result, nil
			}
			return nil, domain.ErrLedger{Err: err}
		}
		s.log.Info().
			Str("account", custody.String()).
			Str("ref", dep.Ref).
			Uint64("amount", dep.Amount).
			Uint64("block", idx).
			Msg("deposit minted")
		if result == nil {
			result = &ports.UpdateBalanceResult{}
		}
		result.BlockIndex = idx
		result.Amount += dep.Amount
	}
	return result, nil
}

// Retrieve burns amount from the caller's custody balance and submits an
// outgoing transfer to address. The burn block index is returned even
// when the external submission fails: the burn is the durable record,
// and operators reconcile submission against it.
func (s *BridgeServiceImpl) Retrieve(ctx context.Context, address string, amount uint64, fee *uint64) (*ports.RetrieveResult, error) {
	if err := s.network.ValidateAddress(address); err != nil {
		return nil, domain.ErrMalformedAddress{Detail: err.Error()}
	}
	if amount < s.cfg.MinRetrieveAmount {
		return nil, domain.ErrAmountTooLow{MinAmount: s.cfg.MinRetrieveAmount}
	}
	if fee != nil && *fee < s.cfg.MinRetrieveFee {
		return nil, domain.ErrFeeTooLow{MinFee: s.cfg.MinRetrieveFee}
	}

	// Withdrawals debit the main custody account.
	custody := domain.Account{Owner: s.cfg.CustodyOwner}

	lease, err := s.guard.TryAcquire(custody, ports.OperationWithdrawal)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(lease)

	idx, err := s.ledger.Transfer(ctx, domain.TransferRequest{
		From:   custody,
		To:     domain.Account{Owner: s.cfg.MinterOwner},
		Amount: amount,
		Memo:   []byte(address),
	})
	if err != nil {
		return nil, domain.ErrLedger{Err: err}
	}

	ref, err := s.network.Submit(ctx, address, amount)
	if err != nil {
		// The burn stands. No automatic re-mint: the submission may have
		// been accepted despite the error, and reversing would double the
		// value. The block index lets operators reconcile.
		s.log.Error().Err(err).
			Str("address", address).
			Uint64("amount", amount).
			Uint64("block", idx).
			Msg("external submission failed after burn")
		var ext domain.ErrExternalConnection
		if !errors.As(err, &ext) {
			ext = domain.ErrExternalConnection{Message: err.Error()}
		}
		return &ports.RetrieveResult{BlockIndex: idx}, ext
	}

	s.log.Info().
		Str("address", address).
		Uint64("amount", amount).
		Uint64("block", idx).
		Str("ref", ref).
		Msg("withdrawal submitted")
	return &ports.RetrieveResult{BlockIndex: idx, ExternalRef: ref}, nil
}

// claimNewDeposits filters deposits down to refs not yet minted and
// marks them claimed.
func (s *BridgeServiceImpl) claimNewDeposits(deposits []ports.Deposit) []ports.Deposit {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fresh []ports.Deposit
	for _, dep := range deposits {
		if _, ok := s.seen[dep.Ref]; ok {
			continue
		}
		s.seen[dep.Ref] = struct{}{}
		fresh = append(fresh, dep)
	}
	return fresh
}

func (s *BridgeServiceImpl) unclaimDeposit(ref string) {
	s.mu.Lock()
	delete(s.seen, ref)
	s.mu.Unlock()
}
