package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"
	"token-ledger/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type bridgeTestDeps struct {
	svc     *BridgeServiceImpl
	ledger  *LedgerServiceImpl
	network *mocks.MockNetworkAdapter
	guard   *AccountGuard
	ctrl    *gomock.Controller
}

func setupBridge(t *testing.T) *bridgeTestDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	ledger, _ := newTestLedger(t)
	guard, _ := newTestGuard(100, time.Minute)
	network := mocks.NewMockNetworkAdapter(ctrl)

	svc := NewBridgeService(ledger, network, guard, BridgeConfig{
		CustodyOwner:      "custody",
		MinterOwner:       "minter",
		MinRetrieveAmount: 100,
		MinRetrieveFee:    5,
	}, zerolog.Nop())

	return &bridgeTestDeps{svc: svc, ledger: ledger, network: network, guard: guard, ctrl: ctrl}
}

func TestBridgeService_GetAddress(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()

	d.network.EXPECT().DeriveAddress("sub-1").Return("addr-sub-1", nil)
	addr, err := d.svc.GetAddress("sub-1")
	require.NoError(t, err)
	assert.Equal(t, "addr-sub-1", addr)

	d.network.EXPECT().DeriveAddress("sub-2").Return("", errors.New("hsm offline"))
	_, err = d.svc.GetAddress("sub-2")
	assert.ErrorAs(t, err, &domain.ErrTemporarilyUnavailable{})
}

func TestBridgeService_GetDepositAccount(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()

	acct := d.svc.GetDepositAccount("sub-1")
	assert.Equal(t, domain.Account{Owner: "custody", Subaccount: "sub-1"}, acct)
}

func TestBridgeService_UpdateBalanceMintsNewDeposits(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()

	d.network.EXPECT().DeriveAddress("sub-1").Return("addr-1", nil)
	d.network.EXPECT().ListDeposits(gomock.Any(), "addr-1").Return([]ports.Deposit{
		{Ref: "tx-a", Amount: 700},
		{Ref: "tx-b", Amount: 300},
	}, nil)

	res, err := d.svc.UpdateBalance(context.Background(), "sub-1")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, uint64(1000), res.Amount, "total across both deposits")
	assert.Equal(t, uint64(1), res.BlockIndex, "last mint's block")

	custody := d.svc.GetDepositAccount("sub-1")
	assert.Equal(t, uint64(1000), d.ledger.BalanceOf(custody))

	// Deposit refs land in block memos.
	loc, err := d.ledger.BlockAt(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("tx-a"), loc.Block.Transfer.Memo)
	assert.Equal(t, domain.OperationMint, loc.Block.Transfer.Operation)
}

func TestBridgeService_UpdateBalanceSkipsSeenDeposits(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()

	d.network.EXPECT().DeriveAddress("sub-1").Return("addr-1", nil).Times(2)
	d.network.EXPECT().ListDeposits(gomock.Any(), "addr-1").Return([]ports.Deposit{
		{Ref: "tx-a", Amount: 500},
	}, nil).Times(2)

	_, err := d.svc.UpdateBalance(context.Background(), "sub-1")
	require.NoError(t, err)

	// A rescan sees the same deposit and mints nothing.
	_, err = d.svc.UpdateBalance(context.Background(), "sub-1")
	assert.ErrorAs(t, err, &domain.ErrNoNewDeposits{})

	custody := d.svc.GetDepositAccount("sub-1")
	assert.Equal(t, uint64(500), d.ledger.BalanceOf(custody))
}

func TestBridgeService_RestoredRefsAreNotReminted(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()

	// Refs replayed from archived mint memos at startup count as seen.
	d.svc.MarkDepositSeen("tx-a")

	d.network.EXPECT().DeriveAddress("sub-1").Return("addr-1", nil)
	d.network.EXPECT().ListDeposits(gomock.Any(), "addr-1").Return([]ports.Deposit{
		{Ref: "tx-a", Amount: 500},
	}, nil)

	_, err := d.svc.UpdateBalance(context.Background(), "sub-1")
	assert.ErrorAs(t, err, &domain.ErrNoNewDeposits{})
	assert.Equal(t, uint64(0), d.ledger.BalanceOf(d.svc.GetDepositAccount("sub-1")))
}

func TestBridgeService_UpdateBalanceNetworkFailure(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()

	d.network.EXPECT().DeriveAddress("sub-1").Return("addr-1", nil)
	d.network.EXPECT().ListDeposits(gomock.Any(), "addr-1").Return(nil, errors.New("rpc timeout"))

	_, err := d.svc.UpdateBalance(context.Background(), "sub-1")
	assert.ErrorAs(t, err, &domain.ErrTemporarilyUnavailable{})

	// Failure releases the lease.
	_, err = d.guard.TryAcquire(d.svc.GetDepositAccount("sub-1"), ports.OperationDepositScan)
	assert.NoError(t, err)
}

func TestBridgeService_UpdateBalanceConcurrentScansRejected(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()

	started := make(chan struct{})
	release := make(chan struct{})
	d.network.EXPECT().DeriveAddress("sub-1").Return("addr-1", nil)
	d.network.EXPECT().ListDeposits(gomock.Any(), "addr-1").
		DoAndReturn(func(context.Context, string) ([]ports.Deposit, error) {
			close(started)
			<-release
			return []ports.Deposit{{Ref: "tx-a", Amount: 500}}, nil
		})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = d.svc.UpdateBalance(context.Background(), "sub-1")
	}()

	<-started
	_, err := d.svc.UpdateBalance(context.Background(), "sub-1")
	assert.ErrorAs(t, err, &domain.ErrAlreadyProcessing{})

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
}

func fundCustody(t *testing.T, d *bridgeTestDeps, amount uint64) {
	t.Helper()
	_, err := d.ledger.Transfer(context.Background(), domain.TransferRequest{
		From:   domain.Account{Owner: "minter"},
		To:     domain.Account{Owner: "custody"},
		Amount: amount,
	})
	require.NoError(t, err)
}

func TestBridgeService_RetrieveBurnsAndSubmits(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()
	fundCustody(t, d, 1000)

	d.network.EXPECT().ValidateAddress("dst-addr").Return(nil)
	d.network.EXPECT().Submit(gomock.Any(), "dst-addr", uint64(400)).Return("ext-ref-1", nil)

	res, err := d.svc.Retrieve(context.Background(), "dst-addr", 400, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.BlockIndex)
	assert.Equal(t, "ext-ref-1", res.ExternalRef)

	assert.Equal(t, uint64(600), d.ledger.BalanceOf(domain.Account{Owner: "custody"}))
	assert.Equal(t, uint64(400), d.ledger.Stats().Burned)
}

func TestBridgeService_RetrieveValidation(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()
	fundCustody(t, d, 1000)

	t.Run("malformed address", func(t *testing.T) {
		d.network.EXPECT().ValidateAddress("nope").Return(errors.New("bad checksum"))
		_, err := d.svc.Retrieve(context.Background(), "nope", 400, nil)
		var mal domain.ErrMalformedAddress
		require.ErrorAs(t, err, &mal)
		assert.Contains(t, mal.Detail, "bad checksum")
	})

	t.Run("amount below floor", func(t *testing.T) {
		d.network.EXPECT().ValidateAddress("dst").Return(nil)
		_, err := d.svc.Retrieve(context.Background(), "dst", 99, nil)
		var low domain.ErrAmountTooLow
		require.ErrorAs(t, err, &low)
		assert.Equal(t, uint64(100), low.MinAmount)
	})

	t.Run("fee below floor", func(t *testing.T) {
		d.network.EXPECT().ValidateAddress("dst").Return(nil)
		_, err := d.svc.Retrieve(context.Background(), "dst", 400, uptr(1))
		var lowFee domain.ErrFeeTooLow
		require.ErrorAs(t, err, &lowFee)
		assert.Equal(t, uint64(5), lowFee.MinFee)
	})

	t.Run("insufficient custody balance wraps as ledger error", func(t *testing.T) {
		d.network.EXPECT().ValidateAddress("dst").Return(nil)
		_, err := d.svc.Retrieve(context.Background(), "dst", 5000, nil)
		var ledgerErr domain.ErrLedger
		require.ErrorAs(t, err, &ledgerErr)
		var insuf domain.ErrInsufficientFunds
		assert.ErrorAs(t, ledgerErr.Err, &insuf)
	})
}

func TestBridgeService_RetrieveSubmitFailureKeepsBurn(t *testing.T) {
	d := setupBridge(t)
	defer d.ctrl.Finish()
	fundCustody(t, d, 1000)

	d.network.EXPECT().ValidateAddress("dst").Return(nil)
	d.network.EXPECT().Submit(gomock.Any(), "dst", uint64(400)).
		Return("", domain.ErrExternalConnection{Code: 503, Message: "node down"})

	res, err := d.svc.Retrieve(context.Background(), "dst", 400, nil)
	var ext domain.ErrExternalConnection
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, 503, ext.Code)

	// The burn stands and its index is reported for reconciliation.
	require.NotNil(t, res)
	assert.Equal(t, uint64(1), res.BlockIndex)
	assert.Equal(t, uint64(600), d.ledger.BalanceOf(domain.Account{Owner: "custody"}))

	// The lease is released on the failure path too.
	_, err = d.guard.TryAcquire(domain.Account{Owner: "custody"}, ports.OperationWithdrawal)
	assert.NoError(t, err)
}

func TestBridgeService_ImplementsPort(t *testing.T) {
	var _ ports.BridgeService = (*BridgeServiceImpl)(nil)
}
