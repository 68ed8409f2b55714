package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"token-ledger/internal/core/ports"

	"github.com/google/uuid"
)

// Submission records one outgoing transfer accepted by the fake network.
type Submission struct {
	Address string
	Amount  uint64
	Ref     string
}

// FakeAdapter is an in-process ports.NetworkAdapter for development and
// tests. Addresses derive deterministically from the subaccount, and
// deposits are planted by the test via AddDeposit.
type FakeAdapter struct {
	mu          sync.Mutex
	deposits    map[string][]ports.Deposit
	submissions []Submission
	submitErr   error
}

// NewFakeAdapter creates an empty fake network.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{deposits: make(map[string][]ports.Deposit)}
}

// DeriveAddress returns the deterministic address of a subaccount.
func (f *FakeAdapter) DeriveAddress(subaccount string) (string, error) {
	if subaccount == "" {
		return "fake:main", nil
	}
	return "fake:" + subaccount, nil
}

// ValidateAddress accepts only addresses in the fake scheme.
func (f *FakeAdapter) ValidateAddress(address string) error {
	if !strings.HasPrefix(address, "fake:") || len(address) <= len("fake:") {
		return fmt.Errorf("address %q is not in the fake scheme", address)
	}
	return nil
}

// ListDeposits returns the deposits planted at the address.
func (f *FakeAdapter) ListDeposits(_ context.Context, address string) ([]ports.Deposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.Deposit, len(f.deposits[address]))
	copy(out, f.deposits[address])
	return out, nil
}

// Submit accepts the transfer and records it.
func (f *FakeAdapter) Submit(_ context.Context, address string, amount uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	sub := Submission{Address: address, Amount: amount, Ref: uuid.NewString()}
	f.submissions = append(f.submissions, sub)
	return sub.Ref, nil
}

// AddDeposit plants a deposit at the address and returns its ref.
func (f *FakeAdapter) AddDeposit(address string, amount uint64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := uuid.NewString()
	f.deposits[address] = append(f.deposits[address], ports.Deposit{Ref: ref, Amount: amount})
	return ref
}

// FailSubmissions makes every subsequent Submit return err.
func (f *FakeAdapter) FailSubmissions(err error) {
	f.mu.Lock()
	f.submitErr = err
	f.mu.Unlock()
}

// Submissions returns a copy of the accepted transfers.
func (f *FakeAdapter) Submissions() []Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Submission, len(f.submissions))
	copy(out, f.submissions)
	return out
}
