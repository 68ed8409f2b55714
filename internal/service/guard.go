package service

import (
	"context"
	"sync/atomic"
	"time"

	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"
)

// AccountGuard enforces single-flight bridge operations per account and
// a global ceiling on concurrent leases. Leases expire after ttl so a
// crashed holder cannot wedge an account forever; the reclaimer sweep
// frees them and logs loudly, since an expired lease usually means an
// operation died mid-flight.
type AccountGuard struct {
	leases  *xsync.Map[string, ports.Lease]
	count   atomic.Int64
	max     int64
	ttl     time.Duration
	sweep   time.Duration
	clock   ports.Clock
	log     zerolog.Logger
	stop    chan struct{}
	done    chan struct{}
	started atomic.Bool
}

// NewAccountGuard creates a guard allowing at most maxConcurrent leases,
// each valid for ttl.
func NewAccountGuard(maxConcurrent int, ttl, sweep time.Duration, clock ports.Clock, log zerolog.Logger) *AccountGuard {
	return &AccountGuard{
		leases: xsync.NewMap[string, ports.Lease](),
		max:    int64(maxConcurrent),
		ttl:    ttl,
		sweep:  sweep,
		clock:  clock,
		log:    log,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// TryAcquire takes the lease for account, or reports why it cannot.
// A live lease on the account yields ErrAlreadyProcessing; hitting the
// global ceiling yields ErrTooManyConcurrentRequests. An expired lease
// still in the table is replaced in the same step.
func (g *AccountGuard) TryAcquire(account domain.Account, kind ports.OperationKind) (*ports.Lease, error) {
	now := g.clock.Now()
	fresh := ports.Lease{
		ID:       uuid.New(),
		Account:  account,
		Kind:     kind,
		Deadline: now.Add(g.ttl),
	}

	var replaced, acquired bool
	g.leases.Compute(account.Key(), func(old ports.Lease, loaded bool) (ports.Lease, xsync.ComputeOp) {
		if loaded && now.Before(old.Deadline) {
			return old, xsync.CancelOp
		}
		replaced = loaded
		acquired = true
		return fresh, xsync.UpdateOp
	})
	if !acquired {
		return nil, domain.ErrAlreadyProcessing{}
	}

	// Replacing an expired lease reuses its slot in the count.
	if !replaced {
		if g.count.Add(1) > g.max {
			g.count.Add(-1)
			g.leases.Compute(account.Key(), func(old ports.Lease, loaded bool) (ports.Lease, xsync.ComputeOp) {
				if loaded && old.ID == fresh.ID {
					return old, xsync.DeleteOp
				}
				return old, xsync.CancelOp
			})
			return nil, domain.ErrTooManyConcurrentRequests{}
		}
	} else {
		g.log.Warn().
			Str("account", account.String()).
			Str("kind", string(kind)).
			Msg("replacing expired operation lease")
	}

	return &fresh, nil
}

// Release frees the lease if it is still the current holder. Releasing
// a lease that was already reclaimed is a no-op.
func (g *AccountGuard) Release(lease *ports.Lease) {
	if lease == nil {
		return
	}
	var removed bool
	g.leases.Compute(lease.Account.Key(), func(old ports.Lease, loaded bool) (ports.Lease, xsync.ComputeOp) {
		if loaded && old.ID == lease.ID {
			removed = true
			return old, xsync.DeleteOp
		}
		return old, xsync.CancelOp
	})
	if removed {
		g.count.Add(-1)
	}
}

// ReclaimExpired removes every lease whose deadline has passed and
// returns how many it freed.
func (g *AccountGuard) ReclaimExpired() int {
	now := g.clock.Now()
	reclaimed := 0
	g.leases.Range(func(key string, l ports.Lease) bool {
		if now.Before(l.Deadline) {
			return true
		}
		g.leases.Compute(key, func(old ports.Lease, loaded bool) (ports.Lease, xsync.ComputeOp) {
			if loaded && old.ID == l.ID {
				reclaimed++
				g.count.Add(-1)
				g.log.Warn().
					Str("account", l.Account.String()).
					Str("kind", string(l.Kind)).
					Time("deadline", l.Deadline).
					Msg("reclaimed expired operation lease")
				return old, xsync.DeleteOp
			}
			return old, xsync.CancelOp
		})
		return true
	})
	return reclaimed
}

// Outstanding returns the number of live leases.
func (g *AccountGuard) Outstanding() int {
	return int(g.count.Load())
}

// Start launches the periodic expiry sweep.
func (g *AccountGuard) Start(ctx context.Context) {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(g.done)
		ticker := time.NewTicker(g.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.ReclaimExpired()
			case <-g.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the sweep goroutine.
func (g *AccountGuard) Stop() {
	if !g.started.Load() {
		return
	}
	close(g.stop)
	<-g.done
}
