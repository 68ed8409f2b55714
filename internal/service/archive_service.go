package service

import (
	"context"
	"time"

	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// archiveLedger is the slice of the ledger core the archive manager needs.
type archiveLedger interface {
	LiveLength() int
	SnapshotForArchive(count int) []domain.Block
	CommitArchive(seg domain.ArchiveSegment) error
}

// pendingSegment is a snapshot whose archive write has not been
// acknowledged yet. It pins the segment boundary so every resend after a
// failure carries the exact same (start, end, checksum) that the store
// deduplicates on.
type pendingSegment struct {
	seg    domain.ArchiveSegment
	blocks []domain.Block
}

// ArchiveManager watches the live window and rotates the oldest
// contiguous run of blocks into the external archive store once the
// high-water mark is reached.
//
// The handoff is two-phase: WriteSegment first, CommitArchive (prune +
// tombstone) only after the store acknowledged. A crash or write failure
// between the two leaves every block in the live window; the retry
// resends the pinned boundary idempotently. Failures here never surface
// to transfer callers: rotation affects storage headroom, not ledger
// correctness.
type ArchiveManager struct {
	ledger  archiveLedger
	store   ports.ArchiveStore
	high    int
	low     int
	tick    time.Duration
	backoff time.Duration
	wake    <-chan struct{}
	log     zerolog.Logger

	pending *pendingSegment
	stop    chan struct{}
	done    chan struct{}
}

// NewArchiveManager creates a manager rotating ledger blocks into store.
// wake is pulsed by the ledger after each apply; the tick is a safety net
// behind it.
func NewArchiveManager(
	ledger archiveLedger,
	store ports.ArchiveStore,
	high, low int,
	tick, backoff time.Duration,
	wake <-chan struct{},
	log zerolog.Logger,
) *ArchiveManager {
	return &ArchiveManager{
		ledger:  ledger,
		store:   store,
		high:    high,
		low:     low,
		tick:    tick,
		backoff: backoff,
		wake:    wake,
		log:     log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the background rotation loop.
func (m *ArchiveManager) Start(ctx context.Context) {
	go m.run(ctx)
}

// Stop terminates the loop and waits for it to exit.
func (m *ArchiveManager) Stop() {
	close(m.stop)
	<-m.done
}

func (m *ArchiveManager) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		if err := m.RotateOnce(ctx); err != nil {
			m.log.Warn().Err(err).Msg("archive rotation failed, will resend same boundary")
			select {
			case <-time.After(m.backoff):
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-m.wake:
		case <-ticker.C:
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RotateOnce performs at most one rotation step: resend a pending
// segment, or cut a new one once the window reaches the high-water mark.
// It returns nil when there is nothing to do.
func (m *ArchiveManager) RotateOnce(ctx context.Context) error {
	if m.pending == nil {
		live := m.ledger.LiveLength()
		if live < m.high {
			return nil
		}
		blocks := m.ledger.SnapshotForArchive(live - m.low)
		if len(blocks) == 0 {
			return nil
		}
		m.pending = &pendingSegment{
			seg: domain.ArchiveSegment{
				Start:    blocks[0].Index,
				End:      blocks[len(blocks)-1].Index + 1,
				Checksum: domain.SegmentChecksum(blocks),
			},
			blocks: blocks,
		}
	}

	p := m.pending
	if err := m.store.WriteSegment(ctx, p.seg, p.blocks); err != nil {
		return err
	}
	if err := m.CommitPending(); err != nil {
		return err
	}
	return nil
}

// CommitPending prunes the acknowledged pending segment from the live
// window and records its tombstone.
func (m *ArchiveManager) CommitPending() error {
	p := m.pending
	if p == nil {
		return nil
	}
	if err := m.ledger.CommitArchive(p.seg); err != nil {
		// The boundary no longer matches the live front. This only
		// happens if something else pruned the window; drop the pending
		// segment rather than corrupting the index space.
		m.pending = nil
		return err
	}
	m.log.Info().
		Uint64("start", p.seg.Start).
		Uint64("end", p.seg.End).
		Str("checksum", p.seg.ChecksumHex()).
		Int("blocks", len(p.blocks)).
		Msg("archive segment committed")
	m.pending = nil
	return nil
}
