package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// LedgerServiceImpl is the authoritative balance and block state machine.
//
// All mutation funnels through Transfer under a single write lock, so no
// two applies ever interleave. Reads take the read lock and therefore
// observe a consistent snapshot: a balance is never seen mid-mutation.
// The archive manager cooperates through SnapshotForArchive (read side)
// and CommitArchive (write side); it never touches the maps directly.
type LedgerServiceImpl struct {
	mu    sync.RWMutex
	rules LedgerRules

	balances map[string]uint64
	blockLog *domain.BlockLog
	dedup    *domain.DedupWindow
	lastHash [32]byte

	// Tombstones for archived ranges, ordered by Start.
	segments []domain.ArchiveSegment

	minted uint64
	burned uint64
	fees   uint64

	clock   ports.Clock
	archive ports.ArchiveStore // nil until SetArchiveStore; read-through only
	notify  chan struct{}
	log     zerolog.Logger
}

// NewLedgerService creates an empty ledger governed by rules.
func NewLedgerService(rules LedgerRules, clock ports.Clock, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		rules:    rules,
		balances: make(map[string]uint64),
		blockLog: domain.NewBlockLog(),
		dedup:    domain.NewDedupWindow(rules.DedupHorizon),
		lastHash: domain.GenesisParentHash,
		clock:    clock,
		notify:   make(chan struct{}, 1),
		log:      log,
	}
}

// SetArchiveStore wires the cold store used for archived block reads.
func (s *LedgerServiceImpl) SetArchiveStore(store ports.ArchiveStore) {
	s.archive = store
}

// RestoreArchive rebuilds ledger state from the wired archive store.
// Every archived segment is replayed in index order: balances, counters,
// the hash chain and the tombstones all come back, and the index space
// resumes after the last archived block. Blocks that were still live at
// shutdown are not durable and do not come back. It returns the deposit
// refs carried by restored mint blocks so the bridge can rebuild its
// seen set. Must run before the first transfer.
func (s *LedgerServiceImpl) RestoreArchive(ctx context.Context) ([]string, error) {
	if s.archive == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blockLog.Len() > 0 || len(s.segments) > 0 {
		return nil, fmt.Errorf("archive restore requires an empty ledger")
	}

	segs, err := s.archive.ListSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archive segments: %w", err)
	}

	var refs []string
	for _, seg := range segs {
		if seg.Start != s.blockLog.NextIndex() {
			return nil, fmt.Errorf("archive gap: segment starts at %d, expected %d", seg.Start, s.blockLog.NextIndex())
		}
		blocks, err := s.archive.ReadSegment(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("read archive segment %d: %w", seg.Start, err)
		}
		for i := range blocks {
			b := &blocks[i]
			if b.ParentHash != s.lastHash {
				return nil, fmt.Errorf("hash chain break at block %d", b.Index)
			}
			vt := &b.Transfer
			if debit := vt.Debit(); debit > 0 {
				s.balances[vt.From.Key()] -= debit
				if s.balances[vt.From.Key()] == 0 {
					delete(s.balances, vt.From.Key())
				}
			}
			if credit := vt.Credit(); credit > 0 {
				s.balances[vt.To.Key()] += credit
			}
			switch vt.Operation {
			case domain.OperationMint:
				s.minted += vt.Amount
				if len(vt.Memo) > 0 {
					refs = append(refs, string(vt.Memo))
				}
			case domain.OperationBurn:
				s.burned += vt.Amount
			}
			s.fees += vt.Fee
			s.lastHash = b.Hash()
		}
		if !s.blockLog.ResumeAt(seg.End) {
			return nil, fmt.Errorf("cannot resume block log at %d", seg.End)
		}
		s.segments = append(s.segments, seg)
	}

	if len(segs) > 0 {
		s.log.Info().
			Int("segments", len(segs)).
			Uint64("next_index", s.blockLog.NextIndex()).
			Msg("ledger state restored from archive")
	}
	return refs, nil
}

// ArchiveNotify returns the channel pulsed after each successful apply,
// used by the archive manager to re-check the high-water mark.
func (s *LedgerServiceImpl) ArchiveNotify() <-chan struct{} {
	return s.notify
}

// Rules returns the configured admission parameters.
func (s *LedgerServiceImpl) Rules() LedgerRules {
	return s.rules
}

// Transfer validates and applies one transfer as a single atomic unit:
// debit, credit, block append and dedup insert all happen under the write
// lock, or none of them happen. Validation precedes every mutation, and
// the commit steps themselves are infallible in-memory operations, so a
// rejected request leaves no trace.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req domain.TransferRequest) (uint64, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.dedup.Expire(now)

	vt, err := ValidateTransfer(req, s.rules, s.balances[req.From.Key()], s.dedup, now)
	if err != nil {
		return 0, err
	}

	index := s.blockLog.NextIndex()
	block := domain.Block{
		Index:      index,
		ParentHash: s.lastHash,
		Transfer:   *vt,
		Timestamp:  now,
	}

	if debit := vt.Debit(); debit > 0 {
		s.balances[vt.From.Key()] -= debit
		if s.balances[vt.From.Key()] == 0 {
			delete(s.balances, vt.From.Key())
		}
	}
	if credit := vt.Credit(); credit > 0 {
		s.balances[vt.To.Key()] += credit
	}

	switch vt.Operation {
	case domain.OperationMint:
		s.minted += vt.Amount
	case domain.OperationBurn:
		s.burned += vt.Amount
	}
	s.fees += vt.Fee

	if !s.blockLog.Append(block) {
		// Unreachable while the write lock is held; kept as a loud
		// invariant check rather than silent corruption.
		panic(fmt.Sprintf("block log rejected index %d", index))
	}
	s.lastHash = block.Hash()

	if vt.CreatedAt != nil {
		s.dedup.Insert(vt.From, vt.Memo, *vt.CreatedAt, index, now)
	}

	select {
	case s.notify <- struct{}{}:
	default:
	}

	s.log.Info().
		Uint64("block_index", index).
		Str("operation", string(vt.Operation)).
		Str("from", vt.From.String()).
		Str("to", vt.To.String()).
		Uint64("amount", vt.Amount).
		Uint64("fee", vt.Fee).
		Msg("transfer admitted")

	return index, nil
}

// BalanceOf returns the account's balance in a consistent snapshot.
func (s *LedgerServiceImpl) BalanceOf(account domain.Account) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account.Key()]
}

// BlockAt resolves a block index. Live indices return the block directly;
// archived indices return the owning segment tombstone, with the block
// read back through the archive store when one is wired. Unknown indices
// return (nil, nil).
func (s *LedgerServiceImpl) BlockAt(ctx context.Context, index uint64) (*ports.BlockLocation, error) {
	s.mu.RLock()
	if b := s.blockLog.Get(index); b != nil {
		blockCopy := *b
		s.mu.RUnlock()
		return &ports.BlockLocation{Block: &blockCopy}, nil
	}
	var seg *domain.ArchiveSegment
	for i := range s.segments {
		if s.segments[i].Contains(index) {
			segCopy := s.segments[i]
			seg = &segCopy
			break
		}
	}
	s.mu.RUnlock()

	if seg == nil {
		return nil, nil
	}
	if s.archive == nil {
		return &ports.BlockLocation{Segment: seg}, nil
	}

	blocks, err := s.archive.ReadSegment(ctx, *seg)
	if err != nil {
		return nil, domain.ErrTemporarilyUnavailable{Detail: "archive read failed"}
	}
	for i := range blocks {
		if blocks[i].Index == index {
			return &ports.BlockLocation{Block: &blocks[i], Segment: seg}, nil
		}
	}
	return nil, domain.ErrTemporarilyUnavailable{Detail: fmt.Sprintf("block %d missing from archive segment", index)}
}

// Stats returns a consistent snapshot of the ledger counters.
func (s *LedgerServiceImpl) Stats() ports.LedgerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var supply uint64
	for _, b := range s.balances {
		supply += b
	}
	return ports.LedgerStats{
		TotalSupply:      supply,
		Minted:           s.minted,
		Burned:           s.burned,
		FeesCollected:    s.fees,
		LiveBlocks:       s.blockLog.Len(),
		FirstLiveIndex:   s.blockLog.FirstIndex(),
		NextIndex:        s.blockLog.NextIndex(),
		ArchivedSegments: len(s.segments),
	}
}

// LiveLength returns the current live window length.
func (s *LedgerServiceImpl) LiveLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockLog.Len()
}

// SnapshotForArchive copies the oldest count live blocks. The copy is
// taken under the read lock so the archive handoff can run outside the
// mutation serialization point.
func (s *LedgerServiceImpl) SnapshotForArchive(count int) []domain.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if count <= 0 || s.blockLog.Len() == 0 {
		return nil
	}
	if count > s.blockLog.Len() {
		count = s.blockLog.Len()
	}
	first := s.blockLog.FirstIndex()
	return s.blockLog.Slice(first, first+uint64(count))
}

// CommitArchive prunes an acknowledged segment from the live window and
// records its tombstone. The segment must start exactly at the live
// front: a stale boundary (window already pruned by an earlier commit)
// is rejected rather than silently renumbering.
func (s *LedgerServiceImpl) CommitArchive(seg domain.ArchiveSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seg.Start != s.blockLog.FirstIndex() {
		return fmt.Errorf("archive segment start %d does not match live front %d", seg.Start, s.blockLog.FirstIndex())
	}
	if !s.blockLog.PruneTo(seg.End) {
		return fmt.Errorf("archive segment end %d beyond live window %d", seg.End, s.blockLog.NextIndex())
	}

	s.segments = append(s.segments, seg)
	sort.Slice(s.segments, func(i, j int) bool { return s.segments[i].Start < s.segments[j].Start })
	return nil
}

// Segments returns a copy of the archive tombstones in index order.
func (s *LedgerServiceImpl) Segments() []domain.ArchiveSegment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ArchiveSegment, len(s.segments))
	copy(out, s.segments)
	return out
}
