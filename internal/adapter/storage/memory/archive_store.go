package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"token-ledger/internal/core/domain"
)

// ArchiveStore implements ports.ArchiveStore in process memory. Used for
// development and tests; archived blocks do not survive a restart.
type ArchiveStore struct {
	mu       sync.RWMutex
	segments map[uint64]domain.ArchiveSegment
	blocks   map[uint64][]domain.Block
}

// NewArchiveStore creates an empty in-memory archive store.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{
		segments: make(map[uint64]domain.ArchiveSegment),
		blocks:   make(map[uint64][]domain.Block),
	}
}

// WriteSegment stores a segment's blocks. Resending an already-stored
// boundary is acknowledged when the checksum matches.
func (s *ArchiveStore) WriteSegment(_ context.Context, seg domain.ArchiveSegment, blocks []domain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.segments[seg.Start]; ok {
		if existing != seg {
			return fmt.Errorf("archive segment %d already stored with different boundary", seg.Start)
		}
		return nil
	}

	stored := make([]domain.Block, len(blocks))
	copy(stored, blocks)
	s.segments[seg.Start] = seg
	s.blocks[seg.Start] = stored
	return nil
}

// ReadSegment returns a segment's blocks, verified against the checksum.
func (s *ArchiveStore) ReadSegment(_ context.Context, seg domain.ArchiveSegment) ([]domain.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.blocks[seg.Start]
	if !ok {
		return nil, fmt.Errorf("archive segment %d not found", seg.Start)
	}
	if domain.SegmentChecksum(stored) != seg.Checksum {
		return nil, fmt.Errorf("archive segment %d failed checksum verification", seg.Start)
	}
	out := make([]domain.Block, len(stored))
	copy(out, stored)
	return out, nil
}

// ListSegments returns every stored segment in index order.
func (s *ArchiveStore) ListSegments(_ context.Context) ([]domain.ArchiveSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segs := make([]domain.ArchiveSegment, 0, len(s.segments))
	for _, seg := range s.segments {
		segs = append(segs, seg)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	return segs, nil
}
