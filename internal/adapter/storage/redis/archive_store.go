package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"token-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const (
	segmentIndexKey = "archive:segments"
	blocksKeyPrefix = "archive:blocks:"
)

// ArchiveStore implements ports.ArchiveStore on Redis.
//
// Block payloads are written with SETNX so a resend of an
// already-stored boundary never overwrites; it is acknowledged when the
// checksum matches and rejected otherwise.
type ArchiveStore struct {
	client *goredis.Client
}

// NewArchiveStore creates a Redis-backed archive store.
func NewArchiveStore(client *goredis.Client) *ArchiveStore {
	return &ArchiveStore{client: client}
}

func blocksKey(start uint64) string {
	return fmt.Sprintf("%s%d", blocksKeyPrefix, start)
}

// WriteSegment persists a segment's blocks and indexes its metadata.
func (s *ArchiveStore) WriteSegment(ctx context.Context, seg domain.ArchiveSegment, blocks []domain.Block) error {
	payload, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("encode archive blocks: %w", err)
	}

	stored, err := s.client.SetNX(ctx, blocksKey(seg.Start), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("redis archive setnx: %w", err)
	}
	if !stored {
		existing, err := s.loadSegmentMeta(ctx, seg.Start)
		if err != nil {
			return err
		}
		if existing != nil {
			if *existing != seg {
				return fmt.Errorf("archive segment %d already stored with different boundary", seg.Start)
			}
			return nil
		}
		// Blocks landed but the meta write did not (crash between the two
		// steps). Verify the stored payload is this segment's, then fall
		// through and finish the interrupted write.
		if _, err := s.ReadSegment(ctx, seg); err != nil {
			return fmt.Errorf("archive segment %d already stored with different boundary: %w", seg.Start, err)
		}
	}

	meta, err := json.Marshal(seg)
	if err != nil {
		return fmt.Errorf("encode archive segment: %w", err)
	}
	if err := s.client.HSet(ctx, segmentIndexKey, fmt.Sprint(seg.Start), meta).Err(); err != nil {
		return fmt.Errorf("redis archive index: %w", err)
	}
	return nil
}

// ReadSegment loads a segment's blocks and verifies the checksum.
func (s *ArchiveStore) ReadSegment(ctx context.Context, seg domain.ArchiveSegment) ([]domain.Block, error) {
	payload, err := s.client.Get(ctx, blocksKey(seg.Start)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, fmt.Errorf("archive segment %d not found", seg.Start)
		}
		return nil, fmt.Errorf("redis archive get: %w", err)
	}

	var blocks []domain.Block
	if err := json.Unmarshal(payload, &blocks); err != nil {
		return nil, fmt.Errorf("decode archive blocks: %w", err)
	}
	if domain.SegmentChecksum(blocks) != seg.Checksum {
		return nil, fmt.Errorf("archive segment %d failed checksum verification", seg.Start)
	}
	return blocks, nil
}

// ListSegments returns every stored segment in index order.
func (s *ArchiveStore) ListSegments(ctx context.Context) ([]domain.ArchiveSegment, error) {
	entries, err := s.client.HGetAll(ctx, segmentIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis archive list: %w", err)
	}

	segs := make([]domain.ArchiveSegment, 0, len(entries))
	for _, raw := range entries {
		var seg domain.ArchiveSegment
		if err := json.Unmarshal([]byte(raw), &seg); err != nil {
			return nil, fmt.Errorf("decode archive segment: %w", err)
		}
		segs = append(segs, seg)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	return segs, nil
}

func (s *ArchiveStore) loadSegmentMeta(ctx context.Context, start uint64) (*domain.ArchiveSegment, error) {
	raw, err := s.client.HGet(ctx, segmentIndexKey, fmt.Sprint(start)).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis archive meta get: %w", err)
	}
	var seg domain.ArchiveSegment
	if err := json.Unmarshal([]byte(raw), &seg); err != nil {
		return nil, fmt.Errorf("decode archive segment: %w", err)
	}
	return &seg, nil
}
