package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"token-ledger/internal/core/domain"
)

// ArchiveStore implements ports.ArchiveStore on PostgreSQL.
//
// Segments key on their start index. A resend of a boundary that is
// already stored with the same checksum is acknowledged without writing,
// which makes WriteSegment safe to retry after a lost response.
type ArchiveStore struct {
	pool Pool
}

// NewArchiveStore creates a PostgreSQL-backed archive store.
func NewArchiveStore(pool Pool) *ArchiveStore {
	return &ArchiveStore{pool: pool}
}

// WriteSegment persists a segment and its blocks in one transaction.
func (s *ArchiveStore) WriteSegment(ctx context.Context, seg domain.ArchiveSegment, blocks []domain.Block) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive write: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO archive_segments (start_index, end_index, checksum)
		VALUES ($1, $2, $3)
		ON CONFLICT (start_index) DO NOTHING`,
		int64(seg.Start), int64(seg.End), seg.Checksum[:],
	)
	if err != nil {
		return fmt.Errorf("insert archive segment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Boundary already stored: acknowledge only an exact match.
		var endIndex int64
		var checksum []byte
		err := tx.QueryRow(ctx,
			`SELECT end_index, checksum FROM archive_segments WHERE start_index = $1`,
			int64(seg.Start),
		).Scan(&endIndex, &checksum)
		if err != nil {
			return fmt.Errorf("load existing archive segment: %w", err)
		}
		if uint64(endIndex) != seg.End || !bytes.Equal(checksum, seg.Checksum[:]) {
			return fmt.Errorf("archive segment %d already stored with different boundary", seg.Start)
		}
		return tx.Commit(ctx)
	}

	for i := range blocks {
		data, err := json.Marshal(blocks[i])
		if err != nil {
			return fmt.Errorf("encode block %d: %w", blocks[i].Index, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO archive_blocks (block_index, segment_start, data)
			VALUES ($1, $2, $3)
			ON CONFLICT (block_index) DO NOTHING`,
			int64(blocks[i].Index), int64(seg.Start), data,
		)
		if err != nil {
			return fmt.Errorf("insert archive block %d: %w", blocks[i].Index, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive write: %w", err)
	}
	return nil
}

// ReadSegment loads a segment's blocks and verifies them against the
// segment checksum.
func (s *ArchiveStore) ReadSegment(ctx context.Context, seg domain.ArchiveSegment) ([]domain.Block, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM archive_blocks WHERE segment_start = $1 ORDER BY block_index`,
		int64(seg.Start),
	)
	if err != nil {
		return nil, fmt.Errorf("query archive blocks: %w", err)
	}
	defer rows.Close()

	var blocks []domain.Block
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan archive block: %w", err)
		}
		var b domain.Block
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode archive block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive blocks: %w", err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("archive segment %d not found", seg.Start)
	}
	if domain.SegmentChecksum(blocks) != seg.Checksum {
		return nil, fmt.Errorf("archive segment %d failed checksum verification", seg.Start)
	}
	return blocks, nil
}

// ListSegments returns every stored segment in index order.
func (s *ArchiveStore) ListSegments(ctx context.Context) ([]domain.ArchiveSegment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT start_index, end_index, checksum FROM archive_segments ORDER BY start_index`,
	)
	if err != nil {
		return nil, fmt.Errorf("query archive segments: %w", err)
	}
	defer rows.Close()

	var segs []domain.ArchiveSegment
	for rows.Next() {
		var start, end int64
		var checksum []byte
		if err := rows.Scan(&start, &end, &checksum); err != nil {
			return nil, fmt.Errorf("scan archive segment: %w", err)
		}
		seg := domain.ArchiveSegment{Start: uint64(start), End: uint64(end)}
		if len(checksum) != len(seg.Checksum) {
			return nil, fmt.Errorf("archive segment %d has malformed checksum", start)
		}
		copy(seg.Checksum[:], checksum)
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive segments: %w", err)
	}
	return segs, nil
}
