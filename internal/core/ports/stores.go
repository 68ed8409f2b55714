package ports

import (
	"context"

	"token-ledger/internal/core/domain"
)

// ArchiveStore is the external cold storage for rotated block segments.
//
// WriteSegment must be idempotent on the segment boundary: resending the
// same (start, end, checksum) with the same blocks acknowledges without
// duplicating stored data. The archive manager prunes the live window only
// after WriteSegment returns nil.
type ArchiveStore interface {
	WriteSegment(ctx context.Context, seg domain.ArchiveSegment, blocks []domain.Block) error
	ReadSegment(ctx context.Context, seg domain.ArchiveSegment) ([]domain.Block, error)
	ListSegments(ctx context.Context) ([]domain.ArchiveSegment, error)
}
