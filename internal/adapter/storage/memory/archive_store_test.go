package memory

import (
	"context"
	"testing"
	"time"

	"token-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlocks(start uint64, n int) []domain.Block {
	parent := domain.GenesisParentHash
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	blocks := make([]domain.Block, 0, n)
	for i := 0; i < n; i++ {
		b := domain.Block{
			Index:      start + uint64(i),
			ParentHash: parent,
			Transfer: domain.ValidatedTransfer{
				Operation: domain.OperationMint,
				From:      domain.Account{Owner: "minter"},
				To:        domain.Account{Owner: "alice"},
				Amount:    100,
			},
			Timestamp: ts.Add(time.Duration(i) * time.Second),
		}
		parent = b.Hash()
		blocks = append(blocks, b)
	}
	return blocks
}

func testSegment(blocks []domain.Block) domain.ArchiveSegment {
	return domain.ArchiveSegment{
		Start:    blocks[0].Index,
		End:      blocks[len(blocks)-1].Index + 1,
		Checksum: domain.SegmentChecksum(blocks),
	}
}

func TestArchiveStore_RoundTrip(t *testing.T) {
	store := NewArchiveStore()
	ctx := context.Background()

	blocks := testBlocks(0, 4)
	seg := testSegment(blocks)

	require.NoError(t, store.WriteSegment(ctx, seg, blocks))
	got, err := store.ReadSegment(ctx, seg)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)

	// Idempotent resend.
	require.NoError(t, store.WriteSegment(ctx, seg, blocks))

	segs, err := store.ListSegments(ctx)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, seg, segs[0])
}

func TestArchiveStore_ConflictAndMissing(t *testing.T) {
	store := NewArchiveStore()
	ctx := context.Background()

	blocks := testBlocks(0, 3)
	require.NoError(t, store.WriteSegment(ctx, testSegment(blocks), blocks))

	other := testBlocks(0, 5)
	err := store.WriteSegment(ctx, testSegment(other), other)
	assert.ErrorContains(t, err, "different boundary")

	missing := testBlocks(9, 2)
	_, err = store.ReadSegment(ctx, testSegment(missing))
	assert.ErrorContains(t, err, "not found")
}
