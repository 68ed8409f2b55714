package redis

import (
	"context"
	"testing"
	"time"

	"token-ledger/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ArchiveStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewArchiveStore(client)
}

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

func TestArchiveStore_WriteAndRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blocks := testBlocks(0, 5)
	seg := testSegment(blocks)

	require.NoError(t, store.WriteSegment(ctx, seg, blocks))

	got, err := store.ReadSegment(ctx, seg)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, blocks[0].Hash(), got[0].Hash())
	assert.Equal(t, blocks[4].Index, got[4].Index)
}

func TestArchiveStore_ResendSameBoundaryIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blocks := testBlocks(0, 3)
	seg := testSegment(blocks)

	require.NoError(t, store.WriteSegment(ctx, seg, blocks))
	// The retry after a lost acknowledgement carries the same boundary.
	require.NoError(t, store.WriteSegment(ctx, seg, blocks))

	segs, err := store.ListSegments(ctx)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, seg, segs[0])
}

func TestArchiveStore_ResendAfterInterruptedWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blocks := testBlocks(0, 3)
	seg := testSegment(blocks)
	require.NoError(t, store.WriteSegment(ctx, seg, blocks))

	// Simulate a crash between the blocks write and the meta write: the
	// payload key exists but the segment index entry does not.
	require.NoError(t, store.client.HDel(ctx, segmentIndexKey, "0").Err())

	// The identical resend verifies the stored payload and completes the
	// interrupted write instead of reporting a boundary conflict.
	require.NoError(t, store.WriteSegment(ctx, seg, blocks))

	segs, err := store.ListSegments(ctx)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, seg, segs[0])

	got, err := store.ReadSegment(ctx, seg)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestArchiveStore_ConflictingBoundaryRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blocks := testBlocks(0, 3)
	require.NoError(t, store.WriteSegment(ctx, testSegment(blocks), blocks))

	other := testBlocks(0, 4)
	err := store.WriteSegment(ctx, testSegment(other), other)
	assert.ErrorContains(t, err, "different boundary")
}

func TestArchiveStore_ReadUnknownSegment(t *testing.T) {
	store := newTestStore(t)

	blocks := testBlocks(42, 2)
	_, err := store.ReadSegment(context.Background(), testSegment(blocks))
	assert.ErrorContains(t, err, "not found")
}

func TestArchiveStore_ReadChecksumMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blocks := testBlocks(0, 3)
	seg := testSegment(blocks)
	require.NoError(t, store.WriteSegment(ctx, seg, blocks))

	// Ask for the boundary with a wrong checksum.
	bad := seg
	bad.Checksum[0] ^= 0xff
	_, err := store.ReadSegment(ctx, bad)
	assert.ErrorContains(t, err, "checksum")
}

func TestArchiveStore_ListSegmentsOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	second := testBlocks(5, 3)
	first := testBlocks(0, 5)
	require.NoError(t, store.WriteSegment(ctx, testSegment(second), second))
	require.NoError(t, store.WriteSegment(ctx, testSegment(first), first))

	segs, err := store.ListSegments(ctx)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, uint64(0), segs[0].Start)
	assert.Equal(t, uint64(5), segs[1].Start)
}
