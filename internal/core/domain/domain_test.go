package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Key(t *testing.T) {
	tests := []struct {
		name string
		acc  Account
		want string
	}{
		{"default subaccount", Account{Owner: "alice"}, "alice"},
		{"explicit subaccount", Account{Owner: "alice", Subaccount: "savings"}, "alice\x00savings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.acc.Key())
		})
	}
}

func TestAccount_Key_NoCollision(t *testing.T) {
	a := Account{Owner: "alice", Subaccount: "b"}
	b := Account{Owner: "aliceb"}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestValidatedTransfer_DebitCredit(t *testing.T) {
	tests := []struct {
		name       string
		vt         ValidatedTransfer
		wantDebit  uint64
		wantCredit uint64
	}{
		{"transfer pays amount plus fee", ValidatedTransfer{Operation: OperationTransfer, Amount: 500, Fee: 10}, 510, 500},
		{"mint debits nothing", ValidatedTransfer{Operation: OperationMint, Amount: 300}, 0, 300},
		{"burn credits nothing", ValidatedTransfer{Operation: OperationBurn, Amount: 200}, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDebit, tt.vt.Debit())
			assert.Equal(t, tt.wantCredit, tt.vt.Credit())
		})
	}
}

func TestBlock_Hash_Deterministic(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := Block{
		Index:      7,
		ParentHash: [32]byte{1, 2, 3},
		Transfer: ValidatedTransfer{
			Operation: OperationTransfer,
			From:      Account{Owner: "alice"},
			To:        Account{Owner: "bob"},
			Amount:    500,
			Fee:       10,
		},
		Timestamp: ts,
	}

	h1 := b.Hash()
	h2 := b.Hash()
	assert.Equal(t, h1, h2)

	b2 := b
	b2.Transfer.Amount = 501
	assert.NotEqual(t, h1, b2.Hash())

	b3 := b
	b3.Index = 8
	assert.NotEqual(t, h1, b3.Hash())
}

func TestBlockLog_AppendAndGet(t *testing.T) {
	l := NewBlockLog()
	assert.Equal(t, uint64(0), l.NextIndex())
	assert.Equal(t, GenesisParentHash, l.LastHash())

	parent := GenesisParentHash
	for i := uint64(0); i < 5; i++ {
		b := Block{Index: i, ParentHash: parent, Timestamp: time.Now()}
		require.True(t, l.Append(b))
		parent = b.Hash()
	}

	assert.Equal(t, 5, l.Len())
	assert.Equal(t, uint64(5), l.NextIndex())

	got := l.Get(3)
	require.NotNil(t, got)
	assert.Equal(t, uint64(3), got.Index)

	assert.Nil(t, l.Get(5), "index beyond window")
}

func TestBlockLog_Append_RejectsGap(t *testing.T) {
	l := NewBlockLog()
	assert.False(t, l.Append(Block{Index: 3}))
	assert.True(t, l.Append(Block{Index: 0}))
	assert.False(t, l.Append(Block{Index: 0}), "index reuse rejected")
}

func TestBlockLog_PruneTo(t *testing.T) {
	l := NewBlockLog()
	for i := uint64(0); i < 10; i++ {
		require.True(t, l.Append(Block{Index: i}))
	}

	require.True(t, l.PruneTo(4))
	assert.Equal(t, uint64(4), l.FirstIndex())
	assert.Equal(t, 6, l.Len())
	assert.Nil(t, l.Get(3), "pruned block no longer live")

	got := l.Get(4)
	require.NotNil(t, got)
	assert.Equal(t, uint64(4), got.Index, "surviving blocks keep their index")

	// Appends continue from the same counter.
	require.True(t, l.Append(Block{Index: 10}))
	assert.Equal(t, uint64(11), l.NextIndex())

	assert.False(t, l.PruneTo(99), "cannot prune past the window")
	assert.True(t, l.PruneTo(2), "pruning behind the front is a no-op")
	assert.Equal(t, uint64(4), l.FirstIndex())
}

func TestBlockLog_Slice(t *testing.T) {
	l := NewBlockLog()
	for i := uint64(0); i < 8; i++ {
		require.True(t, l.Append(Block{Index: i}))
	}
	require.True(t, l.PruneTo(2))

	s := l.Slice(0, 5)
	require.Len(t, s, 3, "slice clamps to the live window")
	assert.Equal(t, uint64(2), s[0].Index)
	assert.Equal(t, uint64(4), s[2].Index)

	assert.Nil(t, l.Slice(6, 6))
}

func TestSegmentChecksum_OrderSensitive(t *testing.T) {
	b1 := Block{Index: 0}
	b2 := Block{Index: 1}
	c1 := SegmentChecksum([]Block{b1, b2})
	c2 := SegmentChecksum([]Block{b2, b1})
	assert.NotEqual(t, c1, c2)
	assert.Equal(t, c1, SegmentChecksum([]Block{b1, b2}))
}

func TestArchiveSegment_Contains(t *testing.T) {
	s := ArchiveSegment{Start: 10, End: 20}
	assert.True(t, s.Contains(10))
	assert.True(t, s.Contains(19))
	assert.False(t, s.Contains(20))
	assert.False(t, s.Contains(9))
	assert.Equal(t, uint64(10), s.Len())
}

func TestDedupWindow_LookupAndExpire(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := NewDedupWindow(time.Hour)
	src := Account{Owner: "alice"}
	created := now.Add(-time.Minute)

	_, found := w.Lookup(src, []byte("m1"), created)
	assert.False(t, found)

	w.Insert(src, []byte("m1"), created, 42, now)
	idx, found := w.Lookup(src, []byte("m1"), created)
	require.True(t, found)
	assert.Equal(t, uint64(42), idx)

	// Different memo, same account and time: not a duplicate.
	_, found = w.Lookup(src, []byte("m2"), created)
	assert.False(t, found)

	// Within the horizon the entry survives.
	w.Expire(now.Add(30 * time.Minute))
	_, found = w.Lookup(src, []byte("m1"), created)
	assert.True(t, found)

	// Past the horizon it is dropped.
	w.Expire(now.Add(2 * time.Hour))
	_, found = w.Lookup(src, []byte("m1"), created)
	assert.False(t, found)
	assert.Equal(t, 0, w.Len())
}
