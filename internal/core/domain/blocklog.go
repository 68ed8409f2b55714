package domain

// BlockLog is the bounded in-memory window of the block chain. Blocks enter
// only through Append and leave only through PruneTo from the front, so the
// global index space is never renumbered. The log carries no policy: the
// ledger core decides what to append, the archive manager decides what to
// prune.
type BlockLog struct {
	first  uint64
	blocks []Block
}

// NewBlockLog creates an empty log whose next index is 0.
func NewBlockLog() *BlockLog {
	return &BlockLog{}
}

// NextIndex returns the index the next appended block will receive.
func (l *BlockLog) NextIndex() uint64 {
	return l.first + uint64(len(l.blocks))
}

// FirstIndex returns the index of the oldest live block. Only meaningful
// when Len() > 0.
func (l *BlockLog) FirstIndex() uint64 {
	return l.first
}

// Len returns the number of live blocks.
func (l *BlockLog) Len() int {
	return len(l.blocks)
}

// LastHash returns the hash of the newest live block, or the genesis parent
// hash when the log has never held a block. The caller is responsible for
// not asking across a prune boundary (the ledger core keeps the last hash
// itself once blocks start being archived).
func (l *BlockLog) LastHash() [32]byte {
	if len(l.blocks) == 0 {
		return GenesisParentHash
	}
	return l.blocks[len(l.blocks)-1].Hash()
}

// Append adds a block to the live window. The block's index must equal
// NextIndex; Append returns false instead of breaking the sequence.
func (l *BlockLog) Append(b Block) bool {
	if b.Index != l.NextIndex() {
		return false
	}
	l.blocks = append(l.blocks, b)
	return true
}

// Get returns the live block at the given index, or nil if the index is
// outside the live window.
func (l *BlockLog) Get(index uint64) *Block {
	if index < l.first || index >= l.NextIndex() {
		return nil
	}
	return &l.blocks[index-l.first]
}

// Slice returns a copy of the live blocks in [start, end).
func (l *BlockLog) Slice(start, end uint64) []Block {
	if start < l.first {
		start = l.first
	}
	if end > l.NextIndex() {
		end = l.NextIndex()
	}
	if start >= end {
		return nil
	}
	out := make([]Block, end-start)
	copy(out, l.blocks[start-l.first:end-l.first])
	return out
}

// ResumeAt moves an empty log's index space forward so appends continue
// after blocks held elsewhere (the archive). It refuses on a non-empty
// log or a backwards target.
func (l *BlockLog) ResumeAt(index uint64) bool {
	if len(l.blocks) != 0 || index < l.first {
		return false
	}
	l.first = index
	return true
}

// PruneTo drops all live blocks with index < end. It returns false if end
// is beyond the live window. Pruning never renumbers surviving blocks.
func (l *BlockLog) PruneTo(end uint64) bool {
	if end <= l.first {
		return true
	}
	if end > l.NextIndex() {
		return false
	}
	n := end - l.first
	remaining := make([]Block, len(l.blocks)-int(n))
	copy(remaining, l.blocks[n:])
	l.blocks = remaining
	l.first = end
	return true
}
