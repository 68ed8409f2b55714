package domain

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// GenesisParentHash is the fixed parent hash of block 0.
var GenesisParentHash = [32]byte{}

// Block is one immutable committed transfer record. Index is the global
// sequence number (never reused), ParentHash chains the block to its
// predecessor, Timestamp is the ledger commit time.
type Block struct {
	Index      uint64            `json:"index"`
	ParentHash [32]byte          `json:"parent_hash"`
	Transfer   ValidatedTransfer `json:"transfer"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Hash returns the blake2b-256 digest of the block's canonical encoding.
func (b *Block) Hash() [32]byte {
	return blake2b.Sum256(b.canonicalBytes())
}

// canonicalBytes produces a deterministic binary encoding of the block.
// Variable-length fields are length-prefixed so no two distinct blocks
// share an encoding.
func (b *Block) canonicalBytes() []byte {
	buf := make([]byte, 0, 128)
	buf = binary.BigEndian.AppendUint64(buf, b.Index)
	buf = append(buf, b.ParentHash[:]...)
	buf = appendString(buf, string(b.Transfer.Operation))
	buf = appendString(buf, b.Transfer.From.Key())
	buf = appendString(buf, b.Transfer.To.Key())
	buf = binary.BigEndian.AppendUint64(buf, b.Transfer.Amount)
	buf = binary.BigEndian.AppendUint64(buf, b.Transfer.Fee)
	buf = appendString(buf, string(b.Transfer.Memo))
	if b.Transfer.CreatedAt != nil {
		buf = binary.BigEndian.AppendUint64(buf, uint64(b.Transfer.CreatedAt.UnixNano()))
	} else {
		buf = binary.BigEndian.AppendUint64(buf, 0)
	}
	buf = binary.BigEndian.AppendUint64(buf, uint64(b.Timestamp.UnixNano()))
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// ArchiveSegment is the local tombstone for a contiguous block range
// [Start, End) that has been moved to cold storage. Checksum is the rolling
// blake2b digest over the hashes of the archived blocks, in index order.
type ArchiveSegment struct {
	Start    uint64   `json:"start"`
	End      uint64   `json:"end"`
	Checksum [32]byte `json:"checksum"`
}

// Contains reports whether the segment covers the given block index.
func (s ArchiveSegment) Contains(index uint64) bool {
	return index >= s.Start && index < s.End
}

// Len returns the number of blocks the segment covers.
func (s ArchiveSegment) Len() uint64 {
	return s.End - s.Start
}

// ChecksumHex returns the segment checksum as a hex string.
func (s ArchiveSegment) ChecksumHex() string {
	return hex.EncodeToString(s.Checksum[:])
}

// SegmentChecksum computes the rolling checksum for a run of blocks:
// blake2b over the concatenation of every block hash in order.
func SegmentChecksum(blocks []Block) [32]byte {
	h, _ := blake2b.New256(nil)
	for i := range blocks {
		sum := blocks[i].Hash()
		h.Write(sum[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
