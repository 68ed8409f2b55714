package domain

import "time"

// dedupKey uniquely identifies a client-deduplicable submission: the source
// account, the caller-supplied memo and the caller-supplied creation time.
type dedupKey struct {
	source    string
	memo      string
	createdAt int64
}

type dedupEntry struct {
	key        dedupKey
	blockIndex uint64
	seenAt     time.Time
}

// DedupWindow is the bounded ordered set of recently admitted submissions
// used to reject replays. Entries expire once they are older than the
// horizon; within the horizon no two admitted transfers may share a key.
type DedupWindow struct {
	horizon time.Duration
	byKey   map[dedupKey]uint64
	order   []dedupEntry
}

// NewDedupWindow creates a window that remembers submissions for horizon.
func NewDedupWindow(horizon time.Duration) *DedupWindow {
	return &DedupWindow{
		horizon: horizon,
		byKey:   make(map[dedupKey]uint64),
	}
}

// Lookup returns the block index of a prior admission with the same
// (source, memo, createdAt) tuple, if one is still inside the horizon.
func (w *DedupWindow) Lookup(source Account, memo []byte, createdAt time.Time) (uint64, bool) {
	idx, ok := w.byKey[dedupKey{source.Key(), string(memo), createdAt.UnixNano()}]
	return idx, ok
}

// Insert records an admitted submission under the given block index.
func (w *DedupWindow) Insert(source Account, memo []byte, createdAt time.Time, blockIndex uint64, now time.Time) {
	k := dedupKey{source.Key(), string(memo), createdAt.UnixNano()}
	w.byKey[k] = blockIndex
	w.order = append(w.order, dedupEntry{key: k, blockIndex: blockIndex, seenAt: now})
}

// Expire drops every entry older than the horizon. Entries are appended in
// admission order, so expiry only ever trims the front.
func (w *DedupWindow) Expire(now time.Time) {
	cutoff := now.Add(-w.horizon)
	n := 0
	for n < len(w.order) && w.order[n].seenAt.Before(cutoff) {
		e := w.order[n]
		// Only delete if the key was not re-admitted under a newer block.
		if idx, ok := w.byKey[e.key]; ok && idx == e.blockIndex {
			delete(w.byKey, e.key)
		}
		n++
	}
	if n > 0 {
		w.order = append([]dedupEntry(nil), w.order[n:]...)
	}
}

// Len returns the number of live entries.
func (w *DedupWindow) Len() int {
	return len(w.byKey)
}
