package runtime

import (
	"sort"

	"github.com/ATSOTECK/chrc/runtime/support"
)

type historyOp struct {
	depth Depth
	key   uint64
}

// History is the per-propagation-rule firing record of spec.md §4.4.4 and
// §6.3: Check inserts the cid tuple and returns true the first time it is
// seen, false on any repeat, so a propagation rule never fires twice for
// the same partner set at the same backtrack depth.
type History struct {
	bt   *BacktrackManager
	seen map[uint64][][]int64
	log  []historyOp
}

// NewHistory returns an empty history registered with bt.
func NewHistory(bt *BacktrackManager) *History {
	h := &History{bt: bt, seen: make(map[uint64][][]int64)}
	bt.Register(h)
	return h
}

// Check reports whether cids has not been recorded before, recording it if
// so (spec.md §2, §4.4.4: history entries are sorted tuples, so a partner
// set is the same firing regardless of match order — grounded on
// original_source/runtime/history.hh's std::sort(e.begin(), e.end()) before
// insertion). The caller's slice is never mutated; Check sorts a copy.
func (h *History) Check(cids []int64) bool {
	sorted := make([]int64, len(cids))
	copy(sorted, cids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	key := support.TupleHash(sorted)
	for _, t := range h.seen[key] {
		if equalCIDs(t, sorted) {
			return false
		}
	}
	h.seen[key] = append(h.seen[key], sorted)
	h.log = append(h.log, historyOp{depth: h.bt.Depth(), key: key})
	return true
}

// Rewind forgets every tuple recorded at a depth greater than to.
func (h *History) Rewind(to Depth) {
	for len(h.log) > 0 && h.log[len(h.log)-1].depth > to {
		op := h.log[len(h.log)-1]
		h.log = h.log[:len(h.log)-1]
		bucket := h.seen[op.key]
		h.seen[op.key] = bucket[:len(bucket)-1]
	}
}

func equalCIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
