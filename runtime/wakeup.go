package runtime

// WakeupQueue implements the constraint reactivation protocol of spec.md
// §3.3 and §5: when a logical variable a suspended constraint's match
// depended on becomes bound, every cid watching that variable is appended
// to the pending queue, so emitted code can re-drive do_<symbol> for it
// instead of waiting for an unrelated call that happens to touch the same
// store. Grounded on original_source/runtime/logical_var.hpp's
// _wake_up_constraints callback list, generalized here to a plain cid queue
// since emitted Go-host code re-dispatches by cid rather than by callback.
type WakeupQueue struct {
	bt      *BacktrackManager
	pending []int64
	log     []wakeupOp
}

type wakeupOp struct {
	depth Depth
	count int
}

// NewWakeupQueue returns an empty queue registered with bt.
func NewWakeupQueue(bt *BacktrackManager) *WakeupQueue {
	q := &WakeupQueue{bt: bt}
	bt.Register(q)
	return q
}

// Notify appends watchers to the pending queue, recording the depth so
// Rewind can undo it. A no-op when watchers is empty.
func (q *WakeupQueue) Notify(watchers []int64) {
	if len(watchers) == 0 {
		return
	}
	q.pending = append(q.pending, watchers...)
	q.log = append(q.log, wakeupOp{depth: q.bt.Depth(), count: len(watchers)})
}

// Drain removes and returns every cid currently pending reactivation, for
// emitted code to re-dispatch through do_<symbol>.
func (q *WakeupQueue) Drain() []int64 {
	out := q.pending
	q.pending = nil
	return out
}

// Pending reports how many cids are currently queued without draining them.
func (q *WakeupQueue) Pending() int { return len(q.pending) }

// Rewind forgets every notification recorded at a depth greater than to.
func (q *WakeupQueue) Rewind(to Depth) {
	for len(q.log) > 0 && q.log[len(q.log)-1].depth > to {
		op := q.log[len(q.log)-1]
		q.log = q.log[:len(q.log)-1]
		if op.count > len(q.pending) {
			q.pending = nil
			continue
		}
		q.pending = q.pending[:len(q.pending)-op.count]
	}
}
