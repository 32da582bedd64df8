package support

import (
	"fmt"
	"io"
)

// Tracer emits runtime trace statements when the compiler's `trace` knob
// (spec.md §6.2) is enabled in the emitted code. A nil *Tracer is valid and
// every method on it is a no-op, so callers never need a liveness check.
type Tracer struct {
	w io.Writer
}

// NewTracer returns a Tracer writing to w. Pass nil to get a no-op tracer.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

func (t *Tracer) Enabled() bool { return t != nil && t.w != nil }

// Occurrence logs entry into one occurrence rule's matching block.
func (t *Tracer) Occurrence(label string, cid int64) {
	if !t.Enabled() {
		return
	}
	fmt.Fprintf(t.w, "trace: enter %s cid=%d\n", label, cid)
}

// RuleFired logs a successful firing of a named rule.
func (t *Tracer) RuleFired(rule string, cids []int64) {
	if !t.Enabled() {
		return
	}
	fmt.Fprintf(t.w, "trace: fire %s %v\n", rule, cids)
}

// Backtrack logs a rewind to the given depth.
func (t *Tracer) Backtrack(depth int64) {
	if !t.Enabled() {
		return
	}
	fmt.Fprintf(t.w, "trace: back_to depth=%d\n", depth)
}
