// Package runtime implements the runtime API that emitted CHR matching
// code calls (spec.md §6.3): the backtrack manager, backtrackable list,
// logical variables, constraint stores, and propagation history. It is the
// Go stand-in for the original C++ runtime library
// (original_source/runtime/*.hpp) — the `runtime` package in a real chrc
// deployment, not `internal`, since emitted programs import it directly.
//
// Every piece here is an explicit receiver threading its own state (no
// package-level singletons), grounded on the teacher's *VM struct
// (_examples/ATSOTECK-rage/internal/runtime/vm.go) which makes the same
// choice for the same reason: spec.md §5 calls out global mutable state as
// something the compiler itself must never touch, and an embeddable
// runtime can't assume only one program instance is ever live.
package runtime

// Depth is a backtrack-manager depth counter (spec.md §5, §6.3).
type Depth int64

// Observer is anything whose state must roll back when the backtrack
// manager rewinds past the depth it was last modified at: logical
// variables, backtrackable lists, constraint stores, and history.
type Observer interface {
	Rewind(to Depth)
}

// BacktrackManager is the process-wide (per program instance) backtrack
// state named in spec.md §5: current depth, failure flag, and the list of
// registered observers. The compiler never touches it; only emitted code
// and the runtime pieces built on top of it do.
type BacktrackManager struct {
	depth     Depth
	failed    bool
	observers []Observer
}

// NewBacktrackManager returns a manager at depth 0, not failed.
func NewBacktrackManager() *BacktrackManager {
	return &BacktrackManager{}
}

// Depth returns the current backtrack depth.
func (m *BacktrackManager) Depth() Depth { return m.depth }

// IncDepth advances to a fresh depth, as when the engine opens a new choice
// point (a `;`-sequence alternative, spec.md §5).
func (m *BacktrackManager) IncDepth() Depth {
	m.depth++
	return m.depth
}

// Register adds o to the set of observers notified on BackTo. Every
// backtrackable structure calls this once, at construction.
func (m *BacktrackManager) Register(o Observer) {
	m.observers = append(m.observers, o)
}

// BackTo rewinds every registered observer to target and lowers the
// manager's own depth to match (spec.md §6.3: "rewinds all registered
// observers whose recorded depth exceeds the target, in unspecified order
// but atomically w.r.t. rule firing" — atomicity here means no observer's
// partial rewind is visible to emitted code before BackTo returns, which
// holds trivially in this single-threaded implementation).
func (m *BacktrackManager) BackTo(target Depth) {
	for _, o := range m.observers {
		o.Rewind(target)
	}
	m.depth = target
}

// Fail sets the process-wide failure flag (spec.md §6.3's `failure()`).
func (m *BacktrackManager) Fail() { m.failed = true }

// Failed reports the current failure flag.
func (m *BacktrackManager) Failed() bool { return m.failed }

// Reset clears the failure flag, used between alternatives of a
// `;`-sequence (spec.md §6.3's `reset()`).
func (m *BacktrackManager) Reset() { m.failed = false }
