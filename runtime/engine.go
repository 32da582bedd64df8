package runtime

import "github.com/ATSOTECK/chrc/runtime/support"

// Engine is one CHR program instance's runtime state: its backtrack
// manager, fresh-cid counter, statistics, and trace sink. Constraint
// stores, histories, and logical variables are *not* shared across program
// instances (spec.md §5's "Shared-resource policy") — each Engine owns its
// own, created through the constructors below, never reached through a
// package-level global.
type Engine struct {
	BT     *BacktrackManager
	Stats  *support.Stats
	Trace  *support.Tracer
	nextID int64
}

// NewEngine returns a fresh engine with its own backtrack manager and
// statistics, tracing disabled unless a Tracer is supplied via WithTrace.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		BT:    NewBacktrackManager(),
		Stats: support.NewStats(),
		Trace: support.NewTracer(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithTrace attaches t as the engine's trace sink (the compiler's `trace`
// knob, spec.md §6.2).
func WithTrace(t *support.Tracer) EngineOption {
	return func(e *Engine) { e.Trace = t }
}

// FreshCID allocates the next constraint id: unique within this instance
// and monotonically increasing (spec.md §3.4).
func (e *Engine) FreshCID() int64 {
	e.nextID++
	return e.nextID
}

// NewLogicalVar returns a fresh unbound variable owned by this engine.
func (e *Engine) NewLogicalVar() *LogicalVar {
	return NewLogicalVar(e.FreshCID(), e.BT)
}

// NewStore returns a fresh, unindexed constraint store.
func (e *Engine) NewStore() *Store { return NewStore(e.BT) }

// NewIndexedStore returns a fresh constraint store with index support.
func (e *Engine) NewIndexedStore() *IndexedStore { return NewIndexedStore(e.BT) }

// NewHistory returns a fresh propagation history for one rule id.
func (e *Engine) NewHistory() *History { return NewHistory(e.BT) }

// NewWakeupQueue returns a fresh reactivation queue (spec.md §3.3, §5).
func (e *Engine) NewWakeupQueue() *WakeupQueue { return NewWakeupQueue(e.BT) }

// Fail sets the engine's failure flag (spec.md §6.3's `failure()`).
func (e *Engine) Fail() { e.BT.Fail() }

// Failed reports the engine's current failure flag.
func (e *Engine) Failed() bool { return e.BT.Failed() }

// Reset clears the failure flag between `;`-sequence alternatives.
func (e *Engine) Reset() { e.BT.Reset() }

// OpenChoicePoint advances the backtrack depth and returns it, marking the
// start of a new alternative an emitted `;`-sequence or `try` node may need
// to unwind past.
func (e *Engine) OpenChoicePoint() Depth {
	return e.BT.IncDepth()
}

// BackTo rewinds every owned backtrackable structure to depth and traces
// the rewind if tracing is enabled.
func (e *Engine) BackTo(depth Depth) {
	e.BT.BackTo(depth)
	e.Trace.Backtrack(int64(depth))
}
