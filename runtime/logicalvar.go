package runtime

// varKind is a LogicalVar's current binding state (spec.md §6.3's unify
// contract distinguishes three: a genuinely free variable, one bound to a
// concrete ground value, and one bound to an opaque host-mutable cell
// whose identity — not its contents — is what unification compares).
type varKind int

const (
	kindUnbound varKind = iota
	kindGround
	kindMutable
)

type lvSnapshot struct {
	depth    Depth
	parent   *LogicalVar
	rank     int
	kind     varKind
	value    any
	watchers []int64
	wake     *WakeupQueue
}

// LogicalVar is a CHR logical variable: a union-find node with path
// compression on read and a per-mutation snapshot stack so BackTo can
// restore the pre-union structure (spec.md §5's "Union-find on logical
// variables uses path compression on read, with the old root recorded in a
// per-variable snapshot so that rewind restores the pre-union structure").
// Path compression itself is snapshotted too, for the same reason: a
// compressed link formed at depth d must not survive a rewind below d.
//
// watchers holds the cids registered via Watch on this variable's
// equivalence class; wake is where they go once the class becomes bound
// (spec.md §3.3, §5's reactivation protocol). Both live on the root only
// and migrate to whichever side wins a union, same as kind and value.
type LogicalVar struct {
	bt        *BacktrackManager
	id        int64
	parent    *LogicalVar
	rank      int
	kind      varKind
	value     any
	watchers  []int64
	wake      *WakeupQueue
	snapshots []lvSnapshot
}

// NewLogicalVar returns a fresh unbound variable registered with bt.
func NewLogicalVar(id int64, bt *BacktrackManager) *LogicalVar {
	v := &LogicalVar{bt: bt, id: id}
	v.parent = v
	bt.Register(v)
	return v
}

// ID returns the variable's identity, stable for its whole lifetime.
func (v *LogicalVar) ID() int64 { return v.id }

func (v *LogicalVar) snapshot() {
	v.snapshots = append(v.snapshots, lvSnapshot{
		depth: v.bt.Depth(), parent: v.parent, rank: v.rank, kind: v.kind, value: v.value,
		watchers: v.watchers, wake: v.wake,
	})
}

// find returns the representative of v's equivalence class, compressing
// the path from v to it.
func (v *LogicalVar) find() *LogicalVar {
	if v.parent == v {
		return v
	}
	root := v.parent.find()
	if root != v.parent {
		v.snapshot()
		v.parent = root
	}
	return root
}

// IsGround reports whether v's equivalence class is bound to a concrete
// value.
func (v *LogicalVar) IsGround() bool { return v.find().kind == kindGround }

// Value returns the bound ground value and true, or (nil, false) if v is
// not ground.
func (v *LogicalVar) Value() (any, bool) {
	r := v.find()
	if r.kind == kindGround {
		return r.value, true
	}
	return nil, false
}

// BindGround binds v's class directly to a ground value without going
// through Unify, used when the emitted code constructs a fresh variable
// already carrying a known value (e.g. a literal head argument).
func (v *LogicalVar) BindGround(value any) {
	r := v.find()
	r.snapshot()
	r.kind = kindGround
	r.value = value
	r.notify()
}

// BindMutable attaches v's class to an opaque host-mutable cell identified
// by addr (any comparable value uniquely identifying that cell).
func (v *LogicalVar) BindMutable(addr any) {
	r := v.find()
	r.snapshot()
	r.kind = kindMutable
	r.value = addr
	r.notify()
}

// Watch registers cid to be reactivated once v's equivalence class becomes
// bound (spec.md §5). Host lowering omits this call for a constraint
// declared with the no_reactivate pragma.
func (v *LogicalVar) Watch(wake *WakeupQueue, cid int64) {
	r := v.find()
	r.snapshot()
	r.watchers = append(r.watchers, cid)
	if r.wake == nil {
		r.wake = wake
	}
}

func (v *LogicalVar) notify() {
	if v.wake != nil {
		v.wake.Notify(v.watchers)
	}
}

// notifyEither delivers watchers through whichever of the two merging roots
// already carries a wake queue — a variable can accumulate a wake queue from
// either side of a prior union, so by the time union runs either root may be
// the one holding it.
func notifyEither(a, b *LogicalVar, watchers []int64) {
	if a.wake != nil {
		a.wake.Notify(watchers)
	} else if b.wake != nil {
		b.wake.Notify(watchers)
	}
}

func (v *LogicalVar) union(other *LogicalVar) {
	a, b := v, other
	if a.rank < b.rank {
		a, b = b, a
	}
	b.snapshot()
	b.parent = a
	if a.rank == b.rank {
		a.snapshot()
		a.rank++
	}

	// Unify only calls union when at least one side is kindUnbound, so at
	// most one of a/b is already bound here. The bound side's kind/value
	// must survive onto whichever node ends up as root (spec.md §6.3's
	// "(unground, *) succeeds and unions equivalence classes" — the
	// resulting class must behave as bound), and whichever side's watchers
	// are only now learning the class is bound must be notified: the
	// already-bound side's watchers were already notified at its own
	// BindGround/BindMutable call, but the side that just became bound via
	// this union was not.
	switch {
	case b.kind != kindUnbound && a.kind == kindUnbound:
		a.snapshot()
		a.kind, a.value = b.kind, b.value
		if len(a.watchers) > 0 {
			notifyEither(a, b, a.watchers)
		}
	case a.kind != kindUnbound && b.kind == kindUnbound:
		if len(b.watchers) > 0 {
			notifyEither(a, b, b.watchers)
		}
	}

	if len(b.watchers) > 0 {
		a.snapshot()
		a.watchers = append(a.watchers, b.watchers...)
	}
	if a.wake == nil {
		a.wake = b.wake
	}
}

// Unify implements the `%=` contract of spec.md §6.3: (ground, ground)
// succeeds iff the values compare equal; (ground, mutable) and (mutable,
// mutable) with distinct roots fail; an unbound side on either end always
// succeeds and unions the classes; two mutable variables already in the
// same class succeed trivially.
func (v *LogicalVar) Unify(other *LogicalVar, equal func(a, b any) bool) bool {
	ra, rb := v.find(), other.find()
	if ra == rb {
		return true
	}
	switch {
	case ra.kind == kindUnbound:
		ra.union(rb)
		return true
	case rb.kind == kindUnbound:
		rb.union(ra)
		return true
	case ra.kind == kindGround && rb.kind == kindGround:
		return equal(ra.value, rb.value)
	default:
		return false
	}
}

// Rewind restores v's union-find fields to their state as of depth to,
// undoing every snapshot taken at a greater depth.
func (v *LogicalVar) Rewind(to Depth) {
	for len(v.snapshots) > 0 && v.snapshots[len(v.snapshots)-1].depth > to {
		s := v.snapshots[len(v.snapshots)-1]
		v.snapshots = v.snapshots[:len(v.snapshots)-1]
		v.parent = s.parent
		v.rank = s.rank
		v.kind = s.kind
		v.value = s.value
		v.watchers = s.watchers
		v.wake = s.wake
	}
}
