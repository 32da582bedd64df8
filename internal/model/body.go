package model

// Pragma is a compile-time annotation on a head constraint, a body call, or
// a constraint declaration (spec.md §3.2). Legal locations are enumerated
// per node kind in §6.1; callers construct a PragmaSet with NewPragmaSet and
// query it with Has.
type Pragma int

const (
	PragmaCatchFailure Pragma = iota
	PragmaPassive
	PragmaBang
	PragmaNoHistory
	PragmaPersistent
	PragmaNoReactivate
)

func (p Pragma) String() string {
	switch p {
	case PragmaCatchFailure:
		return "catch_failure"
	case PragmaPassive:
		return "passive"
	case PragmaBang:
		return "bang"
	case PragmaNoHistory:
		return "no_history"
	case PragmaPersistent:
		return "persistent"
	case PragmaNoReactivate:
		return "no_reactivate"
	default:
		return "pragma?"
	}
}

// PragmaSet is a small set over the six pragma kinds; zero value is empty.
type PragmaSet uint8

func NewPragmaSet(ps ...Pragma) PragmaSet {
	var s PragmaSet
	for _, p := range ps {
		s |= 1 << uint(p)
	}
	return s
}

func (s PragmaSet) Has(p Pragma) bool { return s&(1<<uint(p)) != 0 }
func (s PragmaSet) With(p Pragma) PragmaSet { return s | (1 << uint(p)) }

// Separator distinguishes the two Sequence flavors (spec.md §3.2).
type Separator int

const (
	SeqConjunctive Separator = iota // ","
	SeqDisjunctive                  // ";"
)

// Body is the sum type over rule-body statements (spec.md §3.2): empty,
// keyword (success/failure/stop), host expression, host var decl, CHR
// unification, CHR constraint call, sequence, behavior, try.
type Body interface {
	Node
	bodyNode()
}

// Empty is the body that does nothing.
type Empty struct {
	StartPos Position
}

func (e *Empty) Pos() Position { return e.StartPos }
func (e *Empty) End() Position { return e.StartPos }
func (e *Empty) bodyNode()     {}

// Keyword is one of the reserved zero-argument body tokens.
type KeywordKind int

const (
	KwSuccess KeywordKind = iota
	KwFailure
	KwStop
)

type Keyword struct {
	Kind     KeywordKind
	StartPos Position
	EndPos   Position
}

func (k *Keyword) Pos() Position { return k.StartPos }
func (k *Keyword) End() Position { return k.EndPos }
func (k *Keyword) bodyNode()     {}

// HostExpr wraps a host-language expression evaluated for effect, carrying
// the pragma set legal on an expression statement ({catch_failure}).
type HostExpr struct {
	Expr     Expr
	Pragmas  PragmaSet
	StartPos Position
	EndPos   Position
}

func (h *HostExpr) Pos() Position { return h.StartPos }
func (h *HostExpr) End() Position { return h.EndPos }
func (h *HostExpr) bodyNode()     {}

// VarDecl declares and initializes a host variable: "let v = expr" in
// source terms (spec.md §4.3.2 calls this shape an "assignment clause").
type VarDecl struct {
	Name     string
	Init     Expr
	StartPos Position
	EndPos   Position
}

func (v *VarDecl) Pos() Position { return v.StartPos }
func (v *VarDecl) End() Position { return v.EndPos }
func (v *VarDecl) bodyNode()     {}

// Unify is a unification statement: "a %= b" (spec.md §3.2, §6.3).
type Unify struct {
	Left, Right Expr
	StartPos    Position
	EndPos      Position
}

func (u *Unify) Pos() Position { return u.StartPos }
func (u *Unify) End() Position { return u.EndPos }
func (u *Unify) bodyNode()     {}

// ChrCallStmt is a CHR-constraint call used as a body statement (the usual
// place one appears), carrying its own pragma set.
type ChrCallStmt struct {
	Decl     DeclID
	Name     string
	Args     []Expr
	Pragmas  PragmaSet
	StartPos Position
	EndPos   Position
}

func (c *ChrCallStmt) Pos() Position { return c.StartPos }
func (c *ChrCallStmt) End() Position { return c.EndPos }
func (c *ChrCallStmt) bodyNode()     {}

// Sequence chains children with a uniform separator (spec.md §3.2, §4.4.5).
// A conjunctive sequence evaluates left to right, the first failure aborts
// it; a disjunctive sequence is a choice point (backtrack-managed).
type Sequence struct {
	Sep      Separator
	Children []Body
	StartPos Position
	EndPos   Position
}

func (s *Sequence) Pos() Position { return s.StartPos }
func (s *Sequence) End() Position { return s.EndPos }
func (s *Sequence) bodyNode()     {}

// Behavior is the bounded-search-loop node (spec.md §3.2). exists/forall/
// exists_it/forall_it are sugar the body builder expands into one of these
// plus a prefix Sequence of initializers; no separate node kind survives
// parsing for them (spec.md §3.2).
type Behavior struct {
	StopCondition     Expr
	OnSucceededAlt     Body
	OnFailedAlt        Body
	FinalStatus        Expr
	OnSucceededStatus  Body
	OnFailedStatus     Body
	BehaviorBody       Body
	StartPos           Position
	EndPos             Position
}

func (b *Behavior) Pos() Position { return b.StartPos }
func (b *Behavior) End() Position { return b.EndPos }
func (b *Behavior) bodyNode()     {}

// Try is the try/try_bt node (spec.md §3.2).
type Try struct {
	AlwaysBacktrack bool
	OutcomeVar      string
	TryBody         Body
	StartPos        Position
	EndPos          Position
}

func (t *Try) Pos() Position { return t.StartPos }
func (t *Try) End() Position { return t.EndPos }
func (t *Try) bodyNode()     {}
