package model

// DeclID indexes into Program.Decls — constraint declarations are shared
// (rule heads and occurrence rules reference the same declaration to read
// parameter modes and indexes), so per spec.md §9 "Owned vs. shared AST
// subtrees" they live in an arena addressed by a stable index rather than
// behind a pointer, grounded on the host compiler's SymbolTable pattern of
// indexing into a flat symbols slice (internal/compiler/compiler.go).
type DeclID int

// RuleID indexes into Program.Rules, for the same reason.
type RuleID int

// Mode is a CHR constraint-declaration parameter mode (spec.md §3.3, §6.1).
type Mode int

const (
	ModeGround  Mode = iota // "+"
	ModeAny                 // "?"
	ModeMutable             // "-"
)

func (m Mode) String() string {
	switch m {
	case ModeGround:
		return "+"
	case ModeAny:
		return "?"
	case ModeMutable:
		return "-"
	default:
		return "?"
	}
}

// Param is one (mode, type-text) formal of a constraint declaration.
type Param struct {
	Mode Mode
	Type string
}

// Index is a required lookup index on a constraint store: an ordered
// sequence of parameter positions (spec.md §3.3, §4.3.4).
type Index struct {
	Positions []int
}

// Equal reports whether two indexes name the same ordered position set.
func (ix Index) Equal(other Index) bool {
	if len(ix.Positions) != len(other.Positions) {
		return false
	}
	for i := range ix.Positions {
		if ix.Positions[i] != other.Positions[i] {
			return false
		}
	}
	return true
}

// ConstraintDecl is a CHR constraint declaration (spec.md §3.3). Its Indexes
// list may be mutated during analysis (new indexes appended, never
// removed, spec.md §3.4 "Index set monotonicity"); NeverStored is computed
// by analysis (spec.md §4.1.3). A declaration is "frozen" once lowering
// begins — no index may be appended after that point (AddIndex panics if
// one would be; see internal/reorder.IndexInference).
type ConstraintDecl struct {
	Name        string
	Params      []Param
	Pragmas     PragmaSet
	Indexes     []Index
	NeverStored bool
	Frozen      bool
	StartPos    Position
	EndPos      Position
}

func (d *ConstraintDecl) Pos() Position { return d.StartPos }
func (d *ConstraintDecl) End() Position { return d.EndPos }

// Arity returns the declared parameter count.
func (d *ConstraintDecl) Arity() int { return len(d.Params) }

// AddIndex appends ix if no equal index already exists, returning its index
// number either way (spec.md §4.3.4, §8 "Index set monotonicity"). Once
// Frozen is set, an equal existing index is still returned, but appending a
// new one panics, as a compiler-bug guard.
func (d *ConstraintDecl) AddIndex(ix Index) int {
	for i, existing := range d.Indexes {
		if existing.Equal(ix) {
			return i
		}
	}
	if d.Frozen {
		panic("chrc: attempted to add an index to a frozen constraint declaration: " + d.Name)
	}
	d.Indexes = append(d.Indexes, ix)
	return len(d.Indexes) - 1
}

// HeadConstraint is one occurrence of a CHR constraint in a rule's head:
// a reference to its declaration plus the argument pattern and pragmas
// attached at this head position.
type HeadConstraint struct {
	Decl     DeclID
	Name     string
	Args     []Expr
	Pragmas  PragmaSet
	StartPos Position
	EndPos   Position
}

func (h *HeadConstraint) Pos() Position { return h.StartPos }
func (h *HeadConstraint) End() Position { return h.EndPos }

// RuleOp is the rule operator token (spec.md §6.1): "==>", "=>>", "<=>".
type RuleOp int

const (
	OpPropagation RuleOp = iota // ==>
	OpPropagationNoHistory
	OpSimpagation // <=> (covers simagation, simplification as special cases)
)

// Rule is a parsed CHR rule (spec.md §3.3): a fresh id, optional name, a
// keep-head and delete-head list of head constraints, a guard (conjunction
// of expressions), and a body.
type Rule struct {
	ID         RuleID
	Name       string
	KeepHead   []HeadConstraint
	DeleteHead []HeadConstraint
	Op         RuleOp
	Guard      []Expr
	Body       Body
	StartPos   Position
	EndPos     Position
}

func (r *Rule) Pos() Position { return r.StartPos }
func (r *Rule) End() Position { return r.EndPos }

// RuleKind classifies a rule by head shape (spec.md §3.3 "Rule kinds").
type RuleKind int

const (
	KindSimpagation RuleKind = iota
	KindPropagation
	KindPropagationNoHistory
	KindSimplification
)

// Kind derives the rule's kind from its head shape and pragmas.
func (r *Rule) Kind() RuleKind {
	switch {
	case len(r.DeleteHead) == 0 && len(r.KeepHead) == 0:
		return KindSimplification
	case len(r.DeleteHead) == 0:
		for _, h := range r.KeepHead {
			if h.Pragmas.Has(PragmaNoHistory) {
				return KindPropagationNoHistory
			}
		}
		if r.Op == OpPropagationNoHistory {
			return KindPropagationNoHistory
		}
		return KindPropagation
	case len(r.KeepHead) == 0:
		return KindSimplification
	default:
		return KindSimpagation
	}
}

// HasHistory reports whether firings of this rule must be recorded in a
// propagation history (spec.md §4.4.4): true for propagation rules that are
// not flagged propagation-no-history.
func (r *Rule) HasHistory() bool {
	return r.Kind() == KindPropagation
}

// Heads returns keep-head then delete-head, the canonical head order used
// throughout occurrence-rule expansion (spec.md §4.2): "h0 ... hn-1 (keep
// first, then delete, preserving source order)".
func (r *Rule) Heads() []HeadConstraint {
	out := make([]HeadConstraint, 0, len(r.KeepHead)+len(r.DeleteHead))
	out = append(out, r.KeepHead...)
	out = append(out, r.DeleteHead...)
	return out
}

// Program is a complete CHR program extracted from one <chr> block (spec.md
// §3.3, §6.1).
type Program struct {
	Name                string
	Params              []Param
	TemplateParams      []Param
	AutoPersistent      bool
	AutoCatchFailure    bool
	Decls               []*ConstraintDecl
	Rules               []*Rule
	StartPos            Position
	EndPos              Position
}

func (p *Program) Pos() Position { return p.StartPos }
func (p *Program) End() Position { return p.EndPos }

// Decl looks up a declaration by id.
func (p *Program) Decl(id DeclID) *ConstraintDecl { return p.Decls[id] }

// DeclByName finds a declaration by its constraint name, or nil.
func (p *Program) DeclByName(name string) *ConstraintDecl {
	for _, d := range p.Decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// AddDecl appends a new declaration to the arena and returns its id.
func (p *Program) AddDecl(d *ConstraintDecl) DeclID {
	p.Decls = append(p.Decls, d)
	return DeclID(len(p.Decls) - 1)
}

// AddRule appends a new rule to the arena, assigning it a fresh RuleID, and
// returns the id.
func (p *Program) AddRule(r *Rule) RuleID {
	r.ID = RuleID(len(p.Rules))
	p.Rules = append(p.Rules, r)
	return r.ID
}
