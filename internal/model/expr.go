package model

// Node is the base interface for all AST nodes, following the same
// Pos()/End() contract the host compiler's AST uses.
type Node interface {
	Pos() Position
	End() Position
}

// Expr is the interface for all expression nodes (spec.md §3.1): a sum type
// over literal, identifier, logical/host variable, unary/binary/ternary
// operators, host-function calls, CHR-constraint calls, and chr_count.
type Expr interface {
	Node
	exprNode()
}

// Ident is a plain host-bound identifier.
type Ident struct {
	Name     string
	StartPos Position
	EndPos   Position
}

func (i *Ident) Pos() Position { return i.StartPos }
func (i *Ident) End() Position { return i.EndPos }
func (i *Ident) exprNode()     {}

// Literal is an opaque textual constant (number, string, char, ...); the
// core never interprets its value, only compares/emits it verbatim.
type Literal struct {
	Text     string
	StartPos Position
	EndPos   Position
}

func (l *Literal) Pos() Position { return l.StartPos }
func (l *Literal) End() Position { return l.EndPos }
func (l *Literal) exprNode()     {}

// LogicalVar is an identifier that denotes a CHR unification variable
// (textual convention: begins with an uppercase letter, spec.md §3.1).
type LogicalVar struct {
	Name     string
	StartPos Position
	EndPos   Position
}

func (v *LogicalVar) Pos() Position { return v.StartPos }
func (v *LogicalVar) End() Position { return v.EndPos }
func (v *LogicalVar) exprNode()     {}

// HostVar is an identifier bound by host code (a parameter, a `let`
// binding, a loop index introduced by behavior desugaring), distinct from
// a LogicalVar: it never participates in unification.
type HostVar struct {
	Name     string
	StartPos Position
	EndPos   Position
}

func (v *HostVar) Pos() Position { return v.StartPos }
func (v *HostVar) End() Position { return v.EndPos }
func (v *HostVar) exprNode()     {}

// UnaryOp is a prefix or postfix unary expression: (op, child).
type UnaryOp struct {
	Op       string
	Postfix  bool
	Child    Expr
	StartPos Position
	EndPos   Position
}

func (u *UnaryOp) Pos() Position { return u.StartPos }
func (u *UnaryOp) End() Position { return u.EndPos }
func (u *UnaryOp) exprNode()     {}

// BinaryOp is a binary infix expression: (op, l, r). The reserved operator
// sentinel "%=" denotes unification, never host assignment (spec.md §3.1);
// unification appears only as a Body node (see body.go Unify), never nested
// here — a parser that encounters "%=" inside an expression context raises
// a semantic error (spec.md §7.2).
type BinaryOp struct {
	Op       string
	Left     Expr
	Right    Expr
	StartPos Position
	EndPos   Position
}

func (b *BinaryOp) Pos() Position { return b.StartPos }
func (b *BinaryOp) End() Position { return b.EndPos }
func (b *BinaryOp) exprNode()     {}

// TernaryOp is a ternary expression: (op1, op2, a, b, c) — e.g. a host
// conditional-expression shape "a op1 b op2 c".
type TernaryOp struct {
	Op1, Op2 string
	A, B, C  Expr
	StartPos Position
	EndPos   Position
}

func (t *TernaryOp) Pos() Position { return t.StartPos }
func (t *TernaryOp) End() Position { return t.EndPos }
func (t *TernaryOp) exprNode()     {}

// HostCall is a host-function call: (name, delimiters, args). LDelim/RDelim
// let the host-code lowering reproduce whatever bracketing the host
// language's call syntax used (e.g. "(" ")" or "[" "]").
type HostCall struct {
	Name     string
	LDelim   string
	RDelim   string
	Args     []Expr
	StartPos Position
	EndPos   Position
}

func (c *HostCall) Pos() Position { return c.StartPos }
func (c *HostCall) End() Position { return c.EndPos }
func (c *HostCall) exprNode()     {}

// ChrCall is a CHR-constraint call used as an expression leaf. This shape is
// only legal where spec.md §7.2 allows it; most CHR calls live in Body (see
// body.go ChrCallStmt) — this variant exists for the rare expression
// contexts the surface grammar admits (e.g. as an argument to chr_count).
type ChrCall struct {
	Decl     DeclID
	Name     string
	Args     []Expr
	StartPos Position
	EndPos   Position
}

func (c *ChrCall) Pos() Position { return c.StartPos }
func (c *ChrCall) End() Position { return c.EndPos }
func (c *ChrCall) exprNode()     {}

// ChrCount is the chr_count(+constraint) builtin: (use_index, constraint).
// The parser sets UseIndex to -1, and no pass (index inference included)
// assigns it an index, so a count is never served from an index.
type ChrCount struct {
	UseIndex    int
	Constraint  *ChrCall
	StartPos    Position
	EndPos      Position
}

func (c *ChrCount) Pos() Position { return c.StartPos }
func (c *ChrCount) End() Position { return c.EndPos }
func (c *ChrCount) exprNode()     {}

// FreeVars returns every LogicalVar referenced anywhere in e, used by
// guard-split (spec.md §4.2(4), §4.4.3) and by the body-variable invariant
// check (spec.md §3.4).
func FreeVars(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *LogicalVar:
			out = append(out, n.Name)
		case *UnaryOp:
			walk(n.Child)
		case *BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case *TernaryOp:
			walk(n.A)
			walk(n.B)
			walk(n.C)
		case *HostCall:
			for _, a := range n.Args {
				walk(a)
			}
		case *ChrCall:
			for _, a := range n.Args {
				walk(a)
			}
		case *ChrCount:
			walk(n.Constraint)
		}
	}
	walk(e)
	return out
}
