// Package visit is the traversal protocol for expression/body/rule/program
// trees (spec.md §2 "Visitor kernel", §9 "Visitor polymorphism"). The
// source this spec was distilled from uses deep virtual-dispatch visitor
// hierarchies; here that becomes a tagged-sum-type walk by exhaustive type
// switch, with WalkExpr/WalkBody as the two traversal primitives and
// everything else (print visitor, lambda-apply visitor, free-variable
// collection) built as ordinary functions over them — "add an operation
// without touching node classes" is preserved because operations are free
// functions, not methods the node types must grow.
package visit

import "github.com/ATSOTECK/chrc/internal/model"

// ExprFunc is called once per expression node during WalkExpr, pre-order.
// Returning false stops descent into this node's children (but siblings of
// an ancestor are unaffected).
type ExprFunc func(model.Expr) bool

// WalkExpr visits e and all its descendants pre-order.
func WalkExpr(e model.Expr, fn ExprFunc) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *model.UnaryOp:
		WalkExpr(n.Child, fn)
	case *model.BinaryOp:
		WalkExpr(n.Left, fn)
		WalkExpr(n.Right, fn)
	case *model.TernaryOp:
		WalkExpr(n.A, fn)
		WalkExpr(n.B, fn)
		WalkExpr(n.C, fn)
	case *model.HostCall:
		for _, a := range n.Args {
			WalkExpr(a, fn)
		}
	case *model.ChrCall:
		for _, a := range n.Args {
			WalkExpr(a, fn)
		}
	case *model.ChrCount:
		WalkExpr(n.Constraint, fn)
	}
}

// BodyFunc is called once per body node during WalkBody, pre-order. It also
// receives every expression reachable from that node's own fields (not its
// body children) via exprFn, if non-nil.
type BodyFunc func(model.Body) bool

// WalkBody visits b and all its descendant body nodes pre-order. exprFn, if
// non-nil, is invoked (via WalkExpr) on every expression directly owned by
// each body node encountered.
func WalkBody(b model.Body, bodyFn BodyFunc, exprFn ExprFunc) {
	if b == nil || !bodyFn(b) {
		return
	}
	visitExprs := func(exprs ...model.Expr) {
		if exprFn == nil {
			return
		}
		for _, e := range exprs {
			WalkExpr(e, exprFn)
		}
	}
	switch n := b.(type) {
	case *model.HostExpr:
		visitExprs(n.Expr)
	case *model.VarDecl:
		visitExprs(n.Init)
	case *model.Unify:
		visitExprs(n.Left, n.Right)
	case *model.ChrCallStmt:
		visitExprs(n.Args...)
	case *model.Sequence:
		for _, c := range n.Children {
			WalkBody(c, bodyFn, exprFn)
		}
	case *model.Behavior:
		visitExprs(n.StopCondition, n.FinalStatus)
		WalkBody(n.OnSucceededAlt, bodyFn, exprFn)
		WalkBody(n.OnFailedAlt, bodyFn, exprFn)
		WalkBody(n.OnSucceededStatus, bodyFn, exprFn)
		WalkBody(n.OnFailedStatus, bodyFn, exprFn)
		WalkBody(n.BehaviorBody, bodyFn, exprFn)
	case *model.Try:
		WalkBody(n.TryBody, bodyFn, exprFn)
	}
}

// ChrCalls collects every CHR constraint call statement reachable from b,
// used by dependency-graph construction (spec.md §4.1.1).
func ChrCalls(b model.Body) []*model.ChrCallStmt {
	var out []*model.ChrCallStmt
	WalkBody(b, func(n model.Body) bool {
		if c, ok := n.(*model.ChrCallStmt); ok {
			out = append(out, c)
		}
		return true
	}, nil)
	return out
}

// LogicalVars collects the name of every LogicalVar expression reachable
// from b (spec.md §3.4's body-variable invariant).
func LogicalVars(b model.Body) []string {
	var out []string
	WalkBody(b, func(model.Body) bool { return true }, func(e model.Expr) bool {
		if lv, ok := e.(*model.LogicalVar); ok {
			out = append(out, lv.Name)
		}
		return true
	})
	return out
}
