package reorder

import "github.com/ATSOTECK/chrc/internal/model"

// clauseCategory ranks a guard clause for GuardReorder (spec.md §4.3.2):
// assignment clauses first, then cheap pure-host expressions (no function
// calls), then everything else.
func clauseCategory(e model.Expr) int {
	if isAssignment(e) {
		return 0
	}
	if isPureHost(e) {
		return 1
	}
	return 2
}

func isAssignment(e model.Expr) bool {
	// A "let v = expr" clause is represented at the body level as
	// *model.VarDecl, not as a model.Expr; within a guard (a []model.Expr)
	// the analogous shape is a bare unification-free assignment encoded as
	// a BinaryOp with Op "=". Guard clauses reaching this package are
	// always expressions, so that is the only assignment shape possible
	// here.
	b, ok := e.(*model.BinaryOp)
	return ok && b.Op == "="
}

func isPureHost(e model.Expr) bool {
	found := false
	var walk func(model.Expr)
	walk = func(e model.Expr) {
		if found || e == nil {
			return
		}
		switch n := e.(type) {
		case *model.HostCall:
			found = true
		case *model.ChrCall, *model.ChrCount:
			found = true
		case *model.UnaryOp:
			walk(n.Child)
		case *model.BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case *model.TernaryOp:
			walk(n.A)
			walk(n.B)
			walk(n.C)
		}
	}
	walk(e)
	return !found
}

func assignedVar(e model.Expr) (string, bool) {
	b, ok := e.(*model.BinaryOp)
	if !ok || b.Op != "=" {
		return "", false
	}
	if lv, ok := b.Left.(*model.LogicalVar); ok {
		return lv.Name, true
	}
	if hv, ok := b.Left.(*model.HostVar); ok {
		return hv.Name, true
	}
	return "", false
}

// GuardReorder reorders the clauses within each guard part of o: assignment
// clauses move to the front, then pure-host expressions, then the rest,
// preserving relative order within a category — except that an assignment
// clause is never moved past a clause that already uses the variable it
// assigns (spec.md §4.3.2's "Assignment clauses must precede any clause
// using the assigned variable" is an invariant to preserve, not a rule to
// apply eagerly, so it constrains which assignments are eligible to move
// forward at all).
func GuardReorder(o *model.OccRule) {
	for i := range o.GuardParts {
		o.GuardParts[i].Clauses = reorderClauses(o.GuardParts[i].Clauses)
	}
}

func reorderClauses(clauses []model.Expr) []model.Expr {
	n := len(clauses)
	if n < 2 {
		return clauses
	}
	out := make([]model.Expr, 0, n)
	used := make([]bool, n)

	// usesVar reports whether clause c (not yet placed) mentions name.
	usesVar := func(c model.Expr, name string) bool {
		for _, v := range model.FreeVars(c) {
			if v == name {
				return true
			}
		}
		return false
	}

	place := func(idx int) { out = append(out, clauses[idx]); used[idx] = true }

	for cat := 0; cat <= 2; cat++ {
		for i, c := range clauses {
			if used[i] || clauseCategory(c) != cat {
				continue
			}
			if cat == 0 {
				if name, ok := assignedVar(c); ok {
					blocked := false
					for j := 0; j < i; j++ {
						if !used[j] && usesVar(clauses[j], name) {
							blocked = true
							break
						}
					}
					if blocked {
						continue
					}
				}
			}
			place(i)
		}
	}
	for i := range clauses {
		if !used[i] {
			place(i)
		}
	}
	return out
}
