package reorder

import "github.com/ATSOTECK/chrc/internal/model"

// IndexInference implements spec.md §4.3.4: for each partner, in matching
// order, compute L = the list of parameter positions whose argument is
// already bound at that point (literal, or a variable bound by the active
// constraint / earlier partners); if L is non-empty, look it up (or append
// it) on the partner's declaration and record the index number on the
// partner, else record -1. With enabled=false, every partner gets -1 and no
// index is ever appended (spec.md §8 "Index set monotonicity" then holds
// trivially).
func IndexInference(p *model.Program, o *model.OccRule, enabled bool) {
	bound := make(map[string]bool)
	for _, v := range varsOf(o.Active.Head) {
		bound[v] = true
	}

	for i := range o.Partners {
		partner := &o.Partners[i]
		if !enabled {
			partner.UseIndex = -1
		} else {
			L := boundPositions(partner.Head, bound)
			if len(L) == 0 {
				partner.UseIndex = -1
			} else {
				decl := p.Decl(partner.Head.Decl)
				partner.UseIndex = decl.AddIndex(model.Index{Positions: L})
			}
		}
		for _, v := range varsOf(partner.Head) {
			bound[v] = true
		}
	}
}

// boundPositions returns the parameter positions of h whose argument is a
// literal or a LogicalVar already present in bound.
func boundPositions(h model.HeadConstraint, bound map[string]bool) []int {
	var L []int
	for pos, a := range h.Args {
		switch e := a.(type) {
		case *model.Literal:
			L = append(L, pos)
		case *model.LogicalVar:
			if bound[e.Name] {
				L = append(L, pos)
			}
		}
	}
	return L
}
