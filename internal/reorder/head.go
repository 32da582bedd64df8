// Package reorder implements the three cost-model-driven reorderings of
// spec.md §4.3 — head reorder, guard-part reorder, occurrence reorder — and
// the index-inference pass of §4.3.4. Each is a pure function over a
// *model.OccRule (or, for occurrence reorder, a slice of them), so that
// disabling all of them (spec.md §8 "Reorder stability") is simply "don't
// call these functions".
package reorder

import (
	"sort"

	"github.com/ATSOTECK/chrc/internal/model"
)

// StoreSizeHint supplies the "expected store size" tie-break of spec.md
// §4.3.1(b). Compile time has no runtime population counts, so absent a
// hint every declaration is treated as equally sized, which collapses
// criterion (b) to a no-op and leaves (a) then (c) to decide — a
// simplification of a cost model spec.md itself calls "simple".
type StoreSizeHint func(decl model.DeclID) int

// boundArgCount returns how many of h's arguments are literals or already
// bound (per the bound set built up left-to-right, spec.md §4.3.1(a)).
func boundArgCount(h model.HeadConstraint, bound map[string]bool) int {
	n := 0
	for _, a := range h.Args {
		switch e := a.(type) {
		case *model.Literal:
			n++
		case *model.LogicalVar:
			if bound[e.Name] {
				n++
			}
		default:
			// Host-bound expressions are always already available.
			n++
		}
	}
	return n
}

// HeadReorder reorders o.Partners to minimize expected matching cost
// (spec.md §4.3.1) and recomputes the guard split against the new order.
// The active constraint's position is conceptually fixed (it is not part of
// the Partners slice at all).
func HeadReorder(o *model.OccRule, guard []model.Expr, sizeHint StoreSizeHint) {
	bound := make(map[string]bool)
	for _, a := range o.Active.Head.Args {
		for _, v := range model.FreeVars(a) {
			bound[v] = true
		}
	}

	type scored struct {
		p        model.PartnerRef
		origIdx  int
		boundCnt int
		size     int
	}
	scoredPartners := make([]scored, len(o.Partners))
	for i, p := range o.Partners {
		sz := 0
		if sizeHint != nil {
			sz = sizeHint(p.Head.Decl)
		}
		scoredPartners[i] = scored{p: p, origIdx: i, boundCnt: boundArgCount(p.Head, bound), size: sz}
	}

	// Greedy: repeatedly pick, among not-yet-placed partners, the one
	// ranked best given variables bound so far (the active constraint plus
	// every partner already placed) — this is what makes the guard split
	// that follows sound (spec.md §3.4's guard-split-soundness invariant).
	placed := make([]model.PartnerRef, 0, len(scoredPartners))
	remaining := scoredPartners
	for len(remaining) > 0 {
		sort.SliceStable(remaining, func(i, j int) bool {
			a, b := remaining[i], remaining[j]
			a.boundCnt = boundArgCount(a.p.Head, bound)
			b.boundCnt = boundArgCount(b.p.Head, bound)
			if a.boundCnt != b.boundCnt {
				return a.boundCnt > b.boundCnt // (a) descending selectivity
			}
			if a.size != b.size {
				return a.size < b.size // (b) smaller expected store size first
			}
			return a.origIdx < b.origIdx // (c) original source order tie-break
		})
		best := remaining[0]
		placed = append(placed, best.p)
		for _, v := range varsOf(best.p.Head) {
			bound[v] = true
		}
		remaining = remaining[1:]
	}

	o.Partners = placed
	o.GuardParts = recomputeGuardSplit(o, guard)
}

func varsOf(h model.HeadConstraint) []string {
	var out []string
	for _, a := range h.Args {
		out = append(out, model.FreeVars(a)...)
	}
	return out
}

// recomputeGuardSplit re-derives guard parts so each clause sits at the
// earliest position where all its free variables are bound, matching
// internal/occ's initial greedy split but against the (possibly reordered)
// partner order.
func recomputeGuardSplit(o *model.OccRule, guard []model.Expr) []model.GuardPart {
	parts := make([]model.GuardPart, len(o.Partners)+1)
	for i := range parts {
		parts[i].PartnerIndex = i
	}
	bound := make(map[string]bool)
	for _, v := range varsOf(o.Active.Head) {
		bound[v] = true
	}
	remaining := append([]model.Expr(nil), guard...)
	for partIdx := 0; partIdx <= len(o.Partners); partIdx++ {
		if partIdx > 0 {
			for _, v := range varsOf(o.Partners[partIdx-1].Head) {
				bound[v] = true
			}
		}
		var stillRemaining []model.Expr
		for _, clause := range remaining {
			ok := true
			for _, v := range model.FreeVars(clause) {
				if !bound[v] {
					ok = false
					break
				}
			}
			if ok {
				parts[partIdx].Clauses = append(parts[partIdx].Clauses, clause)
			} else {
				stillRemaining = append(stillRemaining, clause)
			}
		}
		remaining = stillRemaining
	}
	if len(remaining) > 0 {
		parts[len(parts)-1].Clauses = append(parts[len(parts)-1].Clauses, remaining...)
	}
	return parts
}
