package analysis

import "github.com/ATSOTECK/chrc/internal/model"

// NeverStored computes spec.md §4.1.3's never-stored flag for every
// declaration in p and writes it into ConstraintDecl.NeverStored. A
// constraint is never-stored iff every occurrence of it in any rule head is
// in that rule's delete-head, and none of those occurrences carries a
// `passive` pragma. A declaration with no head occurrences at all satisfies
// this vacuously (it is simply never the active constraint of any
// occurrence rule, so STORE_ACTIVE can never apply to it either).
func NeverStored(p *model.Program) {
	eligible := make([]bool, len(p.Decls))
	for i := range eligible {
		eligible[i] = true
	}
	for _, r := range p.Rules {
		for _, h := range r.KeepHead {
			eligible[h.Decl] = false
		}
		for _, h := range r.DeleteHead {
			if h.Pragmas.Has(model.PragmaPassive) {
				eligible[h.Decl] = false
			}
		}
	}
	for i, decl := range p.Decls {
		decl.NeverStored = eligible[i]
	}
}

// StoreActiveConstraint implements spec.md §4.1.4's late-storage analysis.
// The source lacks a precise liveness analysis over "every reachable exit
// path guarantees a later occurrence stores it"; per spec.md §9's open
// question, this is left as the documented conservative stub: a kept active
// constraint is always stored, whether or not the never_stored option is on
// (neverStoredOptionOn does not change the answer). For an occurrence whose
// active constraint is deleted (keepActive false) it returns false: that
// occurrence removes the active constraint instead (spec.md §4.4's "elif not
// keep_active: REMOVE_ACTIVE").
func StoreActiveConstraint(neverStoredOptionOn bool, keepActive bool) bool {
	if !keepActive {
		return false
	}
	return true
}
