package abstract

import (
	"fmt"

	"github.com/ATSOTECK/chrc/internal/model"
)

// CheckLockDiscipline verifies spec.md §8's "Lock discipline" property on a
// single Block: every partner loop opened by StepOpenPartnerLoop is closed
// by exactly one StepCloseLoop for the same partner, and closes occur in
// LIFO order relative to opens (spec.md §4.4.2, §5's "strictly lexical"
// locking discipline).
func CheckLockDiscipline(b *Block) error {
	var openStack []int
	closed := make(map[int]int)
	for _, s := range b.Steps {
		switch s.Kind {
		case StepOpenPartnerLoop:
			openStack = append(openStack, s.PartnerIndex)
		case StepCloseLoop:
			if len(openStack) == 0 {
				return fmt.Errorf("%s: close of partner %d with no matching open", b.Label, s.PartnerIndex)
			}
			top := openStack[len(openStack)-1]
			if top != s.PartnerIndex {
				return fmt.Errorf("%s: close of partner %d while partner %d is still open (LIFO violation)", b.Label, s.PartnerIndex, top)
			}
			openStack = openStack[:len(openStack)-1]
			closed[s.PartnerIndex]++
		}
	}
	if len(openStack) != 0 {
		return fmt.Errorf("%s: %d partner loop(s) never closed", b.Label, len(openStack))
	}
	for idx, count := range closed {
		if count != 1 {
			return fmt.Errorf("%s: partner %d closed %d times, want 1", b.Label, idx, count)
		}
	}
	return nil
}

// CheckNeverStoredClosure verifies spec.md §8's "Never-stored closure"
// property: if decl.NeverStored, no step in b calls STORE_ACTIVE for the
// active constraint.
func CheckNeverStoredClosure(decl *model.ConstraintDecl, b *Block) error {
	if !decl.NeverStored {
		return nil
	}
	for _, s := range b.Steps {
		if s.Kind == StepStoreActive && s.PartnerIndex == -1 {
			return fmt.Errorf("%s: STORE_ACTIVE emitted for never-stored constraint %q", b.Label, decl.Name)
		}
	}
	return nil
}

// CheckGuardSplitSoundness verifies spec.md §8's "Guard-split soundness"
// property directly against an occurrence rule's GuardParts: every clause
// placed in part i has every free variable bound by the active constraint
// or partners 0..i-1.
func CheckGuardSplitSoundness(o *model.OccRule) error {
	bound := make(map[string]bool)
	addVars := func(h model.HeadConstraint) {
		for _, a := range h.Args {
			for _, v := range model.FreeVars(a) {
				bound[v] = true
			}
		}
	}
	addVars(o.Active.Head)
	for i, part := range o.GuardParts {
		if i > 0 {
			addVars(o.Partners[i-1].Head)
		}
		for _, clause := range part.Clauses {
			for _, v := range model.FreeVars(clause) {
				if !bound[v] {
					return fmt.Errorf("guard part %d references unbound variable %q", i, v)
				}
			}
		}
	}
	return nil
}
