package reorder

import (
	"sort"

	"github.com/ATSOTECK/chrc/internal/model"
)

// OccurrenceReorderOptions mirrors the §6.2 "keep-before-delete-preference"
// knob referenced by spec.md §4.3.3.
type OccurrenceReorderOptions struct {
	PreferKeepBeforeDelete bool
}

// OccurrenceReorder orders occs (all occurrences of one constraint symbol,
// gathered across the whole program) by: passive occurrences last; among
// the rest, by keep-before-delete preference if enabled, else original
// order (spec.md §4.3.3). It then renumbers ActiveConstraintOccurrence in
// the new order, since "the occurrence number assigned in §4.2(3) is the
// post-reorder number (stable within the compilation unit)".
func OccurrenceReorder(occs []*model.OccRule, opts OccurrenceReorderOptions) []*model.OccRule {
	type indexed struct {
		o       *model.OccRule
		origIdx int
	}
	items := make([]indexed, len(occs))
	for i, o := range occs {
		items[i] = indexed{o: o, origIdx: i}
	}

	passive := func(o *model.OccRule) bool { return o.Active.Head.Pragmas.Has(model.PragmaPassive) }

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		pa, pb := passive(a.o), passive(b.o)
		if pa != pb {
			return !pa // non-passive first, passive last
		}
		if opts.PreferKeepBeforeDelete {
			ka, kb := a.o.Active.Keep, b.o.Active.Keep
			if ka != kb {
				return ka // keep-active occurrences before delete-active ones
			}
		}
		return a.origIdx < b.origIdx
	})

	out := make([]*model.OccRule, len(items))
	for i, it := range items {
		it.o.ActiveConstraintOccurrence = i
		out[i] = it.o
	}
	return out
}
