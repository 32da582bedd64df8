// Package occ expands each CHR rule into one occurrence rule per head
// position (spec.md §4.2), the step spec.md §2 calls the "Occurrence-rule
// builder". It computes the active-constraint slot, the partner list in
// source order (reordering is a later, separate pass — internal/reorder),
// the initial greedy guard split, and the late-storage decision.
package occ

import (
	"github.com/ATSOTECK/chrc/internal/analysis"
	"github.com/ATSOTECK/chrc/internal/model"
)

// Counters tracks the running active_constraint_occurrence counter per
// constraint symbol across the whole program (spec.md §4.2(3)): "a running
// counter across the whole program, per constraint-symbol, in program-
// declaration/appearance order."
type Counters struct {
	next map[model.DeclID]int
}

func NewCounters() *Counters {
	return &Counters{next: make(map[model.DeclID]int)}
}

func (c *Counters) Next(decl model.DeclID) int {
	n := c.next[decl]
	c.next[decl] = n + 1
	return n
}

// Options controls which optional analyses influence expansion, mirroring
// the §6.2 CLI knobs that affect this stage.
type Options struct {
	NeverStoredEnabled bool
}

// DefaultOptions matches the CLI's documented defaults (every knob on).
func DefaultOptions() Options { return Options{NeverStoredEnabled: true} }

// Expand produces len(r.Heads()) occurrence rules for r (spec.md §4.2,
// tested by spec.md §8's "Confluence of occurrence expansion": "for a rule
// with n head constraints, exactly n occurrence rules are produced; their
// active-constraint positions are a permutation of 0...n-1").
func Expand(p *model.Program, r *model.Rule, counters *Counters, opts Options) []*model.OccRule {
	heads := r.Heads()
	keepCount := len(r.KeepHead)
	out := make([]*model.OccRule, 0, len(heads))

	for i, h := range heads {
		keepActive := i < keepCount
		active := model.PartnerRef{Keep: keepActive, UseIndex: -1, Head: h}

		partners := make([]model.PartnerRef, 0, len(heads)-1)
		for j, ph := range heads {
			if j == i {
				continue
			}
			partners = append(partners, model.PartnerRef{
				Keep:     j < keepCount,
				UseIndex: -1,
				Head:     ph,
			})
		}

		o := &model.OccRule{
			Rule:                       r.ID,
			Active:                     active,
			Partners:                   partners,
			GuardParts:                 initialGuardSplit(active, partners, r.Guard),
			ActiveConstraintOccurrence: counters.Next(h.Decl),
		}
		decl := p.Decl(h.Decl)
		o.StoreActive = keepActive && analysis.StoreActiveConstraint(opts.NeverStoredEnabled, keepActive) && !decl.NeverStored
		out = append(out, o)
	}
	return out
}

// ExpandProgram expands every rule in p, in source order, sharing one
// Counters instance across the whole program as spec.md §4.2(3) requires.
func ExpandProgram(p *model.Program, opts Options) map[model.RuleID][]*model.OccRule {
	counters := NewCounters()
	out := make(map[model.RuleID][]*model.OccRule, len(p.Rules))
	for _, r := range p.Rules {
		out[r.ID] = Expand(p, r, counters, opts)
	}
	return out
}

// boundBy reports whether every free variable of clause is in bound, the
// variables of the active constraint and of the partners placed so far (spec.md §4.2(4), §4.4.3,
// and the "variable-available-at relation" of §3.4).
func boundBy(clause model.Expr, bound map[string]bool) bool {
	for _, v := range model.FreeVars(clause) {
		if !bound[v] {
			return false
		}
	}
	return true
}

func varsOf(h model.HeadConstraint) []string {
	var out []string
	for _, a := range h.Args {
		out = append(out, model.FreeVars(a)...)
	}
	return out
}

// initialGuardSplit performs the greedy left-to-right partitioning of
// spec.md §4.2(4): part 0 holds clauses whose free variables are a subset
// of the active constraint's variables; part j>0 holds clauses newly
// resolvable after partner j-1 is bound.
func initialGuardSplit(active model.PartnerRef, partners []model.PartnerRef, guard []model.Expr) []model.GuardPart {
	parts := make([]model.GuardPart, len(partners)+1)
	for i := range parts {
		parts[i].PartnerIndex = i
	}

	bound := make(map[string]bool)
	for _, v := range varsOf(active.Head) {
		bound[v] = true
	}

	remaining := append([]model.Expr(nil), guard...)
	for partIdx := 0; partIdx <= len(partners); partIdx++ {
		if partIdx > 0 {
			for _, v := range varsOf(partners[partIdx-1].Head) {
				bound[v] = true
			}
		}
		var stillRemaining []model.Expr
		for _, clause := range remaining {
			if boundBy(clause, bound) {
				parts[partIdx].Clauses = append(parts[partIdx].Clauses, clause)
			} else {
				stillRemaining = append(stillRemaining, clause)
			}
		}
		remaining = stillRemaining
	}
	// Any clause whose variables are never fully bound (a malformed guard)
	// is conservatively placed in the last part so lowering still sees it;
	// semantic analysis (not this package) is responsible for rejecting
	// such guards outright.
	if len(remaining) > 0 {
		last := &parts[len(parts)-1]
		last.Clauses = append(last.Clauses, remaining...)
	}
	return parts
}
