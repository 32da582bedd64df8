package abstract

import (
	"strconv"

	"github.com/ATSOTECK/chrc/internal/model"
)

// Lower runs spec.md §4.4's central algorithm for one occurrence rule o of
// rule r in program p, producing its Block. The step order below follows
// the pseudocode in §4.4 line for line; sub-protocols 4.4.1-4.4.6 are each
// implemented by one helper below.
func Lower(p *model.Program, r *model.Rule, o *model.OccRule) *Block {
	b := &Block{
		Occ:     o,
		OccName: o.Active.Head.Name,
		Label:   label(o.Active.Head.Name, o.ActiveConstraintOccurrence),
	}
	emit := func(s Step) { b.Steps = append(b.Steps, s) }
	inapplicable := b.Label + "_inapplicable"

	if o.Active.Head.Pragmas.Has(model.PragmaBang) {
		emit(Step{Kind: StepStoreActive, PartnerIndex: -1})
	}

	for i := range o.Partners {
		emit(Step{Kind: StepTestPartnerEmpty, PartnerIndex: i, Label: inapplicable})
	}

	seenVars := map[string]argOccurrence{}
	lowerActiveMatch(p, o, seenVars, emit, inapplicable)
	lowerGuardPart(o.GuardParts[0], emit, inapplicable)

	seenSymbols := map[string]bool{o.Active.Head.Name: true}
	for k, partner := range o.Partners {
		emit(Step{Kind: StepOpenPartnerLoop, PartnerIndex: k, UseIndex: partner.UseIndex})
		lowerPartnerMatch(p, o, k, seenVars, emit)
		lowerGuardPart(o.GuardParts[k+1], emit, inapplicable)

		if seenSymbols[partner.Head.Name] && !partner.Head.Pragmas.Has(model.PragmaBang) {
			// See spec.md §9's open question: whether a bang active facing
			// a non-bang partner of the same symbol still needs this test.
			// This implementation follows the literal rule text — "unless
			// a bang pragma is present on either side" — and skips the
			// test whenever either side carries bang.
			if !o.Active.Head.Pragmas.Has(model.PragmaBang) {
				emit(Step{Kind: StepCidInequality, PartnerIndex: k})
			}
		}
		seenSymbols[partner.Head.Name] = true
	}

	fireRule(p, r, o, emit, inapplicable)

	emitBody(r, o, emit)

	closeOut(o, emit, inapplicable)

	emit(Step{Kind: StepLabel, Label: inapplicable})
	return b
}

// argOccurrence names the head position (active head for partnerIndex -1,
// else the partner index) where a head-pattern variable was first matched,
// so a later occurrence of the same name can be lowered as an equality test
// against it instead of a fresh bind.
type argOccurrence struct {
	partnerIndex int
	argIndex     int
}

// lowerActiveMatch implements spec.md §4.4.1: one step per active-head
// argument, carrying the head pattern itself (Expr) so later stages (and
// host lowering) can tell a literal, a fresh variable, and a repeated
// variable apart instead of only checking a mode. seenVars is shared with
// lowerPartnerMatch so a variable repeated across the active head and a
// partner (or between two partners) is recognized as such regardless of
// which head introduces it first.
func lowerActiveMatch(p *model.Program, o *model.OccRule, seenVars map[string]argOccurrence, emit func(Step), inapplicable string) {
	decl := p.DeclByName(o.Active.Head.Name)
	for i, arg := range o.Active.Head.Args {
		emit(argTestStep(decl, -1, i, arg, seenVars, inapplicable))
	}
}

// lowerPartnerMatch implements spec.md §4.4.2's per-argument matching for
// partner k.
func lowerPartnerMatch(p *model.Program, o *model.OccRule, k int, seenVars map[string]argOccurrence, emit func(Step)) {
	partner := o.Partners[k]
	decl := p.DeclByName(partner.Head.Name)
	for i, arg := range partner.Head.Args {
		emit(argTestStep(decl, k, i, arg, seenVars, ""))
	}
}

// argTestStep builds the StepTestActiveArg/StepTestPartnerArg step for one
// head-pattern argument, recording a fresh variable's site in seenVars or,
// for a repeat, pointing RepeatPartner/RepeatArg at the earlier site
// (spec.md §4.4.1's repeated-variable-in-head requirement).
func argTestStep(decl *model.ConstraintDecl, partnerIndex, argIndex int, arg model.Expr, seenVars map[string]argOccurrence, inapplicableLabel string) Step {
	kind := StepTestPartnerArg
	if partnerIndex < 0 {
		kind = StepTestActiveArg
	}
	s := Step{
		Kind:          kind,
		PartnerIndex:  partnerIndex,
		ArgIndex:      argIndex,
		Expr:          arg,
		Label:         inapplicableLabel,
		RepeatPartner: NoRepeat,
	}
	if decl != nil && argIndex < len(decl.Params) {
		s.Mode = decl.Params[argIndex].Mode
	}
	if lv, ok := arg.(*model.LogicalVar); ok && lv.Name != "" && lv.Name != "_" {
		if first, repeat := seenVars[lv.Name]; repeat {
			s.RepeatPartner, s.RepeatArg = first.partnerIndex, first.argIndex
		} else {
			seenVars[lv.Name] = argOccurrence{partnerIndex: partnerIndex, argIndex: argIndex}
		}
	}
	return s
}

// lowerGuardPart implements spec.md §4.4.3: each clause becomes one
// StepGuardClause. For part 0 the step's Label is inapplicable, so a failing
// clause jumps straight to the next occurrence; for later parts Label is
// left empty and host lowering derives the partner-advance target from
// PartnerIndex.
func lowerGuardPart(part model.GuardPart, emit func(Step), inapplicable string) {
	for _, clause := range part.Clauses {
		s := Step{Kind: StepGuardClause, PartnerIndex: part.PartnerIndex - 1, Expr: clause}
		if part.PartnerIndex == 0 {
			s.Label = inapplicable
		}
		emit(s)
	}
}

// fireRule implements spec.md §4.4.4 (history) and the COMMIT_RULE /
// storage-decision lines that follow it.
func fireRule(p *model.Program, r *model.Rule, o *model.OccRule, emit func(Step), inapplicable string) {
	if r.HasHistory() {
		failTarget := innermostDeletablePartnerLabel(o)
		if failTarget == "" {
			failTarget = inapplicable
		}
		emit(Step{Kind: StepHistoryCheck, Label: failTarget})
	}

	emit(Step{Kind: StepCommitRule})

	if o.StoreActive {
		emit(Step{Kind: StepStoreActive, PartnerIndex: -1})
	} else if !o.Active.Keep {
		emit(Step{Kind: StepRemoveActive, PartnerIndex: -1})
	}

	for k := len(o.Partners) - 1; k >= 0; k-- {
		if !o.Partners[k].Keep {
			emit(Step{Kind: StepRemovePartner, PartnerIndex: k})
		}
	}
}

// innermostDeletablePartnerLabel names the partner whose loop the history
// check's failure path should resume at (spec.md §4.4's "goto next
// matching step at innermost deletable partner"): the last (most deeply
// nested) partner that is in the delete-head. The label uses the same
// "next_<k>" form every other partner-retry target in the renderer uses
// (internal/lower/host's cidInequality/guardFailTarget/argFailTarget), since
// that is the only partner-advance label host lowering ever defines.
func innermostDeletablePartnerLabel(o *model.OccRule) string {
	for k := len(o.Partners) - 1; k >= 0; k-- {
		if !o.Partners[k].Keep {
			return "next_" + strconv.Itoa(k)
		}
	}
	return ""
}

// emitBody implements spec.md §4.4.5 (unification, host expressions, CHR
// calls, conjunctive/disjunctive sequences, behavior/try) and §4.4.6
// (tail-call on the active constraint). The body itself is carried on the
// step as model.Body, unaltered, for host lowering to render (internal/
// visit.PrintBodyHost); this pass's own job is only to find and strip a
// trailing tail-call when present.
//
// Detection of the tail-call shape is intentionally conservative: it
// recognizes only the case where the body is — or ends, for a top-level
// conjunctive Sequence — directly a ChrCallStmt to the active constraint's
// own symbol, which is the shape spec.md §8's GCD scenario exercises.
// General control-flow-path analysis (through behavior/try branches) is not
// attempted.
func emitBody(r *model.Rule, o *model.OccRule, emit func(Step)) {
	if call, ok := tailCallTarget(r.Body, o.Active.Head.Name); ok {
		emit(Step{Kind: StepEmitBody, Body: dropTailCall(r.Body)})
		emit(Step{Kind: StepTailGoto, Label: label(call.Name, 0)})
		return
	}
	emit(Step{Kind: StepEmitBody, Body: r.Body})
}

// dropTailCall returns body with its trailing tail-called conjunct removed,
// since that conjunct is rendered as a StepTailGoto instead of a body
// statement.
func dropTailCall(body model.Body) model.Body {
	seq, ok := body.(*model.Sequence)
	if !ok || len(seq.Children) <= 1 {
		return &model.Empty{}
	}
	return &model.Sequence{Sep: seq.Sep, Children: seq.Children[:len(seq.Children)-1]}
}

func tailCallTarget(body model.Body, activeSymbol string) (*model.ChrCallStmt, bool) {
	switch n := body.(type) {
	case *model.ChrCallStmt:
		if n.Name == activeSymbol {
			return n, true
		}
	case *model.Sequence:
		if n.Sep == model.SeqConjunctive && len(n.Children) > 0 {
			return tailCallTarget(n.Children[len(n.Children)-1], activeSymbol)
		}
	}
	return nil, false
}

// closeOut implements the post-body alive-checks, iterator housekeeping,
// and LIFO loop closing that end spec.md §4.4's pseudocode.
func closeOut(o *model.OccRule, emit func(Step), inapplicable string) {
	if o.Active.Keep {
		if o.StoreActive {
			emit(Step{Kind: StepCheckAliveActive, Label: inapplicable})
		} else {
			emit(Step{Kind: StepGotoInapplicable, Label: inapplicable})
		}
		keptIdx := keptPartnerIndexes(o)
		for i, k := range keptIdx {
			if i == len(keptIdx)-1 {
				emit(Step{Kind: StepAdvanceIterator, PartnerIndex: k})
			} else {
				emit(Step{Kind: StepCheckAlivePartner, PartnerIndex: k, Label: inapplicable})
			}
		}
	} else {
		emit(Step{Kind: StepExitSuccess})
	}

	for k := len(o.Partners) - 1; k >= 0; k-- {
		emit(Step{Kind: StepCloseLoop, PartnerIndex: k})
	}
}

func keptPartnerIndexes(o *model.OccRule) []int {
	var out []int
	for i, p := range o.Partners {
		if p.Keep {
			out = append(out, i)
		}
	}
	return out
}
