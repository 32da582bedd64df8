// Package abstract lowers one occurrence rule into an ordered sequence of
// language-neutral abstract steps (spec.md §4.4, the "central algorithm").
// This is a pseudo-program: an intermediate representation host-code
// lowering (internal/lower/host) renders into real source text, kept around
// on its own so it can be inspected and tested independently of any host
// language's syntax — spec.md §2 calls this out explicitly as existing "for
// inspection/testing", and other_examples' go-corset IR packages
// (pkg/ir/hir, pkg/ir/air) ground the same idea: a typed instruction list
// sitting between a front-end AST and a back-end code generator.
package abstract

import (
	"strconv"

	"github.com/ATSOTECK/chrc/internal/model"
)

// StepKind enumerates the abstract operations of spec.md §4.4's pseudocode.
type StepKind int

const (
	StepStoreActive       StepKind = iota // STORE_ACTIVE
	StepRemoveActive                      // REMOVE_ACTIVE
	StepTestPartnerEmpty                  // if S.empty: goto inapplicable
	StepTestActiveArg                     // compare active constraint arg i
	StepBindActiveArg                     // bind local to c_args.i
	StepGuardClause                       // evaluate one guard clause
	StepOpenPartnerLoop                   // OPEN partner loop over S_k
	StepTestPartnerArg                    // compare/bind partner k's arg
	StepBindPartnerArg
	StepCidInequality // require pair-inequality of constraint ids
	StepHistoryCheck  // HISTORY_CHECK(tuple)
	StepCommitRule    // COMMIT_RULE(stat inc)
	StepRemovePartner // REMOVE partner (delete-partners, reverse lock order)
	StepEmitBody      // EMIT body
	StepTailGoto      // §4.4.6: in-place activation instead of a host call
	StepCheckAliveActive
	StepCheckAlivePartner
	StepAdvanceIterator
	StepCloseLoop // close partner loop k (LIFO)
	StepExitSuccess
	StepGotoInapplicable
	StepLabel // O_inapplicable: fall through to next occurrence
)

func (k StepKind) String() string {
	names := [...]string{
		"STORE_ACTIVE", "REMOVE_ACTIVE", "TEST_PARTNER_EMPTY", "TEST_ACTIVE_ARG",
		"BIND_ACTIVE_ARG", "GUARD_CLAUSE", "OPEN_PARTNER_LOOP", "TEST_PARTNER_ARG",
		"BIND_PARTNER_ARG", "CID_INEQUALITY", "HISTORY_CHECK", "COMMIT_RULE",
		"REMOVE_PARTNER", "EMIT_BODY", "TAIL_GOTO", "CHECK_ALIVE_ACTIVE",
		"CHECK_ALIVE_PARTNER", "ADVANCE_ITERATOR", "CLOSE_LOOP", "EXIT_SUCCESS",
		"GOTO_INAPPLICABLE", "LABEL",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "STEP?"
}

// NoRepeat is RepeatPartner's sentinel for "this head argument is not a
// repeated occurrence of a variable seen elsewhere in the heads".
const NoRepeat = -2

// Step is one abstract instruction. Not every field is meaningful for every
// Kind; see the StepXxx doc comments above for which fields a given kind
// uses. PartnerIndex is an index into the occurrence rule's Partners slice;
// -1 means "the active constraint" or "not applicable".
//
// RepeatPartner/RepeatArg are set on StepTestActiveArg/StepTestPartnerArg
// when Expr is a logical variable that already occurred at an earlier head
// position (RepeatPartner -1 for the active head, >= 0 for a partner): spec.md
// §4.4.1's repeated-variable-in-head requirement, compiled here into a
// pointer at the earlier occurrence rather than re-deriving it during
// rendering. NoRepeat means Expr is either a fresh variable or a literal.
type Step struct {
	Kind          StepKind
	PartnerIndex  int
	ArgIndex      int
	Expr          model.Expr
	Mode          model.Mode
	UseIndex      int
	Label         string
	Bang          bool
	RepeatPartner int
	RepeatArg     int
	Body          model.Body
}

// Block is the lowered program for one occurrence rule: a label (the
// "(symbol, occurrence#)" pair of spec.md §4.4) plus its ordered steps.
type Block struct {
	Label   string
	Occ     *model.OccRule
	OccName string
	Steps   []Step
}

func label(symbol string, occurrence int) string {
	return symbol + "_" + strconv.Itoa(occurrence)
}
