package abstract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ATSOTECK/chrc/internal/compiler"
	"github.com/ATSOTECK/chrc/internal/model"
	"github.com/ATSOTECK/chrc/internal/occ"
	"github.com/ATSOTECK/chrc/internal/reorder"
)

const leqSrc = `<chr name="LEQ">
chr_constraint leq(? int, ? int);
transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z) ;;
</chr>`

func lowerFirst(t *testing.T, src string) (*model.Program, *model.Rule, *Block) {
	t.Helper()
	progs, _, errs := compiler.ParseFile(src, "test.c")
	require.Empty(t, errs)
	p := progs[0]
	r := p.Rules[0]
	occs := occ.Expand(p, r, occ.NewCounters(), occ.DefaultOptions())
	require.NotEmpty(t, occs)
	o := occs[0]
	reorder.HeadReorder(o, r.Guard, nil)
	reorder.GuardReorder(o)
	reorder.IndexInference(p, o, true)
	return p, r, Lower(p, r, o)
}

func TestLowerProducesLabeledBlock(t *testing.T) {
	_, _, b := lowerFirst(t, leqSrc)
	assert.NotEmpty(t, b.Label)
	assert.NotEmpty(t, b.Steps)
	assert.Equal(t, StepKind(StepLabel), b.Steps[len(b.Steps)-1].Kind)
}

func TestLowerOpensAndClosesOnePartnerLoopPerPartner(t *testing.T) {
	_, _, b := lowerFirst(t, leqSrc)
	opens, closes := 0, 0
	for _, s := range b.Steps {
		switch s.Kind {
		case StepOpenPartnerLoop:
			opens++
		case StepCloseLoop:
			closes++
		}
	}
	assert.Equal(t, 1, opens)
	assert.Equal(t, opens, closes)
}

func TestCheckLockDisciplinePassesOnWellFormedBlock(t *testing.T) {
	_, _, b := lowerFirst(t, leqSrc)
	assert.NoError(t, CheckLockDiscipline(b))
}

func TestCheckLockDisciplineCatchesUnbalancedOpen(t *testing.T) {
	b := &Block{Label: "bad"}
	b.Steps = append(b.Steps, Step{Kind: StepOpenPartnerLoop, PartnerIndex: 0})
	err := CheckLockDiscipline(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never closed")
}

func TestCheckLockDisciplineCatchesLIFOViolation(t *testing.T) {
	b := &Block{Label: "bad"}
	b.Steps = append(b.Steps,
		Step{Kind: StepOpenPartnerLoop, PartnerIndex: 0},
		Step{Kind: StepOpenPartnerLoop, PartnerIndex: 1},
		Step{Kind: StepCloseLoop, PartnerIndex: 0},
	)
	err := CheckLockDiscipline(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIFO violation")
}

func TestCheckLockDisciplineCatchesUnmatchedClose(t *testing.T) {
	b := &Block{Label: "bad"}
	b.Steps = append(b.Steps, Step{Kind: StepCloseLoop, PartnerIndex: 0})
	err := CheckLockDiscipline(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching open")
}

func TestCheckNeverStoredClosureCatchesStoreActiveOnNeverStoredDecl(t *testing.T) {
	decl := &model.ConstraintDecl{Name: "leq", NeverStored: true}
	b := &Block{Label: "leq#0"}
	b.Steps = append(b.Steps, Step{Kind: StepStoreActive, PartnerIndex: -1})
	err := CheckNeverStoredClosure(decl, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never-stored")
}

func TestCheckNeverStoredClosureOKWhenNotNeverStored(t *testing.T) {
	decl := &model.ConstraintDecl{Name: "leq", NeverStored: false}
	b := &Block{Label: "leq#0"}
	b.Steps = append(b.Steps, Step{Kind: StepStoreActive, PartnerIndex: -1})
	assert.NoError(t, CheckNeverStoredClosure(decl, b))
}

func TestCheckNeverStoredClosureIgnoresPartnerStores(t *testing.T) {
	decl := &model.ConstraintDecl{Name: "leq", NeverStored: true}
	b := &Block{Label: "leq#0"}
	b.Steps = append(b.Steps, Step{Kind: StepStoreActive, PartnerIndex: 0})
	assert.NoError(t, CheckNeverStoredClosure(decl, b))
}

func TestCheckGuardSplitSoundnessOnRealProgram(t *testing.T) {
	_, _, o := func() (*model.Program, *model.Rule, *model.OccRule) {
		progs, _, errs := compiler.ParseFile(leqSrc, "test.c")
		require.Empty(t, errs)
		p := progs[0]
		r := p.Rules[0]
		occs := occ.Expand(p, r, occ.NewCounters(), occ.DefaultOptions())
		return p, r, occs[0]
	}()
	assert.NoError(t, CheckGuardSplitSoundness(o))
}

func TestCheckGuardSplitSoundnessCatchesUnboundClause(t *testing.T) {
	o := &model.OccRule{
		Active: model.PartnerRef{Head: model.HeadConstraint{Name: "a"}},
		GuardParts: []model.GuardPart{
			{PartnerIndex: 0, Clauses: []model.Expr{&model.LogicalVar{Name: "Unbound"}}},
		},
	}
	err := CheckGuardSplitSoundness(o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unbound")
}

func TestLowerSetsExprOnHeadArgTests(t *testing.T) {
	_, _, b := lowerFirst(t, leqSrc)
	var sawActiveArg, sawPartnerArg bool
	for _, s := range b.Steps {
		switch s.Kind {
		case StepTestActiveArg:
			sawActiveArg = true
			assert.NotNil(t, s.Expr)
		case StepTestPartnerArg:
			sawPartnerArg = true
			assert.NotNil(t, s.Expr)
		}
	}
	assert.True(t, sawActiveArg)
	assert.True(t, sawPartnerArg)
}

func TestLowerDetectsRepeatedVariableAcrossActiveAndPartner(t *testing.T) {
	// transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z): Y repeats between the
	// active head (arg 1) and the partner head (arg 0).
	_, _, b := lowerFirst(t, leqSrc)
	var found bool
	for _, s := range b.Steps {
		if s.Kind == StepTestPartnerArg && s.RepeatPartner != NoRepeat {
			found = true
			assert.Equal(t, -1, s.RepeatPartner)
			assert.Equal(t, 1, s.RepeatArg)
		}
	}
	assert.True(t, found, "expected a partner arg test flagged as repeating the active head's Y")
}

func TestLowerLeavesNonRepeatedArgsUnflagged(t *testing.T) {
	_, _, b := lowerFirst(t, leqSrc)
	for _, s := range b.Steps {
		if s.Kind == StepTestActiveArg {
			assert.Equal(t, NoRepeat, s.RepeatPartner)
		}
	}
}

func TestLowerCarriesRuleBodyOnEmitBodyStep(t *testing.T) {
	_, _, b := lowerFirst(t, leqSrc)
	var sawBody bool
	for _, s := range b.Steps {
		if s.Kind == StepEmitBody {
			sawBody = true
			assert.NotNil(t, s.Body)
		}
	}
	assert.True(t, sawBody)
}

func TestStepKindStringCoversAllKinds(t *testing.T) {
	assert.Equal(t, "STORE_ACTIVE", StepStoreActive.String())
	assert.Equal(t, "LABEL", StepLabel.String())
	assert.Equal(t, "STEP?", StepKind(999).String())
}
