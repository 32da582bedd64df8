package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ATSOTECK/chrc/internal/compiler"
	"github.com/ATSOTECK/chrc/internal/model"
)

func TestNeverStoredRejectsConstraintKeptInSomeHead(t *testing.T) {
	src := `<chr name="MIN">
chr_constraint m(+ int);
m(X) \ m(Y) <=> X =< Y | ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "min.c")
	require.Empty(t, errs)
	p := progs[0]
	NeverStored(p)

	// m appears once as KeepHead (X) and once as DeleteHead (Y): it is
	// disqualified because it is a keep head somewhere.
	assert.False(t, p.Decls[0].NeverStored)
}

func TestNeverStoredHoldsForDeleteOnlyAcrossAllRules(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int);
r1 @ a(X) <=> b(X) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	p := progs[0]
	NeverStored(p)

	// a is deleted (simplification rule, DeleteHead contains a) in its only
	// occurrence: never-stored holds.
	var aDecl = p.DeclByName("a")
	require.NotNil(t, aDecl)
	assert.True(t, aDecl.NeverStored)
}

func TestNeverStoredVacuouslyTrueForUnusedDeclaration(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint unused(+ int);
r1 @ a(X) <=> true ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	p := progs[0]
	NeverStored(p)

	unused := p.DeclByName("unused")
	require.NotNil(t, unused)
	assert.True(t, unused.NeverStored)
}

func TestStoreActiveConstraintAlwaysFalseWhenNotKeepActive(t *testing.T) {
	assert.False(t, StoreActiveConstraint(true, false))
	assert.False(t, StoreActiveConstraint(false, false))
}

func TestStoreActiveConstraintTrueWhenKeepActive(t *testing.T) {
	assert.True(t, StoreActiveConstraint(true, true))
	assert.True(t, StoreActiveConstraint(false, true))
}

func TestBuildDependencyGraphRecordsBodyCalls(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int);
r1 @ a(X) <=> b(X) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	p := progs[0]
	g := BuildDependencyGraph(p)

	aDecl := p.DeclByName("a")
	bDecl := p.DeclByName("b")
	require.NotNil(t, aDecl)
	require.NotNil(t, bDecl)

	assert.True(t, g.HasIncoming(declID(p, "b")))
	assert.False(t, g.HasIncoming(declID(p, "a")))
}

func TestNeverActivatedListsDeclarationsWithNoIncomingEdge(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int);
r1 @ a(X) <=> b(X) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	p := progs[0]
	g := BuildDependencyGraph(p)

	never := g.NeverActivated(p)
	require.Len(t, never, 1)
	assert.Equal(t, declID(p, "a"), never[0])
}

func TestUnusedRulesFlagsHeadNeverCalledFromBody(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int);
r1 @ a(X) <=> b(X) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	p := progs[0]
	g := BuildDependencyGraph(p)
	warnings := UnusedRules(p, g)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Reason, "a")
}

func TestUnusedRulesSilentWhenEveryHeadIsCalled(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int);
r1 @ a(X) <=> b(X) ;;
r2 @ b(X) <=> a(X) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	p := progs[0]
	g := BuildDependencyGraph(p)
	warnings := UnusedRules(p, g)
	assert.Empty(t, warnings)
}

func TestUnusedRuleWarningStringIncludesRuleName(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
r1 @ a(X) <=> true ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	p := progs[0]
	g := BuildDependencyGraph(p)
	warnings := UnusedRules(p, g)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].String(), "r1")
}

func declID(p *model.Program, name string) model.DeclID {
	decl := p.DeclByName(name)
	for i, d := range p.Decls {
		if d == decl {
			return model.DeclID(i)
		}
	}
	return -1
}
