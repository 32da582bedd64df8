package compiler

import (
	"testing"

	"github.com/ATSOTECK/chrc/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeqTransitivity(t *testing.T) {
	src := `<chr name="LEQ">
chr_constraint leq(? int, ? int);
transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z) ;;
</chr>`
	progs, includes, errs := ParseFile(src, "leq.c")
	require.Empty(t, errs)
	require.Empty(t, includes)
	require.Len(t, progs, 1)

	prog := progs[0]
	assert.Equal(t, "LEQ", prog.Name)
	require.Len(t, prog.Decls, 1)
	assert.Equal(t, "leq", prog.Decls[0].Name)
	assert.Equal(t, 2, prog.Decls[0].Arity())

	require.Len(t, prog.Rules, 1)
	rule := prog.Rules[0]
	assert.Equal(t, "transitivity", rule.Name)
	assert.Equal(t, model.OpPropagation, rule.Op)
	assert.Equal(t, model.KindPropagation, rule.Kind())
	assert.Len(t, rule.KeepHead, 2)
	assert.Empty(t, rule.DeleteHead)

	call, ok := rule.Body.(*model.ChrCallStmt)
	require.True(t, ok, "body should be a single leq(X,Z) call, got %T", rule.Body)
	assert.Equal(t, "leq", call.Name)
	assert.Equal(t, prog.Decls[0], prog.Decl(call.Decl))
}

func TestParseMinSimpagation(t *testing.T) {
	src := `<chr name="MIN">
chr_constraint m(+ int);
m(X) \ m(Y) <=> X =< Y | ;;
</chr>`
	progs, _, errs := ParseFile(src, "min.c")
	require.Empty(t, errs)
	require.Len(t, progs, 1)

	rule := progs[0].Rules[0]
	assert.Equal(t, model.OpSimpagation, rule.Op)
	require.Len(t, rule.KeepHead, 1)
	require.Len(t, rule.DeleteHead, 1)
	assert.Equal(t, "m", rule.KeepHead[0].Name)
	assert.Equal(t, "m", rule.DeleteHead[0].Name)

	require.Len(t, rule.Guard, 1)
	guard, ok := rule.Guard[0].(*model.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "=<", guard.Op)

	_, isEmpty := rule.Body.(*model.Empty)
	assert.True(t, isEmpty, "rule has no body statements, got %T", rule.Body)
}

func TestParseGcdTailRecursion(t *testing.T) {
	src := `<chr name="GCD">
chr_constraint gcd(+ int);
base @ gcd(0) <=> success ;;
step @ gcd(N) \ gcd(M) <=> N =< M, M > 0 | gcd(M - N) ;;
</chr>`
	progs, _, errs := ParseFile(src, "gcd.c")
	require.Empty(t, errs)
	require.Len(t, progs, 1)
	require.Len(t, progs[0].Rules, 2)

	step := progs[0].Rules[1]
	require.Len(t, step.Guard, 2)
	seq, ok := step.Body.(*model.ChrCallStmt)
	require.True(t, ok, "recursive tail call body should be a single gcd(...) call, got %T", step.Body)
	assert.Equal(t, "gcd", seq.Name)
	require.Len(t, seq.Args, 1)
	bin, ok := seq.Args[0].(*model.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "-", bin.Op)
}

func TestParseUndeclaredConstraintIsError(t *testing.T) {
	src := `<chr name="X">
foo(X) <=> success ;;
</chr>`
	_, _, errs := ParseFile(src, "x.c")
	require.NotEmpty(t, errs)
}

func TestParseChrInclude(t *testing.T) {
	src := `<chr_include name="common.chr" />`
	progs, includes, errs := ParseFile(src, "x.c")
	require.Empty(t, errs)
	require.Empty(t, progs)
	require.Len(t, includes, 1)
	assert.Equal(t, "common.chr", includes[0].Name)
}

func TestParseChrCountBuiltin(t *testing.T) {
	src := `<chr name="X">
chr_constraint a(? int);
chr_constraint b(? int);
r @ a(X) ==> chr_count(a(Y)) > 1 | b(X) ;;
</chr>`
	progs, _, errs := ParseFile(src, "x.c")
	require.Empty(t, errs)
	require.Len(t, progs, 1)
	rule := progs[0].Rules[0]
	require.Len(t, rule.Guard, 1)
	bin, ok := rule.Guard[0].(*model.BinaryOp)
	require.True(t, ok)
	count, ok := bin.Left.(*model.ChrCount)
	require.True(t, ok)
	assert.Equal(t, "a", count.Constraint.Name)
	assert.Equal(t, -1, count.UseIndex)
}
