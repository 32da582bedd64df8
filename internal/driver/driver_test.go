package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leqSource = `<chr name="LEQ">
chr_constraint leq(? int, ? int);
transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z) ;;
</chr>`

func TestCompileLeqProducesRenderedOutput(t *testing.T) {
	res := Compile(leqSource, "leq.c", DefaultOptions())
	require.Empty(t, res.Errors)
	require.Len(t, res.Programs, 1)
	assert.Equal(t, "LEQ", res.Programs[0].Name)
	assert.Contains(t, res.Programs[0].Rendered, "do_leq")
	assert.Contains(t, res.Programs[0].Rendered, "void leq(")
}

// TestCompileLeqAbstractDumpMatchesOccurrenceCount exercises SPEC_FULL.md
// §6.4's abstract-lowering dump: one entry per occurrence rule produced by
// internal/occ.Expand (two, for leq's two-head transitivity rule), each
// carrying a HISTORY_CHECK step since the rule is a propagation rule with
// history.
func TestCompileLeqAbstractDumpMatchesOccurrenceCount(t *testing.T) {
	res := Compile(leqSource, "leq.c", DefaultOptions())
	require.Len(t, res.Programs, 1)
	dump := res.Programs[0].AbstractDump
	require.Len(t, dump, 2)
	for _, block := range dump {
		var sawHistoryCheck bool
		for _, s := range block.Steps {
			if s.Kind == "HISTORY_CHECK" {
				sawHistoryCheck = true
				assert.NotEmpty(t, s.Label)
			}
		}
		assert.True(t, sawHistoryCheck, "block %s missing HISTORY_CHECK step", block.Label)
	}
}

func TestCompileMinRendersDispatchFunction(t *testing.T) {
	src := `<chr name="MIN">
chr_constraint m(+ int);
m(X) \ m(Y) <=> X =< Y | ;;
</chr>`
	res := Compile(src, "min.c", DefaultOptions())
	require.Empty(t, res.Errors)
	require.Len(t, res.Programs, 1)
	// m is in the KeepHead of the rule as well as its DeleteHead, so it is
	// not never-stored here; this asserts the pipeline runs the analysis and
	// renders a dispatch function for m.
	assert.Contains(t, res.Programs[0].Rendered, "do_m")
}

func TestCompileUndeclaredConstraintReportsErrorNotPanic(t *testing.T) {
	src := `<chr name="X">
foo(X) <=> success ;;
</chr>`
	res := Compile(src, "x.c", DefaultOptions())
	assert.NotEmpty(t, res.Errors)
}

func TestCompileHonorsLineErrorOption(t *testing.T) {
	opts := DefaultOptions()
	opts.LineErrorEnabled = true
	res := Compile(leqSource, "leq.c", opts)
	require.Len(t, res.Programs, 1)
	assert.True(t, strings.Contains(res.Programs[0].Rendered, "#line"))
}

func TestProgramNamesAndOutputFilenames(t *testing.T) {
	res := Compile(leqSource, "leq.c", DefaultOptions())
	names := ProgramNames(res)
	assert.Equal(t, []string{"LEQ"}, names)

	files := OutputFilenames(res, "leq")
	assert.Contains(t, files, "leq.LEQ.chr.out")
	assert.Contains(t, files, "leq.host")
}

func TestCompileIncludeOnlyFileProducesNoPrograms(t *testing.T) {
	res := Compile(`<chr_include name="common.chr" />`, "x.c", DefaultOptions())
	require.Empty(t, res.Errors)
	require.Empty(t, res.Programs)
	require.Len(t, res.Includes, 1)
	assert.Equal(t, "common.chr", res.Includes[0].Name)
}
