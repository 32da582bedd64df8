package chrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLeqEndToEnd(t *testing.T) {
	src := `<chr name="LEQ">
chr_constraint leq(? int, ? int);
transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z) ;;
</chr>`
	res := Compile(src, "leq.c", DefaultOptions())
	require.False(t, res.HasErrors())
	require.Len(t, res.Programs, 1)
	assert.Equal(t, "LEQ", res.Programs[0].Name)
	assert.Contains(t, res.Programs[0].Rendered, "do_leq")
}

func TestCompileUndeclaredConstraintIsAnError(t *testing.T) {
	src := `<chr name="X">
foo(X) <=> success ;;
</chr>`
	res := Compile(src, "x.c", DefaultOptions())
	assert.True(t, res.HasErrors())
}
