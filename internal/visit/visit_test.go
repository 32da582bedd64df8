package visit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ATSOTECK/chrc/internal/compiler"
	"github.com/ATSOTECK/chrc/internal/model"
)

func TestWalkExprVisitsBinaryOpChildren(t *testing.T) {
	e := &model.BinaryOp{
		Op:    "+",
		Left:  &model.LogicalVar{Name: "X"},
		Right: &model.Literal{Text: "1"},
	}
	var seen []string
	WalkExpr(e, func(n model.Expr) bool {
		switch v := n.(type) {
		case *model.LogicalVar:
			seen = append(seen, v.Name)
		case *model.Literal:
			seen = append(seen, v.Text)
		}
		return true
	})
	assert.ElementsMatch(t, []string{"X", "1"}, seen)
}

func TestWalkExprStopsDescentWhenFnReturnsFalse(t *testing.T) {
	e := &model.UnaryOp{Op: "-", Child: &model.LogicalVar{Name: "X"}}
	visited := 0
	WalkExpr(e, func(n model.Expr) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestChrCallsCollectsBodyCalls(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int);
r1 @ a(X) <=> b(X), b(X) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	r := progs[0].Rules[0]
	calls := ChrCalls(r.Body)
	assert.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "b", c.Name)
	}
}

func TestLogicalVarsCollectsEveryVariableName(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int, + int);
r1 @ a(X) <=> b(X, Y) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	r := progs[0].Rules[0]
	vars := LogicalVars(r.Body)
	assert.ElementsMatch(t, []string{"X", "Y"}, vars)
}

func TestPrintExprRendersParenthesizedInfixForm(t *testing.T) {
	e := &model.BinaryOp{Op: ">", Left: &model.LogicalVar{Name: "X"}, Right: &model.Literal{Text: "0"}}
	assert.Equal(t, "(X > 0)", PrintExpr(e))
}

func TestPrintRuleRoundTripsHeadGuardBody(t *testing.T) {
	src := `<chr name="LEQ">
chr_constraint leq(? int, ? int);
transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z) ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "leq.c")
	require.Empty(t, errs)
	r := progs[0].Rules[0]
	out := PrintRule(r)
	assert.Contains(t, out, "transitivity @ ")
	assert.Contains(t, out, "leq(X, Y), leq(Y, Z)")
	assert.Contains(t, out, "==>")
	assert.Contains(t, out, "ChrCall(leq)")
}

func TestApplyFoldsOverEveryExpression(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
r1 @ a(X) <=> X > 0, X > 1 ;;
</chr>`
	progs, _, errs := compiler.ParseFile(src, "r.c")
	require.Empty(t, errs)
	r := progs[0].Rules[0]
	count := Apply(r.Body, 0, func(acc int, _ model.Expr) int { return acc + 1 })
	assert.Greater(t, count, 0)
}
