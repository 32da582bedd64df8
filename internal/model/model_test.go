package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleKindSimplificationWhenOnlyDeleteHead(t *testing.T) {
	r := &Rule{DeleteHead: []HeadConstraint{{Name: "a"}}}
	assert.Equal(t, KindSimplification, r.Kind())
}

func TestRuleKindPropagationWhenOnlyKeepHead(t *testing.T) {
	r := &Rule{KeepHead: []HeadConstraint{{Name: "a"}}}
	assert.Equal(t, KindPropagation, r.Kind())
}

func TestRuleKindPropagationWhenOnlyKeepHeadWithPropOp(t *testing.T) {
	r := &Rule{KeepHead: []HeadConstraint{{Name: "a"}, {Name: "b"}}, Op: OpPropagation}
	assert.Equal(t, KindPropagation, r.Kind())
}

func TestRuleKindPropagationNoHistoryViaOp(t *testing.T) {
	r := &Rule{KeepHead: []HeadConstraint{{Name: "a"}}, Op: OpPropagationNoHistory}
	assert.Equal(t, KindPropagationNoHistory, r.Kind())
}

func TestRuleKindPropagationNoHistoryViaPragma(t *testing.T) {
	r := &Rule{
		KeepHead: []HeadConstraint{{Name: "a", Pragmas: NewPragmaSet(PragmaNoHistory)}},
		Op:       OpPropagation,
	}
	assert.Equal(t, KindPropagationNoHistory, r.Kind())
}

func TestRuleKindSimpagationWhenBothHeadsPresent(t *testing.T) {
	r := &Rule{
		KeepHead:   []HeadConstraint{{Name: "a"}},
		DeleteHead: []HeadConstraint{{Name: "b"}},
	}
	assert.Equal(t, KindSimpagation, r.Kind())
}

func TestHasHistoryOnlyForPlainPropagation(t *testing.T) {
	prop := &Rule{KeepHead: []HeadConstraint{{Name: "a"}}, Op: OpPropagation}
	assert.True(t, prop.HasHistory())

	noHist := &Rule{KeepHead: []HeadConstraint{{Name: "a"}}, Op: OpPropagationNoHistory}
	assert.False(t, noHist.HasHistory())

	simp := &Rule{DeleteHead: []HeadConstraint{{Name: "a"}}}
	assert.False(t, simp.HasHistory())
}

func TestHeadsReturnsKeepThenDeleteInOrder(t *testing.T) {
	r := &Rule{
		KeepHead:   []HeadConstraint{{Name: "k1"}, {Name: "k2"}},
		DeleteHead: []HeadConstraint{{Name: "d1"}},
	}
	heads := r.Heads()
	require.Len(t, heads, 3)
	assert.Equal(t, []string{"k1", "k2", "d1"}, []string{heads[0].Name, heads[1].Name, heads[2].Name})
}

func TestAddIndexDedupsEqualIndexes(t *testing.T) {
	d := &ConstraintDecl{Name: "a"}
	i1 := d.AddIndex(Index{Positions: []int{0, 1}})
	i2 := d.AddIndex(Index{Positions: []int{0, 1}})
	assert.Equal(t, i1, i2)
	assert.Len(t, d.Indexes, 1)
}

func TestAddIndexAppendsDistinctIndexes(t *testing.T) {
	d := &ConstraintDecl{Name: "a"}
	i1 := d.AddIndex(Index{Positions: []int{0}})
	i2 := d.AddIndex(Index{Positions: []int{1}})
	assert.NotEqual(t, i1, i2)
	assert.Len(t, d.Indexes, 2)
}

func TestAddIndexPanicsWhenFrozen(t *testing.T) {
	d := &ConstraintDecl{Name: "a", Frozen: true}
	assert.Panics(t, func() {
		d.AddIndex(Index{Positions: []int{0}})
	})
}

func TestAddIndexOnFrozenDeclStillReturnsExistingWithoutPanic(t *testing.T) {
	d := &ConstraintDecl{Name: "a"}
	i1 := d.AddIndex(Index{Positions: []int{0}})
	d.Frozen = true
	i2 := d.AddIndex(Index{Positions: []int{0}})
	assert.Equal(t, i1, i2)
}

func TestModeStringRoundTrip(t *testing.T) {
	assert.Equal(t, "+", ModeGround.String())
	assert.Equal(t, "?", ModeAny.String())
	assert.Equal(t, "-", ModeMutable.String())
}

func TestFreeVarsCollectsNestedVariables(t *testing.T) {
	e := &BinaryOp{
		Op:   "+",
		Left: &LogicalVar{Name: "X"},
		Right: &UnaryOp{
			Op:    "-",
			Child: &LogicalVar{Name: "Y"},
		},
	}
	assert.ElementsMatch(t, []string{"X", "Y"}, FreeVars(e))
}

func TestProgramAddDeclAndAddRuleAssignStableIDs(t *testing.T) {
	p := &Program{}
	id0 := p.AddDecl(&ConstraintDecl{Name: "a"})
	id1 := p.AddDecl(&ConstraintDecl{Name: "b"})
	assert.Equal(t, DeclID(0), id0)
	assert.Equal(t, DeclID(1), id1)
	assert.Same(t, p.Decls[id0], p.Decl(id0))

	rid0 := p.AddRule(&Rule{Name: "r1"})
	assert.Equal(t, RuleID(0), rid0)
}

func TestProgramDeclByNameFindsDeclaration(t *testing.T) {
	p := &Program{}
	p.AddDecl(&ConstraintDecl{Name: "a"})
	p.AddDecl(&ConstraintDecl{Name: "b"})
	assert.Equal(t, "b", p.DeclByName("b").Name)
	assert.Nil(t, p.DeclByName("nope"))
}
