package support

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTupleHashDeterministicAndOrderSensitive(t *testing.T) {
	a := TupleHash([]int64{1, 2, 3})
	b := TupleHash([]int64{1, 2, 3})
	c := TupleHash([]int64{3, 2, 1})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestKeyHashDistinguishesSeparatorPosition(t *testing.T) {
	a := KeyHash([]any{"ab", "c"})
	b := KeyHash([]any{"a", "bc"})
	assert.NotEqual(t, a, b)
}

func TestKeyHashSameForEqualValues(t *testing.T) {
	a := KeyHash([]any{1, "x"})
	b := KeyHash([]any{1, "x"})
	assert.Equal(t, a, b)
}

func TestStatsRuleFiredAndSnapshot(t *testing.T) {
	s := NewStats()
	s.RuleFired("leq")
	s.RuleFired("leq")
	s.RuleFired("min")

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap["leq"])
	assert.Equal(t, int64(1), snap["min"])
	assert.Equal(t, int64(3), s.Total())
}

func TestStringifyPrimitivesAndComposites(t *testing.T) {
	assert.Equal(t, "<nil>", Stringify(nil))
	assert.Equal(t, "hi", Stringify("hi"))
	assert.Equal(t, "(1, 2)", Stringify([]any{1, 2}))
	assert.Equal(t, "{a=1, b=2}", Stringify(map[string]any{"b": 2, "a": 1}))
}

type fakeStringer struct{}

func (fakeStringer) String() string { return "fake" }

func TestStringifyUsesStringerWhenPresent(t *testing.T) {
	assert.Equal(t, "fake", Stringify(fakeStringer{}))
}

func TestNilTracerIsNoOp(t *testing.T) {
	var tr *Tracer
	assert.False(t, tr.Enabled())
	tr.Occurrence("leq", 1)
	tr.RuleFired("leq", []int64{1, 2})
	tr.Backtrack(0)
}

func TestTracerWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracer(&buf)
	assert.True(t, tr.Enabled())

	tr.Occurrence("leq#1", 5)
	tr.RuleFired("leq", []int64{5, 6})
	tr.Backtrack(3)

	out := buf.String()
	assert.Contains(t, out, "enter leq#1 cid=5")
	assert.Contains(t, out, "fire leq")
	assert.Contains(t, out, "back_to depth=3")
}
