package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ATSOTECK/chrc/internal/compiler"
	"github.com/ATSOTECK/chrc/internal/lower/abstract"
	"github.com/ATSOTECK/chrc/internal/model"
	"github.com/ATSOTECK/chrc/internal/occ"
	"github.com/ATSOTECK/chrc/internal/reorder"
)

func buildBlocks(t *testing.T, src string) (*model.Program, map[string][]*abstract.Block) {
	t.Helper()
	progs, _, errs := compiler.ParseFile(src, "test.c")
	require.Empty(t, errs)
	p := progs[0]

	counters := occ.NewCounters()
	blocksBySymbol := make(map[string][]*abstract.Block)
	for _, r := range p.Rules {
		occs := occ.Expand(p, r, counters, occ.DefaultOptions())
		for _, o := range occs {
			reorder.HeadReorder(o, r.Guard, nil)
			reorder.GuardReorder(o)
			reorder.IndexInference(p, o, true)
			b := abstract.Lower(p, r, o)
			blocksBySymbol[o.Active.Head.Name] = append(blocksBySymbol[o.Active.Head.Name], b)
		}
	}
	return p, blocksBySymbol
}

const leqSrc = `<chr name="LEQ">
chr_constraint leq(? int, ? int);
transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z) ;;
</chr>`

func TestProgramRendersDispatchAndEntryFunctions(t *testing.T) {
	p, blocks := buildBlocks(t, leqSrc)
	out := NewRenderer().Program(p, blocks)
	assert.Contains(t, out, "do_leq")
	assert.Contains(t, out, "void leq(")
	assert.Contains(t, out, "return SUCCESS;")
}

func TestTracingRendererEmitsRuleFiredCall(t *testing.T) {
	p, blocks := buildBlocks(t, leqSrc)
	plain := NewRenderer().Program(p, blocks)
	traced := NewTracingRenderer().Program(p, blocks)
	assert.NotContains(t, plain, "RuleFired")
	assert.Contains(t, traced, "RuleFired")
}

func TestNeverStoredDeclSkipsStoreActiveFallthrough(t *testing.T) {
	src := `<chr name="R">
chr_constraint a(+ int);
chr_constraint b(+ int);
r1 @ a(X) <=> b(X) ;;
</chr>`
	p, blocks := buildBlocks(t, src)
	aDecl := p.DeclByName("a")
	aDecl.NeverStored = true

	out := NewRenderer().Program(p, blocks)
	assert.Contains(t, out, "do_a")
	assert.NotContains(t, out, "store_a.add")
}
