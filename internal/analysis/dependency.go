// Package analysis implements the program-level analyses that run before
// occurrence-rule expansion (spec.md §4.1): the dependency graph, the
// unused-rule warning, the never-stored analysis, and the (conservative)
// late-storage analysis. Each analysis is a plain function over
// *model.Program plus the visitor kernel in internal/visit, grounded on the
// host compiler's own pre-lowering passes (internal/compiler/compiler_prescan.go's
// role of walking the whole tree once before code generation begins).
package analysis

import (
	"github.com/ATSOTECK/chrc/internal/model"
	"github.com/ATSOTECK/chrc/internal/visit"
)

// DependencyGraph is a directed graph over constraint declarations (spec.md
// §4.1.1): edge h -> c for every CHR call c in the body of any rule with h
// in its head.
type DependencyGraph struct {
	edges map[model.DeclID]map[model.DeclID]bool
}

// BuildDependencyGraph walks every rule of p once.
func BuildDependencyGraph(p *model.Program) *DependencyGraph {
	g := &DependencyGraph{edges: make(map[model.DeclID]map[model.DeclID]bool)}
	for _, decl := range p.Decls {
		_ = decl // every declared constraint gets a node, even with no edges
	}
	for i := range p.Decls {
		g.edges[model.DeclID(i)] = make(map[model.DeclID]bool)
	}
	for _, r := range p.Rules {
		calls := visit.ChrCalls(r.Body)
		for _, h := range r.Heads() {
			for _, c := range calls {
				g.edges[h.Decl][c.Decl] = true
			}
		}
	}
	return g
}

// HasIncoming reports whether any rule body calls decl.
func (g *DependencyGraph) HasIncoming(decl model.DeclID) bool {
	for _, targets := range g.edges {
		if targets[decl] {
			return true
		}
	}
	return false
}

// NeverActivated returns the set of declarations with no incoming edge from
// any rule body (spec.md §4.1.1's "never-activated candidate"). This is
// advisory only, same as the unused-rule warning.
func (g *DependencyGraph) NeverActivated(p *model.Program) []model.DeclID {
	var out []model.DeclID
	for i := range p.Decls {
		id := model.DeclID(i)
		if !g.HasIncoming(id) {
			out = append(out, id)
		}
	}
	return out
}

// Targets returns the set of declarations that h's rule bodies call.
func (g *DependencyGraph) Targets(h model.DeclID) []model.DeclID {
	var out []model.DeclID
	for target, present := range g.edges[h] {
		if present {
			out = append(out, target)
		}
	}
	return out
}
