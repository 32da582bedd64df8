package analysis

import (
	"fmt"

	"github.com/ATSOTECK/chrc/internal/model"
)

// UnusedRuleWarning is one diagnostic produced by UnusedRules (spec.md
// §4.1.2). It is always advisory: the analysis must never reject the rule.
type UnusedRuleWarning struct {
	Rule    *model.Rule
	Reason  string
	Pos     model.Position
}

func (w UnusedRuleWarning) String() string {
	return fmt.Sprintf("%s: warning: rule %q is potentially unused: %s", w.Pos, w.Rule.Name, w.Reason)
}

// UnusedRules flags rules that are "potentially unused" per spec.md §4.1.2:
// for every head constraint h, either (a) h never appears in any rule body,
// or (b) a head partner is trivially unreachable by mode-incompatibility —
// a ground ("+") position bound to a literal in two head constraints of the
// same declaration whose literal text differs can never simultaneously
// match, since a ground comparison requires exact textual equality (spec.md
// §4.4.1).
func UnusedRules(p *model.Program, g *DependencyGraph) []UnusedRuleWarning {
	var out []UnusedRuleWarning
	calledFromAnyBody := make(map[model.DeclID]bool)
	for _, targets := range g.edges {
		for id, present := range targets {
			if present {
				calledFromAnyBody[id] = true
			}
		}
	}

	for _, r := range p.Rules {
		heads := r.Heads()
		uncalled := 0
		for _, h := range heads {
			if !calledFromAnyBody[h.Decl] {
				uncalled++
			}
		}
		if len(heads) > 0 && uncalled == len(heads) {
			out = append(out, UnusedRuleWarning{
				Rule:   r,
				Reason: fmt.Sprintf("head constraint %q is never called from any rule body", heads[0].Name),
				Pos:    r.StartPos,
			})
		}
		if reason, unreachable := modeIncompatible(p, heads); unreachable {
			out = append(out, UnusedRuleWarning{Rule: r, Reason: reason, Pos: r.StartPos})
		}
	}
	return out
}

func modeIncompatible(p *model.Program, heads []model.HeadConstraint) (string, bool) {
	for i := 0; i < len(heads); i++ {
		for j := i + 1; j < len(heads); j++ {
			if heads[i].Decl != heads[j].Decl {
				continue
			}
			decl := p.Decl(heads[i].Decl)
			for pos, param := range decl.Params {
				if param.Mode != model.ModeGround {
					continue
				}
				if pos >= len(heads[i].Args) || pos >= len(heads[j].Args) {
					continue
				}
				litA, okA := heads[i].Args[pos].(*model.Literal)
				litB, okB := heads[j].Args[pos].(*model.Literal)
				if okA && okB && litA.Text != litB.Text {
					return fmt.Sprintf("ground position %d of %q is bound to incompatible literals %q and %q",
						pos, decl.Name, litA.Text, litB.Text), true
				}
			}
		}
	}
	return "", false
}
