package abstract

import "github.com/ATSOTECK/chrc/internal/visit"

// StepDump renders one Step into a plain, JSON-friendly shape — the form
// SPEC_FULL.md §6.4's dev/introspection service hands back under
// "abstract-lowering dump", matching spec.md §2's description of this layer
// as existing "for inspection/testing". Fields meaningless for a given Kind
// are left at their zero value: the integer fields are always present in
// the JSON form, while Label, Expr, Bang and Body are omitted when empty.
// Kind is always present, so a caller can read it without a type switch of
// its own.
type StepDump struct {
	Kind         string `json:"kind"`
	Label        string `json:"label,omitempty"`
	PartnerIndex int    `json:"partner_index"`
	ArgIndex     int    `json:"arg_index"`
	Expr         string `json:"expr,omitempty"`
	UseIndex     int    `json:"use_index"`
	Bang         bool   `json:"bang,omitempty"`
	Body         string `json:"body,omitempty"`
}

// BlockDump is one occurrence rule's lowered step sequence (Block), dumped
// for inspection independent of any host-language syntax.
type BlockDump struct {
	Label   string     `json:"label"`
	OccName string     `json:"occ_name"`
	Steps   []StepDump `json:"steps"`
}

// Dump renders b into the inspectable form described above.
func (b *Block) Dump() BlockDump {
	out := BlockDump{Label: b.Label, OccName: b.OccName}
	for _, s := range b.Steps {
		sd := StepDump{
			Kind:         s.Kind.String(),
			Label:        s.Label,
			PartnerIndex: s.PartnerIndex,
			ArgIndex:     s.ArgIndex,
			UseIndex:     s.UseIndex,
			Bang:         s.Bang,
		}
		if s.Expr != nil {
			sd.Expr = visit.PrintExpr(s.Expr)
		}
		if s.Body != nil {
			sd.Body = visit.PrintBodyHost(s.Body)
		}
		out.Steps = append(out.Steps, sd)
	}
	return out
}
