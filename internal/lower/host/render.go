package host

import (
	"fmt"
	"strconv"

	"github.com/valyala/bytebufferpool"

	"github.com/ATSOTECK/chrc/internal/lower/abstract"
	"github.com/ATSOTECK/chrc/internal/model"
	"github.com/ATSOTECK/chrc/internal/visit"
)

// bufferPool backs every Renderer's output buffer, cut across occurrence
// rules the same way the runtime's backtrackable list reuses arena slots
// instead of allocating per constraint (spec.md §9 "Arena + indices").
var bufferPool bytebufferpool.Pool

// Renderer renders one program's dispatch functions (spec.md §4.5) from
// the Blocks produced by internal/lower/abstract.
type Renderer struct {
	tpl   *templateSet
	trace bool
}

func NewRenderer() *Renderer { return &Renderer{tpl: newTemplateSet()} }

// NewTracingRenderer returns a Renderer that additionally emits a
// runtime-trace call after every rule commit (spec.md §6.2's `trace` knob).
func NewTracingRenderer() *Renderer { return &Renderer{tpl: newTemplateSet(), trace: true} }

// Program renders every constraint symbol's dispatch function, in the
// order their declarations appear in p.Decls, each containing its blocks
// in the order supplied by blocksBySymbol (the caller is expected to have
// already applied internal/reorder.OccurrenceReorder to choose that order,
// per spec.md §4.3.3).
func (r *Renderer) Program(p *model.Program, blocksBySymbol map[string][]*abstract.Block) string {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)
	buf.Reset()

	for _, decl := range p.Decls {
		r.dispatchFunction(buf, p, decl, blocksBySymbol[decl.Name])
	}
	return buf.String()
}

func (r *Renderer) dispatchFunction(buf *bytebufferpool.ByteBuffer, p *model.Program, decl *model.ConstraintDecl, blocks []*abstract.Block) {
	buf.WriteString(exec(r.tpl.dispatchHeader, map[string]interface{}{"symbol": decl.Name}))
	for _, b := range blocks {
		r.block(buf, p, b)
	}
	// spec.md §4.5: "ends with a store c fallthrough that either inserts
	// the constraint into its store (if not already stored and not
	// never-stored) and returns success, or just returns success."
	if decl.NeverStored {
		buf.WriteString("  return SUCCESS;\n")
	} else {
		buf.WriteString(exec(r.tpl.storeActive, map[string]interface{}{"symbol": decl.Name}))
		r.emitWatch(buf, decl)
		buf.WriteString("  return SUCCESS;\n")
	}
	buf.WriteString("}\n")
	buf.WriteString(entryFunction(decl))
}

// entryFunction emits the public entry point for a constraint symbol
// (spec.md §4.5: "Each public entry c(a0...ak) allocates a fresh cid,
// builds the tuple, and tail-calls do_c with a sentinel end-iterator.").
func entryFunction(decl *model.ConstraintDecl) string {
	return fmt.Sprintf(
		"void %s(%s) {\n  cid_t cid = fresh_cid();\n  constraint_tuple c_args = {cid, args};\n  do_%s(c_args, end_iterator());\n}\n",
		decl.Name, paramList(decl), decl.Name,
	)
}

func paramList(decl *model.ConstraintDecl) string {
	out := ""
	for i, p := range decl.Params {
		if i > 0 {
			out += ", "
		}
		out += p.Type + " a" + strconv.Itoa(i)
	}
	return out
}

func (r *Renderer) block(buf *bytebufferpool.ByteBuffer, p *model.Program, b *abstract.Block) {
	fmt.Fprintf(buf, "%s: // occurrence %d of %s\n", b.Label, b.Occ.ActiveConstraintOccurrence, b.OccName)

	for _, step := range b.Steps {
		switch step.Kind {
		case abstract.StepStoreActive:
			buf.WriteString(exec(r.tpl.storeActive, map[string]interface{}{"symbol": b.OccName}))
			r.emitWatch(buf, declByName(p, b.OccName))
		case abstract.StepRemoveActive:
			buf.WriteString(exec(r.tpl.removeActive, nil))
		case abstract.StepTestPartnerEmpty:
			sym := partnerSymbol(b, step.PartnerIndex)
			fmt.Fprintf(buf, "  if (store_%s.empty()) goto %s;\n", sym, step.Label)
		case abstract.StepTestActiveArg:
			r.argTestStep(buf, step, true)
		case abstract.StepBindActiveArg:
			fmt.Fprintf(buf, "    %s = c_args[%d];\n", bindName(step), step.ArgIndex)
		case abstract.StepGuardClause:
			buf.WriteString(exec(r.tpl.guardTest, map[string]interface{}{
				"expr": visit.PrintExpr(step.Expr), "fail": guardFailTarget(step),
			}))
		case abstract.StepOpenPartnerLoop:
			k := strconv.Itoa(step.PartnerIndex)
			sym := partnerSymbol(b, step.PartnerIndex)
			if step.UseIndex >= 0 {
				buf.WriteString(exec(r.tpl.loopOpenIndexed, map[string]interface{}{
					"k": k, "symbol": sym, "index": strconv.Itoa(step.UseIndex),
				}))
			} else {
				buf.WriteString(exec(r.tpl.loopOpen, map[string]interface{}{"k": k, "symbol": sym}))
			}
		case abstract.StepTestPartnerArg:
			r.argTestStep(buf, step, false)
		case abstract.StepBindPartnerArg:
			fmt.Fprintf(buf, "    %s = it_%d.tuple().args[%d];\n", bindName(step), step.PartnerIndex, step.ArgIndex)
		case abstract.StepCidInequality:
			buf.WriteString(exec(r.tpl.cidInequality, map[string]interface{}{"k": strconv.Itoa(step.PartnerIndex)}))
		case abstract.StepHistoryCheck:
			buf.WriteString(exec(r.tpl.historyCheck, map[string]interface{}{"fail": step.Label}))
		case abstract.StepCommitRule:
			buf.WriteString(exec(r.tpl.commitRule, map[string]interface{}{"rule": b.Label}))
			if r.trace {
				buf.WriteString(exec(r.tpl.traceRule, map[string]interface{}{"rule": b.Label}))
			}
		case abstract.StepRemovePartner:
			buf.WriteString(exec(r.tpl.removePartner, map[string]interface{}{"k": strconv.Itoa(step.PartnerIndex)}))
		case abstract.StepEmitBody:
			buf.WriteString(visit.PrintBodyHost(step.Body))
		case abstract.StepTailGoto:
			buf.WriteString(exec(r.tpl.tailGoto, map[string]interface{}{"target": step.Label}))
		case abstract.StepCheckAliveActive:
			fmt.Fprintf(buf, "    if (!alive(c_args.cid)) goto %s;\n", step.Label)
		case abstract.StepCheckAlivePartner:
			fmt.Fprintf(buf, "    if (!alive(it_%d)) goto %s;\n", step.PartnerIndex, step.Label)
		case abstract.StepAdvanceIterator:
			fmt.Fprintf(buf, "    it_%d.next_and_unlock();\n", step.PartnerIndex)
		case abstract.StepCloseLoop:
			buf.WriteString(exec(r.tpl.loopClose, map[string]interface{}{"symbol": partnerSymbol(b, step.PartnerIndex)}))
		case abstract.StepExitSuccess:
			buf.WriteString("    return SUCCESS;\n")
		case abstract.StepGotoInapplicable:
			buf.WriteString(exec(r.tpl.gotoLabel, map[string]interface{}{"label": step.Label}))
		case abstract.StepLabel:
			buf.WriteString(exec(r.tpl.label, map[string]interface{}{"label": step.Label}))
		}
	}
}

func partnerSymbol(b *abstract.Block, partnerIndex int) string {
	if partnerIndex < 0 || partnerIndex >= len(b.Occ.Partners) {
		return b.OccName
	}
	return b.Occ.Partners[partnerIndex].Head.Name
}

func guardFailTarget(s abstract.Step) string {
	if s.Label != "" {
		return s.Label
	}
	return "next_" + strconv.Itoa(s.PartnerIndex)
}

func declByName(p *model.Program, name string) *model.ConstraintDecl {
	return p.DeclByName(name)
}

func modeCheck(m model.Mode) string {
	switch m {
	case model.ModeGround:
		return "EQ_GROUND"
	case model.ModeMutable:
		return "EQ_ADDRESS"
	default:
		return "EQ_ANY"
	}
}

// argTestStep renders one head-argument match (spec.md §4.4.1/§4.4.2):
// a repeated variable becomes a value-equality test against the earlier
// occurrence's slot (the cid/variable-identity check a repeated head
// variable requires), a literal becomes a value-equality test against the
// literal's text, and anything else falls back to the declared mode check.
func (r *Renderer) argTestStep(buf *bytebufferpool.ByteBuffer, step abstract.Step, active bool) {
	lhs := argRef(step.PartnerIndex, step.ArgIndex, active)
	fail := argFailTarget(step, active)
	switch {
	case step.RepeatPartner != abstract.NoRepeat:
		rhs := argRef(step.RepeatPartner, step.RepeatArg, step.RepeatPartner < 0)
		buf.WriteString(exec(r.tpl.argEqual, map[string]interface{}{"lhs": lhs, "rhs": rhs, "fail": fail}))
	case isLiteral(step.Expr):
		buf.WriteString(exec(r.tpl.argEqual, map[string]interface{}{"lhs": lhs, "rhs": visit.PrintExpr(step.Expr), "fail": fail}))
	default:
		buf.WriteString(exec(r.tpl.argTest, map[string]interface{}{"mode": modeCheck(step.Mode), "lhs": lhs, "fail": fail}))
	}
}

// argRef is the host-side lvalue for one head argument: the active
// constraint's incoming tuple for partnerIndex < 0, else the partner loop's
// current iterator.
func argRef(partnerIndex, argIndex int, active bool) string {
	if active {
		return fmt.Sprintf("c_args[%d]", argIndex)
	}
	return fmt.Sprintf("it_%d.tuple().args[%d]", partnerIndex, argIndex)
}

// argFailTarget names the goto target a failed argument match jumps to: the
// occurrence's inapplicable label for the active head (there is nothing
// else to try), or the next-candidate label for a partner (spec.md §4.4.2
// retries the next tuple in that partner's store, same target as
// StepCidInequality's next_${k}).
func argFailTarget(step abstract.Step, active bool) string {
	if active {
		return step.Label
	}
	return "next_" + strconv.Itoa(step.PartnerIndex)
}

func isLiteral(e model.Expr) bool {
	_, ok := e.(*model.Literal)
	return ok
}

// bindName is the host variable a head-pattern argument binds to: the
// pattern's own name when it is a logical variable (so later guard/body
// references to that name resolve to this binding), else a positional
// fallback.
func bindName(step abstract.Step) string {
	if lv, ok := step.Expr.(*model.LogicalVar); ok {
		return lv.Name
	}
	return fmt.Sprintf("local_%d", step.ArgIndex)
}

// emitWatch registers the just-stored tuple's variables for reactivation
// (spec.md §3.3, §5), unless decl carries the no_reactivate pragma.
func (r *Renderer) emitWatch(buf *bytebufferpool.ByteBuffer, decl *model.ConstraintDecl) {
	if decl == nil || decl.Pragmas.Has(model.PragmaNoReactivate) {
		return
	}
	buf.WriteString(exec(r.tpl.watchVars, map[string]interface{}{"symbol": decl.Name}))
}
