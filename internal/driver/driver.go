package driver

import (
	"fmt"
	"sort"

	"github.com/ATSOTECK/chrc/internal/analysis"
	"github.com/ATSOTECK/chrc/internal/compiler"
	"github.com/ATSOTECK/chrc/internal/lower/abstract"
	"github.com/ATSOTECK/chrc/internal/lower/host"
	"github.com/ATSOTECK/chrc/internal/model"
	"github.com/ATSOTECK/chrc/internal/occ"
	"github.com/ATSOTECK/chrc/internal/reorder"
)

// ProgramResult is one <chr> block's compiled output: its name, the
// rendered host-code text, advisory warnings collected along the way, and
// the abstract-lowering dump (SPEC_FULL.md §6.4) — one entry per occurrence
// rule, in the same rendering order as Rendered, for inspection/testing
// independent of the host-code text itself (spec.md §2's stated purpose for
// this layer).
type ProgramResult struct {
	Name         string
	Rendered     string
	Warnings     []analysis.UnusedRuleWarning
	AbstractDump []abstract.BlockDump
}

// Result is the whole-file compilation output: every program's result plus
// the stripped host file and the includes the input referenced (spec.md
// §7's "one program's failure does not abort sibling programs": every parsed
// program is compiled and appended to Programs, including one that produced
// errors, and Errors collects the diagnostics of all of them).
type Result struct {
	Programs     []ProgramResult
	StrippedHost string
	Includes     []compiler.Include
	Errors       []compiler.CompileError
}

// Compile runs the full pipeline described by SPEC_FULL.md §4.6 over source:
// lex+parse (internal/compiler), then per program — occurrence expansion
// (internal/occ), the three reorderings plus index inference
// (internal/reorder), abstract lowering with invariant checks
// (internal/lower/abstract), and host rendering (internal/lower/host) — each
// stage gated by the matching Options field. Mirrors the teacher's
// compiler.CompileSource entrypoint
// (_examples/ATSOTECK-rage/internal/compiler/compiler.go): one function
// that owns "parse, then run every pass, then hand back code or errors."
func Compile(source, filename string, opts Options) *Result {
	progs, includes, errs := compiler.ParseFile(source, filename)
	res := &Result{
		StrippedHost: stripHostText(source, filename),
		Includes:     includes,
		Errors:       errs,
	}

	for _, p := range progs {
		pr, perrs := compileProgram(p, opts)
		res.Errors = append(res.Errors, perrs...)
		res.Programs = append(res.Programs, pr)
	}
	return res
}

// stripHostText reassembles the non-CHR host-language spans of source,
// verbatim, for the "stripped" host file spec.md §6.2's
// chr_output_files_only knob names. Re-lexing (rather than threading the
// host chunks through ParseFile) keeps this a pure function of source text,
// matching the teacher's own "host file" concept of everything outside the
// embedded blocks.
func stripHostText(source, filename string) string {
	toks, _ := compiler.NewLexer(source, filename).Tokenize()
	out := ""
	for _, t := range toks {
		if t.Kind == model.TK_HostChunk {
			out += t.Literal
		}
	}
	return out
}

func compileProgram(p *model.Program, opts Options) (ProgramResult, []compiler.CompileError) {
	var errs []compiler.CompileError

	if opts.NeverStoredEnabled {
		analysis.NeverStored(p)
	}

	var warnings []analysis.UnusedRuleWarning
	if opts.WarnUnusedRuleEnabled {
		graph := analysis.BuildDependencyGraph(p)
		warnings = analysis.UnusedRules(p, graph)
	}

	occOpts := occ.Options{NeverStoredEnabled: opts.NeverStoredEnabled}
	byRule := occ.ExpandProgram(p, occOpts)

	bySymbol := make(map[string][]*model.OccRule)
	for _, r := range p.Rules {
		for _, o := range byRule[r.ID] {
			sym := o.Active.Head.Name
			bySymbol[sym] = append(bySymbol[sym], o)
		}
	}

	for _, r := range p.Rules {
		for _, o := range byRule[r.ID] {
			guard := r.Guard
			if opts.HeadReorderEnabled {
				reorder.HeadReorder(o, guard, nil)
			}
			if opts.GuardReorderEnabled {
				reorder.GuardReorder(o)
			}
			reorder.IndexInference(p, o, opts.ConstraintStoreIndexEnabled)
			if err := abstract.CheckGuardSplitSoundness(o); err != nil {
				errs = append(errs, compiler.CompileError{Pos: r.StartPos, Severity: compiler.SevError, Message: err.Error()})
			}
		}
	}

	occOrderOpts := reorder.OccurrenceReorderOptions{PreferKeepBeforeDelete: opts.OccurrencesReorderEnabled}
	for sym, occs := range bySymbol {
		bySymbol[sym] = reorder.OccurrenceReorder(occs, occOrderOpts)
	}

	for _, decl := range p.Decls {
		decl.Frozen = true
	}

	blocksBySymbol := make(map[string][]*abstract.Block)
	ruleOf := make(map[model.RuleID]*model.Rule, len(p.Rules))
	for _, r := range p.Rules {
		ruleOf[r.ID] = r
	}
	for sym, occs := range bySymbol {
		for _, o := range occs {
			r := ruleOf[o.Rule]
			b := abstract.Lower(p, r, o)
			if err := abstract.CheckLockDiscipline(b); err != nil {
				errs = append(errs, compiler.CompileError{Pos: r.StartPos, Severity: compiler.SevError, Message: err.Error()})
			}
			decl := p.DeclByName(sym)
			if decl != nil {
				if err := abstract.CheckNeverStoredClosure(decl, b); err != nil {
					errs = append(errs, compiler.CompileError{Pos: r.StartPos, Severity: compiler.SevError, Message: err.Error()})
				}
			}
			blocksBySymbol[sym] = append(blocksBySymbol[sym], b)
		}
	}

	renderer := host.NewRenderer()
	if opts.Trace {
		renderer = host.NewTracingRenderer()
	}
	rendered := renderer.Program(p, blocksBySymbol)
	if opts.LineErrorEnabled {
		rendered = lineDirectives(p) + rendered
	}

	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Pos.Offset < warnings[j].Pos.Offset })

	var dump []abstract.BlockDump
	for _, decl := range p.Decls {
		for _, b := range blocksBySymbol[decl.Name] {
			dump = append(dump, b.Dump())
		}
	}

	return ProgramResult{Name: p.Name, Rendered: rendered, Warnings: warnings, AbstractDump: dump}, errs
}

// lineDirectives emits one `// #line N "file" (rule name)` comment per rule, in source
// order, for spec.md §6.2's line_error knob ("emit source-position
// directives in output"). Host lowering does not thread per-step source
// positions through abstract.Step (spec.md §1 scopes the exact target
// syntax as non-normative), so this implementation emits a rule-granularity
// directive block up front rather than interleaving directives with every
// generated line — coarser than a true preprocessor #line map, but it still
// lets a reader map emitted output back to the rule that produced it.
func lineDirectives(p *model.Program) string {
	out := ""
	for _, r := range p.Rules {
		out += fmt.Sprintf("// #line %d %q (rule %s)\n", r.StartPos.Line, r.StartPos.Filename, r.Name)
	}
	return out
}

// ProgramNames returns the CHR program names ParseFile found, in source
// order, for spec.md §6.2's chr_prg_names_only knob.
func ProgramNames(res *Result) []string {
	out := make([]string, len(res.Programs))
	for i, pr := range res.Programs {
		out[i] = pr.Name
	}
	return out
}

// OutputFilenames returns the output filenames spec.md §6.2's
// chr_output_files_only knob must print: one rendered-source file per
// program plus the stripped host file, using filename's base name as the
// stem.
func OutputFilenames(res *Result, stem string) []string {
	out := make([]string, 0, len(res.Programs)+1)
	for _, pr := range res.Programs {
		out = append(out, fmt.Sprintf("%s.%s.chr.out", stem, pr.Name))
	}
	out = append(out, stem+".host")
	return out
}
