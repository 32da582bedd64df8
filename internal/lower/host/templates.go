// Package host renders the abstract steps produced by internal/lower/abstract
// into a concrete (if intentionally generic) host-language matching
// program (spec.md §4.4, §4.5). Per spec.md §1's scope note — "Host-
// language code generation syntax itself (string emission templates); the
// spec fixes the semantics of the emitted program, not its textual form" —
// the exact target syntax is not normative; this package emits a small
// C-like pseudo-language text whose control structure (labeled blocks,
// goto, nested for-loops) is a direct transliteration of the abstract step
// stream, so a reader can check the two against each other line by line.
//
// Rendering uses valyala/fasttemplate for each step shape (precompiled once
// per Renderer) and valyala/bytebufferpool to back the output buffer, per
// SPEC_FULL.md §6.5 — the same "textual program generation" role those
// libraries play, transitively, in the teacher's HTTP stress-test harness.
package host

import (
	"github.com/valyala/fasttemplate"
)

const (
	tagStart = "${"
	tagEnd   = "}"
)

// templateSet holds one precompiled fasttemplate.Template per step shape
// that needs textual substitution, built once per Renderer so repeated
// Execute calls across many occurrence rules avoid re-parsing the template
// strings.
type templateSet struct {
	dispatchHeader  *fasttemplate.Template
	loopOpen        *fasttemplate.Template
	loopOpenIndexed *fasttemplate.Template
	loopClose       *fasttemplate.Template
	guardTest       *fasttemplate.Template
	argTest         *fasttemplate.Template
	argEqual        *fasttemplate.Template
	cidInequality   *fasttemplate.Template
	historyCheck    *fasttemplate.Template
	storeActive     *fasttemplate.Template
	watchVars       *fasttemplate.Template
	removeActive    *fasttemplate.Template
	removePartner   *fasttemplate.Template
	commitRule      *fasttemplate.Template
	traceRule       *fasttemplate.Template
	tailGoto        *fasttemplate.Template
	gotoLabel       *fasttemplate.Template
	label           *fasttemplate.Template
}

func newTemplateSet() *templateSet {
	t := func(s string) *fasttemplate.Template { return fasttemplate.New(s, tagStart, tagEnd) }
	return &templateSet{
		dispatchHeader:  t("void do_${symbol}(constraint_tuple c_args, iterator opt_iterator) {\n"),
		loopOpen:        t("  for (iterator it_${k} = store_${symbol}.begin(); it_${k}.valid(); ) {\n"),
		loopOpenIndexed: t("  for (iterator it_${k} = store_${symbol}.begin_indexed(${index}, key_${k}); it_${k}.valid(); ) {\n"),
		loopClose:       t("  } // close ${symbol}\n"),
		guardTest:       t("    if (!(${expr})) goto ${fail};\n"),
		argTest:         t("    if (!match_arg(${mode}, ${lhs})) goto ${fail};\n"),
		argEqual:        t("    if (!host_equal(${lhs}, ${rhs})) goto ${fail};\n"),
		cidInequality:   t("    if (cid_eq(it_${k})) goto next_${k};\n"),
		historyCheck:    t("    if (!history.check(tuple_of_cids)) goto ${fail};\n"),
		storeActive:     t("    store_${symbol}.add(c_args);\n"),
		watchVars:       t("    store_${symbol}.watch(c_args);\n"),
		removeActive:    t("    /* active constraint not stored */\n"),
		removePartner:   t("    it_${k}.kill(); it_${k}.unlock();\n"),
		commitRule:      t("    stats.rule_fired(\"${rule}\");\n"),
		traceRule:       t("    trc.RuleFired(\"${rule}\", tuple_of_cids);\n"),
		tailGoto:        t("    goto ${target};\n"),
		gotoLabel:       t("    goto ${label};\n"),
		label:           t("${label}:\n"),
	}
}

func exec(tpl *fasttemplate.Template, args map[string]interface{}) string {
	return tpl.ExecuteString(args)
}
