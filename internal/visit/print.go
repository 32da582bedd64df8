package visit

import (
	"fmt"
	"strings"

	"github.com/ATSOTECK/chrc/internal/model"
)

// PrintExpr renders e as a parenthesized infix form, used for debug dumps
// and for the round-trip property in spec.md §8 ("Parsing then
// pretty-printing a rule ... and re-parsing yields an isomorphic AST").
func PrintExpr(e model.Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e model.Expr) {
	switch n := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *model.Ident:
		sb.WriteString(n.Name)
	case *model.Literal:
		sb.WriteString(n.Text)
	case *model.LogicalVar:
		sb.WriteString(n.Name)
	case *model.HostVar:
		sb.WriteString(n.Name)
	case *model.UnaryOp:
		if n.Postfix {
			fmt.Fprintf(sb, "(%s%s)", exprStr(n.Child), n.Op)
		} else {
			fmt.Fprintf(sb, "(%s%s)", n.Op, exprStr(n.Child))
		}
	case *model.BinaryOp:
		fmt.Fprintf(sb, "(%s %s %s)", exprStr(n.Left), n.Op, exprStr(n.Right))
	case *model.TernaryOp:
		fmt.Fprintf(sb, "(%s %s %s %s %s)", exprStr(n.A), n.Op1, exprStr(n.B), n.Op2, exprStr(n.C))
	case *model.HostCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprStr(a)
		}
		fmt.Fprintf(sb, "%s%s%s%s", n.Name, n.LDelim, strings.Join(args, ", "), n.RDelim)
	case *model.ChrCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprStr(a)
		}
		fmt.Fprintf(sb, "%s(%s)", n.Name, strings.Join(args, ", "))
	case *model.ChrCount:
		fmt.Fprintf(sb, "chr_count(%s)", exprStr(n.Constraint))
	default:
		fmt.Fprintf(sb, "<expr %T>", n)
	}
}

func exprStr(e model.Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

// PrintBody renders b as an indented debug tree, grounded on the host
// compiler's internal/utils ast-printing helper (one case per node kind,
// indent-by-depth), generalized here to the CHR body sum type.
func PrintBody(b model.Body, indent int) string {
	var sb strings.Builder
	writeBody(&sb, b, indent)
	return sb.String()
}

func writeBody(sb *strings.Builder, b model.Body, indent int) {
	prefix := strings.Repeat("  ", indent)
	switch n := b.(type) {
	case nil, *model.Empty:
		fmt.Fprintf(sb, "%sEmpty\n", prefix)
	case *model.Keyword:
		names := [...]string{"success", "failure", "stop"}
		fmt.Fprintf(sb, "%sKeyword(%s)\n", prefix, names[n.Kind])
	case *model.HostExpr:
		fmt.Fprintf(sb, "%sHostExpr(%s)\n", prefix, exprStr(n.Expr))
	case *model.VarDecl:
		fmt.Fprintf(sb, "%sVarDecl(%s = %s)\n", prefix, n.Name, exprStr(n.Init))
	case *model.Unify:
		fmt.Fprintf(sb, "%sUnify(%s %%= %s)\n", prefix, exprStr(n.Left), exprStr(n.Right))
	case *model.ChrCallStmt:
		fmt.Fprintf(sb, "%sChrCall(%s)\n", prefix, n.Name)
	case *model.Sequence:
		sep := ","
		if n.Sep == model.SeqDisjunctive {
			sep = ";"
		}
		fmt.Fprintf(sb, "%sSequence(%s)\n", prefix, sep)
		for _, c := range n.Children {
			writeBody(sb, c, indent+1)
		}
	case *model.Behavior:
		fmt.Fprintf(sb, "%sBehavior\n", prefix)
		writeBody(sb, n.BehaviorBody, indent+1)
	case *model.Try:
		fmt.Fprintf(sb, "%sTry(bt=%v)\n", prefix, n.AlwaysBacktrack)
		writeBody(sb, n.TryBody, indent+1)
	default:
		fmt.Fprintf(sb, "%s<body %T>\n", prefix, n)
	}
}

// PrintBodyHost renders b as host-language pseudo-statements (spec.md
// §4.4.5), the structural counterpart to PrintBody's debug tree: same node
// kinds, same recursion shape, but emitted as runnable-looking text instead
// of a labeled tree, for internal/lower/host's StepEmitBody rendering.
func PrintBodyHost(b model.Body) string {
	var sb strings.Builder
	writeBodyHost(&sb, b)
	return sb.String()
}

func writeBodyHost(sb *strings.Builder, b model.Body) {
	switch n := b.(type) {
	case nil, *model.Empty:
		// nothing to emit
	case *model.Keyword:
		switch n.Kind {
		case model.KwSuccess:
			sb.WriteString("    return SUCCESS;\n")
		case model.KwFailure:
			sb.WriteString("    return FAILURE;\n")
		case model.KwStop:
			sb.WriteString("    return STOP;\n")
		}
	case *model.HostExpr:
		fmt.Fprintf(sb, "    %s;\n", exprStr(n.Expr))
	case *model.VarDecl:
		fmt.Fprintf(sb, "    auto %s = %s;\n", n.Name, exprStr(n.Init))
	case *model.Unify:
		fmt.Fprintf(sb, "    if (!unify(%s, %s)) goto body_failure;\n", exprStr(n.Left), exprStr(n.Right))
	case *model.ChrCallStmt:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprStr(a)
		}
		fmt.Fprintf(sb, "    %s(%s);\n", n.Name, strings.Join(args, ", "))
	case *model.Sequence:
		for i, c := range n.Children {
			if n.Sep == model.SeqDisjunctive && i > 0 {
				sb.WriteString("    // or\n")
			}
			writeBodyHost(sb, c)
		}
	case *model.Behavior:
		writeBodyHost(sb, n.BehaviorBody)
	case *model.Try:
		fmt.Fprintf(sb, "    // try (bt=%v)\n", n.AlwaysBacktrack)
		writeBodyHost(sb, n.TryBody)
	default:
		fmt.Fprintf(sb, "    /* %T */\n", n)
	}
}

// PrintRule renders a full rule head/guard/body for diagnostics and for the
// abstract-lowering dump's human-readable header.
func PrintRule(r *model.Rule) string {
	var sb strings.Builder
	if r.Name != "" {
		fmt.Fprintf(&sb, "%s @ ", r.Name)
	}
	writeHeads(&sb, r.KeepHead)
	if len(r.DeleteHead) > 0 {
		sb.WriteString(" \\ ")
		writeHeads(&sb, r.DeleteHead)
	}
	switch r.Op {
	case model.OpPropagation:
		sb.WriteString(" ==> ")
	case model.OpPropagationNoHistory:
		sb.WriteString(" =>> ")
	default:
		sb.WriteString(" <=> ")
	}
	for i, g := range r.Guard {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(exprStr(g))
	}
	if len(r.Guard) > 0 {
		sb.WriteString(" | ")
	}
	sb.WriteString(PrintBody(r.Body, 0))
	return sb.String()
}

func writeHeads(sb *strings.Builder, heads []model.HeadConstraint) {
	for i, h := range heads {
		if i > 0 {
			sb.WriteString(", ")
		}
		args := make([]string, len(h.Args))
		for j, a := range h.Args {
			args[j] = exprStr(a)
		}
		fmt.Fprintf(sb, "%s(%s)", h.Name, strings.Join(args, ", "))
	}
}

// Apply is the lambda-apply visitor: it runs fn over every expression in
// the body, folding each into the accumulator, seeded at zero. It mirrors the
// teacher's optimizer pattern of a single exhaustive type-switch driving a
// fold, generalized to any accumulator type via generics.
func Apply[T any](b model.Body, zero T, fn func(T, model.Expr) T) T {
	acc := zero
	WalkBody(b, func(model.Body) bool { return true }, func(e model.Expr) bool {
		acc = fn(acc, e)
		return true
	})
	return acc
}
