package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ATSOTECK/chrc/internal/model"
)

// Precedence levels for Pratt parsing of CHR host expressions, ordered the
// way the teacher's parser_exprs.go orders its precedence table, trimmed to
// the operator surface this grammar actually admits (spec.md §6.1).
const (
	precNone = iota
	precLowest
	precAssign // = (right-assoc; a guard-level assignment clause, not %=)
	precOrOr   // ||
	precAndAnd // &&
	precCompare // == != < > =< >=
	precAddSub  // + -
	precMulDiv  // * / %
	precUnary   // unary + - !
)

// Include is a parsed <chr_include name="..." /> directive; resolving the
// named file and merging its programs is a driver-level concern (spec.md
// §7.1's include-file-not-found error carries the include site's position).
type Include struct {
	Name string
	Pos  model.Position
}

// Parser turns a CHR-surface token stream into zero or more model.Program
// values plus any include directives found along the way, following the
// teacher's Parser shape (_examples/ATSOTECK-rage/internal/compiler/parser.go):
// a flat token slice, an integer cursor, and an accumulated error slice.
type Parser struct {
	tokens   []model.Token
	pos      int
	filename string
	errors   []CompileError

	declsByName map[string]model.DeclID
}

// ParseFile lexes and parses source in one step, returning every CHR program
// found, every include directive found, and every diagnostic collected along
// the way (lexical and syntactic).
func ParseFile(source, filename string) ([]*model.Program, []Include, []CompileError) {
	lx := NewLexer(source, filename)
	toks, lexErrs := lx.Tokenize()

	p := &Parser{tokens: toks, filename: filename}
	var programs []*model.Program
	var includes []Include

	for !p.isAtEnd() {
		switch p.current().Kind {
		case model.TK_ChrInclude:
			includes = append(includes, p.parseInclude())
		case model.TK_ChrOpen:
			if prog := p.parseProgram(); prog != nil {
				programs = append(programs, prog)
			}
		default:
			p.advance()
		}
	}

	errs := append(append([]CompileError{}, lexErrs...), p.errors...)
	return programs, includes, errs
}

// --- token cursor helpers ---

func (p *Parser) current() model.Token {
	if p.pos >= len(p.tokens) {
		return model.Token{Kind: model.TK_EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() model.Token {
	if p.pos+1 >= len(p.tokens) {
		return model.Token{Kind: model.TK_EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() model.Token {
	tok := p.current()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) isAtEnd() bool { return p.current().Kind == model.TK_EOF }

func (p *Parser) check(kind model.TokenKind) bool { return p.current().Kind == kind }

func (p *Parser) match(kind model.TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind model.TokenKind) model.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.addErrorf("expected %s, got %s", kind, p.current().Kind)
	return p.current()
}

func (p *Parser) addErrorf(format string, args ...any) {
	p.errors = append(p.errors, CompileError{
		Pos:      p.current().Pos,
		Severity: SevError,
		Message:  fmt.Sprintf(format, args...),
	})
}

// prevEndPos returns the end position of the most recently consumed token,
// used as a node's EndPos when no specific terminator token was captured.
func (p *Parser) prevEndPos() model.Position {
	if p.pos == 0 {
		return model.Position{Filename: p.filename}
	}
	return p.tokens[p.pos-1].EndPos
}

func (p *Parser) lookupDecl(name string) (model.DeclID, bool) {
	id, ok := p.declsByName[name]
	if !ok {
		p.addErrorf("undeclared CHR constraint %q", name)
		return model.DeclID(-1), false
	}
	return id, true
}

// --- top level: includes and <chr> blocks ---

func (p *Parser) parseInclude() Include {
	start := p.advance() // TK_ChrInclude
	var name string
	for !p.check(model.TK_TagEnd) && !p.check(model.TK_TagSelfEnd) && !p.isAtEnd() {
		if p.check(model.TK_Identifier) && p.current().Literal == "name" {
			p.advance()
			p.expect(model.TK_Assign)
			if p.check(model.TK_StringLit) {
				name = unquote(p.advance().Literal)
			}
			continue
		}
		p.advance()
	}
	if p.check(model.TK_TagEnd) || p.check(model.TK_TagSelfEnd) {
		p.advance()
	}
	if name == "" {
		p.addErrorf("chr_include missing required name attribute")
	}
	return Include{Name: name, Pos: start.Pos}
}

func (p *Parser) parseProgram() *model.Program {
	start := p.advance() // TK_ChrOpen
	prog := &model.Program{StartPos: start.Pos}
	prevDecls := p.declsByName
	p.declsByName = make(map[string]model.DeclID)
	defer func() { p.declsByName = prevDecls }()

	for !p.check(model.TK_TagEnd) && !p.isAtEnd() {
		p.parseAttr(prog)
	}
	if p.check(model.TK_TagEnd) {
		p.advance()
	}

	for !p.check(model.TK_ChrClose) && !p.isAtEnd() {
		if p.check(model.TK_ChrConstraint) {
			p.parseDecl(prog)
		} else {
			p.parseRule(prog)
		}
	}

	end := p.current()
	if p.check(model.TK_ChrClose) {
		end = p.advance()
	} else {
		p.addErrorf("expected </chr>, got %s", p.current().Kind)
	}
	prog.EndPos = end.EndPos
	return prog
}

func (p *Parser) parseAttr(prog *model.Program) {
	if !p.check(model.TK_Identifier) {
		p.advance()
		return
	}
	key := p.advance().Literal
	p.expect(model.TK_Assign)
	if !p.check(model.TK_StringLit) {
		p.addErrorf("expected string value for attribute %q", key)
		return
	}
	val := unquote(p.advance().Literal)

	switch key {
	case "name":
		prog.Name = val
	case "parameters":
		prog.Params = parseParamDeclList(val)
	case "template_parameters":
		prog.TemplateParams = parseParamDeclList(val)
	case "auto_persistent":
		prog.AutoPersistent = strings.EqualFold(val, "TRUE")
	case "auto_catch_failure":
		prog.AutoCatchFailure = strings.EqualFold(val, "TRUE")
	default:
		p.addErrorf("unrecognized <chr> attribute %q", key)
	}
}

// parseParamDeclList splits a "type name, type name" attribute value into
// Params. These are program-level template/formal parameters, not
// constraint-declaration arguments, so Mode is set to ModeAny — the
// surface grammar has no mode annotation here.
func parseParamDeclList(s string) []model.Param {
	var out []model.Param
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, model.Param{Mode: model.ModeAny, Type: part})
	}
	return out
}

func unquote(lit string) string {
	if len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"' {
		if s, err := strconv.Unquote(lit); err == nil {
			return s
		}
		return lit[1 : len(lit)-1]
	}
	return lit
}

// --- declarations ---

func (p *Parser) parseDecl(prog *model.Program) {
	start := p.advance() // chr_constraint
	nameTok := p.expect(model.TK_Identifier)
	p.expect(model.TK_LParen)

	var params []model.Param
	if !p.check(model.TK_RParen) {
		for {
			params = append(params, p.parseDeclParam())
			if !p.match(model.TK_Comma) {
				break
			}
		}
	}
	p.expect(model.TK_RParen)

	pragmas := p.parsePragmas()

	end := p.current()
	if p.check(model.TK_Semi) {
		end = p.advance()
	} else {
		p.addErrorf("expected ';' after chr_constraint declaration")
	}

	decl := &model.ConstraintDecl{
		Name:     nameTok.Literal,
		Params:   params,
		Pragmas:  pragmas,
		StartPos: start.Pos,
		EndPos:   end.EndPos,
	}
	id := prog.AddDecl(decl)
	if nameTok.Literal != "" {
		p.declsByName[nameTok.Literal] = id
	}
}

func (p *Parser) parseDeclParam() model.Param {
	var mode model.Mode
	switch p.current().Kind {
	case model.TK_Plus:
		p.advance()
		mode = model.ModeGround
	case model.TK_Minus:
		p.advance()
		mode = model.ModeMutable
	case model.TK_Quest:
		p.advance()
		mode = model.ModeAny
	default:
		p.addErrorf("expected parameter mode (+, ?, -), got %s", p.current().Kind)
	}
	var typeParts []string
	for !p.check(model.TK_Comma) && !p.check(model.TK_RParen) && !p.isAtEnd() {
		typeParts = append(typeParts, p.advance().Literal)
	}
	return model.Param{Mode: mode, Type: strings.Join(typeParts, " ")}
}

// parsePragmas consumes zero or more "#pragma_name" annotations, legal after
// a constraint declaration, a head constraint, or a body statement (spec.md
// §6.1 and §3.2).
func (p *Parser) parsePragmas() model.PragmaSet {
	var set model.PragmaSet
	for p.check(model.TK_Hash) {
		p.advance()
		var pr model.Pragma
		switch p.current().Kind {
		case model.TK_CatchFailure:
			pr = model.PragmaCatchFailure
		case model.TK_Passive:
			pr = model.PragmaPassive
		case model.TK_Bang:
			pr = model.PragmaBang
		case model.TK_NoHistory:
			pr = model.PragmaNoHistory
		case model.TK_Persistent:
			pr = model.PragmaPersistent
		case model.TK_NoReactivate:
			pr = model.PragmaNoReactivate
		default:
			p.addErrorf("unknown pragma %q", p.current().Literal)
			p.advance()
			continue
		}
		p.advance()
		set = set.With(pr)
	}
	return set
}

// --- rules ---

func (p *Parser) parseRule(prog *model.Program) {
	start := p.current()

	var name string
	if (p.check(model.TK_Identifier) || p.check(model.TK_LogicalVar)) && p.peek().Kind == model.TK_At {
		name = p.advance().Literal
		p.advance() // @
	}

	firstHeads := p.parseHeadList()
	var secondHeads []model.HeadConstraint
	hasBackslash := p.match(model.TK_Backslash)
	if hasBackslash {
		secondHeads = p.parseHeadList()
	}

	var op model.RuleOp
	switch p.current().Kind {
	case model.TK_Simpagation:
		op = model.OpSimpagation
		p.advance()
	case model.TK_Propagation:
		op = model.OpPropagation
		p.advance()
	case model.TK_PropagationNoHistory:
		op = model.OpPropagationNoHistory
		p.advance()
	default:
		p.addErrorf("expected a rule operator (==>, =>>, <=>), got %s", p.current().Kind)
	}

	// "Hk \ Hd <=> B" keeps Hk and deletes Hd. A bare "H <=> B" (no
	// backslash) is pure simplification: the whole head is deleted. A bare
	// "H ==>/=>>  B" never deletes anything, so the whole head is kept
	// (model.Rule.Kind derives propagation from an empty DeleteHead).
	var keepHead, delHead []model.HeadConstraint
	switch {
	case hasBackslash:
		keepHead, delHead = firstHeads, secondHeads
	case op == model.OpSimpagation:
		delHead = firstHeads
	default:
		keepHead = firstHeads
	}

	guard := p.maybeParseGuard()
	body := p.parseDisjunction()

	end := p.current()
	if p.check(model.TK_SemiSemi) {
		end = p.advance()
	} else {
		p.addErrorf("expected ';;' to terminate rule, got %s", p.current().Kind)
	}

	prog.AddRule(&model.Rule{
		Name:       name,
		KeepHead:   keepHead,
		DeleteHead: delHead,
		Op:         op,
		Guard:      guard,
		Body:       body,
		StartPos:   start.Pos,
		EndPos:     end.EndPos,
	})
}

func (p *Parser) parseHeadList() []model.HeadConstraint {
	var out []model.HeadConstraint
	for {
		out = append(out, p.parseHeadConstraint())
		if !p.match(model.TK_Comma) {
			break
		}
	}
	return out
}

func (p *Parser) parseHeadConstraint() model.HeadConstraint {
	start := p.current()
	nameTok := p.expect(model.TK_Identifier)
	p.expect(model.TK_LParen)

	var args []model.Expr
	if !p.check(model.TK_RParen) {
		for {
			args = append(args, p.parseExpression())
			if !p.match(model.TK_Comma) {
				break
			}
		}
	}
	p.expect(model.TK_RParen)

	pragmas := p.parsePragmas()
	decl, _ := p.lookupDecl(nameTok.Literal)

	return model.HeadConstraint{
		Decl:     decl,
		Name:     nameTok.Literal,
		Args:     args,
		Pragmas:  pragmas,
		StartPos: start.Pos,
		EndPos:   p.prevEndPos(),
	}
}

// maybeParseGuard scans ahead (tracking parenthesis depth) for a top-level
// '|' before the rule's terminating ';;'; if found, everything up to it is a
// comma-separated guard clause list, otherwise the rule has no guard.
func (p *Parser) maybeParseGuard() []model.Expr {
	if !p.guardAhead() {
		return nil
	}
	var clauses []model.Expr
	for {
		clauses = append(clauses, p.parseExpression())
		if !p.match(model.TK_Comma) {
			break
		}
	}
	p.expect(model.TK_Pipe)
	return clauses
}

func (p *Parser) guardAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case model.TK_LParen:
			depth++
		case model.TK_RParen:
			depth--
		case model.TK_Pipe:
			if depth == 0 {
				return true
			}
		case model.TK_SemiSemi, model.TK_EOF:
			return false
		}
	}
	return false
}

// --- body statements ---

func (p *Parser) parseDisjunction() model.Body {
	start := p.current()
	first := p.parseConjunction()
	if !p.check(model.TK_Semi) {
		return first
	}
	children := []model.Body{first}
	for p.match(model.TK_Semi) {
		children = append(children, p.parseConjunction())
	}
	return &model.Sequence{Sep: model.SeqDisjunctive, Children: children, StartPos: start.Pos, EndPos: p.prevEndPos()}
}

func (p *Parser) parseConjunction() model.Body {
	start := p.current()
	if p.atBodyBoundary() {
		return &model.Empty{StartPos: start.Pos}
	}
	first := p.parseBodyStmt()
	if !p.check(model.TK_Comma) {
		return first
	}
	children := []model.Body{first}
	for p.match(model.TK_Comma) {
		children = append(children, p.parseBodyStmt())
	}
	return &model.Sequence{Sep: model.SeqConjunctive, Children: children, StartPos: start.Pos, EndPos: p.prevEndPos()}
}

func (p *Parser) atBodyBoundary() bool {
	switch p.current().Kind {
	case model.TK_SemiSemi, model.TK_Semi, model.TK_RParen, model.TK_RBrace, model.TK_EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseBodyStmt() model.Body {
	switch p.current().Kind {
	case model.TK_Success:
		tok := p.advance()
		return &model.Keyword{Kind: model.KwSuccess, StartPos: tok.Pos, EndPos: tok.EndPos}
	case model.TK_Failure:
		tok := p.advance()
		return &model.Keyword{Kind: model.KwFailure, StartPos: tok.Pos, EndPos: tok.EndPos}
	case model.TK_Stop:
		tok := p.advance()
		return &model.Keyword{Kind: model.KwStop, StartPos: tok.Pos, EndPos: tok.EndPos}
	case model.TK_Let:
		return p.parseVarDecl()
	case model.TK_Try, model.TK_TryBt:
		return p.parseTry()
	case model.TK_Behavior, model.TK_Exists, model.TK_ExistsIt, model.TK_Forall, model.TK_ForallIt:
		return p.parseBehaviorLike()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseVarDecl() model.Body {
	start := p.advance() // let
	nameTok := p.current()
	if nameTok.Kind != model.TK_Identifier && nameTok.Kind != model.TK_LogicalVar {
		p.addErrorf("expected variable name after 'let', got %s", nameTok.Kind)
	} else {
		p.advance()
	}
	p.expect(model.TK_Assign)
	init := p.parseExpression()
	return &model.VarDecl{Name: nameTok.Literal, Init: init, StartPos: start.Pos, EndPos: p.prevEndPos()}
}

func (p *Parser) parseTry() model.Body {
	kw := p.advance() // try | try_bt
	always := kw.Kind == model.TK_TryBt
	var outcome string
	if p.check(model.TK_Identifier) {
		outcome = p.advance().Literal
	}
	p.expect(model.TK_LBrace)
	body := p.parseDisjunction()
	p.expect(model.TK_RBrace)
	return &model.Try{AlwaysBacktrack: always, OutcomeVar: outcome, TryBody: body, StartPos: kw.Pos, EndPos: p.prevEndPos()}
}

// parseBehaviorLike parses the bounded-search-loop forms behavior/exists/
// exists_it/forall/forall_it into a single canonical model.Behavior node
// (spec.md §3.2's "sugar the body builder expands ... no separate node kind
// survives parsing"). The concrete "keyword(stop-expr) { body }" surface
// syntax used here is this compiler's own choice where the normative text
// names the keywords without giving their surrounding grammar; see
// DESIGN.md for that decision.
func (p *Parser) parseBehaviorLike() model.Body {
	kw := p.advance()
	p.expect(model.TK_LParen)
	var stop model.Expr
	if !p.check(model.TK_RParen) {
		stop = p.parseExpression()
	}
	p.expect(model.TK_RParen)
	p.expect(model.TK_LBrace)
	body := p.parseDisjunction()
	p.expect(model.TK_RBrace)
	empty := &model.Empty{StartPos: p.prevEndPos()}
	return &model.Behavior{
		StopCondition:     stop,
		BehaviorBody:       body,
		OnSucceededAlt:     empty,
		OnFailedAlt:        empty,
		OnSucceededStatus:  empty,
		OnFailedStatus:     empty,
		StartPos:           kw.Pos,
		EndPos:             p.prevEndPos(),
	}
}

func (p *Parser) parseExprStmt() model.Body {
	start := p.current()
	expr := p.parseExpression()
	if expr == nil {
		p.advance()
		return &model.Empty{StartPos: start.Pos}
	}
	if p.match(model.TK_Unify) {
		rhs := p.parseExpression()
		return &model.Unify{Left: expr, Right: rhs, StartPos: start.Pos, EndPos: p.prevEndPos()}
	}
	if call, ok := expr.(*model.HostCall); ok {
		if id, found := p.declsByName[call.Name]; found {
			pragmas := p.parsePragmas()
			return &model.ChrCallStmt{
				Decl: id, Name: call.Name, Args: call.Args, Pragmas: pragmas,
				StartPos: call.StartPos, EndPos: p.prevEndPos(),
			}
		}
	}
	pragmas := p.parsePragmas()
	return &model.HostExpr{Expr: expr, Pragmas: pragmas, StartPos: start.Pos, EndPos: p.prevEndPos()}
}

// --- expressions ---

func (p *Parser) parseExpression() model.Expr {
	return p.parsePrecedence(precLowest)
}

func infixPrecedence(k model.TokenKind) int {
	switch k {
	case model.TK_Assign:
		return precAssign
	case model.TK_OrOr:
		return precOrOr
	case model.TK_AndAnd:
		return precAndAnd
	case model.TK_Eq, model.TK_Ne, model.TK_Lt, model.TK_Gt, model.TK_Le, model.TK_Ge:
		return precCompare
	case model.TK_Plus, model.TK_Minus:
		return precAddSub
	case model.TK_Star, model.TK_Slash, model.TK_Percent:
		return precMulDiv
	default:
		return precNone
	}
}

func (p *Parser) parsePrecedence(minPrec int) model.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		prec := infixPrecedence(p.current().Kind)
		if prec == precNone || prec < minPrec {
			break
		}
		opTok := p.advance()
		nextMin := prec + 1
		if opTok.Kind == model.TK_Assign { // right-associative
			nextMin = prec
		}
		right := p.parsePrecedence(nextMin)
		left = &model.BinaryOp{Op: opTok.Literal, Left: left, Right: right, StartPos: left.Pos(), EndPos: p.prevEndPos()}
	}
	return left
}

func (p *Parser) parseUnary() model.Expr {
	switch p.current().Kind {
	case model.TK_Minus, model.TK_Plus, model.TK_Not:
		opTok := p.advance()
		child := p.parseUnary()
		end := opTok.EndPos
		if child != nil {
			end = child.End()
		}
		return &model.UnaryOp{Op: opTok.Literal, Child: child, StartPos: opTok.Pos, EndPos: end}
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

func (p *Parser) parsePostfix(expr model.Expr) model.Expr {
	for expr != nil {
		switch p.current().Kind {
		case model.TK_Dot:
			p.advance()
			field := p.expect(model.TK_Identifier)
			expr = &model.BinaryOp{
				Op:   ".",
				Left: expr,
				Right: &model.Ident{Name: field.Literal, StartPos: field.Pos, EndPos: field.EndPos},
				StartPos: expr.Pos(), EndPos: field.EndPos,
			}
		case model.TK_LBracket:
			p.advance()
			idx := p.parseExpression()
			end := p.expect(model.TK_RBracket)
			expr = &model.BinaryOp{Op: "[]", Left: expr, Right: idx, StartPos: expr.Pos(), EndPos: end.EndPos}
		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parsePrimary() model.Expr {
	tok := p.current()
	switch tok.Kind {
	case model.TK_IntLit, model.TK_StringLit:
		p.advance()
		return &model.Literal{Text: tok.Literal, StartPos: tok.Pos, EndPos: tok.EndPos}
	case model.TK_LogicalVar:
		p.advance()
		return &model.LogicalVar{Name: tok.Literal, StartPos: tok.Pos, EndPos: tok.EndPos}
	case model.TK_ChrCount:
		return p.parseChrCount()
	case model.TK_Identifier:
		return p.parseIdentOrCall()
	case model.TK_LParen:
		p.advance()
		inner := p.parseExpression()
		p.expect(model.TK_RParen)
		return inner
	default:
		p.addErrorf("unexpected token %s in expression", tok.Kind)
		p.advance()
		return nil
	}
}

// parseIdentOrCall resolves a bare lowercase identifier as either a
// host-function call (HostCall; body-statement parsing upgrades it to a
// ChrCallStmt when the name matches a declared constraint, and chr_count
// forces the ChrCall form directly) or, with no following '(', a host
// variable reference.
func (p *Parser) parseIdentOrCall() model.Expr {
	tok := p.advance()
	if !p.check(model.TK_LParen) {
		return &model.HostVar{Name: tok.Literal, StartPos: tok.Pos, EndPos: tok.EndPos}
	}
	p.advance() // (
	var args []model.Expr
	if !p.check(model.TK_RParen) {
		for {
			args = append(args, p.parseExpression())
			if !p.match(model.TK_Comma) {
				break
			}
		}
	}
	end := p.expect(model.TK_RParen)
	return &model.HostCall{Name: tok.Literal, LDelim: "(", RDelim: ")", Args: args, StartPos: tok.Pos, EndPos: end.EndPos}
}

// parseChrCount parses "chr_count(constraint_call)", requiring its argument
// to name a declared CHR constraint (spec.md §6.1's reserved chr_count
// builtin). UseIndex is set to -1; no later pass assigns it an index.
func (p *Parser) parseChrCount() model.Expr {
	start := p.advance() // chr_count
	p.expect(model.TK_LParen)

	var inner *model.ChrCall
	if p.check(model.TK_Identifier) {
		nameTok := p.advance()
		p.expect(model.TK_LParen)
		var args []model.Expr
		if !p.check(model.TK_RParen) {
			for {
				args = append(args, p.parseExpression())
				if !p.match(model.TK_Comma) {
					break
				}
			}
		}
		end := p.expect(model.TK_RParen)
		decl, _ := p.lookupDecl(nameTok.Literal)
		inner = &model.ChrCall{Decl: decl, Name: nameTok.Literal, Args: args, StartPos: nameTok.Pos, EndPos: end.EndPos}
	} else {
		p.addErrorf("expected a constraint call inside chr_count(...)")
	}

	end := p.expect(model.TK_RParen)
	return &model.ChrCount{UseIndex: -1, Constraint: inner, StartPos: start.Pos, EndPos: end.EndPos}
}
