package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/position"
	"github.com/jacob-carlborg/ddc/internal/probe"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// parseBlockStmt parses a `{ ... }` compound statement.
func (p *Parser) parseBlockStmt() ast.StmtID {
	start := p.loc()

	if !p.at(token.LBrace) {
		p.errorf("expected { to start block")
		return p.b.ErrorStmt(p.spanFrom(start), "expected block")
	}

	openLoc := p.loc()
	p.advance()

	var stmts []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStatement())
	}

	p.expectMatching(token.RBrace, openLoc, "{")

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtBlock, Span: p.spanFrom(start), Stmts: stmts})
}

// parseStatement dispatches on the current token to one of the statement
// productions in spec.md §4.5.
func (p *Parser) parseStatement() ast.StmtID {
	p.consumeDocComment()
	start := p.loc()

	if p.at(token.Identifier) && p.peekAt(token.Colon) {
		return p.parseLabeledStmt(start)
	}

	switch p.cur().Kind {
	case token.LBrace:
		return p.parseBlockStmt()
	case token.Semicolon:
		p.advance()
		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtEmpty, Span: p.spanFrom(start)})
	case token.KwIf:
		return p.parseIfStmt(start)
	case token.KwWhile:
		return p.parseWhileStmt(start)
	case token.KwDo:
		return p.parseDoWhileStmt(start)
	case token.KwFor:
		return p.parseForStmt(start)
	case token.KwForeach, token.KwForeachReverse:
		return p.parseForeachStmt(start)
	case token.KwSwitch:
		return p.parseSwitchStmt(start, false)
	case token.KwFinal:
		if p.peekAt(token.KwSwitch) {
			p.advance()
			return p.parseSwitchStmt(start, true)
		}
	case token.KwCase:
		return p.parseCaseStmt(start)
	case token.KwDefault:
		p.advance()

		if !p.at(token.Colon) {
			p.errorf("expected : after default")
		} else {
			p.advance()
		}

		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtDefault, Span: p.spanFrom(start)})
	case token.KwReturn, token.KwReturnAttr:
		p.advance()

		var value ast.ExprID = ast.NoExpr
		if !p.at(token.Semicolon) {
			value = p.parseExpression()
		}

		p.expect(token.Semicolon)

		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtReturn, Span: p.spanFrom(start), Value: value})
	case token.KwBreak:
		p.advance()

		var label string
		if p.at(token.Identifier) {
			label = p.cur().Text
			p.advance()
		}

		p.expect(token.Semicolon)

		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtBreak, Span: p.spanFrom(start), Label: label})
	case token.KwContinue:
		p.advance()

		var label string
		if p.at(token.Identifier) {
			label = p.cur().Text
			p.advance()
		}

		p.expect(token.Semicolon)

		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtContinue, Span: p.spanFrom(start), Label: label})
	case token.KwGoto:
		return p.parseGotoStmt(start)
	case token.KwScope:
		return p.parseScopeGuardStmt(start)
	case token.KwTry:
		return p.parseTryStmt(start)
	case token.KwThrow:
		p.advance()
		value := p.parseExpression()
		p.expect(token.Semicolon)

		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtThrow, Span: p.spanFrom(start), Value: value})
	case token.KwWith:
		return p.parseWithStmt(start)
	case token.KwSynchronized:
		return p.parseSynchronizedStmt(start)
	case token.KwAsm:
		return p.parseAsmStmt(start)
	case token.KwStatic:
		// `static assert`/`if`/`foreach`/`import` arrive as two tokens; a
		// plain `static` storage class falls through to parseDeclOrExprStmt.
		switch p.peek(1).Kind {
		case token.KwAssert:
			p.advance()
			return p.parseStaticAssertStmt(start)
		case token.KwIf:
			p.advance()
			return p.parseStaticIfStmt(start)
		case token.KwForeach, token.KwForeachReverse:
			return p.parseStaticForeachStmt(start)
		case token.KwImport:
			p.advance()
			return p.parseImportStmt(start, true)
		}
	case token.KwStaticAssert:
		return p.parseStaticAssertStmt(start)
	case token.KwStaticIf:
		return p.parseStaticIfStmt(start)
	case token.KwStaticForeach:
		return p.parseStaticForeachStmt(start)
	case token.KwStaticImport:
		return p.parseImportStmt(start, true)
	case token.KwImport:
		return p.parseImportStmt(start, false)
	case token.KwMixin:
		return p.parseMixinStmt(start)
	case token.KwDebug:
		return p.parseConditionalStmt(start, "debug")
	case token.KwVersion:
		return p.parseConditionalStmt(start, "version")
	case token.KwPragma:
		return p.parsePragmaStmt(start)
	}

	return p.parseDeclOrExprStmt(start)
}

func (p *Parser) parseLabeledStmt(start position.Position) ast.StmtID {
	label := p.cur().Text
	p.advance()
	p.advance() // consume ':'

	var body ast.StmtID = ast.NoStmt
	if !p.at(token.RBrace) {
		body = p.parseStatement()
	}

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtLabeled, Span: p.spanFrom(start), Label: label, Body: body})
}

// parseDeclOrExprStmt disambiguates a declaration-as-statement from an
// expression statement using the bounded lookahead probes (spec.md
// §4.3/§4.5): if the current position parses as a basic type followed by a
// declarator, it is a declaration; otherwise it is an expression.
func (p *Parser) parseDeclOrExprStmt(start position.Position) ast.StmtID {
	if p.looksLikeDeclaration() {
		d := p.parseVarOrAliasDecl(ast.PrefixAttributes{})
		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtDeclStmt, Span: p.spanFrom(start), Decl: d})
	}

	e := p.parseExpression()
	p.expect(token.Semicolon)

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtExpr, Span: p.spanFrom(start), Expr: e})
}

// looksLikeDeclaration runs the type+declarator probe without consuming
// anything, per spec.md §4.3.
func (p *Parser) looksLikeDeclaration() bool {
	switch p.cur().Kind {
	case token.KwConst, token.KwImmutable, token.KwShared, token.KwInout,
		token.KwStatic, token.KwFinal, token.KwAuto, token.KwScope,
		token.KwAlias, token.KwEnum, token.KwStruct, token.KwUnion,
		token.KwClass, token.KwInterface:
		return true
	}

	k, ok := probe.IsBasicType(p.lex, 0)
	if !ok {
		return false
	}

	_, haveID, _, dok := probe.IsDeclarator(p.lex, k)

	return dok && haveID
}

func (p *Parser) parseIfStmt(start position.Position) ast.StmtID {
	p.advance() // consume 'if'

	if !p.at(token.LParen) {
		p.errorf("expected ( after if")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed if")
	}

	openLoc := p.loc()
	p.advance()

	stmt := ast.Stmt{Kind: ast.StmtIf, IfType: ast.NoType}

	if p.at(token.KwAuto) || p.looksLikeDeclaration() {
		if p.at(token.KwAuto) {
			stmt.IfStorageClass = ast.SCAuto
			p.advance()
		} else {
			stmt.IfType = p.parseType()
		}

		if p.at(token.Identifier) {
			stmt.IfName = p.cur().Text
			p.advance()
		}

		p.expect(token.Assign)
		stmt.Cond = p.parseExpression()
	} else {
		stmt.Cond = p.parseExpression()
	}

	p.expectMatching(token.RParen, openLoc, "(")

	p.pushLookingForElse(true)
	stmt.Then = p.parseStatement()
	p.popLookingForElse()

	if p.at(token.KwElse) {
		p.advance()
		stmt.Else = p.parseStatement()
	}

	stmt.Span = p.spanFrom(start)

	return p.b.MakeStmt(stmt)
}

func (p *Parser) parseWhileStmt(start position.Position) ast.StmtID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after while")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed while")
	}

	openLoc := p.loc()
	p.advance()
	cond := p.parseExpression()
	p.expectMatching(token.RParen, openLoc, "(")

	body := p.parseStatement()

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtWhile, Span: p.spanFrom(start), Cond: cond, Body: body})
}

func (p *Parser) parseDoWhileStmt(start position.Position) ast.StmtID {
	p.advance()
	body := p.parseStatement()

	if !p.at(token.KwWhile) {
		p.errorf("expected while after do body")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed do-while")
	}

	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after while")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed do-while")
	}

	openLoc := p.loc()
	p.advance()
	cond := p.parseExpression()
	p.expectMatching(token.RParen, openLoc, "(")
	p.expect(token.Semicolon)

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtDoWhile, Span: p.spanFrom(start), Cond: cond, Body: body})
}

func (p *Parser) parseForStmt(start position.Position) ast.StmtID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after for")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed for")
	}

	p.advance()

	var initStmt ast.StmtID = ast.NoStmt
	if p.at(token.Semicolon) {
		p.advance()
	} else {
		initStmt = p.parseStatement() // consumes its own trailing ';'
	}

	var cond ast.ExprID = ast.NoExpr
	if !p.at(token.Semicolon) {
		cond = p.parseExpression()
	}

	p.expect(token.Semicolon)

	var post ast.ExprID = ast.NoExpr
	if !p.at(token.RParen) {
		post = p.parseExpression()
	}

	p.expect(token.RParen)

	body := p.parseStatement()

	return p.b.MakeStmt(ast.Stmt{
		Kind: ast.StmtFor, Span: p.spanFrom(start),
		ForInit: initStmt, ForCond: cond, ForPost: post, Body: body,
	})
}

// parseForeachStmt parses a plain `foreach`/`foreach_reverse` statement,
// aggregate or range form; parseStaticForeachStmt handles the `static`
// statement form and parseStaticForeachDecl the declaration form. Whether
// the keyword was `foreach_reverse` is not recorded in the node.
func (p *Parser) parseForeachStmt(start position.Position) ast.StmtID {
	p.advance() // consume 'foreach'/'foreach_reverse'
	return p.parseForeachCore(start, false)
}

func (p *Parser) parseStaticForeachStmt(start position.Position) ast.StmtID {
	p.advance() // consume 'static'
	p.advance() // consume 'foreach'/'foreach_reverse'
	return p.parseForeachCore(start, true)
}

func (p *Parser) parseForeachCore(start position.Position, isStatic bool) ast.StmtID {
	ok, kind, params, agg, upper := p.parseForeachHeader()
	if !ok {
		return p.b.ErrorStmt(p.spanFrom(start), "malformed foreach")
	}

	body := p.parseStatement()

	return p.b.MakeStmt(ast.Stmt{
		Kind: ast.StmtForeach, Span: p.spanFrom(start),
		ForeachKind: kind, ForeachParams: params, ForeachAgg: agg,
		ForeachUpper: upper, IsStaticForeach: isStatic, Body: body,
	})
}

// parseForeachHeader parses `(params; aggregate[ .. upper])` — the header
// shared by the statement and declaration forms of foreach/foreach_reverse
// (spec.md §4.5's four variants) — leaving the cursor just past the closing
// `)`. The caller has already consumed the `foreach`/`foreach_reverse`
// keyword.
func (p *Parser) parseForeachHeader() (ok bool, kind ast.ForeachKind, params []ast.ForeachParam, agg ast.ExprID, upper ast.ExprID) {
	if !p.at(token.LParen) {
		p.errorf("expected ( after foreach")
		return false, kind, nil, ast.NoExpr, ast.NoExpr
	}

	openLoc := p.loc()
	p.advance()

	for {
		var fp ast.ForeachParam

		if p.at(token.KwAlias) {
			fp.IsAlias = true
			p.advance()
		} else if p.at(token.KwEnum) {
			fp.IsEnum = true
			p.advance()
		}

		fp.StorageClass = p.parseStorageClasses()

		if p.at(token.Identifier) && (p.peekAt(token.Comma) || p.peekAt(token.Semicolon)) {
			fp.Name = p.cur().Text
			p.advance()
		} else {
			fp.Type = p.parseType()

			if p.at(token.Identifier) {
				fp.Name = p.cur().Text
				p.advance()
			}
		}

		params = append(params, fp)

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	p.expect(token.Semicolon)

	agg = p.parseExpression()

	kind = ast.ForeachAggregate
	upper = ast.NoExpr

	if p.at(token.DotDot) {
		p.advance()
		upper = p.parseExpression()
		kind = ast.ForeachRange
	}

	p.expectMatching(token.RParen, openLoc, "(")

	return true, kind, params, agg, upper
}

func (p *Parser) parseSwitchStmt(start position.Position, isFinal bool) ast.StmtID {
	p.advance() // consume 'switch'

	if !p.at(token.LParen) {
		p.errorf("expected ( after switch")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed switch")
	}

	openLoc := p.loc()
	p.advance()
	cond := p.parseExpression()
	p.expectMatching(token.RParen, openLoc, "(")

	body := p.parseBlockStmt()

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtSwitch, Span: p.spanFrom(start), Cond: cond, Body: body, IsFinal: isFinal})
}

func (p *Parser) parseCaseStmt(start position.Position) ast.StmtID {
	p.advance() // consume 'case'

	values := []ast.ExprID{p.parseAssignExpr()}

	for p.at(token.Comma) {
		p.advance()
		values = append(values, p.parseAssignExpr())
	}

	var hi ast.ExprID = ast.NoExpr
	if p.at(token.DotDot) {
		p.advance()

		if !p.at(token.KwCase) {
			p.errorf("expected case after .. in case range")
		} else {
			p.advance()
		}

		hi = p.parseAssignExpr()
	}

	p.expect(token.Colon)

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtCase, Span: p.spanFrom(start), CaseValues: values, CaseRangeHi: hi})
}

func (p *Parser) parseGotoStmt(start position.Position) ast.StmtID {
	p.advance()

	stmt := ast.Stmt{Kind: ast.StmtGoto}

	switch {
	case p.at(token.KwCase):
		p.advance()
		stmt.IsGotoCase = true

		if !p.at(token.Semicolon) {
			stmt.Value = p.parseExpression()
		}
	case p.at(token.KwDefault):
		p.advance()
		stmt.IsGotoDefault = true
	case p.at(token.Identifier):
		stmt.GotoLabel = p.cur().Text
		p.advance()
	default:
		p.errorf("expected label, case, or default after goto")
	}

	p.expect(token.Semicolon)
	stmt.Span = p.spanFrom(start)

	return p.b.MakeStmt(stmt)
}

var scopeGuardKeyword = map[string]ast.ScopeGuardKind{
	"exit": ast.ScopeExit, "failure": ast.ScopeFailure, "success": ast.ScopeSuccess,
}

func (p *Parser) parseScopeGuardStmt(start position.Position) ast.StmtID {
	// `scope` alone (no paren) is the storage-class attribute, handled by
	// the declaration path; this is only reached for `scope(...)`.
	if !p.peekAt(token.LParen) {
		d := p.parseVarOrAliasDecl(ast.PrefixAttributes{})
		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtDeclStmt, Span: p.spanFrom(start), Decl: d})
	}

	p.advance() // 'scope'
	p.advance() // '('

	kind := ast.ScopeExit
	if p.at(token.Identifier) {
		if k, ok := scopeGuardKeyword[p.cur().Text]; ok {
			kind = k
		} else {
			p.errorf("expected exit, failure, or success in scope(...)")
		}

		p.advance()
	}

	p.expect(token.RParen)
	body := p.parseStatement()

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtScopeGuard, Span: p.spanFrom(start), ScopeGuard: kind, Body: body})
}

func (p *Parser) parseTryStmt(start position.Position) ast.StmtID {
	p.advance()
	body := p.parseBlockStmt()

	var catches []ast.CatchClause
	for p.at(token.KwCatch) {
		p.advance()

		var cc ast.CatchClause
		if p.at(token.LParen) {
			p.advance()
			cc.ExceptionType = p.parseType()

			if p.at(token.Identifier) {
				cc.Name = p.cur().Text
				p.advance()
			}

			p.expect(token.RParen)
		}

		cc.Body = p.parseBlockStmt()
		catches = append(catches, cc)
	}

	var finally ast.StmtID = ast.NoStmt
	if p.at(token.KwFinally) {
		p.advance()
		finally = p.parseBlockStmt()
	}

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtTry, Span: p.spanFrom(start), TryBody: body, Catches: catches, Finally: finally})
}

func (p *Parser) parseWithStmt(start position.Position) ast.StmtID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after with")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed with")
	}

	openLoc := p.loc()
	p.advance()
	e := p.parseExpression()
	p.expectMatching(token.RParen, openLoc, "(")

	body := p.parseStatement()

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtWith, Span: p.spanFrom(start), WithExpr: e, Body: body})
}

func (p *Parser) parseSynchronizedStmt(start position.Position) ast.StmtID {
	p.advance()

	var e ast.ExprID = ast.NoExpr
	if p.at(token.LParen) {
		p.advance()
		e = p.parseExpression()
		p.expect(token.RParen)
	}

	body := p.parseStatement()

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtSynchronized, Span: p.spanFrom(start), SyncExpr: e, Body: body})
}

// parseAsmStmt collects raw instruction text between the braces without
// interpreting it: the inline assembler dialect is out of scope for this
// grammar (spec.md Non-goals).
func (p *Parser) parseAsmStmt(start position.Position) ast.StmtID {
	p.advance()

	openLoc := p.loc()
	p.expect(token.LBrace)

	var instrs []string
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		instrs = append(instrs, p.cur().Text)
		p.advance()
	}

	p.expectMatching(token.RBrace, openLoc, "{")

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtAsm, Span: p.spanFrom(start), AsmInstructions: instrs})
}

func (p *Parser) parseStaticAssertStmt(start position.Position) ast.StmtID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after static assert")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed static assert")
	}

	p.advance()
	cond := p.parseAssignExpr()

	var msg ast.ExprID = ast.NoExpr
	if p.at(token.Comma) {
		p.advance()
		msg = p.parseAssignExpr()
	}

	p.expect(token.RParen)
	p.expect(token.Semicolon)

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtStaticAssert, Span: p.spanFrom(start), Cond: cond, AssertMsg: msg})
}

func (p *Parser) parseStaticIfStmt(start position.Position) ast.StmtID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after static if")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed static if")
	}

	openLoc := p.loc()
	p.advance()
	cond := p.parseAssignExpr()
	p.expectMatching(token.RParen, openLoc, "(")

	then := p.parseConditionalBranchStmts()

	var els []ast.StmtID
	if p.at(token.KwElse) {
		p.advance()
		els = p.parseConditionalBranchStmts()
	}

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtStaticIf, Span: p.spanFrom(start), Cond: cond, CondThen: then, CondElse: els})
}

func (p *Parser) parseConditionalBranchStmts() []ast.StmtID {
	if p.at(token.LBrace) {
		openLoc := p.loc()
		p.advance()

		var stmts []ast.StmtID
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			stmts = append(stmts, p.parseStatement())
		}

		p.expectMatching(token.RBrace, openLoc, "{")

		return stmts
	}

	return []ast.StmtID{p.parseStatement()}
}

func (p *Parser) parseConditionalStmt(start position.Position, kind string) ast.StmtID {
	p.advance() // consume 'debug'/'version'

	if p.at(token.LParen) {
		p.advance()

		if !p.at(token.Identifier) && !p.at(token.IntLiteral) {
			p.errorf("expected identifier or level in %s(...)", kind)
		} else {
			p.advance()
		}

		p.expect(token.RParen)
	}

	then := p.parseConditionalBranchStmts()

	var els []ast.StmtID
	if p.at(token.KwElse) {
		p.advance()
		els = p.parseConditionalBranchStmts()
	}

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtConditional, Span: p.spanFrom(start), CondKind: kind, CondThen: then, CondElse: els})
}

func (p *Parser) parsePragmaStmt(start position.Position) ast.StmtID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after pragma")
		return p.b.ErrorStmt(p.spanFrom(start), "malformed pragma")
	}

	p.advance()

	if p.at(token.Identifier) {
		p.advance()
	}

	for p.at(token.Comma) {
		p.advance()
		p.parseAssignExpr()
	}

	p.expect(token.RParen)

	if p.at(token.LBrace) {
		body := p.parseBlockStmt()
		return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtPragma, Span: p.spanFrom(start), Body: body})
	}

	p.expect(token.Semicolon)

	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtPragma, Span: p.spanFrom(start)})
}

func (p *Parser) parseImportStmt(start position.Position, isStatic bool) ast.StmtID {
	d := p.parseImportDecl(start, isStatic)
	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtStaticImport, Span: p.spanFrom(start), Decl: d})
}

func (p *Parser) parseMixinStmt(start position.Position) ast.StmtID {
	d := p.parseMixinDecl(start)
	return p.b.MakeStmt(ast.Stmt{Kind: ast.StmtDeclStmt, Span: p.spanFrom(start), Decl: d})
}
