package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/position"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// This file implements spec.md §4.4's expression parser: a precedence-
// climbing cascade from comma down to primary, with `^^` deliberately
// sitting between unary and postfix so that `-a^^b` parses as `-(a^^b)`
// (the right operand of `^^` is itself a UnaryExpression, matching the
// grammar's PowExpression production).

// parseExpression is the parser's single public expression entry point,
// covering the full comma-down-to-primary ladder.
func (p *Parser) parseExpression() ast.ExprID {
	return p.parseComma()
}

// parseAssignExpr parses at assignment precedence — one slot above comma —
// used everywhere a comma would otherwise be ambiguous with a list
// separator: call arguments, default parameter values, UDA arguments,
// `align(expr)`, array/struct initializer entries.
func (p *Parser) parseAssignExpr() ast.ExprID {
	return p.parseAssign()
}

// parseExpressionList parses a comma-separated run of assignment-level
// expressions up to (but not consuming) end.
func (p *Parser) parseExpressionList(end token.Kind) []ast.ExprID {
	var list []ast.ExprID

	if p.at(end) {
		return list
	}

	for {
		list = append(list, p.parseAssignExpr())

		if p.at(token.Comma) {
			p.advance()

			if p.at(end) {
				break
			}

			continue
		}

		break
	}

	return list
}

func (p *Parser) parseComma() ast.ExprID {
	left := p.parseAssign()

	for p.at(token.Comma) {
		start := p.exprStart(left)
		p.advance()
		right := p.parseAssign()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: ",", Left: left, Right: right})
	}

	return left
}

var assignOps = map[token.Kind]bool{
	token.Assign: true, token.PlusAssign: true, token.MinusAssign: true,
	token.StarAssign: true, token.SlashAssign: true, token.PercentAssign: true,
	token.AmpAssign: true, token.PipeAssign: true, token.XorAssign: true,
	token.ShlAssign: true, token.ShrAssign: true, token.UshrAssign: true,
	token.CatAssign: true, token.PowAssign: true,
}

func (p *Parser) parseAssign() ast.ExprID {
	left := p.parseConditional()

	if assignOps[p.cur().Kind] {
		start := p.exprStart(left)
		op := p.cur().Kind.String()
		p.advance()
		right := p.parseAssign() // right-associative

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprAssign, Span: p.spanFrom(start), Op: op, Left: left, Right: right})
	}

	return left
}

func (p *Parser) parseConditional() ast.ExprID {
	left := p.parseLogOr()

	if p.at(token.Question) {
		start := p.exprStart(left)
		p.advance()

		then := p.parseAssign()

		if !p.at(token.Colon) {
			p.errorf("expected : in conditional expression")
		} else {
			p.advance()
		}

		els := p.parseConditional() // right-associative

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprTernary, Span: p.spanFrom(start), CondExpr: left, ThenExpr: then, ElseExpr: els})
	}

	return left
}

func (p *Parser) parseLogOr() ast.ExprID {
	left := p.parseLogAnd()

	for p.at(token.OrOr) {
		start := p.exprStart(left)
		p.advance()
		right := p.parseLogAnd()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "||", Left: left, Right: right})
	}

	return left
}

func (p *Parser) parseLogAnd() ast.ExprID {
	left := p.parseBitOr()

	for p.at(token.AndAnd) {
		start := p.exprStart(left)
		p.advance()
		right := p.parseBitOr()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "&&", Left: left, Right: right})
	}

	return left
}

func (p *Parser) parseBitOr() ast.ExprID {
	left := p.parseBitXor()

	for p.at(token.Pipe) {
		start := p.exprStart(left)
		p.advance()
		right := p.parseBitXor()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "|", Left: left, Right: right})
	}

	return left
}

func (p *Parser) parseBitXor() ast.ExprID {
	left := p.parseBitAnd()

	for p.at(token.Xor) {
		start := p.exprStart(left)
		p.advance()
		right := p.parseBitAnd()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "^", Left: left, Right: right})
	}

	return left
}

// parseBitAnd sits below the relational/equality level (spec.md §9's
// preserved quirk), so `a & b == c` parses as `a & (b == c)`. That is
// surprising enough coming from C that checkParens flags it.
func (p *Parser) parseBitAnd() ast.ExprID {
	left := p.parseRel()

	for p.at(token.Amp) {
		start := p.exprStart(left)
		p.advance()
		right := p.parseRel()

		if p.isRelExpr(right) {
			p.checkParens("'&' combined with a comparison; add parentheses to clarify evaluation order")
		}

		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "&", Left: left, Right: right})
	}

	return left
}

var relOpSpellings = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"is": true, "!is": true, "in": true, "!in": true,
}

// isRelExpr reports whether e is a binary node whose operator is one of the
// rel-level operators, used by checkParens to spot unparenthesized mixing
// of `&` with a comparison.
func (p *Parser) isRelExpr(e ast.ExprID) bool {
	expr := p.b.Arena.Expr(e)
	return expr.Kind == ast.ExprBinary && relOpSpellings[expr.Op]
}

func relOp(k token.Kind) (string, bool) {
	switch k {
	case token.Eq:
		return "==", true
	case token.NotEq:
		return "!=", true
	case token.Less:
		return "<", true
	case token.LessEq:
		return "<=", true
	case token.Greater:
		return ">", true
	case token.GreaterEq:
		return ">=", true
	case token.KwIn:
		return "in", true
	default:
		return "", false
	}
}

// parseRel implements the combined equality/identity/in/relational tier:
// spec.md explicitly calls out that `==` and `<` live at the same
// precedence level, so `a < b == c` chains within this one function rather
// than across two separate tiers — and chaining two of them without
// parentheses is itself what checkParens warns about (scenario 8).
func (p *Parser) parseRel() ast.ExprID {
	left := p.parseShift()
	chained := false

	for {
		if p.at(token.Bang) && p.peekAt(token.KwIs) {
			start := p.exprStart(left)
			p.advance()
			p.advance()
			right := p.parseShift()

			if chained {
				p.checkParens("chained comparison operators; add parentheses to clarify evaluation order")
			}

			left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "!is", Left: left, Right: right})
			chained = true

			continue
		}

		if p.at(token.Bang) && p.peekAt(token.KwIn) {
			start := p.exprStart(left)
			p.advance()
			p.advance()
			right := p.parseShift()

			if chained {
				p.checkParens("chained comparison operators; add parentheses to clarify evaluation order")
			}

			left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "!in", Left: left, Right: right})
			chained = true

			continue
		}

		if p.at(token.KwIs) {
			start := p.exprStart(left)
			p.advance()
			right := p.parseShift()

			if chained {
				p.checkParens("chained comparison operators; add parentheses to clarify evaluation order")
			}

			left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "is", Left: left, Right: right})
			chained = true

			continue
		}

		op, ok := relOp(p.cur().Kind)
		if !ok {
			break
		}

		start := p.exprStart(left)
		p.advance()
		right := p.parseShift()

		if chained {
			p.checkParens("chained comparison operators; add parentheses to clarify evaluation order")
		}

		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: op, Left: left, Right: right})
		chained = true
	}

	return left
}

func (p *Parser) parseShift() ast.ExprID {
	left := p.parseAdditive()

	for p.cur().Kind == token.Shl || p.cur().Kind == token.Shr || p.cur().Kind == token.Ushr {
		start := p.exprStart(left)
		op := p.cur().Kind.String()
		p.advance()
		right := p.parseAdditive()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: op, Left: left, Right: right})
	}

	return left
}

func (p *Parser) parseAdditive() ast.ExprID {
	left := p.parseMultiplicative()

	for p.cur().Kind == token.Plus || p.cur().Kind == token.Minus || p.cur().Kind == token.Cat {
		start := p.exprStart(left)
		op := p.cur().Kind.String()
		p.advance()
		right := p.parseMultiplicative()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: op, Left: left, Right: right})
	}

	return left
}

func (p *Parser) parseMultiplicative() ast.ExprID {
	left := p.parseUnary()

	for p.cur().Kind == token.Star || p.cur().Kind == token.Slash || p.cur().Kind == token.Percent {
		start := p.exprStart(left)
		op := p.cur().Kind.String()
		p.advance()
		right := p.parseUnary()
		left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: op, Left: left, Right: right})
	}

	return left
}

// parseUnary parses a run of prefix operators, or falls through to
// parsePow — the only way to reach a PowExpression is through a
// UnaryExpression with zero prefix operators.
func (p *Parser) parseUnary() ast.ExprID {
	start := p.loc()

	switch p.cur().Kind {
	case token.Minus, token.Plus, token.Bang, token.Cat, token.Amp:
		op := p.cur().Kind.String()
		p.advance()
		operand := p.parseUnary()

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprUnary, Span: p.spanFrom(start), Op: op, Operand: operand})
	case token.Star:
		p.advance()
		operand := p.parseUnary()

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprUnary, Span: p.spanFrom(start), Op: "*", Operand: operand})
	case token.PlusPlus, token.MinusMinus:
		op := p.cur().Kind.String()
		p.advance()
		operand := p.parseUnary()

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprUnary, Span: p.spanFrom(start), Op: "pre" + op, Operand: operand})
	case token.KwCast:
		return p.parseCastExpr(start)
	case token.KwNew:
		return p.parseNewExpr(start)
	default:
		return p.parsePow()
	}
}

// parsePow implements `UnaryExpression ^^ UnaryExpression` (right-
// associative): its left operand is always a plain postfix expression, and
// its right operand recurses through parseUnary so that the chain of `^^`
// and any nested prefix operators to its right resolve correctly.
func (p *Parser) parsePow() ast.ExprID {
	left := p.parsePostfix()

	if p.at(token.Caret) {
		start := p.exprStart(left)
		p.advance()
		right := p.parseUnary()

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.spanFrom(start), Op: "^^", Left: left, Right: right})
	}

	return left
}

func (p *Parser) parseCastExpr(start position.Position) ast.ExprID {
	p.advance() // consume 'cast'

	if !p.at(token.LParen) {
		p.errorf("expected ( after cast")
		return p.b.ErrorExpr(p.spanFrom(start), "malformed cast")
	}

	p.advance()

	if _, ok := typeConstructorKeyword[p.cur().Kind]; ok && p.peekAt(token.RParen) {
		qualName := p.cur().Kind.String()
		p.advance()
		p.advance()
		operand := p.parseUnary()

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprCast, Span: p.spanFrom(start), CastQualOnly: true, CastType: ast.NoType, Operand: operand, Op: qualName})
	}

	ty := p.parseType()

	if !p.at(token.RParen) {
		p.errorf("expected ) closing cast(...)")
		p.resyncTo(token.RParen, token.Semicolon)
	}

	if p.at(token.RParen) {
		p.advance()
	}

	operand := p.parseUnary()

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprCast, Span: p.spanFrom(start), CastType: ty, Operand: operand})
}

func (p *Parser) parseNewExpr(start position.Position) ast.ExprID {
	p.advance() // consume 'new'

	ty := p.parseType()

	var args []ast.ExprID
	if p.at(token.LParen) {
		p.advance()
		args = p.parseExpressionList(token.RParen)

		if p.at(token.RParen) {
			p.advance()
		}
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprNew, Span: p.spanFrom(start), NewType: ty, NewArgs: args})
}

// parsePostfix parses a primary expression followed by any number of
// postfix operators: member access, increment/decrement, call, index, and
// slice.
func (p *Parser) parsePostfix() ast.ExprID {
	left := p.parsePrimary()

	for {
		start := p.exprStart(left)

		switch p.cur().Kind {
		case token.Dot:
			p.advance()

			if !p.at(token.Identifier) && !p.at(token.KwNew) {
				p.errorf("expected identifier after .")
				return left
			}

			member := p.cur().Text
			p.advance()

			var templArgs []ast.ExprID
			if p.at(token.Bang) {
				p.advance()
				templArgs = p.parseTemplateArgumentList()
			}

			left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprMember, Span: p.spanFrom(start), Base: left, Member: member, TemplArgs: templArgs})
		case token.PlusPlus, token.MinusMinus:
			op := p.cur().Kind.String()
			isInc := p.cur().Kind == token.PlusPlus
			p.advance()
			left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprPostfixIncDec, Span: p.spanFrom(start), Operand: left, Op: op, IsIncrement: isInc})
		case token.LParen:
			p.advance()
			args := p.parseExpressionList(token.RParen)

			if !p.at(token.RParen) {
				p.errorf("expected ) closing call argument list")
				p.resyncTo(token.RParen, token.Semicolon)
			}

			if p.at(token.RParen) {
				p.advance()
			}

			left = p.b.MakeExpr(ast.Expr{Kind: ast.ExprCall, Span: p.spanFrom(start), Callee: left, Args: args})
		case token.LBracket:
			left = p.parseIndexOrSlice(start, left)
		default:
			return left
		}
	}
}

func (p *Parser) parseTemplateArgumentList() []ast.ExprID {
	if p.at(token.LParen) {
		p.advance()
		args := p.parseExpressionList(token.RParen)

		if p.at(token.RParen) {
			p.advance()
		}

		return args
	}

	return []ast.ExprID{p.parseTemplateSingleArgument()}
}

// parseTemplateSingleArgument parses the unparenthesized `!arg` form. An
// identifier argument is read on its own, without letting it swallow a
// further `!...` the way a normal expression parse would — chained `!`
// outside `is`/`in` (`a!b!c`) is a diagnostic, not a silent `a!(b!c)`.
func (p *Parser) parseTemplateSingleArgument() ast.ExprID {
	start := p.loc()

	if p.at(token.Identifier) {
		name := p.cur().Text
		p.advance()

		arg := p.b.MakeExpr(ast.Expr{Kind: ast.ExprIdentifier, Span: p.spanFrom(start), Ident: name})

		if p.at(token.Bang) {
			p.errorf("chained ! after template instantiation %q; parenthesize to disambiguate", name)
		}

		return arg
	}

	return p.parseAssignExpr()
}

func (p *Parser) parseIndexOrSlice(start position.Position, base ast.ExprID) ast.ExprID {
	p.advance() // consume '['

	if p.at(token.RBracket) {
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprIndex, Span: p.spanFrom(start), Base: base})
	}

	p.inBrackets++
	defer func() { p.inBrackets-- }()

	first := p.parseAssignExpr()

	if p.at(token.DotDot) {
		p.advance()
		high := p.parseAssignExpr()

		if !p.at(token.RBracket) {
			p.errorf("expected ] closing slice")
			p.resyncTo(token.RBracket, token.Semicolon)
		}

		if p.at(token.RBracket) {
			p.advance()
		}

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprSlice, Span: p.spanFrom(start), Base: base, SliceLow: first, SliceHigh: high})
	}

	indices := []ast.ExprID{first}

	for p.at(token.Comma) {
		p.advance()
		indices = append(indices, p.parseAssignExpr())
	}

	if !p.at(token.RBracket) {
		p.errorf("expected ] closing index")
		p.resyncTo(token.RBracket, token.Semicolon)
	}

	if p.at(token.RBracket) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprIndex, Span: p.spanFrom(start), Base: base, IndexArgs: indices})
}

var predefinedTokens = map[token.Kind]bool{
	token.KwFile: true, token.KwFileFullPath: true, token.KwLine: true,
	token.KwModuleTok: true, token.KwFunctionTok: true, token.KwPrettyFunction: true,
}

// parsePrimary is the expression parser's primary-expression catalogue
// (spec.md §4.4): identifiers, literals, `this`/`super`, predefined
// tokens, `typeof`/`typeid`/`__traits`, `is(...)`, `assert`, mixin/import
// expressions, `new`, parenthesized expressions, array/assoc-array
// literals, and the lambda syntaxes.
func (p *Parser) parsePrimary() ast.ExprID {
	start := p.loc()
	tok := p.cur()

	switch tok.Kind {
	case token.Identifier:
		return p.parseIdentifierOrLambda(start)
	case token.IntLiteral:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprIntLit, Span: p.spanFrom(start), IntValue: tok.Int})
	case token.FloatLiteral:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprFloatLit, Span: p.spanFrom(start), FloatValue: tok.Float})
	case token.StringLiteral:
		return p.parseStringLiteral(start)
	case token.CharLiteral:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprCharLit, Span: p.spanFrom(start), IntValue: tok.Int})
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprBoolLit, Span: p.spanFrom(start), BoolValue: tok.Kind == token.KwTrue})
	case token.KwNull:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprNullLit, Span: p.spanFrom(start)})
	case token.Dollar:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprDollar, Span: p.spanFrom(start)})
	case token.KwThis:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprThis, Span: p.spanFrom(start)})
	case token.KwSuper:
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprSuper, Span: p.spanFrom(start)})
	case token.Dot:
		p.advance()
		inner := p.parsePostfix()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprGlobalScope, Span: p.spanFrom(start), Operand: inner})
	case token.KwTypeof:
		ty := p.parseBasicType() // typeof(...) is also a type; reuse its parse
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprTypeof, Span: p.spanFrom(start), Type: ty})
	case token.KwTypeid:
		return p.parseTypeidExpr(start)
	case token.KwTraits:
		return p.parseTraitsExpr(start)
	case token.KwIs:
		return p.parseIsExpr(start)
	case token.KwAssert:
		return p.parseAssertExpr(start)
	case token.KwMixin:
		return p.parseMixinExpr(start)
	case token.KwImport:
		return p.parseImportExpr(start)
	case token.KwNew:
		return p.parseNewExpr(start)
	case token.KwCast:
		return p.parseCastExpr(start)
	case token.LParen:
		return p.parseParenOrLambda(start)
	case token.LBracket:
		return p.parseArrayOrAssocLiteral(start)
	case token.KwFunction, token.KwDelegate:
		return p.parseFunctionLiteral(start)
	default:
		if predefinedTokens[tok.Kind] {
			p.advance()
			return p.b.MakeExpr(ast.Expr{Kind: ast.ExprPredefined, Span: p.spanFrom(start), Name: tok.Kind.String()})
		}

		p.errorf("expected expression, found %s", tok.Kind.String())
		p.advance()

		return p.b.ErrorExpr(p.spanFrom(start), "expected expression")
	}
}

// parseStringLiteral consumes one or more adjacent string-literal tokens
// (implicit concatenation), validating that any postfix characters agree.
func (p *Parser) parseStringLiteral(start position.Position) ast.ExprID {
	first := p.cur()
	value := first.Str.Value
	postfix := first.Str.Postfix
	p.advance()

	for p.at(token.StringLiteral) {
		next := p.cur()

		if next.Str.Postfix != 0 && postfix != 0 && next.Str.Postfix != postfix {
			p.errorf("mismatched string literal postfix in implicit concatenation")
		}

		if postfix == 0 {
			postfix = next.Str.Postfix
		}

		value += next.Str.Value
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprStringLit, Span: p.spanFrom(start), StringValue: value, StringPost: postfix})
}

func (p *Parser) parseIdentifierOrLambda(start position.Position) ast.ExprID {
	name := p.cur().Text
	p.advance()

	if p.at(token.Arrow) {
		p.advance()
		body := p.parseAssignExpr()

		return p.b.MakeExpr(ast.Expr{
			Kind: ast.ExprLambda, Span: p.spanFrom(start), LambdaKind: ast.LambdaArrow,
			LambdaParams: []ast.Param{{Name: name}}, LambdaExpr: body,
		})
	}

	var templArgs []ast.ExprID
	if p.at(token.Bang) {
		p.advance()
		templArgs = p.parseTemplateArgumentList()

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprScopeExpr, Span: p.spanFrom(start), Ident: name, TemplArgs: templArgs})
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprIdentifier, Span: p.spanFrom(start), Ident: name})
}

// parseParenOrLambda disambiguates `(expr)`, `(params) => expr`,
// `(params) { ... }`, and a tuple/parameter list feeding a block lambda.
func (p *Parser) parseParenOrLambda(start position.Position) ast.ExprID {
	if k := p.probeLambdaParams(); k >= 0 {
		params, _ := p.parseParameterList()

		if p.at(token.Arrow) {
			p.advance()
			body := p.parseAssignExpr()

			return p.b.MakeExpr(ast.Expr{Kind: ast.ExprLambda, Span: p.spanFrom(start), LambdaKind: ast.LambdaArrow, LambdaParams: params, LambdaExpr: body})
		}

		if p.at(token.LBrace) {
			block := p.parseBlockStmt()
			return p.b.MakeExpr(ast.Expr{Kind: ast.ExprLambda, Span: p.spanFrom(start), LambdaKind: ast.LambdaBlock, LambdaParams: params, LambdaBody: block})
		}
	}

	p.advance() // consume '('
	inner := p.parseExpression()

	if !p.at(token.RParen) {
		p.errorf("expected ) closing parenthesized expression")
		p.resyncTo(token.RParen, token.Semicolon)
	}

	if p.at(token.RParen) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprParen, Span: p.spanFrom(start), Operand: inner})
}

// probeLambdaParams reports whether the parenthesized run starting at the
// current `(` looks like a parameter list followed by `=>` or `{`, without
// consuming anything — a bounded lookahead probe per spec.md §4.3.
func (p *Parser) probeLambdaParams() int {
	next, ok := probeSkipParens(p)
	if !ok {
		return -1
	}

	if p.peek(next).Kind == token.Arrow || p.peek(next).Kind == token.LBrace {
		return next
	}

	return -1
}

// probeSkipParens walks a balanced `(...)` run starting at the parser's
// current token using Peek, returning the offset just past the matching
// close.
func probeSkipParens(p *Parser) (int, bool) {
	if !p.at(token.LParen) {
		return 0, false
	}

	depth := 0
	k := 0

	for {
		var kind token.Kind
		if k == 0 {
			kind = p.cur().Kind
		} else {
			kind = p.peek(k).Kind
		}

		switch kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return k + 1, true
			}
		case token.EOF:
			return k, false
		}

		k++
	}
}

func (p *Parser) parseArrayOrAssocLiteral(start position.Position) ast.ExprID {
	p.advance() // consume '['

	if p.at(token.RBracket) {
		p.advance()
		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprArrayLit, Span: p.spanFrom(start)})
	}

	first := p.parseAssignExpr()

	if p.at(token.Colon) {
		p.advance()
		firstVal := p.parseAssignExpr()

		keys := []ast.ExprID{first}
		vals := []ast.ExprID{firstVal}

		for p.at(token.Comma) {
			p.advance()

			if p.at(token.RBracket) {
				break
			}

			k := p.parseAssignExpr()

			if !p.at(token.Colon) {
				p.errorf("expected : in associative array literal")
			} else {
				p.advance()
			}

			v := p.parseAssignExpr()
			keys = append(keys, k)
			vals = append(vals, v)
		}

		if !p.at(token.RBracket) {
			p.errorf("expected ] closing associative array literal")
			p.resyncTo(token.RBracket, token.Semicolon)
		}

		if p.at(token.RBracket) {
			p.advance()
		}

		return p.b.MakeExpr(ast.Expr{Kind: ast.ExprAssocArrayLit, Span: p.spanFrom(start), Keys: keys, Elements: vals})
	}

	elems := []ast.ExprID{first}

	for p.at(token.Comma) {
		p.advance()

		if p.at(token.RBracket) {
			break
		}

		elems = append(elems, p.parseAssignExpr())
	}

	if !p.at(token.RBracket) {
		p.errorf("expected ] closing array literal")
		p.resyncTo(token.RBracket, token.Semicolon)
	}

	if p.at(token.RBracket) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprArrayLit, Span: p.spanFrom(start), Elements: elems})
}

func (p *Parser) parseFunctionLiteral(start position.Position) ast.ExprID {
	isDelegate := p.at(token.KwDelegate)
	p.advance()

	var retTy ast.TypeID
	if !p.at(token.LParen) && !p.at(token.LBrace) {
		retTy = p.parseType()
	}

	var params []ast.Param
	if p.at(token.LParen) {
		params, _ = p.parseParameterList()
	}

	p.parseStorageClasses()

	body := p.parseBlockStmt()

	name := "function"
	if isDelegate {
		name = "delegate"
	}

	return p.b.MakeExpr(ast.Expr{
		Kind: ast.ExprFunctionLiteral, Span: p.spanFrom(start), LambdaKind: ast.LambdaFunctionLit,
		Name: name, LambdaParams: params, LambdaRetTy: retTy, LambdaBody: body,
	})
}

func (p *Parser) parseTypeidExpr(start position.Position) ast.ExprID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after typeid")
		return p.b.ErrorExpr(p.spanFrom(start), "malformed typeid")
	}

	p.advance()
	ty := p.parseType()

	if !p.at(token.RParen) {
		p.errorf("expected ) closing typeid(...)")
		p.resyncTo(token.RParen, token.Semicolon)
	}

	if p.at(token.RParen) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprTypeid, Span: p.spanFrom(start), Type: ty})
}

func (p *Parser) parseTraitsExpr(start position.Position) ast.ExprID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after __traits")
		return p.b.ErrorExpr(p.spanFrom(start), "malformed __traits")
	}

	p.advance()

	var name string
	if p.at(token.Identifier) {
		name = p.cur().Text
		p.advance()
	} else {
		p.errorf("expected trait name")
	}

	var args []ast.ExprID
	for p.at(token.Comma) {
		p.advance()
		args = append(args, p.parseAssignExpr())
	}

	if !p.at(token.RParen) {
		p.errorf("expected ) closing __traits(...)")
		p.resyncTo(token.RParen, token.Semicolon)
	}

	if p.at(token.RParen) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprTraits, Span: p.spanFrom(start), TraitsName: name, TraitsArgs: args})
}

// parseIsExpr implements the `is(...)` expression state machine (spec.md
// §4.4): after the mandatory leading type, the construct may end there, or
// continue with an identifier binding, then optionally `==`/`:` followed
// by either a type-specialization keyword or a type, then optionally a
// template parameter list.
func (p *Parser) parseIsExpr(start position.Position) ast.ExprID {
	p.advance() // consume 'is'

	if !p.at(token.LParen) {
		p.errorf("expected ( after is")
		return p.b.ErrorExpr(p.spanFrom(start), "malformed is expression")
	}

	p.advance()

	ty := p.parseType()

	e := ast.Expr{Kind: ast.ExprIs, Span: position.Span{}, IsSpecType: ast.NoType}
	e.Type = ty

	if p.at(token.Identifier) {
		e.IsName = p.cur().Text
		p.advance()
	}

	if p.at(token.Eq) || p.at(token.Colon) {
		e.IsSpec = ast.IsSpecColon
		if p.at(token.Eq) {
			e.IsSpec = ast.IsSpecEquals
		}

		p.advance()

		if specKw, ok := isSpecKeyword[p.cur().Kind]; ok {
			e.Name = specKw
			p.advance()
		} else {
			e.IsSpecType = p.parseType()
		}

		if p.at(token.Comma) {
			p.advance()
			e.IsTemplParams = p.parseTemplateParamList()
		}
	}

	if !p.at(token.RParen) {
		p.errorf("expected ) closing is(...)")
		p.resyncTo(token.RParen, token.Semicolon)
	}

	if p.at(token.RParen) {
		p.advance()
	}

	e.Span = p.spanFrom(start)

	return p.b.MakeExpr(e)
}

var isSpecKeyword = map[token.Kind]string{
	token.KwStruct: "struct", token.KwUnion: "union", token.KwClass: "class",
	token.KwInterface: "interface", token.KwEnum: "enum", token.KwFunction: "function",
	token.KwDelegate: "delegate", token.KwSuper: "super", token.KwConst: "const",
	token.KwImmutable: "immutable", token.KwShared: "shared", token.KwInout: "inout",
	token.KwReturnAttr: "return",
}

// parseTemplateParamList parses a comma-separated template parameter list
// (used both for actual template declarations and the trailing clause of
// an `is(...)` expression).
func (p *Parser) parseTemplateParamList() []ast.TemplateParam {
	var params []ast.TemplateParam

	for {
		var tp ast.TemplateParam

		if p.at(token.Identifier) {
			tp.Name = p.cur().Text
			p.advance()
		}

		if p.at(token.Colon) {
			p.advance()
			tp.Constraint = p.parseType()
		}

		if p.at(token.Assign) {
			p.advance()
			tp.Default = p.parseType()
		}

		params = append(params, tp)

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	return params
}

func (p *Parser) parseAssertExpr(start position.Position) ast.ExprID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after assert")
		return p.b.ErrorExpr(p.spanFrom(start), "malformed assert")
	}

	p.advance()
	cond := p.parseAssignExpr()

	var msg ast.ExprID = ast.NoExpr
	if p.at(token.Comma) {
		p.advance()
		msg = p.parseAssignExpr()
	}

	if !p.at(token.RParen) {
		p.errorf("expected ) closing assert(...)")
		p.resyncTo(token.RParen, token.Semicolon)
	}

	if p.at(token.RParen) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprAssert, Span: p.spanFrom(start), InnerExpr: cond, Message: msg})
}

func (p *Parser) parseMixinExpr(start position.Position) ast.ExprID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after mixin")
		return p.b.ErrorExpr(p.spanFrom(start), "malformed mixin expression")
	}

	p.advance()
	args := p.parseExpressionList(token.RParen)

	if p.at(token.RParen) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprMixinExpr, Span: p.spanFrom(start), Args: args})
}

func (p *Parser) parseImportExpr(start position.Position) ast.ExprID {
	p.advance()

	if !p.at(token.LParen) {
		p.errorf("expected ( after import")
		return p.b.ErrorExpr(p.spanFrom(start), "malformed import expression")
	}

	p.advance()
	e := p.parseAssignExpr()

	if !p.at(token.RParen) {
		p.errorf("expected ) closing import(...)")
		p.resyncTo(token.RParen, token.Semicolon)
	}

	if p.at(token.RParen) {
		p.advance()
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprImportExpr, Span: p.spanFrom(start), InnerExpr: e})
}

// exprStart returns the start position of an already-built expression, by
// looking it back up in the arena — used so binary-combine steps can build
// a span covering the whole left-hand side without having threaded the
// original start position through every intermediate call.
func (p *Parser) exprStart(id ast.ExprID) position.Position {
	return p.b.Arena.Expr(id).Span.Start
}

// checkParens reports a warning for a mixed-precedence construct that is
// easy to misread without explicit grouping (spec.md §4.4/§8 scenario 8).
func (p *Parser) checkParens(message string) {
	p.warnf("%s", message)
}
