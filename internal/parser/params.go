package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// parseParameterList parses a parenthesized, comma-separated parameter
// list, returning the parsed parameters and the trailing variadic form, if
// any (spec.md §4.5's three parameter shapes: typed, typesafe variadic
// `T[] args...`-style is expressed via Variadic on the last parameter, and
// untyped variadic `...`).
func (p *Parser) parseParameterList() ([]ast.Param, ast.VariadicKind) {
	if !p.at(token.LParen) {
		p.errorf("expected ( to start parameter list")
		return nil, ast.VariadicNone
	}

	openLoc := p.loc()
	p.advance()

	var params []ast.Param
	variadic := ast.VariadicNone

	if p.at(token.RParen) {
		p.advance()
		return nil, variadic
	}

	for {
		if p.at(token.DotDotDot) {
			p.advance()
			variadic = ast.VariadicUntyped
			break
		}

		params = append(params, p.parseParameter())

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	p.expectMatching(token.RParen, openLoc, "(")

	if n := len(params); n > 0 && params[n-1].Variadic == ast.VariadicTypesafe {
		variadic = ast.VariadicTypesafe
	}

	return params, variadic
}

func (p *Parser) parseParameter() ast.Param {
	var param ast.Param

	for p.at(token.At) {
		p.parseUDA()
		param.HasUDA = true
	}

	sc := p.parseStorageClasses()
	param.StorageClass = sc

	if p.at(token.KwThis) {
		// Delegate-literal `this` capture sugar; model it as a named
		// parameter typed as the enclosing aggregate (left to the caller
		// to resolve).
		param.Name = "this"
		p.advance()
		return param
	}

	param.Type = p.parseType()

	if p.at(token.Identifier) {
		param.Name = p.cur().Text
		p.advance()
	}

	if p.at(token.DotDotDot) {
		p.advance()
		param.Variadic = ast.VariadicTypesafe

		if param.StorageClass&(ast.SCRef|ast.SCOut) != 0 {
			p.errorf("variadic parameter %q cannot be ref or out", param.Name)
		}
	}

	if p.at(token.Assign) {
		p.advance()
		param.Default = p.parseAssignExpr()
	}

	for p.at(token.At) {
		p.errorf("user-defined attributes on a parameter must come before its type, not after")
		p.parseUDA()
	}

	return param
}
