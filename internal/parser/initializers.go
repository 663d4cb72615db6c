package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// parseInitializer implements the three initializer shapes (spec.md
// §4.5): `void`, a brace-delimited struct or array literal form, or a
// plain assignment expression. Struct and array initializers share the
// same `{ ... }` syntax and are disambiguated entry by entry: a leading
// `identifier :` marks a struct field, a leading `[expr] :`/bare index
// marks an array slot, and a bare expression is valid in either.
func (p *Parser) parseInitializer() (ast.ExprID, ast.InitForm) {
	if p.at(token.KwVoid) && (p.peekAt(token.Semicolon) || p.peekAt(token.Comma)) {
		p.advance()
		return ast.NoExpr, ast.InitVoid
	}

	if p.at(token.LBrace) {
		return p.parseBraceInitializer()
	}

	return p.parseAssignExpr(), ast.InitExpr
}

// parseBraceInitializer parses a `{ ... }` initializer and folds it into a
// synthetic ExprArrayLit/struct-shaped expression so callers that only
// want a single ExprID (e.g. a nested field initializer) still get one.
// No caller fills the DeclVar's StructInit/ArrayInit fields; the InitEntry
// breakdown from parseBraceInitializerEntries is used only to build that
// expression.
func (p *Parser) parseBraceInitializer() (ast.ExprID, ast.InitForm) {
	start := p.loc()
	entries, isStruct := p.parseBraceInitializerEntries()

	form := ast.InitArray
	if isStruct {
		form = ast.InitStruct
	}

	var elems []ast.ExprID
	for _, e := range entries {
		elems = append(elems, e.Value)
	}

	return p.b.MakeExpr(ast.Expr{Kind: ast.ExprArrayLit, Span: p.spanFrom(start), Elements: elems}), form
}

// parseBraceInitializerEntries parses the entries of a brace initializer
// and reports whether it used the struct (`name:`) keying style.
func (p *Parser) parseBraceInitializerEntries() ([]ast.InitEntry, bool) {
	openLoc := p.loc()
	p.advance() // consume '{'

	var entries []ast.InitEntry
	isStruct := false

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		var entry ast.InitEntry

		if p.at(token.Identifier) && p.peekAt(token.Colon) {
			entry.HasKey = true
			entry.KeyName = p.cur().Text
			isStruct = true
			p.advance()
			p.advance()
		} else if p.at(token.LBracket) {
			p.advance()
			entry.HasKey = true
			entry.KeyExpr = p.parseAssignExpr()
			p.expect(token.RBracket)
			p.expect(token.Colon)
		}

		if p.at(token.LBrace) {
			v, _ := p.parseBraceInitializer()
			entry.Value = v
		} else {
			entry.Value = p.parseAssignExpr()
		}

		entries = append(entries, entry)

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	p.expectMatching(token.RBrace, openLoc, "{")

	return entries, isStruct
}
