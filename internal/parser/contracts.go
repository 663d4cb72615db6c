package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// parseContracts implements the in/out/do contract state machine (spec.md
// §4.5): zero or more `in`/`out` clauses, each either a block or a single
// expression (`in (cond)`/`out (result; cond)`), in any order, terminated
// by the function body itself (which parseFunctionBodyAfterContracts
// consumes separately).
func (p *Parser) parseContracts() ast.Contracts {
	var c ast.Contracts

	for {
		switch p.cur().Kind {
		case token.KwIn:
			c.Requires = append(c.Requires, p.parseContractClause())
		case token.KwOut:
			c.Ensures = append(c.Ensures, p.parseOutClause())
		default:
			return c
		}
	}
}

// hasBlockContract reports whether any in/out clause used the `{ ... }`
// block form rather than the single-expression form. Once one has, the
// function body itself must be introduced with `do`; a bare `{ }` is
// ambiguous with another contract block and is rejected.
func hasBlockContract(c ast.Contracts) bool {
	for _, req := range c.Requires {
		if req.IsBlock {
			return true
		}
	}

	for _, ens := range c.Ensures {
		if ens.IsBlock {
			return true
		}
	}

	return false
}

// parseContractClause parses one `in { ... }` or `in (expr [, message])`
// clause.
func (p *Parser) parseContractClause() ast.Contract {
	p.advance() // consume 'in'

	if p.at(token.LBrace) {
		block := p.parseBlockStmt()
		return ast.Contract{IsBlock: true, Block: block}
	}

	if !p.at(token.LParen) {
		p.errorf("expected ( or { after in")
		return ast.Contract{}
	}

	p.advance()
	cond := p.parseAssignExpr()

	var msg ast.ExprID = ast.NoExpr
	if p.at(token.Comma) {
		p.advance()
		msg = p.parseAssignExpr()
	}

	p.expect(token.RParen)

	return ast.Contract{Expr: cond, Message: msg}
}

// parseOutClause parses `out { ... }`, `out (result) { ... }`, or
// `out (result; expr [, message])`.
func (p *Parser) parseOutClause() ast.Contract {
	p.advance() // consume 'out'

	var resultName string

	if p.at(token.LParen) {
		p.advance()

		if p.at(token.Identifier) {
			resultName = p.cur().Text
			p.advance()
		}

		if p.at(token.Semicolon) {
			p.advance()
			cond := p.parseAssignExpr()

			var msg ast.ExprID = ast.NoExpr
			if p.at(token.Comma) {
				p.advance()
				msg = p.parseAssignExpr()
			}

			p.expect(token.RParen)

			return ast.Contract{ResultName: resultName, Expr: cond, Message: msg}
		}

		p.expect(token.RParen)
	}

	if p.at(token.LBrace) {
		block := p.parseBlockStmt()
		return ast.Contract{IsBlock: true, Block: block, ResultName: resultName}
	}

	p.errorf("expected { after out clause")

	return ast.Contract{ResultName: resultName}
}
