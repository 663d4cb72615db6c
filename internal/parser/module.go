package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/probe"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// ParseModule is the package's top-level entry point (spec.md §4.6): an
// optional `module a.b.c;` header, itself preceded by any module-level
// attributes (deprecated modules, UDAs, etc. — folded in as prefix
// attributes on the header the same way any other declaration gathers
// them), followed by DeclDefs until EOF. Leading attributes and a leading
// doc comment go to the header only when a `module` keyword follows them;
// otherwise they are left for the first declaration. The whole thing is
// wrapped in a single DeclModule so callers get one DeclID to walk.
func (p *Parser) ParseModule() ast.DeclID {
	start := p.loc()

	p.consumeDocComment()

	var doc string
	var attrs ast.PrefixAttributes

	if k := probe.SkipAttributes(p.lex, 0); (k == 0 && p.at(token.KwModule)) || (k > 0 && p.peek(k).Kind == token.KwModule) {
		doc = p.takeDoc()
		attrs = p.parsePrefixAttributes()
	}

	var packages []string
	moduleName := ""

	if p.at(token.KwModule) {
		p.advance()
		dotted := p.parseDottedIdentList()

		if len(dotted) > 0 {
			moduleName = dotted[len(dotted)-1]
			packages = dotted[:len(dotted)-1]
		}

		p.expect(token.Semicolon)
	}

	var members []ast.DeclID

	for !p.at(token.EOF) {
		beforeSpan := p.cur().Span
		members = append(members, p.parseDeclDef())

		// A branch that makes no progress would spin forever; force
		// the cursor forward so a malformed trailing token can't wedge
		// the loop.
		if p.cur().Span == beforeSpan && !p.at(token.EOF) {
			p.advance()
		}
	}

	return p.b.MakeDecl(ast.Decl{
		Kind:           ast.DeclModule,
		Span:           p.spanFrom(start),
		Name:           moduleName,
		DocText:        doc,
		ModulePackages: packages,
		Attrs:          attrs,
		Inner:          members,
	})
}
