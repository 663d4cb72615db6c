// Package parser implements the recursive-descent parser: it consumes the
// token stream exposed by internal/lexer and builds the arena AST defined
// in internal/ast, following spec.md's component design throughout.
package parser

import (
	"fmt"

	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/diag"
	"github.com/jacob-carlborg/ddc/internal/lexer"
	"github.com/jacob-carlborg/ddc/internal/position"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// Parser is the main engine (spec.md §4.5/§4.6). One instance parses one
// module; all of its scoped state (linkage, looking-for-else, bracket
// depth, cpp-mangle, pending doc comment) is owned here and obeys
// save/restore discipline at every scope that mutates it (spec.md §5).
type Parser struct {
	lex     *lexer.Lexer
	b       *ast.Builder
	handler diag.Handler

	linkage        ast.LinkageKind
	cppMangle      ast.CppMangle
	cppNamespace   []string
	inBrackets     int
	lookingForElse []bool

	pendingDoc string

	errorCountSinceLastDecl int
}

// New creates a parser over lex, building into a fresh arena and reporting
// through handler.
func New(lex *lexer.Lexer, handler diag.Handler) *Parser {
	if handler == nil {
		handler = diag.Suppress{}
	}

	return &Parser{lex: lex, b: ast.NewBuilder(), handler: handler, linkage: ast.LinkDefault}
}

// Arena exposes the builder's arena so callers can walk the finished tree.
func (p *Parser) Arena() *ast.Arena { return p.b.Arena }

func (p *Parser) cur() token.Token          { return p.lex.Current() }
func (p *Parser) peek(k int) token.Token    { return p.lex.Peek(k) }
func (p *Parser) advance() token.Token      { return p.lex.Next() }
func (p *Parser) at(k token.Kind) bool      { return p.cur().Kind == k }
func (p *Parser) peekAt(k token.Kind) bool  { return p.peek(1).Kind == k }
func (p *Parser) loc() position.Position    { return p.cur().Span.Start }

// spanFrom builds a Span from a start position to the start of the current
// (not yet consumed) token.
func (p *Parser) spanFrom(start position.Position) position.Span {
	return position.Span{Start: start, End: p.cur().Span.Start}
}

// errorf reports a primary error diagnostic at the current token.
func (p *Parser) errorf(format string, args ...any) {
	p.handler.Report(p.loc(), diag.Error, format, args, false)
}

// warnf reports a primary warning diagnostic at the current token.
func (p *Parser) warnf(format string, args ...any) {
	p.handler.Report(p.loc(), diag.Warning, format, args, false)
}

// deprecatedf reports a primary deprecation diagnostic at the current token.
func (p *Parser) deprecatedf(format string, args ...any) {
	p.handler.Report(p.loc(), diag.Deprecation, format, args, false)
}

// expect consumes the current token if it has kind k, else reports an
// error naming what was expected and leaves the cursor in place so the
// caller's resync logic decides what happens next.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		t := p.cur()
		p.advance()

		return t, true
	}

	p.errorf("expected %s, found %s", k.String(), p.cur().Kind.String())

	return token.Token{}, false
}

// expectMatching consumes a closing token, naming the opening location in
// the diagnostic on mismatch (spec.md §4.6 "Matching } and ) diagnostics
// name the opening location").
func (p *Parser) expectMatching(k token.Kind, openLoc position.Position, openText string) bool {
	if p.at(k) {
		p.advance()
		return true
	}

	if p.at(token.EOF) {
		p.errorf("premature end of file: matching %s expected, opened at %s", k.String(), openLoc.String())
		return false
	}

	p.errorf("%s expected to match %s at %s, found %s", k.String(), openText, openLoc.String(), p.cur().Kind.String())

	return false
}

// resyncTo advances until the current token is one of ks or EOF
// (spec.md §4.5/§4.6 error recovery pattern).
func (p *Parser) resyncTo(ks ...token.Kind) {
	for !p.at(token.EOF) {
		for _, k := range ks {
			if p.at(k) {
				return
			}
		}

		p.advance()
	}
}

// consumeDocComment drains the lexer's doc-comment tokens, if any, into the
// parser's single pending-doc slot (spec.md §3 invariant: doc comments
// attach to exactly one symbol and are consumed on attach). Call this right
// before beginning to parse a DeclDef.
func (p *Parser) consumeDocComment() {
	for p.at(token.DocCommentLine) || p.at(token.DocCommentBlock) {
		p.pendingDoc = p.cur().Text
		p.advance()
	}
}

// takeDoc returns and clears the pending doc comment, attaching it to
// exactly one symbol per the invariant.
func (p *Parser) takeDoc() string {
	d := p.pendingDoc
	p.pendingDoc = ""

	return d
}

func (p *Parser) pushLookingForElse(v bool) { p.lookingForElse = append(p.lookingForElse, v) }
func (p *Parser) popLookingForElse() {
	if len(p.lookingForElse) > 0 {
		p.lookingForElse = p.lookingForElse[:len(p.lookingForElse)-1]
	}
}

// withLinkage saves/restores p.linkage and p.cppMangle around fn, the
// scoped-guard pattern spec.md §9 asks for in place of a bare global.
func (p *Parser) withLinkage(newLinkage ast.LinkageKind, newMangle ast.CppMangle, fn func()) {
	savedLinkage, savedMangle := p.linkage, p.cppMangle
	p.linkage, p.cppMangle = newLinkage, newMangle
	fn()
	p.linkage, p.cppMangle = savedLinkage, savedMangle
}

func (p *Parser) withBrackets(fn func()) {
	p.inBrackets++
	fn()
	p.inBrackets--
}

// ParseError is a convenience error type for Go-level failures that are
// distinct from diagnostics (SPEC_FULL.md §3's error/diagnostic split). No
// function in this package returns one; syntax errors are reported only as
// diagnostics.
type ParseError struct {
	Pos position.Position
	Msg string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos.String(), e.Msg) }
