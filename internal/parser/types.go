package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/token"
)

var builtinTypeName = map[token.Kind]string{
	token.KwVoid: "void", token.KwBool: "bool", token.KwByte: "byte",
	token.KwUbyte: "ubyte", token.KwShort: "short", token.KwUshort: "ushort",
	token.KwInt: "int", token.KwUint: "uint", token.KwLong: "long",
	token.KwUlong: "ulong", token.KwFloatT: "float", token.KwDoubleT: "double",
	token.KwChar: "char",
}

var typeConstructorKeyword = map[token.Kind]ast.StorageClass{
	token.KwConst: ast.SCConst, token.KwImmutable: ast.SCImmutable,
	token.KwShared: ast.SCShared, token.KwInout: ast.SCInout,
}

// parseType parses a full type expression: a basic type followed by any
// number of pointer/array/associative-array suffixes (spec.md §4's type
// catalogue: basic, type constructors, function/delegate, static/dynamic/
// associative arrays, vector, typeof).
func (p *Parser) parseType() ast.TypeID {
	base := p.parseBasicType()

	return p.parseTypeSuffixes(base)
}

func (p *Parser) parseBasicType() ast.TypeID {
	start := p.loc()

	if name, ok := builtinTypeName[p.cur().Kind]; ok {
		p.advance()
		return p.b.MakeType(ast.Type{Kind: ast.TypeBasic, Span: p.spanFrom(start), Name: name})
	}

	if qual, ok := typeConstructorKeyword[p.cur().Kind]; ok && p.peekAt(token.LParen) {
		p.advance()
		p.advance() // consume '('

		inner := p.parseType()

		if !p.at(token.RParen) {
			p.errorf("expected ) closing type constructor")
			p.resyncTo(token.RParen, token.Semicolon)
		}

		if p.at(token.RParen) {
			p.advance()
		}

		return p.b.MakeType(ast.Type{Kind: ast.TypeConstructor, Span: p.spanFrom(start), Elem: inner, Qualifier: qual})
	}

	switch p.cur().Kind {
	case token.KwTypeof:
		p.advance()

		if !p.at(token.LParen) {
			p.errorf("expected ( after typeof")
			return p.b.ErrorType(p.spanFrom(start), "malformed typeof")
		}

		p.advance()
		e := p.parseExpression()

		if !p.at(token.RParen) {
			p.errorf("expected ) closing typeof(...)")
			p.resyncTo(token.RParen, token.Semicolon)
		}

		if p.at(token.RParen) {
			p.advance()
		}

		return p.b.MakeType(ast.Type{Kind: ast.TypeTypeof, Span: p.spanFrom(start), TypeofExpr: e})
	case token.KwVector:
		p.advance()

		if !p.at(token.LParen) {
			p.errorf("expected ( after __vector")
			return p.b.ErrorType(p.spanFrom(start), "malformed __vector")
		}

		p.advance()
		inner := p.parseType()

		if !p.at(token.RParen) {
			p.errorf("expected ) closing __vector(...)")
			p.resyncTo(token.RParen, token.Semicolon)
		}

		if p.at(token.RParen) {
			p.advance()
		}

		return p.b.MakeType(ast.Type{Kind: ast.TypeVector, Span: p.spanFrom(start), Elem: inner})
	case token.KwFunction, token.KwDelegate:
		return p.parseFunctionOrDelegateType()
	case token.Identifier:
		return p.parseQualifiedIdentType()
	default:
		p.errorf("expected type, found %s", p.cur().Kind.String())
		return p.b.ErrorType(p.spanFrom(start), "expected type")
	}
}

func (p *Parser) parseQualifiedIdentType() ast.TypeID {
	start := p.loc()
	var parts []string

	parts = append(parts, p.cur().Text)
	p.advance()

	if p.at(token.Bang) {
		p.advance()
		p.parseTemplateArgument()
	}

	for p.at(token.Dot) && p.peekAt(token.Identifier) {
		p.advance()
		parts = append(parts, p.cur().Text)
		p.advance()

		if p.at(token.Bang) {
			p.advance()
			p.parseTemplateArgument()
		}
	}

	if len(parts) == 1 {
		return p.b.MakeType(ast.Type{Kind: ast.TypeBasic, Span: p.spanFrom(start), Name: parts[0]})
	}

	return p.b.MakeType(ast.Type{Kind: ast.TypeQualifiedIdent, Span: p.spanFrom(start), Parts: parts})
}

// parseTemplateArgument parses a single `!arg` or `!(args)` template
// argument list attached to an identifier, discarding the parsed
// expressions/types (the parser does not perform instantiation — it only
// needs to consume the tokens correctly).
func (p *Parser) parseTemplateArgument() {
	if p.at(token.LParen) {
		p.advance()

		if !p.at(token.RParen) {
			for {
				p.parseAssignExpr()

				if p.at(token.Comma) {
					p.advance()
					continue
				}

				break
			}
		}

		if !p.at(token.RParen) {
			p.errorf("expected ) closing template argument list")
			p.resyncTo(token.RParen, token.Semicolon)
		}

		if p.at(token.RParen) {
			p.advance()
		}

		return
	}

	p.parseAssignExpr()
}

func (p *Parser) parseFunctionOrDelegateType() ast.TypeID {
	start := p.loc()
	isDelegate := p.at(token.KwDelegate)
	p.advance()

	var retTy ast.TypeID
	if !p.at(token.LParen) {
		retTy = p.parseType()
	}

	params, _ := p.parseParameterList()
	attrs := p.parseStorageClasses()

	return p.b.MakeType(ast.Type{
		Kind: ast.TypeFunction, Span: p.spanFrom(start),
		Return: retTy, Params: params, IsDelegate: isDelegate, FuncAttrs: attrs,
	})
}

// parseTypeSuffixes folds pointer (`*`), static/dynamic array (`[n]`/`[]`),
// and associative array (`[K]`) suffixes onto base, left to right.
func (p *Parser) parseTypeSuffixes(base ast.TypeID) ast.TypeID {
	for {
		start := p.loc()

		switch p.cur().Kind {
		case token.Star:
			p.advance()
			base = p.b.MakeType(ast.Type{Kind: ast.TypePointer, Span: p.spanFrom(start), Elem: base})
		case token.LBracket:
			p.advance()

			if p.at(token.RBracket) {
				p.advance()
				base = p.b.MakeType(ast.Type{Kind: ast.TypeDynamicArray, Span: p.spanFrom(start), Elem: base, IsDynamic: true})
				continue
			}

			// Disambiguate static array `[N]` from associative array `[K]`
			// with looksLikeAssocArrayKey: only a lone identifier before
			// `]` is taken as a key type.
			if p.looksLikeAssocArrayKey() {
				key := p.parseType()

				if !p.at(token.RBracket) {
					p.errorf("expected ] closing associative array type")
					p.resyncTo(token.RBracket, token.Semicolon)
				}

				if p.at(token.RBracket) {
					p.advance()
				}

				base = p.b.MakeType(ast.Type{Kind: ast.TypeAssocArray, Span: p.spanFrom(start), Elem: base, KeyType: key})

				continue
			}

			length := p.parseExpression()

			if !p.at(token.RBracket) {
				p.errorf("expected ] closing array type")
				p.resyncTo(token.RBracket, token.Semicolon)
			}

			if p.at(token.RBracket) {
				p.advance()
			}

			base = p.b.MakeType(ast.Type{Kind: ast.TypeStaticArray, Span: p.spanFrom(start), Elem: base, Length: length})
		default:
			return base
		}
	}
}

// looksLikeAssocArrayKey peeks past the `[` to decide whether the content
// is a type (associative array key) rather than a constant-expression
// length: a single identifier followed directly by `]` is treated as a type
// name; any other content is parsed as a length expression.
func (p *Parser) looksLikeAssocArrayKey() bool {
	if p.cur().Kind != token.Identifier {
		return false
	}

	return p.peekAt(token.RBracket)
}
