package parser

import (
	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/position"
	"github.com/jacob-carlborg/ddc/internal/probe"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// parseDeclDef is the main per-declaration dispatch loop (spec.md §4.5):
// gather prefix attributes, then dispatch on the keyword that follows.
// Every branch is expected to consume through its own trailing `;` or `}`;
// a branch that cannot make progress reports an error, resyncs, and
// returns an ErrorDecl so the caller's loop always advances.
func (p *Parser) parseDeclDef() ast.DeclID {
	p.consumeDocComment()
	start := p.loc()
	doc := p.takeDoc()

	attrs := p.parsePrefixAttributes()
	attrs.LeadingDocComment = doc

	switch p.cur().Kind {
	case token.Semicolon:
		p.advance()
		return p.b.MakeDecl(ast.Decl{Kind: ast.DeclEmpty, Span: p.spanFrom(start)})
	case token.LBrace:
		return p.parseAttributeBlock(start, attrs)
	case token.KwImport:
		return p.parseImportDecl(start, false)
	case token.KwStaticImport:
		return p.parseImportDecl(start, true)
	case token.KwAlias:
		return p.parseAliasDecl(start, attrs)
	case token.KwEnum:
		return p.parseEnumDecl(start, attrs)
	case token.KwStruct, token.KwUnion, token.KwClass, token.KwInterface:
		return p.parseAggregateDecl(start, attrs)
	case token.KwTemplate:
		return p.parseTemplateDecl(start, attrs)
	case token.KwMixin:
		if p.peekAt(token.KwTemplate) {
			p.advance()
			id := p.parseTemplateDecl(start, attrs)
			p.b.Arena.Decl(id).Kind = ast.DeclMixinTemplate

			return id
		}

		return p.parseMixinDecl(start)
	case token.KwThis:
		return p.parseCtorDecl(start, attrs)
	case token.Cat: // the lexer emits Cat for every '~'
		return p.parseDtorDecl(start, attrs)
	case token.KwInvariant:
		return p.parseInvariantDecl(start, attrs)
	case token.KwUnittest:
		return p.parseUnittestDecl(start, attrs)
	case token.KwStatic:
		if p.peekAt(token.KwThis) {
			p.advance()
			return p.parseCtorDtorSpecial(start, "static this", attrs)
		}

		if p.peekAt(token.Cat) {
			p.advance()
			return p.parseCtorDtorSpecial(start, "static ~this", attrs)
		}

		if p.peekAt(token.KwIf) {
			p.advance()
			return p.parseStaticIfDecl(start)
		}

		if p.peekAt(token.KwForeach) || p.peekAt(token.KwForeachReverse) {
			p.advance()
			return p.parseStaticForeachDecl(start)
		}

		if p.peekAt(token.KwAssert) {
			p.advance()
			return p.parseStaticAssertDecl(start)
		}
	case token.KwShared:
		if p.peekAt(token.KwStatic) {
			p.advance()
			p.advance()

			if p.at(token.KwThis) {
				return p.parseCtorDtorSpecial(start, "shared static this", attrs)
			}

			if p.at(token.Cat) {
				return p.parseCtorDtorSpecial(start, "shared static ~this", attrs)
			}
		}
	case token.KwDebug:
		return p.parseDebugVersionDecl(start, "debug")
	case token.KwVersion:
		return p.parseDebugVersionDecl(start, "version")
	}

	return p.parseVarOrFuncDecl(start, attrs)
}

// parsePrefixAttributes consumes a run of storage classes, protection,
// linkage, align, deprecated, and UDA attributes into one bundle (spec.md
// §3's PrefixAttributes/§9's pass-by-value-with-residual design). Unlike
// the wrapper-decl form (`const { ... }`), this variant is used for the
// single-declaration prefix case and is folded directly onto the decl it
// precedes.
func (p *Parser) parsePrefixAttributes() ast.PrefixAttributes {
	var attrs ast.PrefixAttributes

	for {
		switch {
		case p.at(token.KwStatic) && (p.peekAt(token.KwThis) || p.peekAt(token.Cat) || p.peekAt(token.KwIf) ||
			p.peekAt(token.KwForeach) || p.peekAt(token.KwForeachReverse) || p.peekAt(token.KwAssert)),
			p.at(token.KwShared) && p.peekAt(token.KwStatic) && (p.peek(2).Kind == token.KwThis || p.peek(2).Kind == token.Cat):
			// `static this`, `static if`, `shared static ~this` and the like
			// are declarations of their own, dispatched by parseDeclDef.
			return attrs
		case storageClassKeyword[p.cur().Kind] != 0:
			flag := storageClassKeyword[p.cur().Kind]
			name := p.cur().Kind.String()
			p.advance()
			attrs.StorageClass = p.appendStorageClass(attrs.StorageClass, flag, name)

			continue
		case typeConstructorKeyword[p.cur().Kind] != 0:
			// `const(T)`/`immutable(T)`/etc. is a type-constructor
			// application, not a storage class (spec.md §8 boundary
			// behavior); only bare `const`/`immutable`/`shared`/`inout`
			// not immediately followed by `(` is a storage class.
			if p.peekAt(token.LParen) {
				return attrs
			}

			flag := typeConstructorKeyword[p.cur().Kind]
			name := p.cur().Kind.String()
			p.advance()
			attrs.StorageClass = p.appendStorageClass(attrs.StorageClass, flag, name)

			continue
		case p.cur().Kind == token.KwExtern:
			p.advance()
			linkage, mangle, ns := p.parseLinkage()
			attrs.Linkage = linkage
			attrs.CppMangle = mangle
			attrs.CppNamespace = ns
		case p.cur().Kind == token.KwPrivate, p.cur().Kind == token.KwProtected,
			p.cur().Kind == token.KwPublic, p.cur().Kind == token.KwExport,
			p.cur().Kind == token.KwPackage:
			prot, path := p.parseProtection()
			attrs.Protection = prot
			attrs.ProtectionPackage = path
		case p.cur().Kind == token.KwAlign:
			has, e := p.parseAlignAttribute()
			attrs.HasAlignment = has
			attrs.AlignmentExpr = e
		case p.cur().Kind == token.KwDeprecated:
			p.advance()

			if p.at(token.LParen) {
				p.advance()
				attrs.DeprecatedMessage = p.parseAssignExpr()
				p.expect(token.RParen)
			}

			attrs.StorageClass = p.appendStorageClass(attrs.StorageClass, ast.SCDeprecated, "deprecated")
		case p.cur().Kind == token.At && atKeywordStorageClass[p.peek(1).Kind] != 0:
			p.advance() // consume '@'
			name := "@" + p.cur().Kind.String()
			flag := atKeywordStorageClass[p.cur().Kind]
			p.advance()
			attrs.StorageClass = p.appendStorageClass(attrs.StorageClass, flag, name)
		case p.cur().Kind == token.At:
			attrs.UDAs = append(attrs.UDAs, p.parseUDA())
		default:
			return attrs
		}
	}
}

// parseAttributeBlock parses `attrs { decl* }`, a grouping of declarations
// that all share the attribute bundle gathered before the `{`.
func (p *Parser) parseAttributeBlock(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	openLoc := p.loc()
	p.advance()

	var members []ast.DeclID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		members = append(members, p.parseDeclDef())
	}

	p.expectMatching(token.RBrace, openLoc, "{")

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclBlock, Span: p.spanFrom(start), Attrs: attrs, Inner: members})
}

func (p *Parser) parseImportDecl(start position.Position, isStatic bool) ast.DeclID {
	p.advance() // consume 'import'/already past 'static'

	var path []string
	var aliases []ast.ImportRename
	var leadAlias string

	first := p.parseDottedIdentList()

	if p.at(token.Assign) {
		leadAlias = first[0]
		p.advance()
		path = p.parseDottedIdentList()
	} else {
		path = first
	}

	if p.at(token.Colon) {
		p.advance()

		for {
			var rename ast.ImportRename
			name := p.cur().Text
			p.advance()

			if p.at(token.Assign) {
				p.advance()
				rename.Alias = name
				rename.Target = p.cur().Text
				p.advance()
			} else {
				rename.Target = name
			}

			aliases = append(aliases, rename)

			if p.at(token.Comma) {
				p.advance()
				continue
			}

			break
		}
	}

	for p.at(token.Comma) {
		p.advance()
		p.parseDottedIdentList()
	}

	p.expect(token.Semicolon)

	name := leadAlias

	return p.b.MakeDecl(ast.Decl{
		Kind: ast.DeclImport, Span: p.spanFrom(start), Name: name,
		ImportPath: path, ImportAliases: aliases, ImportIsStatic: isStatic,
	})
}

func (p *Parser) parseMixinDecl(start position.Position) ast.DeclID {
	p.advance() // consume 'mixin'

	if p.at(token.LParen) {
		p.advance()
		args := p.parseExpressionList(token.RParen)
		p.expect(token.RParen)
		p.expect(token.Semicolon)

		return p.b.MakeDecl(ast.Decl{Kind: ast.DeclMixinDecl, Span: p.spanFrom(start), MixinArgs: args})
	}

	// Template instantiation: `mixin Name!(args) [ident];`
	name := ""
	if p.at(token.Identifier) {
		name = p.cur().Text
		p.advance()
	}

	var templArgs []ast.ExprID
	if p.at(token.Bang) {
		p.advance()
		templArgs = p.parseTemplateArgumentList()
	}

	var instName string
	if p.at(token.Identifier) {
		instName = p.cur().Text
		p.advance()
	}

	p.expect(token.Semicolon)

	return p.b.MakeDecl(ast.Decl{
		Kind: ast.DeclTemplateInstance, Span: p.spanFrom(start),
		Name: instName, InstanceOf: name, TemplArgs: templArgs,
	})
}

func (p *Parser) parseAliasDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	p.advance() // consume 'alias'

	// `alias Name = Type;` form.
	if p.at(token.Identifier) && p.peekAt(token.Assign) {
		name := p.cur().Text
		p.advance()
		p.advance()
		ty := p.parseType()
		p.expect(token.Semicolon)

		return p.b.MakeDecl(ast.Decl{Kind: ast.DeclAlias, Span: p.spanFrom(start), Name: name, AliasTarget: ty, Attrs: attrs})
	}

	if p.at(token.Identifier) {
		// `alias Target Name;` legacy form.
		k, ok := probe.IsBasicType(p.lex, 0)

		if ok {
			if nk, haveID, _, dok := probe.IsDeclarator(p.lex, k); dok && haveID {
				_ = nk
				ty := p.parseType()
				name := p.cur().Text
				p.advance()
				p.expect(token.Semicolon)

				return p.b.MakeDecl(ast.Decl{Kind: ast.DeclAlias, Span: p.spanFrom(start), Name: name, AliasTarget: ty, Attrs: attrs})
			}
		}
	}

	if p.at(token.KwThis) {
		p.advance()
		p.expect(token.Semicolon)

		return p.b.MakeDecl(ast.Decl{Kind: ast.DeclAliasThis, Span: p.spanFrom(start), Attrs: attrs})
	}

	ty := p.parseType()
	name := ""

	if p.at(token.Identifier) {
		name = p.cur().Text
		p.advance()
	}

	p.expect(token.Semicolon)

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclAlias, Span: p.spanFrom(start), Name: name, AliasTarget: ty, Attrs: attrs})
}

func (p *Parser) parseEnumDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	p.advance() // consume 'enum'

	name := ""
	if p.at(token.Identifier) {
		name = p.cur().Text
		p.advance()
	}

	var base ast.TypeID = ast.NoType
	if p.at(token.Colon) {
		p.advance()
		base = p.parseType()
	}

	if p.at(token.Semicolon) {
		p.advance()
		return p.b.MakeDecl(ast.Decl{Kind: ast.DeclEnum, Span: p.spanFrom(start), Name: name, EnumBase: base, Attrs: attrs})
	}

	openLoc := p.loc()
	p.expect(token.LBrace)

	var members []ast.DeclID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		members = append(members, p.parseEnumMember())

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	p.expectMatching(token.RBrace, openLoc, "{")

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclEnum, Span: p.spanFrom(start), Name: name, EnumBase: base, EnumMembers: members, Attrs: attrs})
}

func (p *Parser) parseEnumMember() ast.DeclID {
	start := p.loc()
	p.consumeDocComment()

	for p.at(token.At) {
		p.parseUDA()
	}

	name := ""
	if p.at(token.Identifier) {
		name = p.cur().Text
		p.advance()
	}

	var value ast.ExprID = ast.NoExpr
	if p.at(token.Assign) {
		p.advance()
		value = p.parseAssignExpr()
	}

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclEnumMember, Span: p.spanFrom(start), Name: name, DocText: p.takeDoc(), MemberValue: value})
}

func (p *Parser) parseAggregateDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	var kind ast.AggregateKind

	switch p.cur().Kind {
	case token.KwStruct:
		kind = ast.AggStruct
	case token.KwUnion:
		kind = ast.AggUnion
	case token.KwClass:
		kind = ast.AggClass
	case token.KwInterface:
		kind = ast.AggInterface
	}

	p.advance()

	name := ""
	if p.at(token.Identifier) {
		name = p.cur().Text
		p.advance()
	} else {
		kind = ast.AggAnonymous
	}

	var templParams []ast.TemplateParam
	if p.at(token.LParen) {
		p.advance()
		templParams = p.parseTemplateParamList()
		p.expect(token.RParen)
	}

	var constraint ast.ExprID = ast.NoExpr
	if p.at(token.KwIf) {
		p.advance()
		p.expect(token.LParen)
		constraint = p.parseExpression()
		p.expect(token.RParen)
	}

	var bases []ast.TypeID
	if p.at(token.Colon) {
		p.advance()

		for {
			bases = append(bases, p.parseType())

			if p.at(token.Comma) {
				p.advance()
				continue
			}

			break
		}
	}

	if p.at(token.Semicolon) {
		p.advance()
		return p.b.MakeDecl(ast.Decl{
			Kind: ast.DeclAggregate, Span: p.spanFrom(start), Name: name, AggKind: kind,
			TemplParams: templParams, Constraint: constraint, BaseTypes: bases, Attrs: attrs,
		})
	}

	openLoc := p.loc()
	p.expect(token.LBrace)

	var members []ast.DeclID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		members = append(members, p.parseDeclDef())
	}

	p.expectMatching(token.RBrace, openLoc, "{")

	return p.b.MakeDecl(ast.Decl{
		Kind: ast.DeclAggregate, Span: p.spanFrom(start), Name: name, AggKind: kind,
		TemplParams: templParams, Constraint: constraint, BaseTypes: bases,
		Members: members, Attrs: attrs,
	})
}

func (p *Parser) parseTemplateDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	p.advance() // consume 'template'

	name := ""
	if p.at(token.Identifier) {
		name = p.cur().Text
		p.advance()
	}

	p.expect(token.LParen)
	var templParams []ast.TemplateParam
	if !p.at(token.RParen) {
		templParams = p.parseTemplateParamList()
	}
	p.expect(token.RParen)

	var constraint ast.ExprID = ast.NoExpr
	if p.at(token.KwIf) {
		p.advance()
		p.expect(token.LParen)
		constraint = p.parseExpression()
		p.expect(token.RParen)
	}

	openLoc := p.loc()
	p.expect(token.LBrace)

	var members []ast.DeclID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		members = append(members, p.parseDeclDef())
	}

	p.expectMatching(token.RBrace, openLoc, "{")

	return p.b.MakeDecl(ast.Decl{
		Kind: ast.DeclTemplate, Span: p.spanFrom(start), Name: name,
		TemplParams: templParams, Constraint: constraint, Members: members, Attrs: attrs,
	})
}

func (p *Parser) parseCtorDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	p.advance() // consume 'this'

	if p.at(token.LParen) && p.peekAt(token.KwThis) {
		// Postblit `this(this)`.
		p.advance()
		p.advance()
		p.expect(token.RParen)

		sc := p.parseStorageClasses()
		attrs.StorageClass |= sc

		body := p.parseFunctionBodyOrContracts()

		return p.b.MakeDecl(ast.Decl{Kind: ast.DeclPostblit, Span: p.spanFrom(start), Attrs: attrs, Body: body})
	}

	params, variadic := p.parseParameterList()
	sc := p.parseStorageClasses()
	attrs.StorageClass |= sc

	contracts := p.parseContracts()
	body := p.parseFunctionBodyAfterContracts(contracts)

	return p.b.MakeDecl(ast.Decl{
		Kind: ast.DeclCtor, Span: p.spanFrom(start), Params: params, Variadic: variadic,
		Attrs: attrs, Contracts: contracts, Body: body,
	})
}

func (p *Parser) parseDtorDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	p.advance() // consume '~'

	if !p.at(token.KwThis) {
		p.errorf("expected this after ~")
		return p.b.ErrorDecl(p.spanFrom(start), "malformed destructor")
	}

	p.advance()
	p.expect(token.LParen)
	p.expect(token.RParen)

	sc := p.parseStorageClasses()
	attrs.StorageClass |= sc

	body := p.parseFunctionBodyOrContracts()

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclDtor, Span: p.spanFrom(start), Attrs: attrs, Body: body})
}

// parseCtorDtorSpecial parses `static this`, `static ~this`, `shared
// static this`, and `shared static ~this` after the caller has consumed
// through `static`/`shared static`, leaving the cursor on `this` or `~`.
func (p *Parser) parseCtorDtorSpecial(start position.Position, label string, attrs ast.PrefixAttributes) ast.DeclID {
	if p.at(token.Cat) {
		p.advance()
	}

	p.expect(token.KwThis)
	p.expect(token.LParen)
	p.expect(token.RParen)

	sc := p.parseStorageClasses()
	attrs.StorageClass |= sc

	body := p.parseFunctionBodyOrContracts()

	kind := ast.DeclStaticCtor
	switch label {
	case "static ~this":
		kind = ast.DeclStaticDtor
	case "shared static this":
		kind = ast.DeclSharedStaticCtor
	case "shared static ~this":
		kind = ast.DeclSharedStaticDtor
	}

	return p.b.MakeDecl(ast.Decl{Kind: kind, Span: p.spanFrom(start), Attrs: attrs, Body: body})
}

func (p *Parser) parseInvariantDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	p.advance() // consume 'invariant'

	if p.at(token.LParen) {
		p.advance()
		p.expect(token.RParen)
	}

	body := p.parseBlockStmt()

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclInvariant, Span: p.spanFrom(start), Attrs: attrs, Body: body})
}

func (p *Parser) parseUnittestDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	p.advance()
	body := p.parseBlockStmt()

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclUnittest, Span: p.spanFrom(start), Attrs: attrs, Body: body})
}

func (p *Parser) parseStaticIfDecl(start position.Position) ast.DeclID {
	p.advance() // consume 'if'
	openLoc := p.loc()
	p.expect(token.LParen)
	cond := p.parseAssignExpr()
	p.expectMatching(token.RParen, openLoc, "(")

	then := p.parseDeclBranch()

	var els []ast.DeclID
	if p.at(token.KwElse) {
		p.advance()
		els = p.parseDeclBranch()
	}

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclConditionalDecl, Span: p.spanFrom(start), CondKind: "static if", CondExpr: cond, CondThen: then, CondElse: els})
}

func (p *Parser) parseStaticForeachDecl(start position.Position) ast.DeclID {
	// static foreach at decl scope shares its header grammar with the
	// statement form (parseForeachHeader); represented here as a
	// conditional-decl wrapper whose CondKind carries the discriminator
	// and whose body is folded into CondThen.
	p.advance() // consume 'foreach'/'foreach_reverse', already positioned past 'static'

	ok, kind, params, agg, upper := p.parseForeachHeader()
	if !ok {
		return p.b.ErrorDecl(p.spanFrom(start), "malformed static foreach")
	}

	then := p.parseDeclBranch()

	return p.b.MakeDecl(ast.Decl{
		Kind: ast.DeclConditionalDecl, Span: p.spanFrom(start), CondKind: "static foreach",
		CondThen: then, ForeachKind: kind, ForeachParams: params, ForeachAgg: agg, ForeachUpper: upper,
	})
}

func (p *Parser) parseStaticAssertDecl(start position.Position) ast.DeclID {
	p.advance() // consume 'assert'
	p.expect(token.LParen)
	cond := p.parseAssignExpr()

	var msg ast.ExprID = ast.NoExpr
	if p.at(token.Comma) {
		p.advance()
		msg = p.parseAssignExpr()
	}

	p.expect(token.RParen)
	p.expect(token.Semicolon)

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclConditionalDecl, Span: p.spanFrom(start), CondKind: "static assert", CondExpr: cond, MemberValue: msg})
}

func (p *Parser) parseDebugVersionDecl(start position.Position, kind string) ast.DeclID {
	p.advance() // consume 'debug'/'version'

	if p.at(token.Assign) {
		p.advance()

		if p.at(token.Identifier) || p.at(token.IntLiteral) {
			p.advance()
		}

		p.expect(token.Semicolon)

		return p.b.MakeDecl(ast.Decl{Kind: ast.DeclConditionalDecl, Span: p.spanFrom(start), CondKind: kind + "-assign"})
	}

	if p.at(token.LParen) {
		p.advance()

		if p.at(token.Identifier) || p.at(token.IntLiteral) {
			p.advance()
		}

		p.expect(token.RParen)
	}

	then := p.parseDeclBranch()

	var els []ast.DeclID
	if p.at(token.KwElse) {
		p.advance()
		els = p.parseDeclBranch()
	}

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclConditionalDecl, Span: p.spanFrom(start), CondKind: kind, CondThen: then, CondElse: els})
}

func (p *Parser) parseDeclBranch() []ast.DeclID {
	if p.at(token.LBrace) {
		openLoc := p.loc()
		p.advance()

		var decls []ast.DeclID
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			decls = append(decls, p.parseDeclDef())
		}

		p.expectMatching(token.RBrace, openLoc, "{")

		return decls
	}

	return []ast.DeclID{p.parseDeclDef()}
}

// parseVarOrFuncDecl is the fallback branch of parseDeclDef: a basic type
// followed by one or more declarators, each either a variable (optionally
// initialized) or a function (parameter list, optional contracts, body).
// A single leading type may introduce several comma-separated declarators
// that all share it (spec.md §4.5's shared-base-type multi-var form).
func (p *Parser) parseVarOrFuncDecl(start position.Position, attrs ast.PrefixAttributes) ast.DeclID {
	baseTy := p.parseType()

	if !p.at(token.Identifier) {
		p.errorf("expected declarator name, found %s", p.cur().Kind.String())
		p.resyncTo(token.Semicolon, token.LBrace, token.RBrace)

		if p.at(token.Semicolon) {
			p.advance()
		}

		return p.b.ErrorDecl(p.spanFrom(start), "expected declarator")
	}

	name := p.cur().Text
	p.advance()

	if p.at(token.LParen) {
		return p.parseFunctionDeclRest(start, attrs, baseTy, name)
	}

	return p.parseVariableDeclRest(start, attrs, baseTy, name)
}

// parseVarOrAliasDecl parses one declaration-as-statement (spec.md §4.5):
// used from the statement grammar once looksLikeDeclaration has confirmed
// the shape.
func (p *Parser) parseVarOrAliasDecl(attrs ast.PrefixAttributes) ast.DeclID {
	start := p.loc()

	if p.at(token.KwAlias) {
		return p.parseAliasDecl(start, attrs)
	}

	if p.at(token.KwEnum) {
		return p.parseEnumDecl(start, attrs)
	}

	if p.at(token.KwStruct) || p.at(token.KwUnion) || p.at(token.KwClass) || p.at(token.KwInterface) {
		return p.parseAggregateDecl(start, attrs)
	}

	sc := p.parseStorageClasses()
	attrs.StorageClass |= sc

	return p.parseVarOrFuncDecl(start, attrs)
}

func (p *Parser) parseVariableDeclRest(start position.Position, attrs ast.PrefixAttributes, baseTy ast.TypeID, firstName string) ast.DeclID {
	names := []string{firstName}
	inits := []ast.ExprID{ast.NoExpr}
	forms := []ast.InitForm{ast.InitNone}

	if p.at(token.Assign) {
		p.advance()
		inits[0], forms[0] = p.parseInitializer()
	}

	for p.at(token.Comma) {
		p.advance()

		if !p.at(token.Identifier) {
			p.errorf("expected declarator name after ,")
			break
		}

		names = append(names, p.cur().Text)
		p.advance()

		var init ast.ExprID = ast.NoExpr
		form := ast.InitNone

		if p.at(token.Assign) {
			p.advance()
			init, form = p.parseInitializer()
		}

		inits = append(inits, init)
		forms = append(forms, form)
	}

	p.expect(token.Semicolon)

	if len(names) == 1 {
		return p.b.MakeDecl(ast.Decl{
			Kind: ast.DeclVar, Span: p.spanFrom(start), Name: names[0], Type: baseTy,
			Init: inits[0], InitForm: forms[0], Attrs: attrs, StorageSet: attrs.StorageClass,
		})
	}

	var members []ast.DeclID
	for i, n := range names {
		members = append(members, p.b.MakeDecl(ast.Decl{
			Kind: ast.DeclVar, Span: p.spanFrom(start), Name: n, Type: baseTy,
			Init: inits[i], InitForm: forms[i], Attrs: attrs, StorageSet: attrs.StorageClass,
		}))
	}

	return p.b.MakeDecl(ast.Decl{Kind: ast.DeclBlock, Span: p.spanFrom(start), Attrs: attrs, Inner: members})
}

func (p *Parser) parseFunctionDeclRest(start position.Position, attrs ast.PrefixAttributes, retTy ast.TypeID, name string) ast.DeclID {
	params, variadic := p.parseParameterList()
	sc := p.parseStorageClasses()
	attrs.StorageClass |= sc

	contracts := p.parseContracts()
	body := p.parseFunctionBodyAfterContracts(contracts)

	return p.b.MakeDecl(ast.Decl{
		Kind: ast.DeclFunc, Span: p.spanFrom(start), Name: name, ReturnTy: retTy,
		Params: params, Variadic: variadic, Attrs: attrs, Contracts: contracts, Body: body,
	})
}

// parseFunctionBodyOrContracts handles the ctor/dtor/postblit body, which
// may include the same in/out/do contract machinery as an ordinary
// function.
func (p *Parser) parseFunctionBodyOrContracts() ast.StmtID {
	contracts := p.parseContracts()
	return p.parseFunctionBodyAfterContracts(contracts)
}

// parseFunctionBodyAfterContracts consumes the function body proper: a
// block, `;` (declaration only, no body), or `= void;`/`= default;` forms.
func (p *Parser) parseFunctionBodyAfterContracts(contracts ast.Contracts) ast.StmtID {
	switch {
	case p.at(token.LBrace):
		if hasBlockContract(contracts) {
			p.errorf("function body must be introduced with 'do' after a block-form in/out contract")
		}

		return p.parseBlockStmt()
	case p.at(token.KwDo) || p.at(token.KwBody):
		p.advance()
		return p.parseBlockStmt()
	case p.at(token.Semicolon):
		p.advance()
		return ast.NoStmt
	case p.at(token.Assign):
		p.advance()
		p.resyncTo(token.Semicolon)
		p.expect(token.Semicolon)

		return ast.NoStmt
	default:
		p.errorf("expected function body, ;, in, or out, found %s", p.cur().Kind.String())
		p.resyncTo(token.Semicolon, token.LBrace)

		if p.at(token.Semicolon) {
			p.advance()
		}

		return ast.NoStmt
	}
}
