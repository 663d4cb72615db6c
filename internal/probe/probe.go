// Package probe implements the parser's lookahead predicates: pure
// functions over the token stream that classify a position as a basic
// type, a declarator, a parameter list, an expression, or an attribute
// run, without ever touching the parser's own cursor (spec.md §4.3).
//
// Probes address tokens by an integer offset k from the parser's current
// token: k == 0 is Current(), k >= 1 is Peek(k). A probe that succeeds
// returns the offset of the first token past the construct it matched;
// the caller decides whether and how far to actually advance.
package probe

import (
	"github.com/jacob-carlborg/ddc/internal/lexer"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// Source is the minimal lexer surface a probe needs.
type Source interface {
	Current() token.Token
	Peek(k int) token.Token
}

func at(s Source, k int) token.Token {
	if k <= 0 {
		return s.Current()
	}

	return s.Peek(k)
}

var _ Source = (*lexer.Lexer)(nil)

// SkipParens expects a '(' at k and walks matched parens to the token past
// the closing ')'. It fails (ok=false) on EOF before the match closes.
func SkipParens(s Source, k int) (next int, ok bool) {
	if at(s, k).Kind != token.LParen {
		return k, false
	}

	depth := 0

	for {
		tok := at(s, k)

		switch tok.Kind {
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

// skipOneLevel generalizes SkipParens to any open/close pair such as
// '[' ']' and '{' '}'. IsExpression keeps its own depth count and does not
// call it.
func skipOneLevel(s Source, k int, open, close token.Kind) (int, bool) {
	if at(s, k).Kind != open {
		return k, false
	}

	depth := 0

	for {
		tok := at(s, k)

		switch tok.Kind {
		case open:
			depth++
		case close:
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

var attributeKeywords = map[token.Kind]bool{
	token.KwConst: true, token.KwImmutable: true, token.KwShared: true,
	token.KwInout: true, token.KwFinal: true, token.KwAuto: true,
	token.KwScope: true, token.KwOverride: true, token.KwAbstract: true,
	token.KwSynchronized: true, token.KwNothrow: true, token.KwPure: true,
	token.KwRef: true, token.KwGShared: true, token.KwReturnAttr: true,
}

// SkipAttributes skips a run of storage-class attribute keywords,
// `deprecated(...)`/`deprecated`, and `@`-UDA forms (`@id`, `@id!arg`,
// `@id!(args)` optionally followed by `(args)`, and `@(args)`), stopping at
// the first token that is none of those.
func SkipAttributes(s Source, k int) int {
	for {
		tok := at(s, k)

		switch {
		case attributeKeywords[tok.Kind]:
			k++
		case tok.Kind == token.KwDeprecated:
			k++

			if at(s, k).Kind == token.LParen {
				if nk, ok := SkipParens(s, k); ok {
					k = nk
				}
			}
		case tok.Kind == token.At:
			k++

			if at(s, k).Kind == token.LParen {
				if nk, ok := SkipParens(s, k); ok {
					k = nk
					continue
				}

				return k
			}

			if at(s, k).Kind != token.Identifier {
				return k
			}

			k++

			if at(s, k).Kind == token.Bang {
				k++
				if at(s, k).Kind == token.LParen {
					if nk, ok := SkipParens(s, k); ok {
						k = nk
					}
				} else {
					k++ // single template argument token
				}
			}

			if at(s, k).Kind == token.LParen {
				if nk, ok := SkipParens(s, k); ok {
					k = nk
				}
			}
		default:
			return k
		}
	}
}

// IsBasicType reports whether the token run starting at k can begin a type:
// a (possibly templated, possibly dotted) identifier, `typeof(...)`,
// `__vector(...)`, `__traits(getMember, ...)`, a builtin type keyword, or a
// type-constructor application `const(T)`/`immutable(T)`/`shared(T)`/
// `inout(T)`.
func IsBasicType(s Source, k int) (next int, ok bool) {
	tok := at(s, k)

	switch tok.Kind {
	case token.KwTypeof:
		k++
		if at(s, k).Kind != token.LParen {
			return k, false
		}

		return SkipParens(s, k)
	case token.KwVector:
		k++
		if at(s, k).Kind != token.LParen {
			return k, false
		}

		return SkipParens(s, k)
	case token.KwTraits:
		k++
		if at(s, k).Kind != token.LParen {
			return k, false
		}

		return SkipParens(s, k)
	case token.KwConst, token.KwImmutable, token.KwShared, token.KwInout:
		if at(s, k+1).Kind == token.LParen {
			k++
			return SkipParens(s, k)
		}

		return k, false
	case token.KwVoid, token.KwBool, token.KwByte, token.KwUbyte,
		token.KwShort, token.KwUshort, token.KwInt, token.KwUint,
		token.KwLong, token.KwUlong, token.KwFloatT, token.KwDoubleT, token.KwChar:
		return k + 1, true
	case token.Identifier:
		return isQualifiedTemplatedIdent(s, k)
	default:
		return k, false
	}
}

// isQualifiedTemplatedIdent matches `a[!tpl][.b[!tpl]]*`.
func isQualifiedTemplatedIdent(s Source, k int) (int, bool) {
	if at(s, k).Kind != token.Identifier {
		return k, false
	}

	k++

	if at(s, k).Kind == token.Bang {
		k++

		if at(s, k).Kind == token.LParen {
			nk, ok := SkipParens(s, k)
			if !ok {
				return k, false
			}

			k = nk
		} else if at(s, k).Kind == token.Identifier || isLiteralStart(at(s, k).Kind) {
			k++
		} else {
			return k, false
		}
	}

	for at(s, k).Kind == token.Dot && at(s, k+1).Kind == token.Identifier {
		k += 2

		if at(s, k).Kind == token.Bang {
			k++

			if at(s, k).Kind == token.LParen {
				nk, ok := SkipParens(s, k)
				if !ok {
					return k, false
				}

				k = nk
			} else {
				k++
			}
		}
	}

	return k, true
}

func isLiteralStart(k token.Kind) bool {
	switch k {
	case token.IntLiteral, token.FloatLiteral, token.StringLiteral, token.CharLiteral,
		token.KwTrue, token.KwFalse, token.KwNull:
		return true
	default:
		return false
	}
}

// declaratorTerminators are the token kinds that legally end a declarator
// per spec.md §4.3 ("Valid terminators: ) ] = , … ; { in out do").
var declaratorTerminators = map[token.Kind]bool{
	token.RParen: true, token.RBracket: true, token.Assign: true,
	token.Comma: true, token.DotDotDot: true, token.Semicolon: true,
	token.LBrace: true, token.KwIn: true, token.KwOut: true, token.KwDo: true,
}

// IsDeclarator reports whether the token run at k is a declarator: an
// optional run of '*' pointer markers, an identifier, optional function/
// template parameter-list suffixes, ending on a valid terminator. haveID
// reports whether an identifier was actually seen; haveTemplate reports
// whether a template parameter list (`(T)` right after the identifier,
// followed by another '(' — the parameter list) was seen, which is what
// makes a trailing `if` a valid terminator too (constraint clause).
func IsDeclarator(s Source, k int) (next int, haveID bool, haveTemplate bool, ok bool) {
	for at(s, k).Kind == token.Star {
		k++
	}

	if at(s, k).Kind == token.LParen {
		nk, pok := SkipParens(s, k)
		if !pok {
			return k, false, false, false
		}

		k = nk
	} else if at(s, k).Kind == token.Identifier {
		haveID = true
		k++
	} else {
		return k, false, false, false
	}

	// Optional template parameter list: `(T, U)` directly after the name.
	if at(s, k).Kind == token.LParen {
		nk, pok := SkipParens(s, k)
		if pok {
			k = nk
			haveTemplate = at(s, k).Kind == token.LParen
		}
	}

	// Optional function parameter list.
	if at(s, k).Kind == token.LParen {
		if nk, pok := IsParameters(s, k); pok {
			k = nk
		}
	}

	// Optional trailing attribute run (const/pure/nothrow/@safe/... on a
	// function declarator).
	k = SkipAttributes(s, k)

	term := at(s, k).Kind
	if term == token.KwIf && !haveTemplate {
		return k, haveID, haveTemplate, false
	}

	if !declaratorTerminators[term] && term != token.KwIf {
		return k, haveID, haveTemplate, false
	}

	return k, haveID, haveTemplate, true
}

// IsParameters reports whether k sits on a complete, well-formed parameter
// list: a parenthesized, comma-separated run of [storage-classes] type
// [identifier] [= default], possibly ending in a variadic `...`.
func IsParameters(s Source, k int) (next int, ok bool) {
	if at(s, k).Kind != token.LParen {
		return k, false
	}

	k++

	if at(s, k).Kind == token.RParen {
		return k + 1, true
	}

	for {
		if at(s, k).Kind == token.DotDotDot {
			k++
			break
		}

		k = SkipAttributes(s, k)

		nk, tok := IsBasicType(s, k)
		if !tok {
			return k, false
		}

		k = nk

		nk2, _, _, dok := IsDeclarator(s, k)
		if dok {
			k = nk2
		}

		if at(s, k).Kind == token.Assign {
			k++

			nk3, eok := IsExpression(s, k)
			if !eok {
				return k, false
			}

			k = nk3
		}

		if at(s, k).Kind == token.Comma {
			k++
			continue
		}

		break
	}

	if at(s, k).Kind != token.RParen {
		return k, false
	}

	return k + 1, true
}

// IsExpression scans forward until an unbalanced closing bracket/paren/
// brace or a `,` outside any bracket is hit (success, the construct ended)
// or a `;`/EOF is hit outside any bracket (failure). An unbalanced closer
// at k itself is a failure (empty expression).
func IsExpression(s Source, k int) (next int, ok bool) {
	depth := 0
	start := k

	if at(s, k).Kind == token.EOF {
		return k, false
	}

	for {
		tok := at(s, k)

		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth == 0 {
				if k == start {
					return k, false
				}

				return k, true
			}

			depth--
		case token.Semicolon:
			if depth == 0 {
				return k, false
			}
		case token.Comma:
			if depth == 0 {
				return k, true
			}
		case token.EOF:
			return k, false
		}

		k++
	}
}
