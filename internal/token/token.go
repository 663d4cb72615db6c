// Package token defines the lexical token kinds, the Token value type, and
// identifier interning shared by the lexer and parser.
package token

import (
	"fmt"

	"github.com/jacob-carlborg/ddc/internal/position"
)

// Kind is the tag of a token. The enumeration groups special tokens,
// literals, keywords (declaration/statement/type/attribute families) and
// punctuation/operators, mirroring spec.md §3's "~250 kinds" catalogue at a
// representative scale.
type Kind int

const (
	EOF Kind = iota
	Illegal

	// Literal family.
	Identifier
	IntLiteral
	FloatLiteral
	StringLiteral
	CharLiteral
	DocCommentBlock
	DocCommentLine

	// Declaration / structural keywords.
	KwModule
	KwImport
	KwStruct
	KwUnion
	KwClass
	KwInterface
	KwEnum
	KwTemplate
	KwMixin
	KwAlias
	KwFunction
	KwDelegate
	KwThis
	KwSuper
	KwNew
	KwDelete
	KwInvariant
	KwUnittest
	KwTypeof
	KwTypeid
	KwTraits
	KwIs
	KwCast
	KwDebug
	KwVersion
	KwPragma
	KwExtern
	KwAlign
	KwVector
	KwBody
	KwDo
	KwIn
	KwOut
	KwAuto

	// Statement keywords.
	KwIf
	KwElse
	KwWhile
	KwFor
	KwForeach
	KwForeachReverse
	KwSwitch
	KwCase
	KwDefault
	KwBreak
	KwContinue
	KwGoto
	KwReturn
	KwTry
	KwCatch
	KwFinally
	KwThrow
	KwWith
	KwAsm
	KwAssert
	KwFinal
	KwScope
	KwSynchronized
	KwStaticAssert
	KwStaticIf
	KwStaticForeach
	KwStaticImport

	// Storage class / attribute keywords.
	KwConst
	KwImmutable
	KwShared
	KwInout
	KwStatic
	KwOverride
	KwAbstract
	KwDeprecated
	KwNothrow
	KwPure
	KwRef
	KwGShared
	KwManifest
	KwReturnAttr
	KwLazy
	KwDisable
	KwProperty
	KwNogc
	KwSafe
	KwTrusted
	KwSystem
	KwLive
	KwFuture

	// Protection / linkage keywords.
	KwPrivate
	KwPackage
	KwProtected
	KwPublic
	KwExport

	// Type keywords.
	KwVoid
	KwBool
	KwByte
	KwUbyte
	KwShort
	KwUshort
	KwInt
	KwUint
	KwLong
	KwUlong
	KwFloatT
	KwDoubleT
	KwChar

	// Literal keywords.
	KwTrue
	KwFalse
	KwNull

	// Predefined identifier-like tokens.
	KwFile
	KwFileFullPath
	KwLine
	KwModuleTok
	KwFunctionTok
	KwPrettyFunction

	// Punctuation / operators.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Comma
	Dot
	DotDot
	DotDotDot
	Colon
	ColonColon
	Question
	At
	Dollar
	Arrow // =>

	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Caret // ^^  power
	Amp
	Pipe
	Tilde
	Bang
	Less
	Greater

	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	AmpAssign
	PipeAssign
	XorAssign
	ShlAssign
	ShrAssign
	UshrAssign
	CatAssign // ~=
	PowAssign // ^^=

	Eq
	NotEq
	LessEq
	GreaterEq
	Shl
	Shr
	Ushr
	AndAnd
	OrOr
	PlusPlus
	MinusMinus
	Xor // ^ bitwise xor
	Cat // ~  array concat

	kindCount
)

var names = [kindCount]string{
	EOF: "EOF", Illegal: "illegal", Identifier: "identifier",
	IntLiteral: "int literal", FloatLiteral: "float literal",
	StringLiteral: "string literal", CharLiteral: "char literal",
	DocCommentBlock: "doc comment", DocCommentLine: "doc comment",
	KwModule: "module", KwImport: "import", KwStruct: "struct", KwUnion: "union",
	KwClass: "class", KwInterface: "interface", KwEnum: "enum",
	KwTemplate: "template", KwMixin: "mixin", KwAlias: "alias",
	KwFunction: "function", KwDelegate: "delegate", KwThis: "this",
	KwSuper: "super", KwNew: "new", KwDelete: "delete", KwInvariant: "invariant",
	KwUnittest: "unittest", KwTypeof: "typeof", KwTypeid: "typeid",
	KwTraits: "__traits", KwIs: "is", KwCast: "cast", KwDebug: "debug",
	KwVersion: "version", KwPragma: "pragma", KwExtern: "extern",
	KwAlign: "align", KwVector: "__vector", KwBody: "body", KwDo: "do",
	KwIn: "in", KwOut: "out", KwAuto: "auto",
	KwIf: "if", KwElse: "else", KwWhile: "while", KwFor: "for",
	KwForeach: "foreach", KwForeachReverse: "foreach_reverse", KwSwitch: "switch",
	KwCase: "case", KwDefault: "default", KwBreak: "break", KwContinue: "continue",
	KwGoto: "goto", KwReturn: "return", KwTry: "try", KwCatch: "catch",
	KwFinally: "finally", KwThrow: "throw", KwWith: "with", KwAsm: "asm",
	KwAssert: "assert", KwFinal: "final", KwScope: "scope",
	KwSynchronized: "synchronized", KwStaticAssert: "static assert",
	KwStaticIf: "static if", KwStaticForeach: "static foreach",
	KwStaticImport: "static import",
	KwConst:        "const", KwImmutable: "immutable", KwShared: "shared",
	KwInout: "inout", KwStatic: "static", KwOverride: "override",
	KwAbstract: "abstract", KwDeprecated: "deprecated", KwNothrow: "nothrow",
	KwPure: "pure", KwRef: "ref", KwGShared: "gshared", KwManifest: "manifest",
	KwReturnAttr: "return", KwLazy: "lazy", KwDisable: "disable",
	KwProperty: "property", KwNogc: "nogc", KwSafe: "safe", KwTrusted: "trusted",
	KwSystem: "system", KwLive: "live", KwFuture: "future",
	KwPrivate: "private", KwPackage: "package", KwProtected: "protected",
	KwPublic: "public", KwExport: "export",
	KwVoid: "void", KwBool: "bool", KwByte: "byte", KwUbyte: "ubyte",
	KwShort: "short", KwUshort: "ushort", KwInt: "int", KwUint: "uint",
	KwLong: "long", KwUlong: "ulong", KwFloatT: "float", KwDoubleT: "double",
	KwChar: "char",
	KwTrue:  "true", KwFalse: "false", KwNull: "null",
	KwFile: "__FILE__", KwFileFullPath: "__FILE_FULL_PATH__", KwLine: "__LINE__",
	KwModuleTok: "__MODULE__", KwFunctionTok: "__FUNCTION__",
	KwPrettyFunction: "__PRETTY_FUNCTION__",
	LParen:           "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Semicolon: ";", Comma: ",", Dot: ".",
	DotDot: "..", DotDotDot: "...", Colon: ":", ColonColon: "::",
	Question: "?", At: "@", Dollar: "$", Arrow: "=>",
	Assign: "=", Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Caret: "^^", Amp: "&", Pipe: "|", Tilde: "~", Bang: "!", Less: "<", Greater: ">",
	PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=",
	PercentAssign: "%=", AmpAssign: "&=", PipeAssign: "|=", XorAssign: "^=",
	ShlAssign: "<<=", ShrAssign: ">>=", UshrAssign: ">>>=", CatAssign: "~=",
	PowAssign: "^^=",
	Eq:       "==", NotEq: "!=", LessEq: "<=", GreaterEq: ">=",
	Shl: "<<", Shr: ">>", Ushr: ">>>", AndAnd: "&&", OrOr: "||",
	PlusPlus: "++", MinusMinus: "--", Xor: "^", Cat: "~",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(names) && names[k] != "" {
		return names[k]
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Keywords maps every reserved word to its Kind. Built once at init from the
// name table above, restricted to the keyword range.
var Keywords = func() map[string]Kind {
	m := make(map[string]Kind)
	for k := KwModule; k < LParen; k++ {
		if names[k] != "" {
			m[names[k]] = k
		}
	}
	// A handful of names collide with attribute spellings already covered
	// (e.g. "return" is both a statement keyword and a parameter storage
	// class); the later kind in the enumeration wins, so "return" lexes as
	// KwReturnAttr and the parser accepts that kind where a return
	// statement begins. The two-word spellings ("static if" and the like)
	// never match a scanned identifier: those constructs arrive as KwStatic
	// followed by the second keyword.
	return m
}()

// Ident is an interned identifier: identity is pointer equality on the
// underlying *entry, so two idents compare equal iff they denote the same
// spelling.
type Ident struct {
	entry *string
}

// String returns the spelling of the identifier.
func (id Ident) String() string {
	if id.entry == nil {
		return ""
	}

	return *id.entry
}

// Equal reports whether id and other denote the same interned spelling.
func (id Ident) Equal(other Ident) bool { return id.entry == other.entry }

// IsZero reports whether id is the zero Ident (no identifier interned).
func (id Ident) IsZero() bool { return id.entry == nil }

// Interner is an append-only pool of interned identifiers, keyed by
// spelling. It is not safe for concurrent use unless the caller supplies
// its own mutual exclusion (spec.md §5).
type Interner struct {
	entries map[string]Ident
	counter int
}

// NewInterner creates an empty pool.
func NewInterner() *Interner {
	return &Interner{entries: make(map[string]Ident)}
}

// Intern returns the canonical Ident for s, creating one on first sight.
func (in *Interner) Intern(s string) Ident {
	if id, ok := in.entries[s]; ok {
		return id
	}

	cp := s
	id := Ident{entry: &cp}
	in.entries[s] = id

	return id
}

// Generate synthesizes a fresh identifier with the given prefix, guaranteed
// distinct from anything previously interned or generated — used for
// lambda-from-identifier template parameters and mixin pseudo-filenames.
func (in *Interner) Generate(prefix string) Ident {
	for {
		in.counter++
		cand := fmt.Sprintf("%s__%d", prefix, in.counter)

		if _, exists := in.entries[cand]; !exists {
			return in.Intern(cand)
		}
	}
}

// StringPayload carries a scanned string literal's bytes plus its optional
// postfix character (c/w/d) used for implicit-concatenation postfix
// matching (spec.md §4.4).
type StringPayload struct {
	Value   string
	Postfix byte
}

// Token is an immutable scanned token: a kind, a source span, and a
// kind-specific payload (spec.md §3).
type Token struct {
	Kind  Kind
	Span  position.Span
	Text  string // raw spelling, used for identifiers and numeric literals
	Ident Ident
	Int   int64
	Float float64
	Str   StringPayload
}

// Is reports whether t has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// IsOneOf reports whether t's kind matches any of ks.
func (t Token) IsOneOf(ks ...Kind) bool {
	for _, k := range ks {
		if t.Kind == k {
			return true
		}
	}

	return false
}
