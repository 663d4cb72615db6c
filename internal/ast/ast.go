// Package ast defines the arena-indexed AST the parser builds. Per
// spec.md §9's design note, nodes are stored as plain struct values in a
// per-parse Arena and referenced by integer ID rather than by pointer, so
// the eagerly-constructed back-references the grammar implies (e.g. a
// contract pointing back at its owning function) never form a reference
// cycle.
package ast

import "github.com/jacob-carlborg/ddc/internal/position"

// DeclID, StmtID, ExprID and TypeID are indices into their respective
// Arena slices. The zero value means "absent" in every optional slot.
type (
	DeclID int
	StmtID int
	ExprID int
	TypeID int
)

const (
	NoDecl DeclID = 0
	NoStmt StmtID = 0
	NoExpr ExprID = 0
	NoType TypeID = 0
)

// Arena owns every node produced while parsing one module. Index 0 of each
// slice is reserved as the "absent" sentinel so the zero value of an ID
// means "no node" without needing a separate validity flag.
type Arena struct {
	Decls []Decl
	Stmts []Stmt
	Exprs []Expr
	Types []Type
}

// NewArena returns an Arena with its sentinel zero entries pre-populated.
func NewArena() *Arena {
	return &Arena{
		Decls: []Decl{{}},
		Stmts: []Stmt{{}},
		Exprs: []Expr{{}},
		Types: []Type{{}},
	}
}

func (a *Arena) addDecl(d Decl) DeclID { a.Decls = append(a.Decls, d); return DeclID(len(a.Decls) - 1) }
func (a *Arena) addStmt(s Stmt) StmtID { a.Stmts = append(a.Stmts, s); return StmtID(len(a.Stmts) - 1) }
func (a *Arena) addExpr(e Expr) ExprID { a.Exprs = append(a.Exprs, e); return ExprID(len(a.Exprs) - 1) }
func (a *Arena) addType(t Type) TypeID { a.Types = append(a.Types, t); return TypeID(len(a.Types) - 1) }

func (a *Arena) Decl(id DeclID) *Decl { return &a.Decls[id] }
func (a *Arena) Stmt(id StmtID) *Stmt { return &a.Stmts[id] }
func (a *Arena) Expr(id ExprID) *Expr { return &a.Exprs[id] }
func (a *Arena) Type(id TypeID) *Type { return &a.Types[id] }

// DeclKind tags the union stored in Decl.
type DeclKind int

const (
	DeclInvalid DeclKind = iota
	DeclModule
	DeclImport
	DeclVar
	DeclAlias
	DeclAliasThis
	DeclFunc
	DeclAggregate // struct / union / class / interface
	DeclEnum
	DeclEnumMember
	DeclTemplate
	DeclTemplateInstance
	DeclMixinDecl
	DeclMixinTemplate
	DeclCtor
	DeclDtor
	DeclPostblit
	DeclStaticCtor
	DeclSharedStaticCtor
	DeclStaticDtor
	DeclSharedStaticDtor
	DeclInvariant
	DeclUnittest
	DeclStorageClassWrapper
	DeclLinkageWrapper
	DeclProtectionWrapper
	DeclAlignWrapper
	DeclDeprecatedWrapper
	DeclUDAWrapper
	DeclConditionalDecl // static if / debug / version at decl level
	DeclBlock           // a `{ ... }` grouping of decls under a shared attribute
	DeclEmpty
	DeclError
)

// AggregateKind distinguishes struct/union/class/interface.
type AggregateKind int

const (
	AggStruct AggregateKind = iota
	AggUnion
	AggClass
	AggInterface
	AggAnonymous
)

// LinkageKind is spec.md §3's linkage enumeration.
type LinkageKind int

const (
	LinkDefault LinkageKind = iota
	LinkD
	LinkC
	LinkCPP
	LinkWindows
	LinkPascal
	LinkObjC
	LinkSystem
)

// Protection is spec.md §3's protection enumeration.
type Protection int

const (
	ProtUndefined Protection = iota
	ProtPrivate
	ProtPackage
	ProtProtected
	ProtPublic
	ProtExport
)

// StorageClass is a single bit in the storage-class bitset (spec.md §3).
type StorageClass uint64

const (
	SCConst StorageClass = 1 << iota
	SCImmutable
	SCShared
	SCInout
	SCStatic
	SCFinal
	SCAuto
	SCScope
	SCOverride
	SCAbstract
	SCSynchronized
	SCDeprecated
	SCNothrow
	SCPure
	SCRef
	SCGShared
	SCManifest
	SCReturn
	SCIn
	SCOut
	SCLazy
	SCAlias
	SCDisable
	SCProperty
	SCNogc
	SCSafe
	SCTrusted
	SCSystem
	SCLive
	SCFuture
)

// Has reports whether flag is set in sc.
func (sc StorageClass) Has(flag StorageClass) bool { return sc&flag != 0 }

// exclusiveGroups lists the mutually-exclusive storage-class groups from
// spec.md §3: {const, immutable, manifest}, {gshared, shared} (tls has no
// dedicated bit here, folded into gshared per this grammar), and the
// safety group {safe, trusted, system, live}.
var exclusiveGroups = []StorageClass{
	SCConst | SCImmutable | SCManifest,
	SCGShared | SCShared,
	SCSafe | SCTrusted | SCSystem | SCLive,
}

// Conflicts reports whether adding `flag` to `existing` would put two
// members of the same exclusive group into the set, or trip the legacy
// `in` + `const`/`scope` compatibility rule.
func Conflicts(existing, flag StorageClass) bool {
	for _, group := range exclusiveGroups {
		if flag&group != 0 && existing&group != 0 && existing&group != flag&group {
			return true
		}
	}

	if flag == SCIn && existing&(SCConst|SCScope) != 0 {
		return true
	}

	if (flag == SCConst || flag == SCScope) && existing&SCIn != 0 {
		return true
	}

	return false
}

// CppMangle is the optional C++-mangling qualifier on `extern(C++, ...)`.
type CppMangle int

const (
	CppMangleDefault CppMangle = iota
	CppMangleClass
	CppMangleStruct
)

// PrefixAttributes is the scratch bundle threaded through a run of
// attributed declarations (spec.md §3). Per spec.md §9's design note it is
// passed by value and each consuming branch returns the residual — the
// part it did NOT apply — rather than being mutated in place through a
// shared pointer.
type PrefixAttributes struct {
	StorageClass      StorageClass
	DeprecatedMessage ExprID
	Linkage           LinkageKind
	CppMangle         CppMangle
	CppNamespace      []string
	Protection        Protection
	ProtectionPackage []string
	HasAlignment      bool
	AlignmentExpr     ExprID
	UDAs              []ExprID
	LeadingDocComment string
}

// Decl is the tagged union of every declaration/definition kind the parser
// constructs (spec.md §3 "AST nodes").
type Decl struct {
	Kind DeclKind
	Span position.Span

	Name    string
	DocText string

	// DeclModule
	ModulePackages []string

	// DeclImport
	ImportPath    []string
	ImportAliases []ImportRename // renamed/selective bindings
	ImportIsStatic bool

	// DeclVar / DeclAlias
	Type        TypeID
	Init        ExprID // initializer expression, or NoExpr
	StructInit  []InitEntry
	ArrayInit   []InitEntry
	InitForm    InitForm
	IsPublic    bool
	StorageSet  StorageClass
	AliasTarget TypeID

	// DeclFunc
	Params    []Param
	Variadic  VariadicKind
	ReturnTy  TypeID
	Contracts Contracts
	Body      StmtID
	IsAsync   bool // legacy-compat slot; the parser never sets it; not part of D grammar proper

	// DeclAggregate
	AggKind     AggregateKind
	BaseTypes   []TypeID
	Members     []DeclID
	TemplParams []TemplateParam
	Constraint  ExprID

	// DeclEnum / DeclEnumMember
	EnumBase    TypeID
	EnumMembers []DeclID
	MemberValue ExprID

	// DeclTemplate / DeclTemplateInstance
	Wrapped    DeclID
	InstanceOf string
	TemplArgs  []ExprID

	// Mixins
	MixinArgs []ExprID

	// Wrapper decls (storage class / linkage / protection / align /
	// deprecated / UDA) each wrap a list of inner declarations, per the
	// invariant "outermost wrapper is the last attribute parsed".
	Attrs PrefixAttributes
	Inner []DeclID

	// DeclConditionalDecl
	CondKind    string // "static if" | "debug" | "version" | "static foreach"
	CondExpr    ExprID
	CondThen    []DeclID
	CondElse    []DeclID

	// DeclConditionalDecl, CondKind == "static foreach"
	ForeachKind   ForeachKind
	ForeachParams []ForeachParam
	ForeachAgg    ExprID
	ForeachUpper  ExprID

	// DeclError — carries the message that produced the sentinel.
	ErrorMessage string
}

// ImportRename is one `a = b` entry in an import's rename/selective list.
type ImportRename struct {
	Alias  string
	Target string
}

// InitForm distinguishes the three initializer shapes (spec.md §4.5).
type InitForm int

const (
	InitNone InitForm = iota
	InitExpr
	InitVoid
	InitStruct
	InitArray
)

// InitEntry is one `[key :] value` slot inside a struct or array
// initializer.
type InitEntry struct {
	HasKey  bool
	KeyName string // struct initializer key
	KeyExpr ExprID // array initializer key
	Value   ExprID
}

// Param is one function/delegate parameter.
type Param struct {
	Name         string
	Type         TypeID
	StorageClass StorageClass
	Default      ExprID
	Variadic     VariadicKind
	HasUDA       bool
}

// VariadicKind distinguishes the three parameter-list tails.
type VariadicKind int

const (
	VariadicNone VariadicKind = iota
	VariadicUntyped
	VariadicTypesafe
)

// TemplateParam is one entry of a template parameter list.
type TemplateParam struct {
	Name         string
	Constraint   TypeID
	Default      TypeID
	IsValueParam bool
	ValueType    TypeID
}

// Contracts is the in/out/do state attached to a function (spec.md §4.5).
type Contracts struct {
	Requires []Contract
	Ensures  []Contract
	BodyKind ContractBodyKind
}

// ContractBodyKind distinguishes `do`/`body`/bare-brace vs contract-only.
type ContractBodyKind int

const (
	ContractBodyNone ContractBodyKind = iota
	ContractBodyBlock
)

// Contract is one `in`/`out` clause, either block form or expression form.
type Contract struct {
	IsBlock     bool
	Block       StmtID
	ResultName  string // `out(result)` identifier, if any
	Expr        ExprID
	Message     ExprID
}

// StmtKind tags the union stored in Stmt.
type StmtKind int

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtExpr
	StmtDeclStmt
	StmtLabeled
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtFor
	StmtForeach
	StmtSwitch
	StmtCase
	StmtDefault
	StmtReturn
	StmtBreak
	StmtContinue
	StmtGoto
	StmtScopeGuard
	StmtTry
	StmtThrow
	StmtWith
	StmtSynchronized
	StmtAsm
	StmtStaticAssert
	StmtStaticIf
	StmtStaticForeach
	StmtStaticImport
	StmtPragma
	StmtConditional // debug/version statement
	StmtEmpty
	StmtError
)

// ForeachKind records whether a foreach is a range foreach (`;lwr .. upr)`)
// or an aggregate foreach. Whether it is static is carried separately
// (IsStaticForeach); whether the keyword was foreach_reverse is not
// recorded.
type ForeachKind int

const (
	ForeachAggregate ForeachKind = iota
	ForeachRange
)

// ScopeGuardKind distinguishes `scope(exit|failure|success)`.
type ScopeGuardKind int

const (
	ScopeExit ScopeGuardKind = iota
	ScopeFailure
	ScopeSuccess
)

// Stmt is the tagged union of every statement kind (spec.md §3).
type Stmt struct {
	Kind StmtKind
	Span position.Span

	Label string

	Stmts []StmtID // StmtBlock
	IsScopeBlock bool

	Expr ExprID // StmtExpr condition carriers etc.

	Decl DeclID // StmtDeclStmt

	Cond     ExprID
	Then     StmtID
	Else     StmtID
	IfStorageClass StorageClass
	IfType   TypeID
	IfName   string // `if (auto p = f())` bound identifier

	Body StmtID

	// for
	ForInit StmtID
	ForCond ExprID
	ForPost ExprID

	// foreach
	ForeachKind   ForeachKind
	ForeachParams []ForeachParam
	ForeachAgg    ExprID
	ForeachUpper  ExprID
	IsStaticForeach bool

	// switch / case
	Cases      []StmtID
	CaseValues []ExprID
	CaseRangeHi ExprID
	IsFinal    bool

	// return / throw / break / continue / goto
	Value   ExprID
	GotoLabel string
	IsGotoCase bool
	IsGotoDefault bool

	// scope guard
	ScopeGuard ScopeGuardKind

	// try/catch/finally
	TryBody    StmtID
	Catches    []CatchClause
	Finally    StmtID

	// with
	WithExpr ExprID

	// synchronized
	SyncExpr ExprID

	// asm
	AsmInstructions []string

	// static assert / static if / conditional
	AssertMsg ExprID
	CondThen  []StmtID
	CondElse  []StmtID
	CondKind  string

	ErrorMessage string
}

// ForeachParam is one loop variable in a foreach parameter list.
type ForeachParam struct {
	Name         string
	Type         TypeID
	StorageClass StorageClass
	IsAlias      bool
	IsEnum       bool
}

// CatchClause is one `catch (T [id]) { ... }` clause.
type CatchClause struct {
	ExceptionType TypeID
	Name          string
	Body          StmtID
}

// ExprKind tags the union stored in Expr.
type ExprKind int

const (
	ExprInvalid ExprKind = iota
	ExprIdentifier
	ExprScopeExpr // identifier!(templateArgs)
	ExprIntLit
	ExprFloatLit
	ExprStringLit
	ExprCharLit
	ExprBoolLit
	ExprNullLit
	ExprDollar
	ExprGlobalScope // leading `.`
	ExprThis
	ExprSuper
	ExprPredefined // __FILE__ etc.
	ExprTypeof
	ExprTypeid
	ExprTraits
	ExprIs
	ExprAssert
	ExprMixinExpr
	ExprImportExpr
	ExprNew
	ExprParen
	ExprArrayLit
	ExprAssocArrayLit
	ExprLambda
	ExprFunctionLiteral
	ExprBinary
	ExprUnary
	ExprPostfixIncDec
	ExprAssign
	ExprTernary
	ExprCast
	ExprCall
	ExprIndex
	ExprSlice
	ExprMember
	ExprNewExpr
	ExprError
)

// IsSpec states for the `is(...)` expression state machine (spec.md §4.4).
type IsSpecKind int

const (
	IsSpecNone IsSpecKind = iota
	IsSpecEquals // is(T == Spec)
	IsSpecColon  // is(T : Spec)
)

// LambdaKind distinguishes the several lambda syntaxes.
type LambdaKind int

const (
	LambdaArrow LambdaKind = iota // (params) => expr  or ident => expr
	LambdaBlock                   // (params) { ... } or bare { ... }
	LambdaFunctionLit              // function/delegate [ref] [RetType] (...) ...
)

// Expr is the tagged union of every expression kind (spec.md §3/§4.4).
type Expr struct {
	Kind ExprKind
	Span position.Span

	Name       string
	Ident      string // raw identifier spelling (ExprIdentifier/ExprMember)
	TemplArgs  []ExprID

	IntValue    int64
	FloatValue  float64
	StringValue string
	StringPost  byte
	BoolValue   bool

	// typeof/typeid/traits/is
	Type       TypeID
	InnerExpr  ExprID
	TraitsName string
	TraitsArgs []ExprID
	IsName     string
	IsSpec     IsSpecKind
	IsSpecType TypeID
	IsSpecExpr ExprID
	IsTemplParams []TemplateParam

	// assert / mixin / import expr
	Message ExprID

	// new
	NewType TypeID
	NewArgs []ExprID

	// array / assoc array literal
	Elements []ExprID
	Keys     []ExprID // parallel to Elements for assoc literal

	// lambda / function literal
	LambdaKind   LambdaKind
	LambdaParams []Param
	LambdaRetTy  TypeID
	LambdaIsRef  bool
	LambdaBody   StmtID
	LambdaExpr   ExprID

	// binary / unary / assign / ternary / cast
	Op        string
	Left      ExprID
	Right     ExprID
	Operand   ExprID
	CondExpr  ExprID
	ThenExpr  ExprID
	ElseExpr  ExprID
	CastType  TypeID
	CastQualOnly bool

	// call / index / slice / member / postfix
	Callee    ExprID
	Args      []ExprID
	IndexArgs []ExprID
	SliceLow  ExprID
	SliceHigh ExprID
	Base      ExprID
	Member    string
	IsIncrement bool // postfix ++ vs --

	ErrorMessage string
}

// TypeKind tags the union stored in Type.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeBasic
	TypeQualifiedIdent
	TypePointer
	TypeStaticArray
	TypeDynamicArray
	TypeAssocArray
	TypeSlice
	TypeFunction
	TypeDelegate
	TypeVector
	TypeTypeof
	TypeMixin
	TypeTraits
	TypeConstructor // const(T)/immutable(T)/shared(T)/inout(T)
	TypeError
)

// Type is the tagged union of every type-node kind (spec.md §3).
type Type struct {
	Kind TypeKind
	Span position.Span

	Name  string // basic/qualified-identifier spelling
	Parts []string

	Elem TypeID // pointer/array/slice element, or constructor's target

	// static/dynamic/assoc array
	Length    ExprID
	KeyType   TypeID
	IsDynamic bool

	// function/delegate
	Params   []Param
	Return   TypeID
	IsDelegate bool
	FuncAttrs  StorageClass

	// typeof
	TypeofExpr ExprID

	// type constructor
	Qualifier StorageClass

	ErrorMessage string
}

// --- Builder: construction entry points (spec.md §9 visitor/builder note) ---

// Builder wraps an Arena with the node-construction calls the parser
// invokes. Modeling construction as a builder — rather than calling
// concrete constructors directly — is what spec.md §9 asks for so a
// different AST family (e.g. a header-only stripped tree) could be
// substituted by swapping the Builder implementation; this repository
// ships exactly one Builder, the full-fidelity arena builder.
type Builder struct {
	Arena *Arena
}

// NewBuilder creates a Builder over a fresh Arena.
func NewBuilder() *Builder { return &Builder{Arena: NewArena()} }

func (b *Builder) MakeDecl(d Decl) DeclID { return b.Arena.addDecl(d) }
func (b *Builder) MakeStmt(s Stmt) StmtID { return b.Arena.addStmt(s) }
func (b *Builder) MakeExpr(e Expr) ExprID { return b.Arena.addExpr(e) }
func (b *Builder) MakeType(t Type) TypeID { return b.Arena.addType(t) }

// ErrorDecl builds the "Type.terror"-equivalent sentinel declaration
// spec.md §4.6/§7 requires every production to fall back to on a
// fatal-for-this-declaration error.
func (b *Builder) ErrorDecl(span position.Span, message string) DeclID {
	return b.MakeDecl(Decl{Kind: DeclError, Span: span, ErrorMessage: message})
}

func (b *Builder) ErrorStmt(span position.Span, message string) StmtID {
	return b.MakeStmt(Stmt{Kind: StmtError, Span: span, ErrorMessage: message})
}

func (b *Builder) ErrorExpr(span position.Span, message string) ExprID {
	return b.MakeExpr(Expr{Kind: ExprError, Span: span, ErrorMessage: message})
}

func (b *Builder) ErrorType(span position.Span, message string) TypeID {
	return b.MakeType(Type{Kind: TypeError, Span: span, ErrorMessage: message})
}
