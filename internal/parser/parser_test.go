package parser_test

import (
	"testing"

	"github.com/jacob-carlborg/ddc/internal/ast"
	"github.com/jacob-carlborg/ddc/internal/diag"
	"github.com/jacob-carlborg/ddc/internal/lexer"
	"github.com/jacob-carlborg/ddc/internal/parser"
	"github.com/jacob-carlborg/ddc/internal/token"
)

func newParser(t *testing.T, src string) (*parser.Parser, *diag.Collect) {
	t.Helper()

	h := diag.NewCollect()
	lex := lexer.New("t.d", []byte(src), 0, token.NewInterner(), h)
	p := parser.New(lex, h)

	return p, h
}

// Scenario 1: `module a.b.c;` -> packages [a, b], id c, no members, no
// diagnostics.
func TestModuleDeclaration(t *testing.T) {
	p, h := newParser(t, "module a.b.c;")
	root := p.ParseModule()
	mod := p.Arena().Decl(root)

	if mod.Kind != ast.DeclModule {
		t.Fatalf("kind = %v, want DeclModule", mod.Kind)
	}

	wantPkgs := []string{"a", "b"}
	if len(mod.ModulePackages) != len(wantPkgs) {
		t.Fatalf("packages = %v, want %v", mod.ModulePackages, wantPkgs)
	}

	for i, p := range wantPkgs {
		if mod.ModulePackages[i] != p {
			t.Errorf("package %d = %q, want %q", i, mod.ModulePackages[i], p)
		}
	}

	if mod.Name != "c" {
		t.Errorf("name = %q, want c", mod.Name)
	}

	if len(mod.Inner) != 0 {
		t.Errorf("members = %v, want none", mod.Inner)
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

// Scenario 2: `int x, y = 3;` -> two variable declarations sharing base
// type int; second has initializer 3.
func TestMultiVarSharedBaseType(t *testing.T) {
	p, h := newParser(t, "int x, y = 3;")
	root := p.ParseModule()
	arena := p.Arena()
	mod := arena.Decl(root)

	if len(mod.Inner) != 1 {
		t.Fatalf("top-level members = %d, want 1", len(mod.Inner))
	}

	block := arena.Decl(mod.Inner[0])
	if block.Kind != ast.DeclBlock {
		t.Fatalf("kind = %v, want DeclBlock", block.Kind)
	}

	if len(block.Inner) != 2 {
		t.Fatalf("declarators = %d, want 2", len(block.Inner))
	}

	x := arena.Decl(block.Inner[0])
	y := arena.Decl(block.Inner[1])

	if x.Name != "x" || y.Name != "y" {
		t.Fatalf("names = %q, %q, want x, y", x.Name, y.Name)
	}

	if arena.Type(x.Type).Name != "int" || arena.Type(y.Type).Name != "int" {
		t.Fatalf("base types = %q, %q, want int, int", arena.Type(x.Type).Name, arena.Type(y.Type).Name)
	}

	if x.Init != ast.NoExpr {
		t.Errorf("x has an initializer, want none")
	}

	if y.Init == ast.NoExpr {
		t.Fatalf("y has no initializer")
	}

	yInit := arena.Expr(y.Init)
	if yInit.Kind != ast.ExprIntLit || yInit.IntValue != 3 {
		t.Errorf("y init = %+v, want int literal 3", yInit)
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

// Scenario 3: `struct S(T) if (is(T == int)) { T x; }` -> an aggregate
// carrying its own template parameter and constraint directly (this
// repository folds template params into DeclAggregate rather than
// wrapping it in a separate DeclTemplate node; see DESIGN.md).
func TestTemplatedStructWithIsConstraint(t *testing.T) {
	p, h := newParser(t, "struct S(T) if (is(T == int)) { T x; }")
	root := p.ParseModule()
	arena := p.Arena()
	mod := arena.Decl(root)

	s := arena.Decl(mod.Inner[0])
	if s.Kind != ast.DeclAggregate || s.AggKind != ast.AggStruct {
		t.Fatalf("kind = %v/%v, want DeclAggregate/AggStruct", s.Kind, s.AggKind)
	}

	if s.Name != "S" {
		t.Errorf("name = %q, want S", s.Name)
	}

	if len(s.TemplParams) != 1 || s.TemplParams[0].Name != "T" {
		t.Fatalf("template params = %+v, want [T]", s.TemplParams)
	}

	if s.Constraint == ast.NoExpr {
		t.Fatalf("no constraint recorded")
	}

	constraint := arena.Expr(s.Constraint)
	if constraint.Kind != ast.ExprIs {
		t.Fatalf("constraint kind = %v, want ExprIs", constraint.Kind)
	}

	if arena.Type(constraint.Type).Name != "T" || constraint.IsSpec != ast.IsSpecEquals {
		t.Errorf("is-expr = %+v, want type T, spec ==", constraint)
	}

	if arena.Type(constraint.IsSpecType).Name != "int" {
		t.Errorf("is-expr spec type = %q, want int", arena.Type(constraint.IsSpecType).Name)
	}

	if len(s.Members) != 1 {
		t.Fatalf("members = %d, want 1", len(s.Members))
	}

	field := arena.Decl(s.Members[0])
	if field.Name != "x" || arena.Type(field.Type).Name != "T" {
		t.Errorf("field = %+v, want name x, type T", field)
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

// Scenario 4: `@safe @nogc void f(int x = 1, ...) { }` -> storage-class
// bits {safe, nogc}, one default-valued parameter, untyped variadic tail.
func TestSafeNogcFunctionWithDefaultAndVariadic(t *testing.T) {
	p, h := newParser(t, "@safe @nogc void f(int x = 1, ...) { }")
	root := p.ParseModule()
	arena := p.Arena()
	mod := arena.Decl(root)

	f := arena.Decl(mod.Inner[0])
	if f.Kind != ast.DeclFunc {
		t.Fatalf("kind = %v, want DeclFunc", f.Kind)
	}

	if f.Name != "f" {
		t.Errorf("name = %q, want f", f.Name)
	}

	if arena.Type(f.ReturnTy).Name != "void" {
		t.Errorf("return type = %q, want void", arena.Type(f.ReturnTy).Name)
	}

	want := ast.SCSafe | ast.SCNogc
	if f.Attrs.StorageClass&want != want {
		t.Errorf("storage classes = %v, missing safe|nogc", f.Attrs.StorageClass)
	}

	if len(f.Params) != 1 {
		t.Fatalf("params = %d, want 1", len(f.Params))
	}

	x := f.Params[0]
	if x.Name != "x" || arena.Type(x.Type).Name != "int" {
		t.Errorf("param = %+v, want name x, type int", x)
	}

	if x.Default == ast.NoExpr {
		t.Fatalf("param has no default")
	}

	def := arena.Expr(x.Default)
	if def.Kind != ast.ExprIntLit || def.IntValue != 1 {
		t.Errorf("default = %+v, want int literal 1", def)
	}

	if f.Variadic != ast.VariadicUntyped {
		t.Errorf("variadic kind = %v, want VariadicUntyped", f.Variadic)
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

// Scenario 5: `enum { A, B = 2, C }` -> anonymous enum, three members; A
// and C have no explicit value, B's value is the literal 2.
func TestAnonymousEnum(t *testing.T) {
	p, h := newParser(t, "enum { A, B = 2, C }")
	root := p.ParseModule()
	arena := p.Arena()
	mod := arena.Decl(root)

	e := arena.Decl(mod.Inner[0])
	if e.Kind != ast.DeclEnum || e.Name != "" {
		t.Fatalf("kind/name = %v/%q, want DeclEnum/anonymous", e.Kind, e.Name)
	}

	if len(e.EnumMembers) != 3 {
		t.Fatalf("members = %d, want 3", len(e.EnumMembers))
	}

	a := arena.Decl(e.EnumMembers[0])
	b := arena.Decl(e.EnumMembers[1])
	c := arena.Decl(e.EnumMembers[2])

	if a.Name != "A" || b.Name != "B" || c.Name != "C" {
		t.Fatalf("names = %q, %q, %q, want A, B, C", a.Name, b.Name, c.Name)
	}

	if a.MemberValue != ast.NoExpr || c.MemberValue != ast.NoExpr {
		t.Errorf("A/C should have no explicit value")
	}

	if b.MemberValue == ast.NoExpr {
		t.Fatalf("B has no value")
	}

	bVal := arena.Expr(b.MemberValue)
	if bVal.Kind != ast.ExprIntLit || bVal.IntValue != 2 {
		t.Errorf("B value = %+v, want int literal 2", bVal)
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

// Scenario 6: `if (auto p = f()) g(p); else h();` -> auto-bound
// condition, then/else branches.
func TestIfAutoDeclWithElse(t *testing.T) {
	p, h := newParser(t, "void f2() { if (auto p = f()) g(p); else h(); }")
	root := p.ParseModule()
	arena := p.Arena()
	mod := arena.Decl(root)

	fn := arena.Decl(mod.Inner[0])
	body := arena.Stmt(fn.Body)

	if body.Kind != ast.StmtBlock || len(body.Stmts) != 1 {
		t.Fatalf("body = %+v, want one-statement block", body)
	}

	ifStmt := arena.Stmt(body.Stmts[0])
	if ifStmt.Kind != ast.StmtIf {
		t.Fatalf("kind = %v, want StmtIf", ifStmt.Kind)
	}

	if ifStmt.IfName != "p" || ifStmt.IfStorageClass&ast.SCAuto == 0 {
		t.Errorf("if-decl = name %q storage %v, want p with auto set", ifStmt.IfName, ifStmt.IfStorageClass)
	}

	cond := arena.Expr(ifStmt.Cond)
	if cond.Kind != ast.ExprCall {
		t.Errorf("cond kind = %v, want ExprCall", cond.Kind)
	}

	if ifStmt.Then == ast.NoStmt || ifStmt.Else == ast.NoStmt {
		t.Fatalf("missing then/else branch")
	}

	thenExpr := arena.Stmt(ifStmt.Then)
	elseExpr := arena.Stmt(ifStmt.Else)

	if thenExpr.Kind != ast.StmtExpr || elseExpr.Kind != ast.StmtExpr {
		t.Fatalf("then/else kinds = %v/%v, want StmtExpr both", thenExpr.Kind, elseExpr.Kind)
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

// Scenario 7: `mixin template M() { int x; } mixin M!() m;` -> a mixin
// template declaration and a bound template-mixin instantiation.
func TestMixinTemplateAndInstantiation(t *testing.T) {
	p, h := newParser(t, "mixin template M() { int x; } mixin M!() m;")
	root := p.ParseModule()
	arena := p.Arena()
	mod := arena.Decl(root)

	if len(mod.Inner) != 2 {
		t.Fatalf("members = %d, want 2", len(mod.Inner))
	}

	tmpl := arena.Decl(mod.Inner[0])
	if tmpl.Kind != ast.DeclMixinTemplate || tmpl.Name != "M" {
		t.Fatalf("first decl = %v/%q, want DeclMixinTemplate/M", tmpl.Kind, tmpl.Name)
	}

	inst := arena.Decl(mod.Inner[1])
	if inst.Kind != ast.DeclTemplateInstance {
		t.Fatalf("second decl = %v, want DeclTemplateInstance", inst.Kind)
	}

	if inst.InstanceOf != "M" || inst.Name != "m" {
		t.Errorf("instantiation = %+v, want InstanceOf M, Name m", inst)
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

// Scenario 8: `a < b == c` emits the equal-precedence parens warning and
// parses left-to-right (both `<` and `==` live at the same precedence
// level).
func TestChainedRelationalWarnsAboutParens(t *testing.T) {
	p, h := newParser(t, "void f3() { a < b == c; }")
	root := p.ParseModule()
	arena := p.Arena()
	mod := arena.Decl(root)

	fn := arena.Decl(mod.Inner[0])
	body := arena.Stmt(fn.Body)
	exprStmt := arena.Stmt(body.Stmts[0])

	top := arena.Expr(exprStmt.Expr)
	if top.Kind != ast.ExprBinary || top.Op != "==" {
		t.Fatalf("top op = %v/%q, want ExprBinary/==", top.Kind, top.Op)
	}

	left := arena.Expr(top.Left)
	if left.Kind != ast.ExprBinary || left.Op != "<" {
		t.Fatalf("left op = %v/%q, want ExprBinary/<", left.Kind, left.Op)
	}

	if h.Set.CountBySeverity(diag.Warning) == 0 {
		t.Errorf("expected a parens warning, got none: %v", h.Set.All())
	}
}

func TestPrematureEOFInsideBlockReportsError(t *testing.T) {
	p, h := newParser(t, "void f() { int x = 1;")
	p.ParseModule()

	if !h.Set.HasErrors() {
		t.Errorf("expected an error diagnostic for unterminated block")
	}
}

func TestSafeSystemConflictReportedOnce(t *testing.T) {
	p, h := newParser(t, "@safe @system void f() { }")
	p.ParseModule()

	errs := 0
	for _, d := range h.Set.All() {
		if d.Severity == diag.Error {
			errs++
		}
	}

	if errs != 1 {
		t.Errorf("safety-group conflict diagnostics = %d, want exactly 1 (%v)", errs, h.Set.All())
	}
}

func TestConstParenVsConstStorageClass(t *testing.T) {
	p1, h1 := newParser(t, "const(int) x;")
	root1 := p1.ParseModule()
	arena1 := p1.Arena()
	d1 := arena1.Decl(arena1.Decl(root1).Inner[0])

	ty := arena1.Type(d1.Type)
	if ty.Kind != ast.TypeConstructor || ty.Qualifier != ast.SCConst {
		t.Fatalf("const(int) type = %+v, want TypeConstructor{const}", ty)
	}

	if d1.StorageSet&ast.SCConst != 0 {
		t.Errorf("const(int) should not also set the const storage-class bit")
	}

	if h1.Set.HasErrors() {
		t.Errorf("unexpected errors: %v", h1.Set.All())
	}

	p2, h2 := newParser(t, "const int y;")
	root2 := p2.ParseModule()
	arena2 := p2.Arena()
	d2 := arena2.Decl(arena2.Decl(root2).Inner[0])

	ty2 := arena2.Type(d2.Type)
	if ty2.Kind != ast.TypeBasic || ty2.Name != "int" {
		t.Fatalf("const int type = %+v, want plain basic int", ty2)
	}

	if d2.StorageSet&ast.SCConst == 0 {
		t.Errorf("const int should set the const storage-class bit")
	}

	if h2.Set.HasErrors() {
		t.Errorf("unexpected errors: %v", h2.Set.All())
	}
}

func TestChainedBangDiagnoses(t *testing.T) {
	p, h := newParser(t, "void f4() { a!b!c; }")
	p.ParseModule()

	if h.Set.Len() == 0 {
		t.Errorf("expected a diagnostic for chained ! outside is/in, got none")
	}
}
