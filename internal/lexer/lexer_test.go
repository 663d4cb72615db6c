package lexer_test

import (
	"testing"

	"github.com/jacob-carlborg/ddc/internal/diag"
	"github.com/jacob-carlborg/ddc/internal/lexer"
	"github.com/jacob-carlborg/ddc/internal/token"
)

func newLexer(t *testing.T, src string) (*lexer.Lexer, *diag.Collect) {
	t.Helper()

	h := diag.NewCollect()
	l := lexer.New("t.d", []byte(src), 0, token.NewInterner(), h)

	return l, h
}

func collectKinds(t *testing.T, l *lexer.Lexer) []token.Kind {
	t.Helper()

	var kinds []token.Kind
	for {
		cur := l.Current()
		kinds = append(kinds, cur.Kind)

		if cur.Kind == token.EOF {
			return kinds
		}

		l.Next()
	}
}

func TestLexerKeywordsAndPunct(t *testing.T) {
	l, h := newLexer(t, "module a.b.c;")

	got := collectKinds(t, l)
	want := []token.Kind{
		token.KwModule, token.Identifier, token.Dot, token.Identifier,
		token.Dot, token.Identifier, token.Semicolon, token.EOF,
	}

	if len(got) != len(want) {
		t.Fatalf("kind count = %d, want %d (%v)", len(got), len(want), got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	l, _ := newLexer(t, "int x = 3;")

	first := l.Current()
	p1 := l.Peek(1)
	p2 := l.Peek(2)

	if l.Current() != first {
		t.Fatalf("Peek mutated current token")
	}

	if p1.Kind != token.Identifier || p2.Kind != token.Assign {
		t.Fatalf("unexpected peeked kinds: %v %v", p1.Kind, p2.Kind)
	}
}

func TestLexerNumberAndString(t *testing.T) {
	l, h := newLexer(t, `0x10 3.14 "hi"c`)

	if l.Current().Kind != token.IntLiteral || l.Current().Int != 16 {
		t.Fatalf("hex literal: got %+v", l.Current())
	}

	l.Next()

	if l.Current().Kind != token.FloatLiteral || l.Current().Float != 3.14 {
		t.Fatalf("float literal: got %+v", l.Current())
	}

	l.Next()

	if l.Current().Kind != token.StringLiteral || l.Current().Str.Postfix != 'c' {
		t.Fatalf("string literal: got %+v", l.Current())
	}

	if h.Set.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", h.Set.All())
	}
}

func TestLexerIllegalCharReportsOnNext(t *testing.T) {
	l, h := newLexer(t, "a `b")

	if h.Set.Len() != 0 {
		t.Fatalf("diagnostic surfaced before Next() drained it")
	}

	for l.Current().Kind != token.EOF {
		l.Next()
	}

	if h.Set.Len() == 0 {
		t.Fatalf("expected a diagnostic for the illegal backtick")
	}
}

func TestDocCommentCapturesText(t *testing.T) {
	l, _ := newLexer(t, "/// hello\nmodule a;")

	if l.Current().Kind != token.DocCommentLine {
		t.Fatalf("expected doc comment, got %v", l.Current().Kind)
	}

	if got := l.Current().Text; got != " hello" {
		t.Fatalf("doc text = %q", got)
	}
}
