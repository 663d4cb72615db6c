// Package lexer scans D-like source bytes into a stream of token.Token
// values. The parser's Token Interface contract (spec.md §4.2) is satisfied
// by *Lexer: Current/Next/Peek plus diagnostics drained on Next.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jacob-carlborg/ddc/internal/diag"
	"github.com/jacob-carlborg/ddc/internal/position"
	"github.com/jacob-carlborg/ddc/internal/token"
)

// Lexer is a single-lookahead scanner over one source buffer. It is not
// safe for concurrent use; one Lexer corresponds to one module (spec.md §5).
type Lexer struct {
	file     *position.File
	src      []byte
	offset   int
	interner *token.Interner
	handler  diag.Handler

	current token.Token
	buf     overflow

	pending []pendingDiag // produced while scanning the token about to be returned by Next
}

type pendingDiag struct {
	loc    position.Position
	sev    diag.Severity
	format string
	args   []any
}

// New creates a lexer over content starting at startOffset, and primes
// Current() with the first token.
func New(filename string, content []byte, startOffset int, interner *token.Interner, handler diag.Handler) *Lexer {
	if handler == nil {
		handler = diag.Suppress{}
	}

	l := &Lexer{
		file:     position.NewFile(filename, content),
		src:      content,
		offset:   startOffset,
		interner: interner,
		handler:  handler,
	}
	l.current = l.scan()

	return l
}

// Current returns the token the cursor currently sits on.
func (l *Lexer) Current() token.Token { return l.current }

// Next advances to the next token, draining into the handler every
// diagnostic produced while scanning the token just consumed (spec.md §4.2
// ordering guarantee), and returns the new current token.
func (l *Lexer) Next() token.Token {
	l.flushPending()

	if next, ok := l.buf.popFront(); ok {
		l.current = next
	} else {
		l.current = l.scan()
	}

	l.flushPending()

	return l.current
}

func (l *Lexer) flushPending() {
	for _, p := range l.pending {
		l.handler.Report(p.loc, p.sev, p.format, p.args, false)
	}

	l.pending = l.pending[:0]
}

// Peek returns the token k positions ahead of Current (k >= 1), scanning
// and buffering as many additional tokens as needed.
func (l *Lexer) Peek(k int) token.Token {
	if k < 1 {
		k = 1
	}

	for l.buf.length < k {
		l.buf.push(l.scan())
	}

	t, _ := l.buf.at(k - 1)

	return t
}

// PeekPastParen returns the token immediately following the ')' that matches
// the '(' t sits on, skipping the fully matched parenthesis run. t must be a
// '(' token.
func (l *Lexer) PeekPastParen(t token.Token) token.Token {
	if t.Kind != token.LParen {
		return t
	}

	depth := 0
	i := 1

	for {
		cur := l.Peek(i)
		switch cur.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			if depth == 0 {
				return l.Peek(i + 1)
			}

			depth--
		case token.EOF:
			return cur
		}

		i++
	}
}

func (l *Lexer) report(loc position.Position, sev diag.Severity, format string, args ...any) {
	l.pending = append(l.pending, pendingDiag{loc: loc, sev: sev, format: format, args: args})
}

func (l *Lexer) pos() position.Position { return l.file.PositionAt(l.offset) }

func (l *Lexer) peekByte(ahead int) byte {
	if l.offset+ahead >= len(l.src) {
		return 0
	}

	return l.src[l.offset+ahead]
}

func (l *Lexer) peekRune(ahead int) (rune, int) {
	if l.offset+ahead >= len(l.src) {
		return 0, 0
	}

	return utf8.DecodeRune(l.src[l.offset+ahead:])
}

// scan produces exactly one token starting at the current offset,
// skipping whitespace and comments (comments are not preserved as trivia
// except doc comments, per spec.md §1 non-goals).
func (l *Lexer) scan() token.Token {
	for {
		l.skipWhitespace()

		if !l.skipCommentNonDoc() {
			break
		}
	}

	start := l.pos()

	if l.offset >= len(l.src) {
		return token.Token{Kind: token.EOF, Span: position.Span{Start: start, End: start}}
	}

	r, size := l.peekRune(0)

	switch {
	case r == '/' && (l.peekByte(1) == '/' || l.peekByte(1) == '*'):
		return l.scanDocCommentOrRecurse(start)
	case unicode.IsLetter(r) || r == '_':
		return l.scanIdentifierOrKeyword(start)
	case unicode.IsDigit(r):
		return l.scanNumber(start)
	case r == '"':
		return l.scanString(start)
	case r == '\'':
		return l.scanChar(start)
	default:
		return l.scanPunct(start, r, size)
	}
}

func (l *Lexer) skipWhitespace() {
	for l.offset < len(l.src) {
		switch l.src[l.offset] {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			l.offset++
		default:
			return
		}
	}
}

// skipCommentNonDoc skips exactly one non-doc comment (// or /* */ whose
// spelling doesn't mark it as a doc comment) and reports whether it
// consumed anything, so scan's caller can loop past whitespace again.
func (l *Lexer) skipCommentNonDoc() bool {
	if l.peekByte(0) != '/' {
		return false
	}

	switch l.peekByte(1) {
	case '/':
		if l.peekByte(2) == '/' {
			return false // `///` is a doc comment, handled by scanDocCommentOrRecurse
		}

		for l.offset < len(l.src) && l.src[l.offset] != '\n' {
			l.offset++
		}

		return true
	case '*':
		if l.peekByte(2) == '*' && l.peekByte(3) != '/' {
			return false // `/**` (not `/**/`) is a doc comment
		}

		l.skipBlockComment()

		return true
	}

	return false
}

func (l *Lexer) skipBlockComment() {
	start := l.pos()
	l.offset += 2

	for {
		if l.offset >= len(l.src) {
			l.report(start, diag.Error, "unterminated block comment")
			return
		}

		if l.src[l.offset] == '*' && l.peekByte(1) == '/' {
			l.offset += 2
			return
		}

		l.offset++
	}
}

func (l *Lexer) scanDocCommentOrRecurse(start position.Position) token.Token {
	if l.peekByte(1) == '/' && l.peekByte(2) == '/' {
		l.offset += 3
		textStart := l.offset

		for l.offset < len(l.src) && l.src[l.offset] != '\n' {
			l.offset++
		}

		text := string(l.src[textStart:l.offset])

		return token.Token{Kind: token.DocCommentLine, Span: position.Span{Start: start, End: l.pos()}, Text: text}
	}

	if l.peekByte(1) == '*' && l.peekByte(2) == '*' {
		l.offset += 3
		textStart := l.offset

		for {
			if l.offset >= len(l.src) {
				l.report(start, diag.Error, "unterminated doc comment")

				break
			}

			if l.src[l.offset] == '*' && l.peekByte(1) == '/' {
				break
			}

			l.offset++
		}

		text := string(l.src[textStart:l.offset])
		if l.offset < len(l.src) {
			l.offset += 2
		}

		return token.Token{Kind: token.DocCommentBlock, Span: position.Span{Start: start, End: l.pos()}, Text: text}
	}

	// Not actually a doc comment after all; skip it as ordinary and rescan.
	l.skipCommentNonDoc()

	return l.scan()
}

func (l *Lexer) scanIdentifierOrKeyword(start position.Position) token.Token {
	begin := l.offset

	for l.offset < len(l.src) {
		r, size := l.peekRune(0)
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			break
		}

		l.offset += size
	}

	text := string(l.src[begin:l.offset])
	end := l.pos()
	span := position.Span{Start: start, End: end}

	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Span: span, Text: text}
	}

	switch text {
	case "true":
		return token.Token{Kind: token.KwTrue, Span: span, Text: text}
	case "false":
		return token.Token{Kind: token.KwFalse, Span: span, Text: text}
	case "null":
		return token.Token{Kind: token.KwNull, Span: span, Text: text}
	}

	return token.Token{Kind: token.Identifier, Span: span, Text: text, Ident: l.interner.Intern(text)}
}

func (l *Lexer) scanNumber(start position.Position) token.Token {
	begin := l.offset
	isFloat := false
	isHex := l.peekByte(0) == '0' && (l.peekByte(1) == 'x' || l.peekByte(1) == 'X')

	if isHex {
		l.offset += 2

		for l.offset < len(l.src) && (isHexDigit(l.src[l.offset]) || l.src[l.offset] == '_') {
			l.offset++
		}
	}

	for l.offset < len(l.src) && (isDigit(l.src[l.offset]) || l.src[l.offset] == '_') {
		l.offset++
	}

	if !isHex && l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		isFloat = true
		l.offset++

		for l.offset < len(l.src) && (isDigit(l.src[l.offset]) || l.src[l.offset] == '_') {
			l.offset++
		}
	}

	if !isHex && (l.peekByte(0) == 'e' || l.peekByte(0) == 'E') {
		isFloat = true
		l.offset++

		if l.peekByte(0) == '+' || l.peekByte(0) == '-' {
			l.offset++
		}

		for l.offset < len(l.src) && isDigit(l.src[l.offset]) {
			l.offset++
		}
	}

	switch l.peekByte(0) {
	case 'f', 'F':
		isFloat = true
		l.offset++
	case 'L':
		l.offset++
	case 'u', 'U':
		l.offset++

		if l.peekByte(0) == 'L' {
			l.offset++
		}
	}

	text := string(l.src[begin:l.offset])
	span := position.Span{Start: start, End: l.pos()}
	clean := stripDigitSeparators(text)

	if isFloat {
		v, err := strconv.ParseFloat(trimNumericSuffix(clean), 64)
		if err != nil {
			l.report(start, diag.Error, "invalid float literal %q", text)
		}

		return token.Token{Kind: token.FloatLiteral, Span: span, Text: text, Float: v}
	}

	digits := trimNumericSuffix(clean)
	if isHex {
		// 'f'/'F' are hex digits here, so only the integer suffixes go.
		digits = strings.TrimRight(clean, "uUL")
	}

	v, err := strconv.ParseInt(digits, 0, 64)
	if err != nil {
		// Fall back to unsigned parse range for literals like 0xFFFFFFFFFFFFFFFF.
		if uv, uerr := strconv.ParseUint(digits, 0, 64); uerr == nil {
			v = int64(uv)
		} else {
			l.report(start, diag.Error, "invalid integer literal %q", text)
		}
	}

	return token.Token{Kind: token.IntLiteral, Span: span, Text: text, Int: v}
}

func stripDigitSeparators(s string) string {
	out := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			out = append(out, s[i])
		}
	}

	return string(out)
}

func trimNumericSuffix(s string) string {
	end := len(s)
	for end > 0 {
		c := s[end-1]
		if c == 'f' || c == 'F' || c == 'L' || c == 'u' || c == 'U' {
			end--
			continue
		}

		break
	}

	if end == 0 {
		return s
	}

	return s[:end]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool { return isDigit(b) || (b|0x20 >= 'a' && b|0x20 <= 'f') }

func (l *Lexer) scanString(start position.Position) token.Token {
	l.offset++ // consume opening quote

	var out []byte

	for {
		if l.offset >= len(l.src) {
			l.report(start, diag.Error, "unterminated string literal")

			break
		}

		c := l.src[l.offset]
		if c == '"' {
			l.offset++
			break
		}

		if c == '\\' {
			l.offset++
			out = append(out, l.scanEscape(start)...)

			continue
		}

		out = append(out, c)
		l.offset++
	}

	var postfix byte
	if p := l.peekByte(0); p == 'c' || p == 'w' || p == 'd' {
		postfix = p
		l.offset++
	}

	span := position.Span{Start: start, End: l.pos()}

	return token.Token{
		Kind: token.StringLiteral, Span: span, Text: string(out),
		Str: token.StringPayload{Value: string(out), Postfix: postfix},
	}
}

func (l *Lexer) scanEscape(litStart position.Position) []byte {
	if l.offset >= len(l.src) {
		l.report(litStart, diag.Error, "unterminated escape sequence")
		return nil
	}

	c := l.src[l.offset]
	l.offset++

	switch c {
	case 'n':
		return []byte{'\n'}
	case 't':
		return []byte{'\t'}
	case 'r':
		return []byte{'\r'}
	case '0':
		return []byte{0}
	case '\\', '\'', '"':
		return []byte{c}
	default:
		return []byte{c}
	}
}

func (l *Lexer) scanChar(start position.Position) token.Token {
	l.offset++ // consume opening quote

	var value []byte

	if l.peekByte(0) == '\\' {
		l.offset++
		value = l.scanEscape(start)
	} else if l.offset < len(l.src) {
		r, size := l.peekRune(0)
		value = []byte(string(r))
		l.offset += size
	}

	if l.peekByte(0) == '\'' {
		l.offset++
	} else {
		l.report(start, diag.Error, "unterminated character literal")
	}

	span := position.Span{Start: start, End: l.pos()}

	return token.Token{Kind: token.CharLiteral, Span: span, Text: string(value)}
}

// punctTable lists multi-character operators longest-first so scanPunct can
// try them in order without backtracking.
var punctTable = []struct {
	text string
	kind token.Kind
}{
	{">>>=", token.UshrAssign},
	{"<<=", token.ShlAssign}, {">>=", token.ShrAssign}, {">>>", token.Ushr},
	{"^^=", token.PowAssign}, {"...", token.DotDotDot},
	{"==", token.Eq}, {"!=", token.NotEq}, {"<=", token.LessEq}, {">=", token.GreaterEq},
	{"<<", token.Shl}, {">>", token.Shr}, {"&&", token.AndAnd}, {"||", token.OrOr},
	{"++", token.PlusPlus}, {"--", token.MinusMinus}, {"^^", token.Caret},
	{"+=", token.PlusAssign}, {"-=", token.MinusAssign}, {"*=", token.StarAssign},
	{"/=", token.SlashAssign}, {"%=", token.PercentAssign}, {"&=", token.AmpAssign},
	{"|=", token.PipeAssign}, {"^=", token.XorAssign}, {"~=", token.CatAssign},
	{"::", token.ColonColon}, {"..", token.DotDot}, {"=>", token.Arrow},
	{"(", token.LParen}, {")", token.RParen}, {"{", token.LBrace}, {"}", token.RBrace},
	{"[", token.LBracket}, {"]", token.RBracket}, {";", token.Semicolon},
	{",", token.Comma}, {".", token.Dot}, {":", token.Colon}, {"?", token.Question},
	{"@", token.At}, {"$", token.Dollar}, {"=", token.Assign}, {"+", token.Plus},
	{"-", token.Minus}, {"*", token.Star}, {"/", token.Slash}, {"%", token.Percent},
	{"&", token.Amp}, {"|", token.Pipe}, {"^", token.Xor}, {"~", token.Cat},
	{"!", token.Bang}, {"<", token.Less}, {">", token.Greater},
}

func (l *Lexer) scanPunct(start position.Position, r rune, size int) token.Token {
	remaining := l.src[l.offset:]

	for _, p := range punctTable {
		if len(remaining) >= len(p.text) && string(remaining[:len(p.text)]) == p.text {
			l.offset += len(p.text)

			return token.Token{Kind: p.kind, Span: position.Span{Start: start, End: l.pos()}, Text: p.text}
		}
	}

	l.offset += size
	l.report(start, diag.Error, "unexpected character %q", r)

	return token.Token{Kind: token.Illegal, Span: position.Span{Start: start, End: l.pos()}, Text: string(r)}
}
