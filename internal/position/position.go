// Package position tracks source locations and spans for the ddc front end.
package position

import (
	"fmt"
	"path/filepath"
)

// Position is a single point in source: file, 1-based line/column, and a
// 0-based byte offset. The zero value is the "uninitialized" sentinel.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

// IsValid reports whether p looks like a real scanned position rather than
// the zero-value sentinel.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

func (p Position) String() string {
	name := p.File
	if name != "" {
		name = filepath.Base(name)
	}

	if name == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}

	return fmt.Sprintf("%s:%d:%d", name, p.Line, p.Column)
}

// Before reports whether p occurs strictly before other in the same file.
func (p Position) Before(other Position) bool {
	if p.File != other.File {
		return p.File < other.File
	}

	return p.Offset < other.Offset
}

// Span is a half-open source range [Start, End) within a single file.
type Span struct {
	Start Position
	End   Position
}

// IsValid reports whether the span has two valid, ordered endpoints in the
// same file.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.File == s.End.File && s.Start.Offset <= s.End.Offset
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s-%d", s.Start.String(), s.End.Column)
	}

	return fmt.Sprintf("%s-%s", s.Start.String(), s.End.String())
}

// Between returns the span running from start to end.
func Between(start, end Position) Span {
	return Span{Start: start, End: end}
}

// Union returns the smallest span covering both s and other. If one side is
// invalid the other is returned unchanged.
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}

	if !other.IsValid() {
		return s
	}

	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}

	end := s.End
	if end.Before(other.End) {
		end = other.End
	}

	return Span{Start: start, End: end}
}

// File holds the raw bytes of a source file plus a line-offset index so
// positions can be recovered from byte offsets cheaply.
type File struct {
	Name    string
	Content []byte
	lineAt  []int // lineAt[i] = byte offset of the start of line i+1
}

// NewFile indexes content's line starts once up front.
func NewFile(name string, content []byte) *File {
	f := &File{Name: name, Content: content, lineAt: []int{0}}

	for i, b := range content {
		if b == '\n' {
			f.lineAt = append(f.lineAt, i+1)
		}
	}

	return f
}

// PositionAt converts a byte offset into a Position via binary search over
// the line index.
func (f *File) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}

	if offset > len(f.Content) {
		offset = len(f.Content)
	}

	lo, hi := 0, len(f.lineAt)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineAt[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return Position{
		File:   f.Name,
		Line:   lo + 1,
		Column: offset - f.lineAt[lo] + 1,
		Offset: offset,
	}
}

// Text returns the substring of the file covered by span.
func (f *File) Text(span Span) string {
	if !span.IsValid() || span.End.Offset > len(f.Content) {
		return ""
	}

	return string(f.Content[span.Start.Offset:span.End.Offset])
}
