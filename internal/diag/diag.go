// Package diag implements the diagnostic subsystem: severities, a
// diagnostic value with supplementals, an ordered collecting set, and a
// pluggable handler capability (suppress / collect / report-immediately).
package diag

import (
	"fmt"

	"github.com/jacob-carlborg/ddc/internal/position"
)

// Severity is the diagnostic severity taxonomy: error, warning, deprecation.
type Severity int

const (
	Error Severity = iota
	Warning
	Deprecation
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Deprecation:
		return "deprecation"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem: a location, a formatted message, a
// severity, and zero or more supplementals sharing that severity.
type Diagnostic struct {
	Location      position.Position
	Message       string
	Severity      Severity
	Supplementals []Diagnostic
}

// Set is an append-ordered, indexable collection of diagnostics.
type Set struct {
	items []Diagnostic
}

// Add appends a new primary diagnostic and returns its index.
func (s *Set) Add(d Diagnostic) int {
	s.items = append(s.items, d)
	return len(s.items) - 1
}

// AddSupplemental attaches a supplemental diagnostic to the last diagnostic
// added to the set. It is a no-op on an empty set. The supplemental inherits
// the parent's severity, per the invariant in spec.md §4.1.
func (s *Set) AddSupplemental(loc position.Position, message string) {
	if len(s.items) == 0 {
		return
	}

	last := &s.items[len(s.items)-1]
	last.Supplementals = append(last.Supplementals, Diagnostic{
		Location: loc,
		Message:  message,
		Severity: last.Severity,
	})
}

// Len returns the number of primary diagnostics in the set.
func (s *Set) Len() int { return len(s.items) }

// At returns the primary diagnostic at index i.
func (s *Set) At(i int) Diagnostic { return s.items[i] }

// All returns every primary diagnostic, in insertion order.
func (s *Set) All() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)

	return out
}

// HasErrors reports whether any primary diagnostic has Error severity.
func (s *Set) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

// CountBySeverity returns the number of primary diagnostics at sev.
func (s *Set) CountBySeverity(sev Severity) int {
	n := 0

	for _, d := range s.items {
		if d.Severity == sev {
			n++
		}
	}

	return n
}

// Handler is the capability the parser and lexer report through. It never
// returns a value — formatting failures are silently truncated, and a
// handler is otherwise infallible by contract (spec.md §4.1).
type Handler interface {
	Report(loc position.Position, sev Severity, format string, args []any, supplemental bool)
}

// Suppress discards every diagnostic reported to it.
type Suppress struct{}

func (Suppress) Report(position.Position, Severity, string, []any, bool) {}

// Collect appends every reported diagnostic to a Set, honoring the
// supplemental flag.
type Collect struct {
	Set *Set
}

// NewCollect creates a Collect handler backed by a fresh Set.
func NewCollect() *Collect { return &Collect{Set: &Set{}} }

func (c *Collect) Report(loc position.Position, sev Severity, format string, args []any, supplemental bool) {
	msg := safeSprintf(format, args)

	if supplemental {
		c.Set.AddSupplemental(loc, msg)
		return
	}

	c.Set.Add(Diagnostic{Location: loc, Message: msg, Severity: sev})
}

// Sink is the external reporting function a severity is delegated to by
// Immediate: e.g. writing a formatted line to stderr.
type Sink func(loc position.Position, sev Severity, message string, supplemental bool)

// Immediate delegates every report straight to a sink, keyed only by the
// severity it already carries — there is no buffering.
type Immediate struct {
	Sink Sink
}

func (im Immediate) Report(loc position.Position, sev Severity, format string, args []any, supplemental bool) {
	if im.Sink == nil {
		return
	}

	im.Sink(loc, sev, safeSprintf(format, args), supplemental)
}

// safeSprintf never panics on a malformed format/args pair; a handler is
// infallible per spec.md §4.1, so a formatting mismatch degrades to the raw
// format string rather than propagating.
func safeSprintf(format string, args []any) (out string) {
	defer func() {
		if recover() != nil {
			out = format
		}
	}()

	return fmt.Sprintf(format, args...)
}

// Reporter drains a Set to a sink function, emitting each primary
// diagnostic's line followed by its supplementals.
type Reporter struct {
	Sink Sink
}

// NewReporter builds a Reporter around the given sink.
func NewReporter(sink Sink) *Reporter { return &Reporter{Sink: sink} }

// Drain emits every diagnostic in s, primary first then its supplementals,
// in insertion order.
func (r *Reporter) Drain(s *Set) {
	if r.Sink == nil {
		return
	}

	for _, d := range s.All() {
		r.Sink(d.Location, d.Severity, d.Message, false)
		for _, sub := range d.Supplementals {
			r.Sink(sub.Location, sub.Severity, sub.Message, true)
		}
	}
}
