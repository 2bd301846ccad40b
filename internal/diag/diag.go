// Package diag collects and renders compiler diagnostics. It does not
// panic on bad input; only a genuine internal-compiler-error aborts, and
// even that is reported through a Diagnostic rather than a raw panic
// wherever the caller has a recovery point.
package diag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind taxonomizes a diagnostic the way spec.md's error model does.
type Kind int

const (
	Resolution Kind = iota
	TypeMismatch
	ArrayMisuse
	Structural
	Internal
)

func (k Kind) String() string {
	switch k {
	case Resolution:
		return "resolution"
	case TypeMismatch:
		return "type"
	case ArrayMisuse:
		return "array"
	case Structural:
		return "structural"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem, carrying a correlation ID so external
// tooling can track it across repeated invocations without re-parsing text.
type Diagnostic struct {
	ID      uuid.UUID
	Kind    Kind
	File    string
	Line    int
	Column  int
	Message string

	// Cause is set only for Internal diagnostics; it carries the
	// stack-trace-wrapped error that triggered the abort.
	Cause error
}

// New constructs a Diagnostic at the given source coordinates.
func New(kind Kind, file string, line, col int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		ID:      uuid.New(),
		Kind:    kind,
		File:    file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	}
}

// Internalf builds an Internal-kind diagnostic wrapping an unexpected
// condition with a captured stack trace, for conditions that should be
// unreachable if earlier passes held their invariants.
func Internalf(file string, line, col int, format string, args ...interface{}) *Diagnostic {
	cause := errors.WithStack(fmt.Errorf(format, args...))
	return &Diagnostic{
		ID:      uuid.New(),
		Kind:    Internal,
		File:    file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf("internal compiler error: %v", cause),
		Cause:   cause,
	}
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: error: %s", d.File, d.Line, d.Column, d.Message)
}

// Sink accumulates diagnostics for one compilation. It never panics.
type Sink struct {
	diags []*Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Add records a diagnostic.
func (s *Sink) Add(d *Diagnostic) { s.diags = append(s.diags, d) }

// Errorf is a convenience that builds and records a Resolution/TypeMismatch/
// ArrayMisuse/Structural diagnostic in one call.
func (s *Sink) Errorf(kind Kind, file string, line, col int, format string, args ...interface{}) {
	s.Add(New(kind, file, line, col, format, args...))
}

// HadErrors reports whether any diagnostic was recorded.
func (s *Sink) HadErrors() bool { return len(s.diags) > 0 }

// Diagnostics returns the recorded diagnostics in recording order.
func (s *Sink) Diagnostics() []*Diagnostic { return s.diags }

// Format renders every recorded diagnostic as
// "<file>:<line>:<col>: error: <message>" followed by the offending source
// line and a caret, matching spec.md §6's required output shape. source is
// keyed by file name; a file absent from the map is rendered without a
// source excerpt.
func (s *Sink) Format(source map[string][]string) string {
	if len(s.diags) == 0 {
		return ""
	}
	var b strings.Builder
	for _, d := range s.diags {
		b.WriteString(d.String())
		b.WriteByte('\n')
		lines := source[d.File]
		if d.Line >= 1 && d.Line <= len(lines) {
			line := lines[d.Line-1]
			b.WriteString("  " + line + "\n")
			col := d.Column
			if col < 1 {
				col = 1
			}
			b.WriteString("  " + strings.Repeat(" ", col-1) + "^\n")
		}
	}
	return b.String()
}
