package diag

import (
	"strings"
	"testing"
)

func TestSinkAddAndHadErrors(t *testing.T) {
	s := NewSink()
	if s.HadErrors() {
		t.Fatal("fresh Sink reports HadErrors")
	}
	s.Errorf(Resolution, "prog.dcf", 3, 5, "undeclared identifier %q", "x")
	if !s.HadErrors() {
		t.Fatal("expected HadErrors after Errorf")
	}
	if len(s.Diagnostics()) != 1 {
		t.Fatalf("len(Diagnostics()) = %d, want 1", len(s.Diagnostics()))
	}
	d := s.Diagnostics()[0]
	if d.Kind != Resolution || d.File != "prog.dcf" || d.Line != 3 || d.Column != 5 {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
	if d.Message != `undeclared identifier "x"` {
		t.Errorf("Message = %q", d.Message)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := New(TypeMismatch, "prog.dcf", 10, 2, "expected %s, got %s", "int", "bool")
	want := "prog.dcf:10:2: error: expected int, got bool"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInternalfCarriesStack(t *testing.T) {
	d := Internalf("prog.dcf", 1, 1, "unreachable opcode %d", 99)
	if d.Kind != Internal {
		t.Errorf("Kind = %v, want Internal", d.Kind)
	}
	if d.Cause == nil {
		t.Fatal("Internalf diagnostic should carry a non-nil Cause")
	}
}

func TestSinkFormatWithSource(t *testing.T) {
	s := NewSink()
	s.Errorf(Resolution, "prog.dcf", 2, 3, "undeclared identifier %q", "y")
	source := map[string][]string{"prog.dcf": {"int x;", "  y = 1;"}}
	out := s.Format(source)
	if out == "" {
		t.Fatal("Format returned empty string with a recorded diagnostic")
	}
	for _, sub := range []string{"prog.dcf:2:3: error:", "  y = 1;", "^"} {
		if !strings.Contains(out, sub) {
			t.Errorf("Format output missing %q: %q", sub, out)
		}
	}
}

func TestSinkFormatEmpty(t *testing.T) {
	s := NewSink()
	if got := s.Format(nil); got != "" {
		t.Errorf("Format on empty Sink = %q, want empty string", got)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Resolution:   "resolution",
		TypeMismatch: "type",
		ArrayMisuse:  "array",
		Structural:   "structural",
		Internal:     "internal",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
