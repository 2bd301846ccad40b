package tac

import (
	"testing"

	"dcc/internal/types"
)

func TestArgConstructors(t *testing.T) {
	if a := IntLiteral(42); a.Kind != Literal || a.Type != types.Integer || a.IntVal != 42 {
		t.Errorf("IntLiteral(42) = %+v", a)
	}
	if a := BoolLiteral(true); a.Kind != Literal || a.Type != types.Boolean || !a.BoolVal {
		t.Errorf("BoolLiteral(true) = %+v", a)
	}
	if a := DoubleLiteral(3.5); a.Kind != Literal || a.Type != types.Double || a.DblVal != 3.5 {
		t.Errorf("DoubleLiteral(3.5) = %+v", a)
	}
	if a := CharLiteral('x'); a.Kind != Literal || a.Type != types.Character || a.CharVal != 'x' {
		t.Errorf("CharLiteral('x') = %+v", a)
	}
	if a := Ident("foo", true); a.Kind != Identifier || a.Name != "foo" || !a.Global {
		t.Errorf("Ident(foo, true) = %+v", a)
	}
	if a := Label("L0"); a.Kind != LabelArg || a.Name != "L0" {
		t.Errorf("Label(L0) = %+v", a)
	}
	if a := UnusedArg(); a.Kind != Unused {
		t.Errorf("UnusedArg() = %+v", a)
	}
}

func TestArgIsIdentifier(t *testing.T) {
	if !Ident("x", false).IsIdentifier() {
		t.Error("expected identifier Arg to report IsIdentifier")
	}
	if IntLiteral(1).IsIdentifier() {
		t.Error("literal Arg should not report IsIdentifier")
	}
}

func TestArgIsTemp(t *testing.T) {
	cases := []struct {
		name string
		temp bool
	}{
		{"_tmp0", true},
		{"_tmp17", true},
		{".LC0", true},
		{".LC12", true},
		{"x", false},
		{"count", false},
		{"local", false},
		{"Lclass", false},
	}
	for _, c := range cases {
		if got := Ident(c.name, false).IsTemp(); got != c.temp {
			t.Errorf("Ident(%q).IsTemp() = %v, want %v", c.name, got, c.temp)
		}
	}
	if IntLiteral(5).IsTemp() {
		t.Error("a literal Arg should never report IsTemp")
	}
}

func TestArgIsIntLiteralAndIsBoolLiteral(t *testing.T) {
	if !IntLiteral(7).IsIntLiteral(7) {
		t.Error("IntLiteral(7).IsIntLiteral(7) = false")
	}
	if IntLiteral(7).IsIntLiteral(8) {
		t.Error("IntLiteral(7).IsIntLiteral(8) = true")
	}
	if Ident("x", false).IsIntLiteral(0) {
		t.Error("identifier Arg should never match IsIntLiteral")
	}
	if !BoolLiteral(false).IsBoolLiteral(false) {
		t.Error("BoolLiteral(false).IsBoolLiteral(false) = false")
	}
	if BoolLiteral(true).IsBoolLiteral(false) {
		t.Error("BoolLiteral(true).IsBoolLiteral(false) = true")
	}
}

func TestArgString(t *testing.T) {
	cases := []struct {
		a    Arg
		want string
	}{
		{UnusedArg(), "-"},
		{IntLiteral(3), "3"},
		{BoolLiteral(true), "true"},
		{CharLiteral('a'), `'a'`},
		{Ident("foo", false), "foo"},
		{Label("L1"), "L1"},
	}
	for _, c := range cases {
		if got := c.a.String(); got != c.want {
			t.Errorf("Arg.String() = %q, want %q", got, c.want)
		}
	}
}

func TestStmtString(t *testing.T) {
	s := Stmt{Op: types.OpAdd, Src0: Ident("a", false), Src1: IntLiteral(1), Dst: Ident("b", false)}
	str := s.String()
	if str == "" {
		t.Fatal("Stmt.String() returned empty string")
	}
}
