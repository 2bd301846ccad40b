package types

import "testing"

func TestTypeString(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{Unknown, "unknown"},
		{Void, "void"},
		{Integer, "int"},
		{Boolean, "bool"},
		{Character, "char"},
		{String, "string"},
		{Double, "double"},
		{Array, "array"},
		{Class, "class"},
		{Interface, "interface"},
		{Type(99), "invalid"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("Type(%d).String() = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestTypeIsNumeric(t *testing.T) {
	for _, typ := range []Type{Integer, Double} {
		if !typ.IsNumeric() {
			t.Errorf("%s.IsNumeric() = false, want true", typ)
		}
	}
	for _, typ := range []Type{Boolean, Character, String, Void} {
		if typ.IsNumeric() {
			t.Errorf("%s.IsNumeric() = true, want false", typ)
		}
	}
}

func TestTypeIsComparable(t *testing.T) {
	for _, typ := range []Type{Integer, Double, Boolean} {
		if !typ.IsComparable() {
			t.Errorf("%s.IsComparable() = false, want true", typ)
		}
	}
	if Character.IsComparable() {
		t.Errorf("Character.IsComparable() = true, want false")
	}
}

func TestBoolOpSetCC(t *testing.T) {
	cases := []struct {
		op   BoolOp
		want string
	}{
		{Eq, "e"}, {Ne, "ne"}, {Lt, "l"}, {Le, "le"}, {Gt, "g"}, {Ge, "ge"},
	}
	for _, c := range cases {
		if got := c.op.SetCC(); got != c.want {
			t.Errorf("%s.SetCC() = %q, want %q", c.op, got, c.want)
		}
	}
}

func TestBoolOpSetCCPanicsOnNonRelational(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for And.SetCC()")
		}
	}()
	And.SetCC()
}

func TestOpcodeClassification(t *testing.T) {
	arith := []Opcode{OpAdd, OpSub, OpMul, OpDiv, OpMod}
	for _, op := range arith {
		if !op.IsBinaryArith() {
			t.Errorf("%s.IsBinaryArith() = false, want true", op)
		}
	}
	if Mov.IsBinaryArith() {
		t.Errorf("Mov.IsBinaryArith() = true, want false")
	}

	if !OpAnd.IsLogic() || !OpOr.IsLogic() {
		t.Error("OpAnd/OpOr.IsLogic() = false, want true")
	}
	if OpNot.IsLogic() {
		t.Error("OpNot.IsLogic() = true, want false")
	}

	cmp := []Opcode{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe}
	for _, op := range cmp {
		if !op.IsComparison() {
			t.Errorf("%s.IsComparison() = false, want true", op)
		}
	}
	if OpAdd.IsComparison() {
		t.Error("OpAdd.IsComparison() = true, want false")
	}

	if !Mov.IsMove() || Noop.IsMove() {
		t.Error("IsMove classification wrong")
	}
}

func TestBinaryOpToOpcode(t *testing.T) {
	cases := map[BinaryOp]Opcode{
		Add: OpAdd, Sub: OpSub, Mul: OpMul, Div: OpDiv, Mod: OpMod,
	}
	for op, want := range cases {
		if got := BinaryOpToOpcode(op); got != want {
			t.Errorf("BinaryOpToOpcode(%s) = %s, want %s", op, got, want)
		}
	}
}

func TestBinaryOpToOpcodePanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown BinaryOp")
		}
	}()
	BinaryOpToOpcode(BinaryOp(99))
}

func TestBoolOpToOpcode(t *testing.T) {
	cases := map[BoolOp]Opcode{
		Eq: OpEq, Ne: OpNe, Lt: OpLt, Le: OpLe, Gt: OpGt, Ge: OpGe,
		And: OpAnd, Or: OpOr, Not: OpNot,
	}
	for op, want := range cases {
		if got := BoolOpToOpcode(op); got != want {
			t.Errorf("BoolOpToOpcode(%s) = %s, want %s", op, got, want)
		}
	}
}

func TestMemoryClassString(t *testing.T) {
	if Local.String() != "local" {
		t.Errorf("Local.String() = %q, want local", Local.String())
	}
	if Global.String() != "global" {
		t.Errorf("Global.String() = %q, want global", Global.String())
	}
}
