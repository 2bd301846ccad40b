package symtab

import (
	"testing"

	"dcc/internal/types"
)

func TestAddVariableDuplicate(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddVariable("x", types.Integer, types.Local, 1, "f:1:1"); err != nil {
		t.Fatalf("first AddVariable: %v", err)
	}
	err := tbl.AddVariable("x", types.Integer, types.Local, 1, "f:2:1")
	if err == nil {
		t.Fatal("expected DuplicateError on redeclaration")
	}
	dup, ok := err.(*DuplicateError)
	if !ok {
		t.Fatalf("error type = %T, want *DuplicateError", err)
	}
	if dup.OriginalPos != "f:1:1" {
		t.Errorf("OriginalPos = %q, want f:1:1", dup.OriginalPos)
	}
}

func TestGetMissing(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Get("missing"); ok {
		t.Error("Get on empty table returned ok=true")
	}
}

func TestSetStartAddressAndAllocationSize(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddVariable("a", types.Integer, types.Local, 1, "f:1:1"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddVariable("b", types.Integer, types.Local, 4, "f:2:1"); err != nil {
		t.Fatal(err)
	}

	const slot = int64(8)
	if got, want := tbl.AllocationSize(slot), int64(1*8+4*8); got != want {
		t.Errorf("AllocationSize = %d, want %d", got, want)
	}

	next := tbl.SetStartAddress(0, slot)
	a, _ := tbl.Get("a")
	b, _ := tbl.Get("b")
	if a.Addr != 0 {
		t.Errorf("a.Addr = %d, want 0", a.Addr)
	}
	if b.Addr != 8 {
		t.Errorf("b.Addr = %d, want 8", b.Addr)
	}
	if next != 40 {
		t.Errorf("SetStartAddress return = %d, want 40", next)
	}
}

func TestVariablesPreservesDeclarationOrder(t *testing.T) {
	tbl := NewTable()
	names := []string{"z", "a", "m"}
	for i, n := range names {
		if err := tbl.AddVariable(n, types.Integer, types.Local, 1, "f"); err != nil {
			t.Fatalf("AddVariable(%d): %v", i, err)
		}
	}
	vars := tbl.Variables()
	if len(vars) != len(names) {
		t.Fatalf("len(Variables()) = %d, want %d", len(vars), len(names))
	}
	for i, v := range vars {
		if v.Name != names[i] {
			t.Errorf("Variables()[%d].Name = %q, want %q", i, v.Name, names[i])
		}
	}
}

func TestStackLookupWalksOutward(t *testing.T) {
	outer := NewTable()
	if err := outer.AddVariable("x", types.Integer, types.Global, 1, "f"); err != nil {
		t.Fatal(err)
	}
	inner := NewTable()
	if err := inner.AddVariable("y", types.Boolean, types.Local, 1, "f"); err != nil {
		t.Fatal(err)
	}

	s := NewStack()
	s.Push(outer)
	s.Push(inner)

	if _, ok := s.Lookup("y"); !ok {
		t.Error("expected y to resolve in innermost scope")
	}
	if _, ok := s.Lookup("x"); !ok {
		t.Error("expected x to resolve by walking out to the outer scope")
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("expected missing name to fail lookup")
	}

	s.Pop()
	if _, ok := s.Lookup("y"); ok {
		t.Error("expected y to be unresolvable after popping its scope")
	}
	if s.Top() != outer {
		t.Error("Top() after popping inner should return outer")
	}
}

func TestStackLookupMethod(t *testing.T) {
	tbl := NewTable()
	if err := tbl.AddMethod("foo", types.Integer, []VariableSymbol{{Name: "a", Type: types.Integer}}, "f"); err != nil {
		t.Fatal(err)
	}
	s := NewStack()
	s.Push(tbl)

	sym, ok := s.LookupMethod("foo")
	if !ok {
		t.Fatal("expected foo to resolve")
	}
	if sym.ReturnType != types.Integer || len(sym.Args) != 1 {
		t.Errorf("unexpected method symbol: %+v", sym)
	}
	if _, ok := s.LookupMethod("bar"); ok {
		t.Error("expected bar to be unresolved")
	}
}

func TestPopOnEmptyStackIsNoop(t *testing.T) {
	s := NewStack()
	s.Pop()
	if s.Top() != nil {
		t.Error("Top() on empty stack should be nil")
	}
}
