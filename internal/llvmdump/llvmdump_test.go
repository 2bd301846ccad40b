package llvmdump

import (
	"strings"
	"testing"

	"dcc/internal/optimize"
	"dcc/internal/tac"
	"dcc/internal/types"
)

func TestDumpRendersFunctionAndAddInstruction(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.FBegin, Src0: tac.Label("main")},
		{Op: types.Mov, Src0: tac.IntLiteral(2), Dst: tac.Ident("x", false)},
		{Op: types.OpAdd, Src0: tac.Ident("x", false), Src1: tac.IntLiteral(1), Dst: tac.Ident("y", false)},
		{Op: types.Return},
		{Op: types.FEnd, Src0: tac.Label("main")},
	}
	blocks := optimize.Partition(stmts)
	funcBlocks := map[string][]*optimize.Block{"main": blocks}

	out := Dump(funcBlocks)
	if !strings.Contains(out, "define void @main()") {
		t.Errorf("expected a main function definition, got:\n%s", out)
	}
	if !strings.Contains(out, "add i64") {
		t.Errorf("expected an add instruction for OpAdd, got:\n%s", out)
	}
	if !strings.Contains(out, "ret void") {
		t.Errorf("expected a ret instruction, got:\n%s", out)
	}
}

func TestDumpRendersComparisonAndConditionalBranch(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.FBegin, Src0: tac.Label("main")},
		{Op: types.OpLt, Src0: tac.Ident("a", false), Src1: tac.Ident("b", false), Dst: tac.Ident("_tmp1", false)},
		{Op: types.IfZ, Src0: tac.Ident("_tmp1", false), Dst: tac.Label("Lend")},
		{Op: types.Label, Dst: tac.Label("Lend")},
		{Op: types.Return},
		{Op: types.FEnd, Src0: tac.Label("main")},
	}
	blocks := optimize.Partition(stmts)
	out := Dump(map[string][]*optimize.Block{"main": blocks})

	if !strings.Contains(out, "icmp slt") {
		t.Errorf("expected a signed-less-than icmp for OpLt, got:\n%s", out)
	}
	if !strings.Contains(out, "br i1") {
		t.Errorf("expected a conditional branch for IfZ, got:\n%s", out)
	}
}

func TestDumpHandlesEmptyFunction(t *testing.T) {
	out := Dump(map[string][]*optimize.Block{"empty": nil})
	if !strings.Contains(out, "define void @empty()") {
		t.Errorf("expected an empty function to still be defined, got:\n%s", out)
	}
}

func TestDumpHandlesNoFunctions(t *testing.T) {
	out := Dump(map[string][]*optimize.Block{})
	if strings.Contains(out, "define") {
		t.Errorf("expected no function definitions for an empty input, got:\n%s", out)
	}
}

func TestDumpDoesNotPanicOnCall(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.FBegin, Src0: tac.Label("main")},
		{Op: types.Param, Src0: tac.IntLiteral(1), Info: 0},
		{Op: types.Call, Src0: tac.Label("helper")},
		{Op: types.Return},
		{Op: types.FEnd, Src0: tac.Label("main")},
	}
	blocks := optimize.Partition(stmts)
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Dump panicked on a Call statement: %v", r)
		}
	}()
	Dump(map[string][]*optimize.Block{"main": blocks})
}
