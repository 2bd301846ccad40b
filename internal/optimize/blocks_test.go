package optimize

import (
	"testing"

	"dcc/internal/tac"
	"dcc/internal/types"
)

func TestPartitionSplitsOnLabelsAndJumps(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.Mov, Dst: tac.Ident("a", false)},
		{Op: types.Jump, Dst: tac.Label("L1")},
		{Op: types.Label, Dst: tac.Label("L1")},
		{Op: types.Return},
	}
	blocks := Partition(stmts)
	if len(blocks) != 3 {
		t.Fatalf("len(blocks) = %d, want 3: %+v", len(blocks), blocks)
	}
	if len(blocks[0].Stmts) != 2 {
		t.Errorf("block 0 should contain the Mov+Jump leader pair, got %d stmts", len(blocks[0].Stmts))
	}
	if blocks[1].Stmts[0].Op != types.Label {
		t.Errorf("block 1 should start with the Label, got %+v", blocks[1].Stmts[0])
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	if blocks := Partition(nil); blocks != nil {
		t.Errorf("Partition(nil) = %v, want nil", blocks)
	}
}

func TestBuildCFGJumpEdge(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.Jump, Dst: tac.Label("L1")},
		{Op: types.Label, Dst: tac.Label("L1")},
		{Op: types.Return},
	}
	blocks := Partition(stmts)
	cfg := BuildCFG(blocks)
	if cfg.N != len(blocks) {
		t.Fatalf("cfg.N = %d, want %d", cfg.N, len(blocks))
	}
	if cfg.Adj[0*cfg.N+1] != 1 {
		t.Errorf("expected block 0 -> block 1 successor edge, adj = %v", cfg.Adj)
	}
}

func TestBuildCFGReturnHasNoSuccessor(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.Return},
		{Op: types.Label, Dst: tac.Label("unreachable")},
		{Op: types.Return},
	}
	blocks := Partition(stmts)
	cfg := BuildCFG(blocks)
	for c := 0; c < cfg.N; c++ {
		if cfg.Adj[0*cfg.N+c] == 1 {
			t.Errorf("a Return block must not record a successor edge, found one to block %d", c)
		}
	}
}

func TestFunctionBlocksGroupsByFBeginLabel(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.FBegin, Src0: tac.Label("main")},
		{Op: types.Return},
		{Op: types.FEnd, Src0: tac.Label("main")},
		{Op: types.FBegin, Src0: tac.Label("helper")},
		{Op: types.Return},
	}
	blocks := Partition(stmts)
	fb := FunctionBlocks(blocks)
	if len(fb) != 2 {
		t.Fatalf("len(FunctionBlocks()) = %d, want 2: %+v", len(fb), fb)
	}
	if _, ok := fb["main"]; !ok {
		t.Error("expected a \"main\" function group")
	}
	if _, ok := fb["helper"]; !ok {
		t.Error("expected a \"helper\" function group")
	}
}
