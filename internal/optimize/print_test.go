package optimize

import (
	"strings"
	"testing"

	"dcc/internal/tac"
	"dcc/internal/types"
)

func TestPrintContainsFunctionAndBlockHeaders(t *testing.T) {
	stmts := []tac.Stmt{
		{Op: types.FBegin, Src0: tac.Label("main")},
		{Op: types.Return},
	}
	blocks := Partition(stmts)
	cfg := BuildCFG(blocks)
	out := Print("main", cfg)
	if !strings.Contains(out, "function main") {
		t.Errorf("Print output missing function header: %q", out)
	}
	if !strings.Contains(out, "block 0:") {
		t.Errorf("Print output missing block header: %q", out)
	}
}

func TestPrintHandlesEmptyCFG(t *testing.T) {
	cfg := BuildCFG(nil)
	out := Print("empty", cfg)
	if !strings.Contains(out, "function empty (0 blocks)") {
		t.Errorf("unexpected output for an empty CFG: %q", out)
	}
}
