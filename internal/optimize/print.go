package optimize

import (
	"fmt"
	"strings"
)

// Print renders a human-readable dump of a function's blocks and the
// adjacency matrix of its CFG, backing the `--blocks` output toggle.
func Print(fn string, cfg *CFG) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s (%d blocks)\n", fn, cfg.N)
	for i, blk := range cfg.Blocks {
		fmt.Fprintf(&b, "block %d:\n", i)
		for _, s := range blk.Stmts {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}
	if cfg.N == 0 {
		return b.String()
	}
	b.WriteString("adjacency matrix (row = block, 1 = successor mark, 2 = predecessor mark):\n    ")
	for c := 0; c < cfg.N; c++ {
		fmt.Fprintf(&b, "%3d", c)
	}
	b.WriteByte('\n')
	for r := 0; r < cfg.N; r++ {
		fmt.Fprintf(&b, "%3d ", r)
		for c := 0; c < cfg.N; c++ {
			fmt.Fprintf(&b, "%3d", cfg.Adj[r*cfg.N+c])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
