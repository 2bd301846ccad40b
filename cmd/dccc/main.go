// Command dccc drives the compiler backend over a JSON AST fixture: it
// decodes the tree, runs semantic analysis, lowers to TAC, optimizes, and
// emits assembly or one of the debug dumps.
package main

import (
	"fmt"
	"os"

	"dcc/cmd/dccc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
