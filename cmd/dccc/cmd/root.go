package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "dccc",
	Short: "Decaf backend compiler driver",
	Long: `dccc drives the Decaf backend over a JSON AST fixture: semantic
analysis, TAC lowering, the basic-block optimizer, and the x86-64/IA-32
target emitter.

There is no lexer or parser in this pipeline; the input is already an AST,
encoded as the JSON fixture format that internal/ast's DecodeProgram reads.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
}
