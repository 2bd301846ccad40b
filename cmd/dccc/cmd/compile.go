package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dcc/internal/ast"
	"dcc/internal/codegen"
	"dcc/internal/ctx"
	"dcc/internal/llvmdump"
	"dcc/internal/optimize"
	"dcc/internal/semantic"
	"dcc/internal/tac"
)

var (
	outputFile     string
	optAll         bool
	optConstFold   bool
	optAlgebraic   bool
	optCSE         bool
	optCopyProp    bool
	optDeadCode    bool
	optGlobalCSE   bool
	emitIR         bool
	emitBlocks     bool
	targetFlag     string
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [fixture.json]",
	Short: "Compile a JSON AST fixture to assembly",
	Long: `compile reads a JSON-encoded Decaf AST, runs semantic analysis and
TAC lowering, applies the requested optimizer passes, and emits assembly.

Examples:
  dccc compile prog.json
  dccc compile prog.json --opt-all -o prog.s
  dccc compile prog.json --ir --blocks
  dccc compile prog.json --target ia32`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().BoolVar(&optAll, "opt-all", false, "enable every intra-block optimizer pass")
	compileCmd.Flags().BoolVar(&optConstFold, "opt-constant-folding", false, "enable constant folding/propagation")
	compileCmd.Flags().BoolVar(&optAlgebraic, "opt-algebraic-simp", false, "enable algebraic simplification")
	compileCmd.Flags().BoolVar(&optCSE, "opt-cse", false, "enable local common-subexpression elimination")
	compileCmd.Flags().BoolVar(&optCopyProp, "opt-copy-prop", false, "enable copy propagation")
	compileCmd.Flags().BoolVar(&optDeadCode, "opt-dead-code-elim", false, "enable dead-code elimination")
	compileCmd.Flags().BoolVar(&optGlobalCSE, "opt-global-cse", false, "run the cross-block CSE definitions hook")
	compileCmd.Flags().BoolVar(&emitIR, "ir", false, "print the unoptimized TAC stream to stderr")
	compileCmd.Flags().BoolVar(&emitBlocks, "blocks", false, "print each function's basic blocks and CFG adjacency matrix to stderr")
	compileCmd.Flags().StringVar(&targetFlag, "target", "x86-64", "emitter target: x86-64 or ia32")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func resolveMask() optimize.Mask {
	if optAll {
		return optimize.All
	}
	var m optimize.Mask
	if optConstFold {
		m |= optimize.ConstantFolding
	}
	if optAlgebraic {
		m |= optimize.AlgebraicSimp
	}
	if optCSE {
		m |= optimize.CSE
	}
	if optCopyProp {
		m |= optimize.CopyProp
	}
	if optDeadCode {
		m |= optimize.DeadCodeElim
	}
	return m
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	prog, err := ast.DecodeProgram(data)
	if err != nil {
		return fmt.Errorf("failed to decode AST fixture: %w", err)
	}

	c := ctx.New(filename)
	if !semantic.Run(c, prog) {
		fmt.Fprint(os.Stderr, c.Sink.Format(nil))
		return fmt.Errorf("semantic analysis failed with %d error(s)", len(c.Sink.Diagnostics()))
	}

	lowered := tac.Lower(c, prog)

	if emitIR {
		for _, s := range lowered.Stmts {
			fmt.Fprintln(os.Stderr, s.String())
		}
	}

	allBlocks := optimize.Partition(lowered.Stmts)
	funcBlocks := optimize.FunctionBlocks(allBlocks)
	mask := resolveMask()

	var final []tac.Stmt
	for _, b := range allBlocks {
		final = append(final, b.Stmts...)
	}
	if mask != 0 {
		optimize.Optimize(allBlocks, mask)
		final = nil
		for _, b := range allBlocks {
			final = append(final, b.Stmts...)
		}
	}

	if emitBlocks {
		for fn, blocks := range funcBlocks {
			cfg := optimize.BuildCFG(blocks)
			fmt.Fprintln(os.Stderr, optimize.Print(fn, cfg))
		}
	}

	if optGlobalCSE {
		for fn, blocks := range funcBlocks {
			defs := optimize.GlobalCSEDefinitions(blocks)
			if compileVerbose {
				fmt.Fprintf(os.Stderr, "global-cse definitions for %s: %d blocks\n", fn, len(defs))
			}
		}
		if compileVerbose {
			fmt.Fprintln(os.Stderr, llvmdump.Dump(funcBlocks))
		}
	}

	lowered.Stmts = final

	var target codegen.Target
	if strings.EqualFold(targetFlag, "ia32") {
		target = codegen.IA32
	} else {
		target = codegen.X86_64
	}

	asm := codegen.Emit(lowered, filename, target)

	if outputFile == "" {
		fmt.Print(asm)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(asm), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputFile, err)
	}
	if compileVerbose {
		fmt.Fprintf(os.Stderr, "wrote %s\n", outputFile)
	}
	return nil
}
