// Package config holds the compiler's programmatic settings: which
// optimizer passes run, which debug dumps are produced, and which ISA the
// emitter targets. cmd/dccc keeps its settings in its own flag variables
// and does not use this struct; callers embedding the compiler as a library
// can build one directly or load it from YAML.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"dcc/internal/codegen"
	"dcc/internal/optimize"
)

// Config is the full set of knobs the pipeline consults between semantic
// analysis and assembly emission.
type Config struct {
	// Opt selects which intra-block optimizer passes run, and in what
	// combination; see optimize.Mask.
	Opt optimize.Mask `yaml:"optimizations"`

	// GlobalCSE additionally runs the cross-block definitions hook
	// (optimize.GlobalCSEDefinitions) after the intra-block passes.
	GlobalCSE bool `yaml:"globalCSE"`

	// EmitIR, when set, asks the driver to also print the unoptimized TAC
	// stream (the `--ir` output toggle).
	EmitIR bool `yaml:"emitIR"`

	// EmitBlocks asks the driver to print each function's basic-block
	// partition and CFG adjacency matrix (the `--blocks` output toggle).
	EmitBlocks bool `yaml:"emitBlocks"`

	// Target selects the emitted instruction set.
	Target codegen.Target `yaml:"target"`
}

// Default returns the pipeline's out-of-the-box configuration: every
// intra-block pass enabled, global CSE and debug dumps off, x86-64 output.
func Default() *Config {
	return &Config{
		Opt:       optimize.All,
		GlobalCSE: false,
		Target:    codegen.X86_64,
	}
}

// Load reads a YAML configuration file and overlays it on Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// yamlTarget is the on-disk representation of codegen.Target, since the
// enum's int value isn't a stable or readable YAML encoding.
type yamlTarget string

const (
	yamlX86_64 yamlTarget = "x86-64"
	yamlIA32   yamlTarget = "ia32"
)

// UnmarshalYAML lets Target appear in config files as "x86-64"/"ia32"
// instead of a bare integer.
func (c *Config) UnmarshalYAML(b []byte) error {
	type alias struct {
		Opt        []string   `yaml:"optimizations"`
		GlobalCSE  bool       `yaml:"globalCSE"`
		EmitIR     bool       `yaml:"emitIR"`
		EmitBlocks bool       `yaml:"emitBlocks"`
		Target     yamlTarget `yaml:"target"`
	}
	var a alias
	if err := yaml.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Opt) > 0 {
		c.Opt = parseMask(a.Opt)
	}
	c.GlobalCSE = a.GlobalCSE
	c.EmitIR = a.EmitIR
	c.EmitBlocks = a.EmitBlocks
	if a.Target == yamlIA32 {
		c.Target = codegen.IA32
	} else {
		c.Target = codegen.X86_64
	}
	return nil
}

var maskNames = map[string]optimize.Mask{
	"constant-folding": optimize.ConstantFolding,
	"algebraic-simp":   optimize.AlgebraicSimp,
	"cse":              optimize.CSE,
	"copy-prop":        optimize.CopyProp,
	"dead-code-elim":   optimize.DeadCodeElim,
	"all":              optimize.All,
}

func parseMask(names []string) optimize.Mask {
	var m optimize.Mask
	for _, n := range names {
		m |= maskNames[n]
	}
	return m
}
