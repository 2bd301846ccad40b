package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"

	"dcc/internal/codegen"
	"dcc/internal/optimize"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Opt != optimize.All {
		t.Errorf("Default().Opt = %v, want optimize.All", c.Opt)
	}
	if c.GlobalCSE {
		t.Error("Default().GlobalCSE should be false")
	}
	if c.Target != codegen.X86_64 {
		t.Errorf("Default().Target = %v, want codegen.X86_64", c.Target)
	}
}

func TestUnmarshalYAMLParsesPassNamesAndTarget(t *testing.T) {
	src := "optimizations:\n  - constant-folding\n  - cse\nglobalCSE: true\ntarget: ia32\n"
	var c Config
	if err := yaml.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if c.Opt&optimize.ConstantFolding == 0 || c.Opt&optimize.CSE == 0 {
		t.Errorf("expected ConstantFolding|CSE in mask, got %v", c.Opt)
	}
	if c.Opt&optimize.AlgebraicSimp != 0 {
		t.Errorf("did not request algebraic-simp, but mask has it set: %v", c.Opt)
	}
	if !c.GlobalCSE {
		t.Error("expected GlobalCSE to be true")
	}
	if c.Target != codegen.IA32 {
		t.Errorf("Target = %v, want codegen.IA32", c.Target)
	}
}

func TestUnmarshalYAMLDefaultsTargetToX86_64(t *testing.T) {
	var c Config
	if err := yaml.Unmarshal([]byte("globalCSE: false\n"), &c); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if c.Target != codegen.X86_64 {
		t.Errorf("Target = %v, want codegen.X86_64 when unspecified", c.Target)
	}
}

func TestLoadOverlaysFileOnDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dccc.yaml")
	if err := os.WriteFile(path, []byte("target: ia32\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Target != codegen.IA32 {
		t.Errorf("Target = %v, want codegen.IA32", c.Target)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error loading a missing config file")
	}
}
