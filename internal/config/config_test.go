package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vecsim/experiment-runner/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Runs != 20 {
		t.Errorf("Runs = %d, want 20", cfg.Runs)
	}
	if cfg.Slots != 50 {
		t.Errorf("Slots = %d, want 50", cfg.Slots)
	}
	if cfg.OutputDir != "multiple_experiment_results" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if !cfg.RunIndex {
		t.Error("RunIndex should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	body := `runs: 3
slots: 10
output_dir: out
solvers:
  - solvers.OLMA.OLMA_Solver
  - solvers.OORAA.OORAA_Solver
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runs != 3 || cfg.Slots != 10 || cfg.OutputDir != "out" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Solvers) != 2 || cfg.Solvers[1] != "solvers.OORAA.OORAA_Solver" {
		t.Errorf("Solvers = %v", cfg.Solvers)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	if err := os.WriteFile(path, []byte("runs: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runs != 5 {
		t.Errorf("Runs = %d, want 5", cfg.Runs)
	}
	if cfg.Slots != 50 || cfg.OutputDir != "multiple_experiment_results" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badYAML, []byte("runs: [not an int\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(badYAML); err == nil {
		t.Error("expected parse error")
	}

	badValues := filepath.Join(dir, "values.yaml")
	if err := os.WriteFile(badValues, []byte("runs: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(badValues); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicitly named missing file should error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{Runs: 1, Slots: 1, OutputDir: "x"}, true},
		{"zero runs", Config{Runs: 0, Slots: 1, OutputDir: "x"}, false},
		{"zero slots", Config{Runs: 1, Slots: 0, OutputDir: "x"}, false},
		{"empty output dir", Config{Runs: 1, Slots: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestSolverIDs(t *testing.T) {
	explicit := Config{Solvers: []string{"a.b.C"}}
	if ids := explicit.SolverIDs([]string{"x.y.Z"}); len(ids) != 1 || ids[0] != "a.b.C" {
		t.Errorf("explicit list ignored: %v", ids)
	}

	var empty Config
	if ids := empty.SolverIDs([]string{"x.y.Z"}); len(ids) != 1 || ids[0] != "x.y.Z" {
		t.Errorf("engine list ignored: %v", ids)
	}

	if ids := empty.SolverIDs(nil); len(ids) != len(model.DefaultSolvers()) {
		t.Errorf("built-in fallback missing: %v", ids)
	}
}
