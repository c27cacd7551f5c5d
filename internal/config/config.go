/*
PURPOSE:
  Defines the configuration structure and loading logic for the experiment
  runner. Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of run count, slot horizon, output directory, and
    the solver list.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Defaults must match the engine's own conventions so a bare invocation
    works.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/harness
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing config file is not an error; defaults apply.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (20 runs, 50 slots).

USAGE:
  cfg, err := config.Load("experiment_runner.yaml")

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vecsim/experiment-runner/internal/model"
)

// Config represents the full configuration for a batch of experiments.
type Config struct {
	// Runs is the number of repetitions per solver.
	Runs int `yaml:"runs"`
	// Slots is the simulation horizon length for every run.
	Slots int `yaml:"slots"`
	// OutputDir is the root directory for all batch artifacts.
	OutputDir string `yaml:"output_dir"`
	// Solvers is the list of fully-qualified solver names to evaluate.
	// Empty means: ask the engine, then fall back to the built-in list.
	Solvers []string `yaml:"solvers"`
	// RunIndex enables the SQLite run index at <output_dir>/runs.db.
	RunIndex bool `yaml:"run_index"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runs:      20,
		Slots:     50,
		OutputDir: "multiple_experiment_results",
		RunIndex:  true,
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		defaults := []string{"experiment_runner.yaml", "runner.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the harness cannot run with.
func (c *Config) Validate() error {
	if c.Runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", c.Runs)
	}
	if c.Slots <= 0 {
		return fmt.Errorf("slots must be positive, got %d", c.Slots)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}

// SolverIDs resolves the configured solver list, falling back to the given
// engine-advertised list and then to the built-in defaults.
func (c *Config) SolverIDs(fromEngine []string) []model.SolverID {
	names := c.Solvers
	if len(names) == 0 {
		names = fromEngine
	}
	if len(names) == 0 {
		return model.DefaultSolvers()
	}
	ids := make([]model.SolverID, 0, len(names))
	for _, n := range names {
		ids = append(ids, model.SolverID(n))
	}
	return ids
}
