/*
PURPOSE:
  Built-in reference simulation engine. A small deterministic queueing
  model that makes the harness usable end-to-end without an external
  engine, and gives tests a realistic collaborator: it consults its own
  configuration, prints progress to the console, and writes summary.json
  into a nested per-solver directory.

REQUIREMENTS:
  User-specified:
  - Implement the engine boundary: configuration triple + blocking Main.

  Implementation-discovered:
  - Per-solver cost/delay characteristics come from a fixed profile table;
    per-slot jitter is derived from an FNV hash of (solver, slot) so runs
    are reproducible without shared RNG state.
  - The artifact is deliberately written one level below the configured
    output directory, mirroring real engines whose file placement the
    resolver exists to absorb.

ARCHITECTURE INTEGRATION:
  - Implements: internal/engine.Engine, internal/engine.SolverLister
  - Used by: internal/cli (default engine), package tests.

ERROR HANDLING:
  - Main returns an error for an unusable configuration or an unknown
    solver; artifact write failures propagate.

IMPLEMENTATION RULES:
  - No goroutines, no wall-clock dependence in the metric values.

USAGE:
  eng := sim.New()
  corpus, err := harness.Run(cfg, eng)

RELATED FILES:
  - internal/engine/engine.go
  - internal/harness/batch.go

MAINTENANCE:
  - Extend the profile table when adding reference solvers.
*/

package sim

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vecsim/experiment-runner/internal/engine"
	"github.com/vecsim/experiment-runner/internal/model"
	"github.com/vecsim/experiment-runner/internal/output"
)

// profile describes one reference solver's steady-state behavior.
type profile struct {
	baseCost    float64 // per-slot system cost
	baseDelay   float64 // end-to-end delay, ms-scale units
	queueFactor float64 // backlog sensitivity
	decisionMS  float64 // per-slot decision latency
}

var profiles = map[string]profile{
	"OLMA_Solver":             {baseCost: 14.2, baseDelay: 2.1, queueFactor: 0.55, decisionMS: 3.8},
	"NOMA_VEC_Solver":         {baseCost: 17.9, baseDelay: 2.9, queueFactor: 0.74, decisionMS: 1.6},
	"A3C_GCN_Seq2Seq_Adapter": {baseCost: 16.1, baseDelay: 2.4, queueFactor: 0.62, decisionMS: 11.3},
	"OORAA_Solver":            {baseCost: 15.4, baseDelay: 2.6, queueFactor: 0.68, decisionMS: 2.9},
	"BARGAIN_MATCH_Solver":    {baseCost: 15.0, baseDelay: 2.3, queueFactor: 0.59, decisionMS: 6.4},
}

// Engine is the reference simulation engine.
type Engine struct {
	cfg engine.Config
}

// New returns a reference engine with its own default configuration.
func New() *Engine {
	solvers := make([]string, 0, len(model.DefaultSolvers()))
	for _, s := range model.DefaultSolvers() {
		solvers = append(solvers, string(s))
	}
	return &Engine{cfg: engine.Config{
		OutDir:  "results",
		Slots:   50,
		Solvers: solvers,
	}}
}

// Config returns the engine's live configuration triple.
func (e *Engine) Config() *engine.Config {
	return &e.cfg
}

// Solvers enumerates the reference solver set.
func (e *Engine) Solvers() []string {
	solvers := make([]string, 0, len(model.DefaultSolvers()))
	for _, s := range model.DefaultSolvers() {
		solvers = append(solvers, string(s))
	}
	return solvers
}

// Main runs one simulation per configured solver and writes each solver's
// summary.json under a nested directory below OutDir.
func (e *Engine) Main() error {
	if e.cfg.Slots <= 0 {
		return fmt.Errorf("sim: slots must be positive, got %d", e.cfg.Slots)
	}
	if len(e.cfg.Solvers) == 0 {
		return fmt.Errorf("sim: no solvers configured")
	}

	for _, name := range e.cfg.Solvers {
		short := model.SolverID(name).Short()
		prof, ok := profiles[short]
		if !ok {
			return fmt.Errorf("sim: unknown solver %q", name)
		}
		fmt.Printf("simulating %s over %d slots\n", name, e.cfg.Slots)

		start := time.Now()
		summary := e.simulate(name, prof)
		summary["solver"] = name
		summary["num_slots"] = e.cfg.Slots
		summary["sim_seconds"] = time.Since(start).Seconds()

		dir := filepath.Join(e.cfg.OutDir, strings.ReplaceAll(name, ".", "_"))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("sim: failed to create solver directory: %w", err)
		}
		if err := output.WriteJSON(filepath.Join(dir, "summary.json"), summary); err != nil {
			return fmt.Errorf("sim: failed to write summary: %w", err)
		}
		fmt.Printf("wrote summary for %s\n", short)
	}
	return nil
}

// simulate walks the slot horizon accumulating cost, delay, and backlog
// from the solver's profile plus hash-derived jitter.
func (e *Engine) simulate(name string, prof profile) map[string]any {
	var totalCost, totalDelay, totalQueue, totalDecision float64
	queue := 0.0
	for slot := 0; slot < e.cfg.Slots; slot++ {
		j := jitter(name, slot)
		arrivals := 1.0 + j            // offered load this slot
		served := 1.0 / prof.baseDelay // service capacity
		queue += arrivals - served
		if queue < 0 {
			queue = 0
		}
		totalQueue += queue
		totalCost += prof.baseCost * arrivals
		totalDelay += prof.baseDelay * (1 + prof.queueFactor*queue)
		totalDecision += prof.decisionMS * (1 + j/4)
	}

	n := float64(e.cfg.Slots)
	return map[string]any{
		"C_mean":               totalCost / n,
		"avg_delay_mean":       totalDelay / n,
		"Avg_queue":            totalQueue / n,
		"DecisionTime_ms_mean": totalDecision / n,
	}
}

// jitter returns a deterministic value in [-0.25, 0.25) for a
// (solver, slot) pair.
func jitter(name string, slot int) float64 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s/%d", name, slot)
	return (float64(h.Sum32()%1000)/1000.0 - 0.5) / 2
}
