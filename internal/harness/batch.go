/*
PURPOSE:
  High-level coordinator that orchestrates the full experiment batch.
  Loops solvers -> run indices, executes each run, injects the derived
  cost/delay metric, persists per-solver result lists, reconciles solvers
  that produced nothing, and hands the corpus to the aggregator.

REQUIREMENTS:
  User-specified:
  - Run every solver the requested number of times and collect metrics.
  - No error originating from a single run or solver may terminate the
    batch.

  Implementation-discovered:
  - The executor already downgrades engine failures; this layer adds
    defense in depth for everything else (directory creation, disk I/O,
    panics outside the engine scope).

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/harness/executor.go, internal/metrics, internal/store,
    internal/output

ERROR HANDLING:
  - Run-level unexpected failures become `error` records; solver-level
    failures become `critical_error` records; both are logged to dedicated
    files and the batch continues.

IMPLEMENTATION RULES:
  - Iteration is strictly sequential, solver-major then run-minor: the
    engine configuration and the console streams are process-wide shared
    state, so concurrent runs would race on them.
  - Ratio injection: only when both cost and delay keys are present;
    zero (never a division error) when delay is non-positive.

USAGE:
  corpus, err := harness.Run(cfg, eng)

RELATED FILES:
  - internal/harness/executor.go
  - internal/metrics/aggregate.go

MAINTENANCE:
  - Update iteration logic if parallelism is ever introduced (each worker
    would need its own engine instance).
*/

package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vecsim/experiment-runner/internal/artifact"
	"github.com/vecsim/experiment-runner/internal/config"
	"github.com/vecsim/experiment-runner/internal/engine"
	"github.com/vecsim/experiment-runner/internal/metrics"
	"github.com/vecsim/experiment-runner/internal/model"
	"github.com/vecsim/experiment-runner/internal/output"
	"github.com/vecsim/experiment-runner/internal/store"
)

// BatchConfigName is the batch-level configuration record at the output
// root.
const BatchConfigName = "experiment_config.json"

// Run executes the full batch and returns the collected corpus. The error
// return covers only batch-level setup (invalid config, unusable output
// root); per-run and per-solver failures are folded into the corpus.
func Run(cfg *config.Config, eng engine.Engine) (*model.Corpus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	var fromEngine []string
	if sl, ok := eng.(engine.SolverLister); ok {
		fromEngine = sl.Solvers()
	}
	solvers := cfg.SolverIDs(fromEngine)

	spec := model.DefaultMetricSpec()
	exec := &Executor{Engine: eng, Metrics: spec}
	corpus := model.NewCorpus(solvers)

	var idx *store.RunIndex
	if cfg.RunIndex {
		var err error
		idx, err = store.Open(filepath.Join(cfg.OutputDir, store.DBName))
		if err != nil {
			output.Logger.Warn("Run index unavailable", "error", err)
		} else {
			defer idx.Close()
		}
	}

	output.Logger.Info("Starting batch",
		"solvers", len(solvers), "runs_per_solver", cfg.Runs, "slots", cfg.Slots, "output", cfg.OutputDir)

	for si, solver := range solvers {
		short := solver.Short()
		output.Logger.Info("Starting solver", "solver", string(solver), "index", si+1, "total", len(solvers))

		if err := runSolver(cfg, exec, corpus, idx, solver); err != nil {
			// SolverCriticalFailure: record it and move on to the next solver.
			output.Logger.Error("Solver failed critically", "solver", short, "error", err)
			rec := artifact.Synthesize(
				model.RunSpec{Solver: solver, Run: -1, Slots: cfg.Slots, OutputRoot: cfg.OutputDir},
				spec, err.Error(), 0, model.StatusCriticalError)
			corpus.Append(short, rec)
			indexRecord(idx, rec)
			logFailure(cfg.OutputDir, fmt.Sprintf("%s_critical_error.log", short), err)
		}

		if recs := corpus.Results[short]; len(recs) > 0 {
			path := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_summary.json", short))
			if err := output.WriteJSON(path, recs); err != nil {
				output.Logger.Error("Failed to write solver summary", "solver", short, "error", err)
			} else {
				output.Logger.Info("Saved solver summary", "solver", short, "results", len(recs), "path", path)
			}
		}
	}

	reconcile(cfg, exec, solvers)

	output.Logger.Info("Collected results", "total", corpus.Total())
	if corpus.Total() == 0 {
		output.Logger.Warn("No results collected; metric exports will be empty")
	}
	if err := metrics.Aggregate(corpus, spec, cfg.OutputDir); err != nil {
		output.Logger.Error("Metric aggregation failed", "error", err)
		logFailure(cfg.OutputDir, "error_log.txt", err)
	}

	writeBatchConfig(cfg, solvers, spec, corpus)
	output.Logger.Info("Batch complete", "output", cfg.OutputDir)
	return corpus, nil
}

// runSolver executes all runs for one solver. The returned error reports a
// solver-level panic; individual run failures never propagate this far.
func runSolver(cfg *config.Config, exec *Executor, corpus *model.Corpus, idx *store.RunIndex, solver model.SolverID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("solver %s panicked outside run scope: %v", solver.Short(), r)
		}
	}()

	short := solver.Short()
	for run := 0; run < cfg.Runs; run++ {
		spec := model.RunSpec{Solver: solver, Run: run, Slots: cfg.Slots, OutputRoot: cfg.OutputDir}
		rec := executeSafely(exec, spec)
		injectRatio(rec)
		corpus.Append(short, rec)
		indexRecord(idx, rec)
	}
	return nil
}

// executeSafely wraps Executor.Execute with a recover and converts any
// unexpected failure into a synthesized `error` record, so one run's total
// failure never prevents subsequent runs.
func executeSafely(exec *Executor, spec model.RunSpec) *model.ResultRecord {
	rec, err := func() (rec *model.ResultRecord, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("run panicked outside engine scope: %v", r)
			}
		}()
		return exec.Execute(spec)
	}()
	if err == nil {
		return rec
	}

	short := spec.Solver.Short()
	output.Logger.Error("Run failed outside the engine",
		"solver", short, "run", spec.Run+1, "error", err)
	logFailure(spec.OutputRoot, fmt.Sprintf("%s_run_%d_error.log", short, spec.Run+1), err)
	return artifact.Synthesize(spec, exec.Metrics, err.Error(), 0, model.StatusError)
}

// injectRatio computes the derived cost/delay tradeoff metric. The ratio
// is injected only when both operands are present; a non-positive delay
// yields exactly zero rather than a division error.
func injectRatio(rec *model.ResultRecord) {
	cost, okCost := rec.Metric(model.MetricKeyCost)
	delay, okDelay := rec.Metric(model.MetricKeyDelay)
	if !okCost || !okDelay {
		return
	}
	if delay > 0 {
		rec.SetMetric(model.MetricKeyRatio, cost/delay)
	} else {
		rec.SetMetric(model.MetricKeyRatio, 0)
	}
}

// reconcile re-executes run 0 for every requested solver whose run
// directories contain no artifact at all. Best-effort disk-level recovery;
// the corpus is not amended after the fact.
func reconcile(cfg *config.Config, exec *Executor, solvers []model.SolverID) {
	for _, solver := range solvers {
		short := solver.Short()
		if hasRunArtifact(cfg.OutputDir, short) {
			continue
		}
		output.Logger.Warn("No run artifact found for solver, attempting direct re-execution", "solver", short)
		spec := model.RunSpec{Solver: solver, Run: 0, Slots: cfg.Slots, OutputRoot: cfg.OutputDir}
		rec := executeSafely(exec, spec)
		output.Logger.Info("Direct re-execution finished", "solver", short, "status", string(rec.Status))
	}
}

// hasRunArtifact reports whether any of the solver's run directories holds
// a summary.json at its root.
func hasRunArtifact(outputDir, short string) bool {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return false
	}
	prefix := short + "_run_"
	for _, e := range entries {
		if !e.IsDir() || len(e.Name()) <= len(prefix) || e.Name()[:len(prefix)] != prefix {
			continue
		}
		candidate := filepath.Join(outputDir, e.Name(), artifact.SummaryName)
		if _, err := os.Stat(candidate); err == nil {
			return true
		}
	}
	return false
}

func indexRecord(idx *store.RunIndex, rec *model.ResultRecord) {
	if idx == nil {
		return
	}
	if err := idx.Insert(context.Background(), rec); err != nil {
		output.Logger.Warn("Failed to index run record", "error", err)
	}
}

// logFailure appends a timestamped failure line to a log file at the
// output root. Diagnostics only; write errors are swallowed.
func logFailure(outputDir, name string, failure error) {
	path := filepath.Join(outputDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		output.Logger.Warn("Failed to open failure log", "path", path, "error", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s - %v\n", time.Now().Format("2006-01-02 15:04:05"), failure)
}

// writeBatchConfig persists the overall batch configuration record.
func writeBatchConfig(cfg *config.Config, solvers []model.SolverID, spec model.MetricSpec, corpus *model.Corpus) {
	names := make([]string, 0, len(solvers))
	for _, s := range solvers {
		names = append(names, string(s))
	}
	metricNames := make([]string, 0, len(spec))
	for _, m := range spec {
		metricNames = append(metricNames, m.Name)
	}
	record := map[string]any{
		"num_solvers":              len(solvers),
		"solvers":                  names,
		"num_runs_per_solver":      cfg.Runs,
		"num_slots_per_experiment": cfg.Slots,
		"total_runs":               len(solvers) * cfg.Runs,
		"total_results_collected":  corpus.Total(),
		"output_dir":               cfg.OutputDir,
		"metrics_collected":        metricNames,
		"timestamp":                time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := output.WriteJSON(filepath.Join(cfg.OutputDir, BatchConfigName), record); err != nil {
		output.Logger.Error("Failed to write batch config", "error", err)
	}
}
