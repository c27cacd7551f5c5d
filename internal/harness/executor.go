/*
PURPOSE:
  Executes one (solver, run-index) experiment: retarget the engine at the
  run, capture its console output, invoke the entry point exactly once, and
  turn whatever happened into a normalized result record.

REQUIREMENTS:
  User-specified:
  - A single run's failure must never abort the batch; engine errors are
    downgraded to status-tagged records plus persisted diagnostics.
  - Captured console output is persisted regardless of outcome.
  - The returned record always carries the run's own solver identifier and
    run index, overwriting whatever the engine wrote.

  Implementation-discovered:
  - The engine may panic rather than return an error; both count as
    EngineFailure and both leave the session's restore guarantee intact.
  - A missing-but-expected artifact (engine returned, nothing found) is
    partial_results; an engine failure is error; a corrupt artifact is
    logged distinctly but aggregated like a missing one.

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness/batch.go, internal/cli (run-solver cmd)
  - Uses: internal/engine (Session, Capture), internal/artifact,
    internal/output

ERROR HANDLING:
  - Execute returns an error only for infrastructure failures before the
    engine was involved (run directory creation); everything downstream is
    folded into the record.

IMPLEMENTATION RULES:
  - Session release and capture restoration sit in defers; no exit path
    skips them.

USAGE:
  x := &harness.Executor{Engine: eng, Metrics: model.DefaultMetricSpec()}
  rec, err := x.Execute(spec)

RELATED FILES:
  - internal/harness/batch.go
  - internal/artifact/resolver.go

MAINTENANCE:
  - Keep the per-run artifact names in sync with the notebook consumers.
*/

package harness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/vecsim/experiment-runner/internal/artifact"
	"github.com/vecsim/experiment-runner/internal/engine"
	"github.com/vecsim/experiment-runner/internal/model"
	"github.com/vecsim/experiment-runner/internal/output"
)

// Per-run artifact names.
const (
	ConsoleOutputName = "console_output.txt"
	ErrorFileName     = "error.txt"
	RunConfigName     = "experiment_config.json"
)

// Executor performs single experiment runs against one engine instance.
type Executor struct {
	Engine  engine.Engine
	Metrics model.MetricSpec
}

// Execute performs one run and returns its normalized record. The error
// return covers only infrastructure failures (the batch coordinator
// converts those into synthesized records); engine failures never surface
// as errors here.
func (x *Executor) Execute(spec model.RunSpec) (*model.ResultRecord, error) {
	runDir := spec.RunDir()
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", runDir, err)
	}

	rl, err := output.OpenRunLog(runDir)
	if err != nil {
		output.Logger.Warn("Run log unavailable", "run_dir", runDir, "error", err)
	}
	defer rl.Close()
	rl.Printf("starting solver: %s", spec.Solver)
	rl.Printf("run index: %d", spec.Run+1)
	rl.Printf("slots: %d", spec.Slots)

	snapshot := map[string]any{
		"solver":     string(spec.Solver),
		"run":        spec.Run + 1,
		"slots":      spec.Slots,
		"output_dir": runDir,
		"timestamp":  time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := output.WriteJSON(filepath.Join(runDir, RunConfigName), snapshot); err != nil {
		output.Logger.Warn("Failed to write run config snapshot", "error", err)
	}

	start := time.Now()
	engineErr := x.invoke(spec, runDir, rl)
	elapsed := time.Since(start).Seconds()

	if rec := x.resolve(spec, runDir, rl); rec != nil {
		rec.Solver = string(spec.Solver)
		rec.Run = spec.Run + 1
		if rec.Slots == 0 {
			rec.Slots = spec.Slots
		}
		if rec.Status == "" {
			rec.Status = model.StatusCompleted
		}
		rl.Printf("run finished with status: %s", rec.Status)
		return rec, nil
	}

	status := model.StatusPartialResults
	reason := "Experiment completed but no full summary available"
	if engineErr != nil {
		status = model.StatusError
		reason = engineErr.Error()
	}
	rec := artifact.Synthesize(spec, x.Metrics, reason, elapsed, status)
	x.persistFallback(spec, runDir, rec, reason)
	rl.Printf("synthesized fallback record with status: %s", status)
	return rec, nil
}

// invoke runs the engine entry point once inside a session and console
// capture scope. Panics are recovered and reported as engine failures.
func (x *Executor) invoke(spec model.RunSpec, runDir string, rl *output.RunLog) error {
	sess, err := engine.Acquire(x.Engine, spec)
	if err != nil {
		rl.Printf("session acquisition failed: %v", err)
		return err
	}
	defer sess.Release()

	capture, capErr := engine.OpenCapture()
	if capErr != nil {
		output.Logger.Warn("Console capture unavailable, running uncaptured", "error", capErr)
	} else {
		defer capture.Release() // idempotent; covers any exit path below
	}

	var stack []byte
	runErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack = debug.Stack()
				err = fmt.Errorf("engine panicked: %v", r)
			}
		}()
		return x.Engine.Main()
	}()

	if capture != nil {
		capture.Release()
		path := filepath.Join(runDir, ConsoleOutputName)
		if werr := os.WriteFile(path, []byte(capture.Sections()), 0644); werr != nil {
			output.Logger.Warn("Failed to persist console output", "error", werr)
		}
	}

	if runErr != nil {
		rl.Printf("engine entry point failed: %v", runErr)
		output.Logger.Error("Engine entry point failed",
			"solver", spec.Solver.Short(), "run", spec.Run+1, "error", runErr)
		body := "Error: " + runErr.Error() + "\n"
		if stack != nil {
			body += "\nTraceback:\n" + string(stack)
		}
		if werr := os.WriteFile(filepath.Join(runDir, ErrorFileName), []byte(body), 0644); werr != nil {
			output.Logger.Warn("Failed to persist error artifact", "error", werr)
		}
		return runErr
	}

	rl.Printf("engine entry point completed")
	return nil
}

// resolve consults the artifact resolver against the run directory and
// returns the normalized record, or nil when the run must fall back to a
// synthesized one.
func (x *Executor) resolve(spec model.RunSpec, runDir string, rl *output.RunLog) *model.ResultRecord {
	found, err := artifact.Find(runDir)
	if err != nil {
		output.Logger.Warn("Artifact search failed", "run_dir", runDir, "error", err)
		return nil
	}
	if found == "" {
		rl.Printf("no %s found under run directory", artifact.SummaryName)
		return nil
	}
	rl.Printf("found artifact: %s", found)

	rec, err := artifact.Normalize(found, runDir)
	if err != nil {
		if errors.Is(err, artifact.ErrCorrupt) {
			// Corrupt is aggregated like missing but logged distinctly.
			output.Logger.Error("Result artifact corrupt",
				"solver", spec.Solver.Short(), "run", spec.Run+1, "error", err)
			rl.Printf("artifact corrupt: %v", err)
		} else {
			output.Logger.Warn("Artifact normalization failed", "error", err)
			rl.Printf("artifact normalization failed: %v", err)
		}
		return nil
	}
	return rec
}

// persistFallback writes the synthesized record plus a diagnostic listing
// of what the run directory actually contains.
func (x *Executor) persistFallback(spec model.RunSpec, runDir string, rec *model.ResultRecord, reason string) {
	if err := output.WriteJSON(filepath.Join(runDir, artifact.BasicSummaryName), rec); err != nil {
		output.Logger.Warn("Failed to write fallback summary", "error", err)
	}
	diag := map[string]any{
		"solver":          string(spec.Solver),
		"run":             spec.Run + 1,
		"num_slots":       spec.Slots,
		"error":           reason,
		"available_files": listFiles(runDir),
		"timestamp":       time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := output.WriteJSON(filepath.Join(runDir, artifact.ErrorSummaryName), diag); err != nil {
		output.Logger.Warn("Failed to write error summary", "error", err)
	}
}

// listFiles returns every file under dir, relative to it, sorted by the
// walk order. Used for failure diagnostics only.
func listFiles(dir string) []string {
	files := []string{}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			rel = path
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files
}
