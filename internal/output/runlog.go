/*
PURPOSE:
  Append-only per-run experiment log with timestamped lines.
  Each run directory gets one experiment_log.txt recording the run's
  lifecycle for post-mortem inspection.

REQUIREMENTS:
  User-specified:
  - Human-readable, timestamped, append-only.

  Implementation-discovered:
  - Logging must never fail the run; write errors are swallowed after a
    single harness-level warning.

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness
  - Writes into: <run_dir>/experiment_log.txt

ERROR HANDLING:
  - Open errors are returned; subsequent write errors degrade to a warning.

IMPLEMENTATION RULES:
  - One line per event, "2006-01-02 15:04:05 - message" format.

USAGE:
  rl, err := output.OpenRunLog(runDir)
  rl.Printf("starting solver %s", name)
  rl.Close()

RELATED FILES:
  - internal/harness/executor.go

MAINTENANCE:
  - None.
*/

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunLogName is the per-run log file name.
const RunLogName = "experiment_log.txt"

// RunLog is an append-only timestamped text log for one run directory.
type RunLog struct {
	file *os.File
}

// OpenRunLog opens (creating or appending) the run log in dir.
func OpenRunLog(dir string) (*RunLog, error) {
	f, err := os.OpenFile(filepath.Join(dir, RunLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log in %s: %w", dir, err)
	}
	return &RunLog{file: f}, nil
}

// Printf appends one timestamped line. Write failures are reported to the
// harness logger but never propagate; a broken log must not fail the run.
func (rl *RunLog) Printf(format string, args ...any) {
	if rl == nil || rl.file == nil {
		return
	}
	line := fmt.Sprintf("%s - %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
	if _, err := rl.file.WriteString(line); err != nil {
		Logger.Warn("Failed to append to run log", "error", err)
	}
}

// Close closes the underlying file.
func (rl *RunLog) Close() error {
	if rl == nil || rl.file == nil {
		return nil
	}
	return rl.file.Close()
}
