/*
PURPOSE:
  Scoped mutation of the shared engine configuration for exactly one run,
  with guaranteed restoration of the prior values on every exit path.

REQUIREMENTS:
  User-specified:
  - Snapshot {output dir, slots, active solvers} on acquire, overwrite with
    the run's values, restore on release even when the enclosed call
    panics.

  Implementation-discovered:
  - Release must be idempotent so it can sit in a defer next to explicit
    cleanup paths.
  - The solver-list snapshot must be a copy; the engine may mutate the
    slice it was handed.

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness/executor.go
  - Mutates: engine.Config (shared state; see concurrency note below).

ERROR HANDLING:
  - Acquire validates the run spec; Release cannot fail.

IMPLEMENTATION RULES:
  - Sessions are not reentrant and must not be nested: execution is
    strictly sequential, solver-major then run-minor. Parallel workers
    would need their own engine instance or a mutex around Acquire.

USAGE:
  sess, err := engine.Acquire(eng, spec)
  defer sess.Release()

RELATED FILES:
  - internal/engine/engine.go

MAINTENANCE:
  - Revisit if the engine ever grows per-call parameters.
*/

package engine

import (
	"fmt"

	"github.com/vecsim/experiment-runner/internal/model"
)

// Session holds the configuration snapshot for one run. Acquire overwrites
// the engine's triple from the run spec; Release puts the snapshot back.
type Session struct {
	cfg      *Config
	snapshot Config
	released bool
}

// Acquire snapshots the engine's configuration and retargets it at the
// given run: the run's output directory, its slot horizon, and a singleton
// active-solver list.
func Acquire(eng Engine, spec model.RunSpec) (*Session, error) {
	if spec.Slots <= 0 {
		return nil, fmt.Errorf("session: slots must be positive, got %d", spec.Slots)
	}
	if spec.Solver == "" {
		return nil, fmt.Errorf("session: empty solver identifier")
	}

	cfg := eng.Config()
	if cfg == nil {
		return nil, fmt.Errorf("session: engine returned nil config")
	}

	s := &Session{
		cfg: cfg,
		snapshot: Config{
			OutDir:  cfg.OutDir,
			Slots:   cfg.Slots,
			Solvers: append([]string(nil), cfg.Solvers...),
		},
	}

	cfg.OutDir = spec.RunDir()
	cfg.Slots = spec.Slots
	cfg.Solvers = []string{string(spec.Solver)}
	return s, nil
}

// Release restores the snapshotted configuration. Safe to call more than
// once; only the first call restores.
func (s *Session) Release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	s.cfg.OutDir = s.snapshot.OutDir
	s.cfg.Slots = s.snapshot.Slots
	s.cfg.Solvers = s.snapshot.Solvers
}
