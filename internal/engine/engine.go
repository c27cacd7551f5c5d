/*
PURPOSE:
  Defines the boundary with the external simulation engine: its mutable
  configuration triple and its single blocking entry point.

REQUIREMENTS:
  User-specified:
  - The engine is a black box: it consults its own configuration and writes
    a summary.json somewhere under the configured output directory.

  Implementation-discovered:
  - The entry point takes no arguments, so targeting one solver means
    mutating shared configuration around the call (see session.go).
  - Solver-list discovery is optional; engines that cannot enumerate their
    solvers fall back to the harness defaults.

ARCHITECTURE INTEGRATION:
  - Implemented by: internal/sim (reference engine), external engines.
  - Consumed by: internal/harness via Session.

ERROR HANDLING:
  - Main returns an error for engine-level failures; panics inside Main are
    the caller's problem (the run executor recovers them).

IMPLEMENTATION RULES:
  - Keep the interface minimal; capabilities beyond the triple + entry
    point are separate optional interfaces, not duck-typed probing.

USAGE:
  cfg := eng.Config()
  err := eng.Main()

RELATED FILES:
  - internal/engine/session.go
  - internal/sim/sim.go

MAINTENANCE:
  - Add new optional capability interfaces rather than widening Engine.
*/

package engine

// Config is the engine's mutable configuration triple. It is exclusively
// owned by whichever Session is currently active and must not be mutated
// outside one.
type Config struct {
	// OutDir is where the engine writes its artifacts.
	OutDir string
	// Slots is the simulation horizon length.
	Slots int
	// Solvers is the active-solver list. The harness always sets a
	// singleton here; the engine may default to several.
	Solvers []string
}

// Engine is the external simulation collaborator: a mutable configuration
// and one no-argument blocking entry point.
type Engine interface {
	// Config returns the engine's live configuration. The same pointer is
	// returned on every call; mutations are visible to the next Main.
	Config() *Config
	// Main runs one simulation to completion using the current Config.
	Main() error
}

// SolverLister is an optional capability: engines that can enumerate their
// available solvers implement it. When absent, the harness uses its
// built-in default list.
type SolverLister interface {
	Solvers() []string
}
