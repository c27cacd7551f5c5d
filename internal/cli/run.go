/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full solver x repetition batch.

REQUIREMENTS:
  User-specified:
  - Run the batch.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.

ARCHITECTURE INTEGRATION:
  - Calls: internal/harness.Run()
  - Uses: internal/config, internal/sim

ERROR HANDLING:
  - Returns error if config load fails or batch setup fails; individual
    run failures never surface here (the harness downgrades them).

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> harness.Run.

USAGE:
  experiment-runner run --runs 20 --slots 50 -o results

RELATED FILES:
  - internal/cli/root.go
  - internal/harness/batch.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/vecsim/experiment-runner/internal/config"
	"github.com/vecsim/experiment-runner/internal/harness"
	"github.com/vecsim/experiment-runner/internal/sim"
)

var (
	runsOverride    int
	slotsOverride   int
	outputOverride  string
	solversOverride []string
	noIndex         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full experiment batch",
	Long: `Executes every configured solver for the requested number of repetitions.
Each run retargets the engine at its own output directory, captures the
engine's console output, and normalizes the result artifact. A run or
solver failure never aborts the batch: failed runs are recorded with an
explicit status and zeroed placeholder metrics.

After all runs, per-metric CSV tables, JSON mirrors, and a summary
statistics report are written under <output>/metrics/.`,
	Example: `  # Run with defaults (uses experiment_runner.yaml if present)
  experiment-runner run

  # 5 repetitions of 100 slots each, into ./results
  experiment-runner run --runs 5 --slots 100 -o ./results

  # Only two solvers
  experiment-runner run --solvers solvers.OORAA_Solver.OORAA_Solver,solvers.OLMA_Solver_perfect.OLMA_Solver`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("runs") {
			cfg.Runs = runsOverride
		}
		if cmd.Flags().Changed("slots") {
			cfg.Slots = slotsOverride
		}
		if outputOverride != "" {
			cfg.OutputDir = outputOverride
		}
		if len(solversOverride) > 0 {
			cfg.Solvers = solversOverride
		}
		if noIndex {
			cfg.RunIndex = false
		}

		_, err = harness.Run(cfg, sim.New())
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runsOverride, "runs", 20, "Repetitions per solver")
	runCmd.Flags().IntVar(&slotsOverride, "slots", 50, "Slot horizon per run")
	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for all batch artifacts")
	runCmd.Flags().StringSliceVar(&solversOverride, "solvers", nil, "Comma-separated list of fully-qualified solver names")
	runCmd.Flags().BoolVar(&noIndex, "no-index", false, "Disable the SQLite run index")
}
