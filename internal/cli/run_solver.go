/*
PURPOSE:
  Defines the 'run-solver' subcommand.
  Executes a single solver once under the full run-executor guarantees;
  useful for debugging one strategy without a whole batch.

REQUIREMENTS:
  User-specified:
  - Run one named solver, one repetition.

  Implementation-discovered:
  - Reuses the executor directly, so capture, artifact normalization, and
    fallback synthesis behave exactly as in a batch.

ARCHITECTURE INTEGRATION:
  - Calls: internal/harness.Executor
  - Uses: internal/sim

ERROR HANDLING:
  - Infrastructure failures surface as command errors; engine failures are
    reported through the record's status.

IMPLEMENTATION RULES:
  - Same run-directory layout as the batch, so tooling downstream does not
    care which command produced a run.

USAGE:
  experiment-runner run-solver solvers.OORAA_Solver.OORAA_Solver --slots 5 -o test_results

RELATED FILES:
  - internal/harness/executor.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vecsim/experiment-runner/internal/harness"
	"github.com/vecsim/experiment-runner/internal/model"
	"github.com/vecsim/experiment-runner/internal/output"
	"github.com/vecsim/experiment-runner/internal/sim"
)

var (
	oneSlots  int
	oneOutput string
)

var runSolverCmd = &cobra.Command{
	Use:   "run-solver SOLVER",
	Short: "Run a single solver once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := model.RunSpec{
			Solver:     model.SolverID(args[0]),
			Run:        0,
			Slots:      oneSlots,
			OutputRoot: oneOutput,
		}

		x := &harness.Executor{Engine: sim.New(), Metrics: model.DefaultMetricSpec()}
		rec, err := x.Execute(spec)
		if err != nil {
			return err
		}

		output.Logger.Info("Run finished",
			"solver", spec.Solver.Short(), "status", string(rec.Status), "run_dir", spec.RunDir())
		keys := make([]string, 0, len(rec.Metrics))
		for key := range rec.Metrics {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%s = %g\n", key, rec.Metrics[key])
		}
		if rec.Message != "" {
			fmt.Printf("message: %s\n", rec.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runSolverCmd)

	runSolverCmd.Flags().IntVar(&oneSlots, "slots", 5, "Slot horizon for the run")
	runSolverCmd.Flags().StringVarP(&oneOutput, "output-dir", "o", "test_results", "Output directory for the run")
}
