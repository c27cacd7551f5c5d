package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecsim/experiment-runner/internal/artifact"
	"github.com/vecsim/experiment-runner/internal/output"
)

// normalizeCmd hoists a nested summary.json to the root of an existing run
// directory. Handy when an engine run was interrupted after writing its
// artifact but before the harness could normalize it.
var normalizeCmd = &cobra.Command{
	Use:   "normalize RUN_DIR",
	Short: "Locate a run's summary.json and copy it to the run directory root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDir := args[0]

		found, err := artifact.Find(runDir)
		if err != nil {
			return err
		}
		if found == "" {
			return fmt.Errorf("no %s found under %s", artifact.SummaryName, runDir)
		}

		rec, err := artifact.Normalize(found, runDir)
		if err != nil {
			return err
		}

		output.Logger.Info("Normalized artifact",
			"source", found, "run_dir", runDir, "solver", rec.Solver, "metrics", len(rec.Metrics))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
