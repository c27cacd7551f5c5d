/*
PURPOSE:
  Defines the 'list-solvers' subcommand.
  Helps verify which solver strategies a batch would run.

REQUIREMENTS:
  User-specified:
  - List available solvers.

  Implementation-discovered:
  - Useful validation step before a long batch.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.SolverLister (via the built-in engine)

ERROR HANDLING:
  - None; falls back to the built-in default list.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  experiment-runner list-solvers

RELATED FILES:
  - internal/engine/engine.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecsim/experiment-runner/internal/engine"
	"github.com/vecsim/experiment-runner/internal/model"
	"github.com/vecsim/experiment-runner/internal/sim"
)

var listSolversCmd = &cobra.Command{
	Use:   "list-solvers",
	Short: "List the solvers a batch would run",
	RunE: func(cmd *cobra.Command, args []string) error {
		var eng engine.Engine = sim.New()

		var names []string
		if sl, ok := eng.(engine.SolverLister); ok {
			names = sl.Solvers()
		}
		if len(names) == 0 {
			for _, s := range model.DefaultSolvers() {
				names = append(names, string(s))
			}
		}

		for _, name := range names {
			fmt.Printf("- %s (%s)\n", name, model.SolverID(name).Short())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listSolversCmd)
}
