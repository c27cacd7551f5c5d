package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vecsim/experiment-runner/internal/store"
)

var (
	historySolver string
	historyLimit  int
	historyDir    string
)

// historyCmd browses the SQLite run index written by past batches.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show indexed runs from past batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := store.Open(filepath.Join(historyDir, store.DBName))
		if err != nil {
			return err
		}
		defer idx.Close()

		entries, err := idx.History(context.Background(), historySolver, historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no indexed runs")
			return nil
		}

		for _, e := range entries {
			line := fmt.Sprintf("%s  %s run %d (%d slots) [%s]",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Solver, e.Run, e.Slots, e.Status)
			if cost, ok := e.Metrics["C_mean"]; ok {
				line += fmt.Sprintf("  C_mean=%g", cost)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historySolver, "solver", "", "Filter by solver name (full or short)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum entries to show")
	historyCmd.Flags().StringVarP(&historyDir, "output-dir", "o", "multiple_experiment_results", "Batch output directory holding runs.db")
}
