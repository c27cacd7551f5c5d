/*
PURPOSE:
  Writes per-metric tables to CSV files.
  One file per metric: a run-index column plus one column per solver.

REQUIREMENTS:
  User-specified:
  - Output to CSV for the plotting notebooks.
  - Blank cells where a solver/run pair contributed no value.

  Implementation-discovered:
  - Header-only files are valid output (a metric may have no data at all).

ARCHITECTURE INTEGRATION:
  - Called by: internal/metrics
  - Consumes: pre-rendered string rows.

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush before close and surface the writer's deferred error.

USAGE:
  err := output.WriteCSV("metrics/long_term_avg_cost.csv", header, rows)

RELATED FILES:
  - internal/metrics/aggregate.go

MAINTENANCE:
  - Update if the notebooks ever need a different delimiter.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteCSV writes a header row followed by data rows to path, overwriting
// any existing file. rows may be empty; the header is always written.
func WriteCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row to %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
