/*
PURPOSE:
  Reduces the full result corpus into per-metric exports: one CSV table and
  one JSON mirror per metric, plus a human-readable summary-statistics
  report.

REQUIREMENTS:
  User-specified:
  - One column per solver with at least one contributing value; blank
    cells where a solver/run pair contributed nothing.
  - Mean, min, max, and count per metric per solver; solvers without data
    are reported as "no valid data", never omitted.
  - Every requested metric gets its artifact, header-only if necessary.

  Implementation-discovered:
  - Records tagged error/critical_error carry zero-valued placeholder
    metrics; counting those zeros as measurements would fabricate data, so
    failed runs contribute blanks instead. partial_results records keep
    their explicit zeros (the engine did finish).

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness/batch.go, internal/cli
  - Uses: internal/output (CSV/JSON writers)

ERROR HANDLING:
  - Per-metric export failures are logged and the remaining metrics still
    run; the first failure is returned at the end.

IMPLEMENTATION RULES:
  - Solver column order follows the corpus's requested order, never map
    iteration order.

USAGE:
  err := metrics.Aggregate(corpus, model.DefaultMetricSpec(), outputDir)

RELATED FILES:
  - internal/model/types.go
  - internal/output/csv.go

MAINTENANCE:
  - Keep file naming in sync with the plotting notebooks.
*/

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vecsim/experiment-runner/internal/model"
	"github.com/vecsim/experiment-runner/internal/output"
)

// Dir is the subdirectory of the output root holding metric exports.
const Dir = "metrics"

// SummaryReportName is the human-readable statistics report.
const SummaryReportName = "metrics_summary.txt"

// Stats holds the reduction of one metric for one solver.
type Stats struct {
	Mean  float64
	Min   float64
	Max   float64
	Count int
}

// Aggregate writes every metric's CSV table, JSON mirror, and the overall
// statistics report under outputDir/metrics. It never fails to emit an
// artifact for a requested metric; the first underlying write error is
// returned after all metrics were attempted.
func Aggregate(corpus *model.Corpus, spec model.MetricSpec, outputDir string) error {
	dir := filepath.Join(outputDir, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory %s: %w", dir, err)
	}

	var firstErr error
	for _, m := range spec {
		if err := exportMetric(corpus, m, dir); err != nil {
			output.Logger.Error("Failed to export metric", "metric", m.Name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := writeSummaryReport(corpus, spec, dir); err != nil {
		output.Logger.Error("Failed to write metrics summary report", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// contributes reports whether a record supplies a real measurement for the
// key. Failed runs carry placeholder zeros, not measurements.
func contributes(rec *model.ResultRecord, key string) bool {
	if rec.Status == model.StatusError || rec.Status == model.StatusCriticalError {
		return false
	}
	return rec.Has(key)
}

// exportMetric writes <name>.csv and <name>.json for one metric. CSV cells
// are aligned by run index: a run that contributed nothing leaves its cell
// blank. The JSON mirror holds only the contributing values per solver.
func exportMetric(corpus *model.Corpus, m model.Metric, dir string) error {
	// Solvers with at least one contributing value, in corpus order.
	var contributors []string
	aligned := make(map[string][]*float64)
	compact := make(map[string][]float64)
	maxRuns := 0
	for _, short := range corpus.Solvers {
		recs := corpus.Results[short]
		cells := make([]*float64, len(recs))
		var vals []float64
		for i, rec := range recs {
			if v, ok := rec.Metric(m.Key); ok && contributes(rec, m.Key) {
				value := v
				cells[i] = &value
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			contributors = append(contributors, short)
			aligned[short] = cells
			compact[short] = vals
			if len(recs) > maxRuns {
				maxRuns = len(recs)
			}
		}
	}

	csvPath := filepath.Join(dir, m.Name+".csv")
	if len(contributors) == 0 {
		output.Logger.Warn("No data for metric", "metric", m.Name, "key", m.Key)
		// Header-only table: every requested metric still gets its artifact.
		header := append([]string{"run"}, corpus.Solvers...)
		if err := output.WriteCSV(csvPath, header, nil); err != nil {
			return err
		}
		return output.WriteJSON(filepath.Join(dir, m.Name+".json"), compact)
	}

	header := append([]string{"run"}, contributors...)
	rows := make([][]string, 0, maxRuns)
	for run := 0; run < maxRuns; run++ {
		row := []string{strconv.Itoa(run + 1)}
		for _, short := range contributors {
			cell := ""
			if cells := aligned[short]; run < len(cells) && cells[run] != nil {
				cell = formatValue(*cells[run])
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	if err := output.WriteCSV(csvPath, header, rows); err != nil {
		return err
	}
	return output.WriteJSON(filepath.Join(dir, m.Name+".json"), compact)
}

// Reduce computes mean/min/max/count over a solver's contributing values
// for one metric key. ok is false when no value contributed.
func Reduce(recs []*model.ResultRecord, key string) (Stats, bool) {
	var s Stats
	for _, rec := range recs {
		v, present := rec.Metric(key)
		if !present || !contributes(rec, key) {
			continue
		}
		if s.Count == 0 || v < s.Min {
			s.Min = v
		}
		if s.Count == 0 || v > s.Max {
			s.Max = v
		}
		s.Mean += v
		s.Count++
	}
	if s.Count == 0 {
		return Stats{}, false
	}
	s.Mean /= float64(s.Count)
	return s, true
}

// writeSummaryReport renders the per-metric per-solver statistics text
// report. Solvers without data appear explicitly as "no valid data".
func writeSummaryReport(corpus *model.Corpus, spec model.MetricSpec, dir string) error {
	var b strings.Builder
	b.WriteString("Metrics summary\n")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))

	for _, m := range spec {
		fmt.Fprintf(&b, "\n=== %s ===\n", m.Name)
		for _, short := range corpus.Solvers {
			stats, ok := Reduce(corpus.Results[short], m.Key)
			if !ok {
				fmt.Fprintf(&b, "%s: no valid data\n", short)
				continue
			}
			fmt.Fprintf(&b, "%s:\n", short)
			fmt.Fprintf(&b, "  mean: %.4f\n", stats.Mean)
			fmt.Fprintf(&b, "  min: %.4f\n", stats.Min)
			fmt.Fprintf(&b, "  max: %.4f\n", stats.Max)
			fmt.Fprintf(&b, "  valid runs: %d\n", stats.Count)
		}
	}

	path := filepath.Join(dir, SummaryReportName)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
