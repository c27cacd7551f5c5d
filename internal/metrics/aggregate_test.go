package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vecsim/experiment-runner/internal/model"
)

func record(solver string, run int, status model.Status, values map[string]float64) *model.ResultRecord {
	rec := &model.ResultRecord{
		Solver:  "solvers." + solver + "." + solver,
		Run:     run,
		Slots:   10,
		Status:  status,
		Metrics: map[string]float64{},
	}
	for k, v := range values {
		rec.SetMetric(k, v)
	}
	return rec
}

func TestReduce(t *testing.T) {
	recs := []*model.ResultRecord{
		record("A", 1, model.StatusCompleted, map[string]float64{"C_mean": 10}),
		record("A", 2, model.StatusCompleted, map[string]float64{"C_mean": 20}),
		record("A", 3, model.StatusCompleted, map[string]float64{"C_mean": 30}),
	}
	stats, ok := Reduce(recs, "C_mean")
	if !ok {
		t.Fatal("Reduce reported no data")
	}
	if stats.Mean != 20 || stats.Min != 10 || stats.Max != 30 || stats.Count != 3 {
		t.Errorf("stats = %+v, want mean 20 min 10 max 30 count 3", stats)
	}
}

func TestReduceSkipsFailedRuns(t *testing.T) {
	recs := []*model.ResultRecord{
		record("A", 1, model.StatusCompleted, map[string]float64{"C_mean": 10}),
		// Failed runs carry placeholder zeros; counting them would drag
		// the mean down.
		record("A", 2, model.StatusError, map[string]float64{"C_mean": 0}),
		record("A", 3, model.StatusCriticalError, map[string]float64{"C_mean": 0}),
	}
	stats, ok := Reduce(recs, "C_mean")
	if !ok {
		t.Fatal("Reduce reported no data")
	}
	if stats.Count != 1 || stats.Mean != 10 {
		t.Errorf("stats = %+v, want the single completed run only", stats)
	}
}

func TestReducePartialResultsContribute(t *testing.T) {
	recs := []*model.ResultRecord{
		record("A", 1, model.StatusPartialResults, map[string]float64{"C_mean": 0}),
	}
	stats, ok := Reduce(recs, "C_mean")
	if !ok {
		t.Fatal("partial_results zero should contribute")
	}
	if stats.Count != 1 || stats.Mean != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReduceNoData(t *testing.T) {
	if _, ok := Reduce(nil, "C_mean"); ok {
		t.Error("Reduce(nil) reported data")
	}
	recs := []*model.ResultRecord{record("A", 1, model.StatusCompleted, nil)}
	if _, ok := Reduce(recs, "C_mean"); ok {
		t.Error("Reduce without the key reported data")
	}
}

func TestAggregateExports(t *testing.T) {
	corpus := model.NewCorpus([]model.SolverID{"solvers.A.A", "solvers.B.B"})
	corpus.Append("A", record("A", 1, model.StatusCompleted, map[string]float64{"C_mean": 1.5}))
	corpus.Append("A", record("A", 2, model.StatusError, map[string]float64{"C_mean": 0}))
	corpus.Append("A", record("A", 3, model.StatusCompleted, map[string]float64{"C_mean": 3.5}))
	corpus.Append("B", record("B", 1, model.StatusCompleted, map[string]float64{"C_mean": 2}))

	spec := model.MetricSpec{{Name: "long_term_avg_cost", Key: "C_mean"}}
	outDir := t.TempDir()
	if err := Aggregate(corpus, spec, outDir); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, Dir, "long_term_avg_cost.csv"))
	if err != nil {
		t.Fatalf("CSV export missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"run,A,B",
		"1,1.5,2",
		"2,,", // A's failed run and B's missing run are both blank
		"3,3.5,",
	}
	if len(lines) != len(want) {
		t.Fatalf("CSV = %q, want %d lines", lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("CSV line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	jsonData, err := os.ReadFile(filepath.Join(outDir, Dir, "long_term_avg_cost.json"))
	if err != nil {
		t.Fatalf("JSON mirror missing: %v", err)
	}
	var mirror map[string][]float64
	if err := json.Unmarshal(jsonData, &mirror); err != nil {
		t.Fatalf("JSON mirror: %v", err)
	}
	if got := mirror["A"]; len(got) != 2 || got[0] != 1.5 || got[1] != 3.5 {
		t.Errorf("mirror[A] = %v, want contributing values only", got)
	}
}

func TestAggregateHeaderOnlyWhenNoData(t *testing.T) {
	corpus := model.NewCorpus([]model.SolverID{"solvers.A.A", "solvers.B.B"})
	corpus.Append("A", record("A", 1, model.StatusError, map[string]float64{"C_mean": 0}))

	spec := model.MetricSpec{{Name: "long_term_avg_cost", Key: "C_mean"}}
	outDir := t.TempDir()
	if err := Aggregate(corpus, spec, outDir); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, Dir, "long_term_avg_cost.csv"))
	if err != nil {
		t.Fatalf("CSV export missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 || lines[0] != "run,A,B" {
		t.Errorf("header-only CSV = %q", lines)
	}
}

func TestSummaryReport(t *testing.T) {
	corpus := model.NewCorpus([]model.SolverID{"solvers.A.A", "solvers.B.B"})
	corpus.Append("A", record("A", 1, model.StatusCompleted, map[string]float64{"C_mean": 10}))
	corpus.Append("A", record("A", 2, model.StatusCompleted, map[string]float64{"C_mean": 20}))

	spec := model.MetricSpec{{Name: "long_term_avg_cost", Key: "C_mean"}}
	outDir := t.TempDir()
	if err := Aggregate(corpus, spec, outDir); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, Dir, SummaryReportName))
	if err != nil {
		t.Fatalf("summary report missing: %v", err)
	}
	report := string(data)
	for _, frag := range []string{
		"=== long_term_avg_cost ===",
		"mean: 15.0000",
		"min: 10.0000",
		"max: 20.0000",
		"valid runs: 2",
		"B: no valid data",
	} {
		if !strings.Contains(report, frag) {
			t.Errorf("report missing %q:\n%s", frag, report)
		}
	}
}
