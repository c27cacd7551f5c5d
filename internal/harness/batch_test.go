package harness

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vecsim/experiment-runner/internal/config"
	"github.com/vecsim/experiment-runner/internal/engine"
	"github.com/vecsim/experiment-runner/internal/metrics"
	"github.com/vecsim/experiment-runner/internal/model"
	"github.com/vecsim/experiment-runner/internal/store"
)

const (
	goodSolver = "solvers.Good.Good_Solver"
	failSolver = "solvers.Fail.Fail_Solver"
)

// batchEngine succeeds for goodSolver and errors for everything else.
func batchEngine() *fakeEngine {
	return &fakeEngine{
		onMain: func(cfg *engine.Config) error {
			if len(cfg.Solvers) != 1 || cfg.Solvers[0] != goodSolver {
				return os.ErrInvalid
			}
			return writeEngineSummary(cfg, map[string]any{
				"C_mean":               12.5,
				"avg_delay_mean":       2.5,
				"Avg_queue":            4.0,
				"DecisionTime_ms_mean": 0.8,
			})
		},
	}
}

func batchConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Runs:      2,
		Slots:     5,
		OutputDir: t.TempDir(),
		Solvers:   []string{goodSolver, failSolver},
	}
}

func TestBatchSurvivesFailingSolver(t *testing.T) {
	cfg := batchConfig(t)
	corpus, err := Run(cfg, batchEngine())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := corpus.Total(); got != 4 {
		t.Fatalf("Total = %d, want 4", got)
	}
	for _, rec := range corpus.Results["Good_Solver"] {
		if rec.Status != model.StatusCompleted {
			t.Errorf("good run %d status = %q", rec.Run, rec.Status)
		}
	}
	for _, rec := range corpus.Results["Fail_Solver"] {
		if rec.Status != model.StatusError {
			t.Errorf("failed run %d status = %q", rec.Run, rec.Status)
		}
	}

	// Per-solver summaries are written for both, error records included.
	for _, short := range []string{"Good_Solver", "Fail_Solver"} {
		path := filepath.Join(cfg.OutputDir, short+"_summary.json")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("solver summary for %s: %v", short, err)
		}
		var recs []map[string]any
		if err := json.Unmarshal(data, &recs); err != nil {
			t.Fatalf("solver summary for %s: %v", short, err)
		}
		if len(recs) != cfg.Runs {
			t.Errorf("solver summary for %s has %d records, want %d", short, len(recs), cfg.Runs)
		}
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputDir, BatchConfigName)); err != nil {
		t.Errorf("batch config missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, metrics.Dir, metrics.SummaryReportName)); err != nil {
		t.Errorf("metric summary report missing: %v", err)
	}
}

func TestBatchRatioEndToEnd(t *testing.T) {
	cfg := batchConfig(t)
	cfg.Runs = 1
	corpus, err := Run(cfg, batchEngine())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec := corpus.Results["Good_Solver"][0]
	if v, ok := rec.Metric(model.MetricKeyRatio); !ok || v != 5.0 {
		t.Fatalf("ratio = %v, %v, want 5.0 from 12.5/2.5", v, ok)
	}

	// The derived metric flows through to the CSV export, and the failing
	// solver contributes no column.
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, metrics.Dir, "cost_delay_tradeoff.csv"))
	if err != nil {
		t.Fatalf("ratio export missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "run,Good_Solver" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 2 || lines[1] != "1,5" {
		t.Errorf("rows = %q, want single row 1,5", lines[1:])
	}
}

func TestInjectRatio(t *testing.T) {
	tests := []struct {
		name      string
		metrics   map[string]float64
		wantRatio float64
		wantSet   bool
	}{
		{"both present", map[string]float64{model.MetricKeyCost: 10, model.MetricKeyDelay: 4}, 2.5, true},
		{"zero delay", map[string]float64{model.MetricKeyCost: 10, model.MetricKeyDelay: 0}, 0, true},
		{"negative delay", map[string]float64{model.MetricKeyCost: 10, model.MetricKeyDelay: -1}, 0, true},
		{"missing delay", map[string]float64{model.MetricKeyCost: 10}, 0, false},
		{"missing cost", map[string]float64{model.MetricKeyDelay: 4}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &model.ResultRecord{Metrics: map[string]float64{}}
			for k, v := range tt.metrics {
				rec.SetMetric(k, v)
			}
			injectRatio(rec)
			v, ok := rec.Metric(model.MetricKeyRatio)
			if ok != tt.wantSet {
				t.Fatalf("ratio present = %v, want %v", ok, tt.wantSet)
			}
			if ok && v != tt.wantRatio {
				t.Errorf("ratio = %v, want %v", v, tt.wantRatio)
			}
		})
	}
}

func TestBatchReconcilesArtifactlessSolver(t *testing.T) {
	eng := &fakeEngine{} // never writes an artifact
	cfg := batchConfig(t)
	cfg.Runs = 1
	cfg.Solvers = []string{goodSolver}

	if _, err := Run(cfg, eng); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// One regular run plus one reconciliation re-execution.
	if eng.calls != 2 {
		t.Errorf("engine invoked %d times, want 2", eng.calls)
	}
}

func TestBatchSkipsReconciliationWhenArtifactsExist(t *testing.T) {
	eng := batchEngine()
	cfg := batchConfig(t)
	cfg.Runs = 1
	cfg.Solvers = []string{goodSolver}

	if _, err := Run(cfg, eng); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if eng.calls != 1 {
		t.Errorf("engine invoked %d times, want 1", eng.calls)
	}
}

func TestBatchRunIndex(t *testing.T) {
	cfg := batchConfig(t)
	cfg.RunIndex = true
	if _, err := Run(cfg, batchEngine()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	idx, err := store.Open(filepath.Join(cfg.OutputDir, store.DBName))
	if err != nil {
		t.Fatalf("open run index: %v", err)
	}
	defer idx.Close()

	recs, err := idx.History(context.Background(), "Good_Solver", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != cfg.Runs {
		t.Errorf("indexed %d records for Good_Solver, want %d", len(recs), cfg.Runs)
	}
}

func TestBatchRejectsInvalidConfig(t *testing.T) {
	cfg := batchConfig(t)
	cfg.Runs = 0
	if _, err := Run(cfg, batchEngine()); err == nil {
		t.Fatal("expected error for non-positive run count")
	}
}
