package sim

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vecsim/experiment-runner/internal/artifact"
	"github.com/vecsim/experiment-runner/internal/model"
)

func TestMainWritesNestedSummaries(t *testing.T) {
	eng := New()
	cfg := eng.Config()
	cfg.OutDir = t.TempDir()
	cfg.Slots = 10
	cfg.Solvers = []string{"solvers.OLMA.OLMA_Solver"}

	if err := eng.Main(); err != nil {
		t.Fatalf("Main: %v", err)
	}

	// The artifact lands one level below OutDir, not at its root.
	nested := filepath.Join(cfg.OutDir, "solvers_OLMA_OLMA_Solver", "summary.json")
	if _, err := os.Stat(nested); err != nil {
		t.Fatalf("nested summary missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir, "summary.json")); err == nil {
		t.Error("summary unexpectedly written at the output root")
	}

	// The resolver can find and validate it.
	found, err := artifact.Find(cfg.OutDir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != nested {
		t.Errorf("Find = %q, want %q", found, nested)
	}
	rec, err := artifact.Normalize(found, cfg.OutDir)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, key := range []string{"C_mean", "avg_delay_mean", "Avg_queue", "DecisionTime_ms_mean"} {
		if v, ok := rec.Metric(key); !ok || v <= 0 {
			t.Errorf("metric %s = %v, %v, want a positive value", key, v, ok)
		}
	}
	if rec.Slots != 10 {
		t.Errorf("Slots = %d, want 10", rec.Slots)
	}
}

func TestMainUnknownSolver(t *testing.T) {
	eng := New()
	cfg := eng.Config()
	cfg.OutDir = t.TempDir()
	cfg.Slots = 10
	cfg.Solvers = []string{"solvers.Bogus.Bogus_Solver"}

	if err := eng.Main(); err == nil {
		t.Fatal("expected error for unknown solver")
	}
}

func TestMainRejectsBadConfig(t *testing.T) {
	eng := New()
	eng.Config().Slots = 0
	if err := eng.Main(); err == nil {
		t.Error("expected error for non-positive slots")
	}

	eng = New()
	eng.Config().OutDir = t.TempDir()
	eng.Config().Solvers = nil
	if err := eng.Main(); err == nil {
		t.Error("expected error for empty solver list")
	}
}

func TestSimulateDeterministic(t *testing.T) {
	eng := New()
	eng.Config().Slots = 25

	prof := profiles["OORAA_Solver"]
	a := eng.simulate("solvers.OORAA.OORAA_Solver", prof)
	b := eng.simulate("solvers.OORAA.OORAA_Solver", prof)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated simulation diverged:\n%v\n%v", a, b)
	}

	// Different solvers see different jitter streams.
	c := eng.simulate("solvers.OLMA.OLMA_Solver", prof)
	if reflect.DeepEqual(a, c) {
		t.Error("distinct solvers produced identical metrics")
	}
}

func TestSolversMatchesDefaults(t *testing.T) {
	eng := New()
	listed := eng.Solvers()
	defaults := model.DefaultSolvers()
	if len(listed) != len(defaults) {
		t.Fatalf("len = %d, want %d", len(listed), len(defaults))
	}
	for i, s := range defaults {
		if listed[i] != string(s) {
			t.Errorf("Solvers()[%d] = %q, want %q", i, listed[i], s)
		}
		if _, ok := profiles[s.Short()]; !ok {
			t.Errorf("no profile for default solver %q", s)
		}
	}
}
