/*
PURPOSE:
  Defines the core data structures used throughout the experiment runner.
  These models represent run specifications, per-run result records, the
  metric table, and the accumulated result corpus.

REQUIREMENTS:
  User-specified:
  - Track solver identity, run index, and slot count on every record.
  - Tolerate engine-defined extra fields without losing them.

  Implementation-discovered:
  - Result artifacts are flat JSON objects with engine-chosen keys, so the
    record needs a typed core plus a catch-all extension map.
  - Marshalling must be deterministic (sorted keys) so that re-normalizing
    an artifact is byte-stable.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/artifact, internal/harness,
    internal/metrics, internal/store
  - Shared across boundaries.

ERROR HANDLING:
  - UnmarshalJSON returns an error for non-object payloads; everything else
    is tolerated and routed into Metrics/Extra.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Never drop unknown artifact keys on a round trip.

USAGE:
  rec := model.ResultRecord{Solver: "OLMA_Solver", Run: 1}

RELATED FILES:
  - internal/artifact/resolver.go
  - internal/metrics/aggregate.go

MAINTENANCE:
  - Update DefaultMetricSpec when the engine grows new summary fields.
*/

package model

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Status tags the outcome of a single run.
type Status string

const (
	StatusCompleted      Status = "completed"
	StatusPartialResults Status = "partial_results"
	StatusError          Status = "error"
	StatusCriticalError  Status = "critical_error"
)

// SolverID is a fully-qualified solver name, e.g.
// "solvers.OORAA_Solver.OORAA_Solver".
type SolverID string

// Short returns the final dotted segment, used for directory naming and
// result grouping. Short names must be unique within a batch.
func (s SolverID) Short() string {
	name := string(s)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// DefaultSolvers is the built-in solver list used when the engine does not
// advertise one.
func DefaultSolvers() []SolverID {
	return []SolverID{
		"solvers.OLMA_Solver_perfect.OLMA_Solver",
		"solvers.NOMA_VEC_Solver.NOMA_VEC_Solver",
		"solvers.A3C_GCN_Seq2Seq_Adapter.A3C_GCN_Seq2Seq_Adapter",
		"solvers.OORAA_Solver.OORAA_Solver",
		"solvers.BARGAIN_MATCH_Solver.BARGAIN_MATCH_Solver",
	}
}

// RunSpec fully determines one execution. Immutable once constructed.
type RunSpec struct {
	Solver     SolverID
	Run        int // 0-based run index
	Slots      int // positive horizon length
	OutputRoot string
}

// RunDir is the per-run output directory, named after the solver's short
// name and the 1-based run number.
func (s RunSpec) RunDir() string {
	return filepath.Join(s.OutputRoot, fmt.Sprintf("%s_run_%d", s.Solver.Short(), s.Run+1))
}

// ResultRecord is one run's normalized result: a typed core of identity and
// status fields, numeric metrics, and a catch-all for engine-specific
// extras. Produced once per run, immutable thereafter except for the
// derived ratio injection performed by the batch coordinator.
type ResultRecord struct {
	Solver  string
	Run     int // 1-based in serialized form, matching the engine's artifacts
	Slots   int
	Status  Status
	Message string
	Metrics map[string]float64
	Extra   map[string]any
}

// Reserved identity/status keys pulled out of the flat artifact object.
const (
	keySolver  = "solver"
	keyRun     = "run"
	keySlots   = "num_slots"
	keyStatus  = "status"
	keyMessage = "error_message"
)

// Has reports whether a numeric metric is present.
func (r *ResultRecord) Has(key string) bool {
	_, ok := r.Metrics[key]
	return ok
}

// Metric returns a numeric metric value and whether it is present.
func (r *ResultRecord) Metric(key string) (float64, bool) {
	v, ok := r.Metrics[key]
	return v, ok
}

// SetMetric stores a numeric metric, allocating the map on first use.
func (r *ResultRecord) SetMetric(key string, v float64) {
	if r.Metrics == nil {
		r.Metrics = make(map[string]float64)
	}
	r.Metrics[key] = v
}

// MarshalJSON flattens the record back into the artifact's open-mapping
// form. encoding/json sorts map keys, so output is deterministic.
func (r ResultRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Metrics)+len(r.Extra)+5)
	for k, v := range r.Extra {
		flat[k] = v
	}
	for k, v := range r.Metrics {
		flat[k] = v
	}
	if r.Solver != "" {
		flat[keySolver] = r.Solver
	}
	if r.Run > 0 {
		flat[keyRun] = r.Run
	}
	if r.Slots > 0 {
		flat[keySlots] = r.Slots
	}
	if r.Status != "" {
		flat[keyStatus] = string(r.Status)
	}
	if r.Message != "" {
		flat[keyMessage] = r.Message
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts any flat JSON object: known identity keys populate
// the typed fields, numeric values land in Metrics, everything else in
// Extra.
func (r *ResultRecord) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if flat == nil {
		return fmt.Errorf("result record: expected JSON object, got null")
	}
	*r = ResultRecord{}
	for k, v := range flat {
		switch k {
		case keySolver:
			if s, ok := v.(string); ok {
				r.Solver = s
				continue
			}
		case keyRun:
			if n, ok := v.(float64); ok {
				r.Run = int(n)
				continue
			}
		case keySlots:
			if n, ok := v.(float64); ok {
				r.Slots = int(n)
				continue
			}
		case keyStatus:
			if s, ok := v.(string); ok {
				r.Status = Status(s)
				continue
			}
		case keyMessage:
			if s, ok := v.(string); ok {
				r.Message = s
				continue
			}
		}
		if n, ok := v.(float64); ok {
			r.SetMetric(k, n)
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[k] = v
	}
	return nil
}

// Metric pairs a display name (used for export file names) with the
// result-record key it reduces.
type Metric struct {
	Name string
	Key  string
}

// MetricSpec is the ordered table of metrics the aggregator reduces.
type MetricSpec []Metric

// Well-known metric keys involved in the derived cost/delay tradeoff.
const (
	MetricKeyCost  = "C_mean"
	MetricKeyDelay = "avg_delay_mean"
	MetricKeyRatio = "C_mean_avg_delay_ratio"
)

// DefaultMetricSpec mirrors the metric table the engine's summaries use.
func DefaultMetricSpec() MetricSpec {
	return MetricSpec{
		{Name: "long_term_avg_cost", Key: MetricKeyCost},
		{Name: "avg_end_to_end_delay", Key: MetricKeyDelay},
		{Name: "queue_stability", Key: "Avg_queue"},
		{Name: "decision_latency_ms", Key: "DecisionTime_ms_mean"},
		{Name: "cost_delay_tradeoff", Key: MetricKeyRatio},
	}
}

// Corpus accumulates result records per solver short name, preserving both
// solver order and per-solver execution order. Created empty at batch
// start, appended to monotonically, read-only during aggregation.
type Corpus struct {
	Solvers []string // short names, in requested order
	Results map[string][]*ResultRecord
}

// NewCorpus initializes an empty corpus for the given solvers.
func NewCorpus(solvers []SolverID) *Corpus {
	c := &Corpus{Results: make(map[string][]*ResultRecord, len(solvers))}
	for _, s := range solvers {
		short := s.Short()
		c.Solvers = append(c.Solvers, short)
		c.Results[short] = nil
	}
	return c
}

// Append adds a record to a solver's run list.
func (c *Corpus) Append(short string, rec *ResultRecord) {
	c.Results[short] = append(c.Results[short], rec)
}

// Total returns the number of collected records across all solvers.
func (c *Corpus) Total() int {
	n := 0
	for _, recs := range c.Results {
		n += len(recs)
	}
	return n
}
