/*
PURPOSE:
  Synthesizes a schema-complete placeholder result when a run produced no
  usable artifact, so the aggregator never sees a record with missing
  metric keys. Absence is an explicit zero plus a status flag, never a
  hole.

REQUIREMENTS:
  User-specified:
  - Zero-valued defaults for every metric in the metric table.
  - Identity fields, caller-supplied status, explanatory message.

  Implementation-discovered:
  - Elapsed wall time is worth recording on the placeholder too; failed
    runs are often diagnosed by how long they survived.

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness (executor on missing/corrupt artifacts,
    batch coordinator on unexpected run/solver failures).

ERROR HANDLING:
  - None; synthesis is pure.

IMPLEMENTATION RULES:
  - Synthesized records must be key-shape identical to genuine ones.

USAGE:
  rec := artifact.Synthesize(spec, metrics, "engine failed", 1.2, model.StatusError)

RELATED FILES:
  - internal/artifact/resolver.go
  - internal/harness/executor.go

MAINTENANCE:
  - None.
*/

package artifact

import (
	"github.com/vecsim/experiment-runner/internal/model"
)

// Per-run diagnostic artifact names written next to a synthesized record.
const (
	BasicSummaryName = "basic_summary.json"
	ErrorSummaryName = "error_summary.json"
)

// Synthesize produces a placeholder ResultRecord for a run that yielded no
// valid artifact: every metric in the table at zero, identity fields from
// the spec, and the caller's status and reason.
func Synthesize(spec model.RunSpec, metrics model.MetricSpec, reason string, elapsedSeconds float64, status model.Status) *model.ResultRecord {
	rec := &model.ResultRecord{
		Solver:  string(spec.Solver),
		Run:     spec.Run + 1,
		Slots:   spec.Slots,
		Status:  status,
		Message: reason,
	}
	for _, m := range metrics {
		rec.SetMetric(m.Key, 0)
	}
	rec.SetMetric("elapsed_seconds", elapsedSeconds)
	return rec
}
