/*
PURPOSE:
  JSON persistence helpers for batch artifacts: per-solver result lists,
  per-run configuration snapshots, and the overall batch configuration.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing by notebook/plotting consumers.

  Implementation-discovered:
  - Two-space indentation matches the engine's own artifacts, keeping the
    output tree uniform.

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness, internal/artifact
  - Consumes: internal/model.ResultRecord

ERROR HANDLING:
  - Returns error on marshal or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json MarshalIndent.
  - Whole-file writes; these artifacts are small.

USAGE:
  err := output.WriteJSON(path, records)

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - None.
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON marshals v with two-space indentation and writes it to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON for %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
