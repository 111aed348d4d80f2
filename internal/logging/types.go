package logging

import "time"

// #region run-kind
// RunKind names what a run computed.
type RunKind string

const (
	RunAnalysis   RunKind = "analysis"
	RunValidation RunKind = "validation"
	RunFull       RunKind = "full"
)

// #endregion run-kind

// #region run-entry
// RunEntry is a single row in the run_log table.
type RunEntry struct {
	RunID          string        `json:"runId"`
	VersionID      string        `json:"versionId,omitempty"` // empty for networks that were never committed
	NetworkHash    string        `json:"networkHash"`
	Kind           RunKind       `json:"kind"`
	WarningsTotal  int           `json:"warningsTotal"`
	WarningsActive int           `json:"warningsActive"`
	TopLeverageID  string        `json:"topLeverageId,omitempty"`
	FragileCount   int           `json:"fragileCount"`
	Cached         bool          `json:"cached"`
	Duration       time.Duration `json:"duration"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// #endregion run-entry
