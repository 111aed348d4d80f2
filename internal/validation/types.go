package validation

import "time"

// #region warning-type
// WarningType enumerates the structural anomalies the detectors look for.
type WarningType string

const (
	WarningOrphanValue          WarningType = "orphan-value"
	WarningUnexplainedBehaviour WarningType = "unexplained-behaviour"
	WarningFloatingOutcome      WarningType = "floating-outcome"
	WarningOutcomeConflict      WarningType = "outcome-level-conflict"
	WarningValueConflict        WarningType = "value-level-conflict"
)

// WarningTypes lists every type in detector order.
var WarningTypes = []WarningType{
	WarningOrphanValue,
	WarningUnexplainedBehaviour,
	WarningFloatingOutcome,
	WarningOutcomeConflict,
	WarningValueConflict,
}

// #endregion warning-type

// #region severity
// Severity is fixed per warning type.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// SeverityOf returns the severity every warning of type t carries.
func SeverityOf(t WarningType) Severity {
	switch t {
	case WarningOrphanValue, WarningOutcomeConflict:
		return SeverityWarning
	case WarningValueConflict:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// #endregion severity

// #region warning
// Warning is one detected anomaly. ID is a pure function of Type and NodeID.
type Warning struct {
	ID             string      `json:"id"`
	Type           WarningType `json:"type"`
	NodeID         string      `json:"nodeId"`
	Message        string      `json:"message"`
	Severity       Severity    `json:"severity"`
	RelatedNodeIDs []string    `json:"relatedNodeIds"`
	Suggestion     string      `json:"suggestion,omitempty"`
}

// #endregion warning

// #region warning-state
// WarningState is owned and persisted by the caller. Keys are node ids.
type WarningState struct {
	Snoozed   map[string]time.Time `json:"snoozed"`
	Dismissed map[string]bool      `json:"dismissed"`
}

// NewWarningState returns an empty state with both maps allocated.
func NewWarningState() WarningState {
	return WarningState{
		Snoozed:   map[string]time.Time{},
		Dismissed: map[string]bool{},
	}
}

// Status is a warning's lifecycle position at one instant.
type Status string

const (
	StatusActive    Status = "active"
	StatusSnoozed   Status = "snoozed"
	StatusDismissed Status = "dismissed"
)

// #endregion warning-state

// #region result
// Counts is a snapshot taken at validation time. It does not follow later WarningState changes.
type Counts struct {
	Total      int                 `json:"total"`
	ByType     map[WarningType]int `json:"byType"`
	BySeverity map[Severity]int    `json:"bySeverity"`
	Active     int                 `json:"active"`
	Snoozed    int                 `json:"snoozed"`
	Dismissed  int                 `json:"dismissed"`
}

// Result is the validation report.
type Result struct {
	Warnings []Warning                 `json:"warnings"`
	ByType   map[WarningType][]Warning `json:"byType"`
	ByNodeID map[string][]Warning      `json:"byNodeId"`
	Counts   Counts                    `json:"counts"`
}

// #endregion result
