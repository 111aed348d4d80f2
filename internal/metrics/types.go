package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

// #region ranking-config
// RankingConfig holds the thresholds for the ranked views.
type RankingConfig struct {
	TopN               int     `json:"topN" mapstructure:"top_n"`
	FragilityThreshold float64 `json:"fragilityThreshold" mapstructure:"fragility_threshold"`
	ConflictThreshold  float64 `json:"conflictThreshold" mapstructure:"conflict_threshold"`
}

// DefaultRankingConfig returns the standard thresholds.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		TopN:               5,
		FragilityThreshold: 3,
		ConflictThreshold:  0.5,
	}
}

// #endregion ranking-config

// #region score
// Score is a fragility score. +Inf is a first-class value meaning the value has no
// positive support at all; it compares greater than every finite score.
// On the wire +Inf is the string "Infinity".
type Score float64

// Infinite is the orphan-value fragility.
var Infinite = Score(math.Inf(1))

// IsInfinite reports whether s is the orphan sentinel.
func (s Score) IsInfinite() bool { return math.IsInf(float64(s), 1) }

// String renders the sentinel as ∞.
func (s Score) String() string {
	if s.IsInfinite() {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(s))
}

func (s Score) MarshalJSON() ([]byte, error) {
	if s.IsInfinite() {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(s))
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*s = Infinite
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	*s = Score(f)
	return nil
}

// #endregion score

// #region node-metrics
// BehaviourMetrics aggregates one behaviour's downstream effects.
type BehaviourMetrics struct {
	BehaviourID       string   `json:"behaviourId"`
	PositiveInfluence float64  `json:"positiveInfluence"`
	NegativeInfluence float64  `json:"negativeInfluence"`
	NetInfluence      float64  `json:"netInfluence"`
	LeverageScore     float64  `json:"leverageScore"`
	Coverage          int      `json:"coverage"`
	ConflictIndex     float64  `json:"conflictIndex"`
	PathCount         int      `json:"pathCount"`
	OutcomeIDs        []string `json:"outcomeIds"`
	PositiveValueIDs  []string `json:"positiveValueIds"`
	NegativeValueIDs  []string `json:"negativeValueIds"`
}

// ValueMetrics aggregates the support arriving at one value.
type ValueMetrics struct {
	ValueID                  string   `json:"valueId"`
	PositiveSupport          float64  `json:"positiveSupport"`
	NegativeSupport          float64  `json:"negativeSupport"`
	NetSupport               float64  `json:"netSupport"`
	SupportStrength          float64  `json:"supportStrength"`
	FragilityScore           Score    `json:"fragilityScore"`
	PathCount                int      `json:"pathCount"`
	ContributingBehaviourIDs []string `json:"contributingBehaviourIds"`
	HarmingBehaviourIDs      []string `json:"harmingBehaviourIds"`
}

// #endregion node-metrics

// #region ranked-entries
// LeverageEntry is one row of the top-leverage view.
type LeverageEntry struct {
	Behaviour       network.Behaviour `json:"behaviour"`
	Metrics         BehaviourMetrics  `json:"metrics"`
	SupportedValues []network.Value   `json:"supportedValues"`
	HarmedValues    []network.Value   `json:"harmedValues"`
}

// FragileEntry is one row of the fragile-values view.
type FragileEntry struct {
	Value      network.Value       `json:"value"`
	Metrics    ValueMetrics        `json:"metrics"`
	Supporters []network.Behaviour `json:"supporters"`
	Harmers    []network.Behaviour `json:"harmers"`
}

// ConflictEntry is one row of the conflict-behaviours view.
type ConflictEntry struct {
	Behaviour       network.Behaviour `json:"behaviour"`
	Metrics         BehaviourMetrics  `json:"metrics"`
	SupportedValues []network.Value   `json:"supportedValues"`
	HarmedValues    []network.Value   `json:"harmedValues"`
}

// #endregion ranked-entries

// #region report
// Report is the analysis output. Field names and ranking order are a stable wire format
// read by the summary exporter.
type Report struct {
	BehaviourMetrics   map[string]BehaviourMetrics `json:"behaviourMetrics"`
	ValueMetrics       map[string]ValueMetrics     `json:"valueMetrics"`
	TopLeverage        []LeverageEntry             `json:"topLeverage"`
	FragileValues      []FragileEntry              `json:"fragileValues"`
	ConflictBehaviours []ConflictEntry             `json:"conflictBehaviours"`
}

// #endregion report

// #region errors
// ErrNodeNotFound is wrapped by InconsistencyError.
var ErrNodeNotFound = errors.New("node not found in network")

// InconsistencyError means the metrics and the network disagree about which nodes exist.
// It only happens when the caller mixes snapshots; rankings refuse to drop the entry silently.
type InconsistencyError struct {
	Kind   string // "behaviour" | "value"
	NodeID string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("metrics reference %s %q missing from network", e.Kind, e.NodeID)
}

func (e *InconsistencyError) Unwrap() error { return ErrNodeNotFound }

// #endregion errors
