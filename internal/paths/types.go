package paths

import "github.com/danielpatrickdp/valuesnet/internal/network"

// #region path
// Path is one behaviour -> outcome -> value chain with its composed weight and sign.
// Paths are derived on every call and never stored.
type Path struct {
	BehaviourID      string          `json:"behaviourId"`
	OutcomeID        string          `json:"outcomeId"`
	ValueID          string          `json:"valueId"`
	BOLinkID         string          `json:"boLinkId"`
	OVLinkID         string          `json:"ovLinkId"`
	EffectiveValence network.Valence `json:"effectiveValence"`
	PathWeight       float64         `json:"pathWeight"` // reliability * strength, in (0,1]
	Influence        float64         `json:"influence"`  // sign * PathWeight * importance
}

// #endregion path

// #region groups
// BehaviourPaths aggregates every path leaving one behaviour.
// NegativeInfluence is a magnitude: NetInfluence = PositiveInfluence - NegativeInfluence.
type BehaviourPaths struct {
	BehaviourID       string
	Paths             []Path
	OutcomeIDs        []string
	PositiveInfluence float64
	NegativeInfluence float64
	NetInfluence      float64
	PositiveValueIDs  []string
	NegativeValueIDs  []string
}

// ValuePaths aggregates every path arriving at one value.
type ValuePaths struct {
	ValueID                  string
	Paths                    []Path
	PositiveSupport          float64
	NegativeSupport          float64
	NetSupport               float64
	PositiveWeight           float64 // sum of PathWeight over positive paths, before importance
	ContributingBehaviourIDs []string
	HarmingBehaviourIDs      []string
}

// #endregion groups
