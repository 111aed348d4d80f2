// Package metrics reduces behaviour/value path groups into leverage, coverage, conflict and
// fragility scores, and ranks them.
package metrics

import (
	"math"

	"github.com/danielpatrickdp/valuesnet/internal/mapping"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/paths"
)

// #region scores

// LeverageScore is net influence per unit of cost. Negative when the behaviour does more harm than good.
func LeverageScore(netInfluence float64, cost network.Cost) float64 {
	c := mapping.CostNumber(cost)
	if c <= 0 {
		return 0
	}
	return netInfluence / c
}

// Coverage counts the distinct values a behaviour positively influences.
func Coverage(g *paths.BehaviourPaths) int {
	return len(g.PositiveValueIDs)
}

// ConflictIndex is the smaller of the positive and negative influence magnitudes.
// Zero unless the behaviour pushes in both directions.
func ConflictIndex(g *paths.BehaviourPaths) float64 {
	return math.Min(g.PositiveInfluence, g.NegativeInfluence)
}

// FragilityScore is importance x neglect over positive support, or Infinite when nothing supports the value.
func FragilityScore(v network.Value, positiveSupport float64) Score {
	if positiveSupport <= 0 {
		return Infinite
	}
	return Score(mapping.ImportanceNumber(v.Importance) * mapping.NeglectNumber(v.Neglect) / positiveSupport)
}

// #endregion scores

// #region per-node

// ComputeBehaviourMetrics derives one BehaviourMetrics per group.
func ComputeBehaviourMetrics(n network.Network, groups map[string]*paths.BehaviourPaths) map[string]BehaviourMetrics {
	ix := network.NewIndex(n)
	out := make(map[string]BehaviourMetrics, len(groups))
	for id, g := range groups {
		var cost network.Cost
		if b, ok := ix.Behaviour(id); ok {
			cost = b.Cost
		}
		out[id] = BehaviourMetrics{
			BehaviourID:       id,
			PositiveInfluence: g.PositiveInfluence,
			NegativeInfluence: g.NegativeInfluence,
			NetInfluence:      g.NetInfluence,
			LeverageScore:     LeverageScore(g.NetInfluence, cost),
			Coverage:          Coverage(g),
			ConflictIndex:     ConflictIndex(g),
			PathCount:         len(g.Paths),
			OutcomeIDs:        g.OutcomeIDs,
			PositiveValueIDs:  g.PositiveValueIDs,
			NegativeValueIDs:  g.NegativeValueIDs,
		}
	}
	return out
}

// ComputeValueMetrics derives one ValueMetrics per group.
func ComputeValueMetrics(n network.Network, groups map[string]*paths.ValuePaths) map[string]ValueMetrics {
	ix := network.NewIndex(n)
	out := make(map[string]ValueMetrics, len(groups))
	for id, g := range groups {
		v, _ := ix.Value(id)
		out[id] = ValueMetrics{
			ValueID:                  id,
			PositiveSupport:          g.PositiveSupport,
			NegativeSupport:          g.NegativeSupport,
			NetSupport:               g.NetSupport,
			SupportStrength:          g.PositiveWeight,
			FragilityScore:           FragilityScore(v, g.PositiveSupport),
			PathCount:                len(g.Paths),
			ContributingBehaviourIDs: g.ContributingBehaviourIDs,
			HarmingBehaviourIDs:      g.HarmingBehaviourIDs,
		}
	}
	return out
}

// #endregion per-node

// #region analyze

// Analyze runs path computation, per-node metrics and the three rankings.
// It holds no state; callers that want memoization key a cache on the network's content.
func Analyze(n network.Network, cfg RankingConfig) (Report, error) {
	ps := paths.Compute(n)
	bm := ComputeBehaviourMetrics(n, paths.GroupByBehaviour(n, ps))
	vm := ComputeValueMetrics(n, paths.GroupByValue(n, ps))

	top, err := TopLeverage(n, bm, cfg.TopN)
	if err != nil {
		return Report{}, err
	}
	fragile, err := FragileValues(n, vm, cfg.FragilityThreshold)
	if err != nil {
		return Report{}, err
	}
	conflicts, err := ConflictBehaviours(n, bm, cfg.ConflictThreshold)
	if err != nil {
		return Report{}, err
	}

	return Report{
		BehaviourMetrics:   bm,
		ValueMetrics:       vm,
		TopLeverage:        top,
		FragileValues:      fragile,
		ConflictBehaviours: conflicts,
	}, nil
}

// #endregion analyze
