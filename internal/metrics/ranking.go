package metrics

import (
	"cmp"
	"slices"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

// #region top-leverage
// TopLeverage returns behaviours with positive leverage, highest first, capped at topN.
// topN <= 0 means no cap. Ties keep network order.
func TopLeverage(n network.Network, bm map[string]BehaviourMetrics, topN int) ([]LeverageEntry, error) {
	ix := network.NewIndex(n)
	if err := checkBehaviours(ix, bm); err != nil {
		return nil, err
	}

	out := []LeverageEntry{}
	for _, b := range n.Behaviours {
		m, ok := bm[b.ID]
		if !ok || m.LeverageScore <= 0 {
			continue
		}
		out = append(out, LeverageEntry{
			Behaviour:       b,
			Metrics:         m,
			SupportedValues: resolveValues(ix, m.PositiveValueIDs),
			HarmedValues:    resolveValues(ix, m.NegativeValueIDs),
		})
	}

	slices.SortStableFunc(out, func(a, b LeverageEntry) int {
		return cmp.Compare(b.Metrics.LeverageScore, a.Metrics.LeverageScore)
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// #endregion top-leverage

// #region fragile-values
// FragileValues returns values whose fragility exceeds threshold. Orphans (infinite fragility)
// always qualify and come first; the rest sort by score descending.
func FragileValues(n network.Network, vm map[string]ValueMetrics, threshold float64) ([]FragileEntry, error) {
	ix := network.NewIndex(n)
	for _, id := range sortedKeys(vm) {
		if _, ok := ix.Value(id); !ok {
			return nil, &InconsistencyError{Kind: "value", NodeID: id}
		}
	}

	out := []FragileEntry{}
	for _, v := range n.Values {
		m, ok := vm[v.ID]
		if !ok {
			continue
		}
		if !m.FragilityScore.IsInfinite() && float64(m.FragilityScore) <= threshold {
			continue
		}
		out = append(out, FragileEntry{
			Value:      v,
			Metrics:    m,
			Supporters: resolveBehaviours(ix, m.ContributingBehaviourIDs),
			Harmers:    resolveBehaviours(ix, m.HarmingBehaviourIDs),
		})
	}

	slices.SortStableFunc(out, func(a, b FragileEntry) int {
		ai, bi := a.Metrics.FragilityScore.IsInfinite(), b.Metrics.FragilityScore.IsInfinite()
		switch {
		case ai && bi:
			return 0
		case ai:
			return -1
		case bi:
			return 1
		}
		return cmp.Compare(b.Metrics.FragilityScore, a.Metrics.FragilityScore)
	})
	return out, nil
}

// #endregion fragile-values

// #region conflict-behaviours
// ConflictBehaviours returns behaviours whose conflict index strictly exceeds threshold.
func ConflictBehaviours(n network.Network, bm map[string]BehaviourMetrics, threshold float64) ([]ConflictEntry, error) {
	ix := network.NewIndex(n)
	if err := checkBehaviours(ix, bm); err != nil {
		return nil, err
	}

	out := []ConflictEntry{}
	for _, b := range n.Behaviours {
		m, ok := bm[b.ID]
		if !ok || m.ConflictIndex <= threshold {
			continue
		}
		out = append(out, ConflictEntry{
			Behaviour:       b,
			Metrics:         m,
			SupportedValues: resolveValues(ix, m.PositiveValueIDs),
			HarmedValues:    resolveValues(ix, m.NegativeValueIDs),
		})
	}

	slices.SortStableFunc(out, func(a, b ConflictEntry) int {
		return cmp.Compare(b.Metrics.ConflictIndex, a.Metrics.ConflictIndex)
	})
	return out, nil
}

// #endregion conflict-behaviours

// #region helpers
func checkBehaviours(ix network.Index, bm map[string]BehaviourMetrics) error {
	for _, id := range sortedKeys(bm) {
		if _, ok := ix.Behaviour(id); !ok {
			return &InconsistencyError{Kind: "behaviour", NodeID: id}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Unknown ids are skipped; a related value may have been removed without touching the metrics.
func resolveValues(ix network.Index, ids []string) []network.Value {
	out := make([]network.Value, 0, len(ids))
	for _, id := range ids {
		if v, ok := ix.Value(id); ok {
			out = append(out, v)
		}
	}
	return out
}

func resolveBehaviours(ix network.Index, ids []string) []network.Behaviour {
	out := make([]network.Behaviour, 0, len(ids))
	for _, id := range ids {
		if b, ok := ix.Behaviour(id); ok {
			out = append(out, b)
		}
	}
	return out
}

// #endregion helpers
