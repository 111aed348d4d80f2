// Package paths derives every behaviour -> outcome -> value path of a network and groups them
// per behaviour and per value.
package paths

import (
	"slices"

	"github.com/danielpatrickdp/valuesnet/internal/mapping"
	"github.com/danielpatrickdp/valuesnet/internal/network"
)

// #region compute
// Compute joins behaviour-outcome links to the outcome-value links leaving the same outcome.
// Outgoing links are indexed by outcome once, so the join costs |BO links| x fan-out.
// Paths come out in behaviour-outcome link order, then outcome-value link order.
func Compute(n network.Network) []Path {
	ix := network.NewIndex(n)

	outgoing := make(map[string][]network.OutcomeValueLink)
	var bos []network.BehaviourOutcomeLink
	for _, l := range n.Links {
		switch link := l.(type) {
		case network.BehaviourOutcomeLink:
			bos = append(bos, link)
		case network.OutcomeValueLink:
			outgoing[link.SourceID] = append(outgoing[link.SourceID], link)
		}
	}

	result := make([]Path, 0, len(bos))
	for _, bo := range bos {
		for _, ov := range outgoing[bo.TargetID] {
			result = append(result, compose(bo, ov, ix))
		}
	}
	return result
}

// compose builds the path for one matching link pair.
func compose(bo network.BehaviourOutcomeLink, ov network.OutcomeValueLink, ix network.Index) Path {
	weight := mapping.Reliability(bo.Reliability) * mapping.Strength(ov.Strength)
	sign := mapping.ValenceMultiplier(bo.Valence) * mapping.ValenceMultiplier(ov.Valence)

	var importance float64
	if v, ok := ix.Value(ov.TargetID); ok {
		importance = mapping.ImportanceNumber(v.Importance)
	}

	effective := network.ValenceNegative
	if sign > 0 {
		effective = network.ValencePositive
	}

	return Path{
		BehaviourID:      bo.SourceID,
		OutcomeID:        bo.TargetID,
		ValueID:          ov.TargetID,
		BOLinkID:         bo.ID,
		OVLinkID:         ov.ID,
		EffectiveValence: effective,
		PathWeight:       weight,
		Influence:        sign * weight * importance,
	}
}

// #endregion compute

// #region group-by-behaviour
// GroupByBehaviour returns one entry per behaviour in the network, including behaviours
// with no paths. A path whose behaviour is missing from the node list still gets an entry,
// so downstream lookups can report the inconsistency instead of losing the path.
func GroupByBehaviour(n network.Network, ps []Path) map[string]*BehaviourPaths {
	groups := make(map[string]*BehaviourPaths, len(n.Behaviours))
	for _, b := range n.Behaviours {
		groups[b.ID] = newBehaviourPaths(b.ID)
	}

	for _, p := range ps {
		g, ok := groups[p.BehaviourID]
		if !ok {
			g = newBehaviourPaths(p.BehaviourID)
			groups[p.BehaviourID] = g
		}
		g.Paths = append(g.Paths, p)
		g.OutcomeIDs = appendUnique(g.OutcomeIDs, p.OutcomeID)
		switch {
		case p.Influence > 0:
			g.PositiveInfluence += p.Influence
			g.PositiveValueIDs = appendUnique(g.PositiveValueIDs, p.ValueID)
		case p.Influence < 0:
			g.NegativeInfluence += -p.Influence
			g.NegativeValueIDs = appendUnique(g.NegativeValueIDs, p.ValueID)
		}
	}

	for _, g := range groups {
		g.NetInfluence = g.PositiveInfluence - g.NegativeInfluence
	}
	return groups
}

func newBehaviourPaths(id string) *BehaviourPaths {
	return &BehaviourPaths{
		BehaviourID:      id,
		Paths:            []Path{},
		OutcomeIDs:       []string{},
		PositiveValueIDs: []string{},
		NegativeValueIDs: []string{},
	}
}

// #endregion group-by-behaviour

// #region group-by-value
// GroupByValue is the value-side mirror of GroupByBehaviour.
func GroupByValue(n network.Network, ps []Path) map[string]*ValuePaths {
	groups := make(map[string]*ValuePaths, len(n.Values))
	for _, v := range n.Values {
		groups[v.ID] = newValuePaths(v.ID)
	}

	for _, p := range ps {
		g, ok := groups[p.ValueID]
		if !ok {
			g = newValuePaths(p.ValueID)
			groups[p.ValueID] = g
		}
		g.Paths = append(g.Paths, p)
		switch {
		case p.Influence > 0:
			g.PositiveSupport += p.Influence
			g.PositiveWeight += p.PathWeight
			g.ContributingBehaviourIDs = appendUnique(g.ContributingBehaviourIDs, p.BehaviourID)
		case p.Influence < 0:
			g.NegativeSupport += -p.Influence
			g.HarmingBehaviourIDs = appendUnique(g.HarmingBehaviourIDs, p.BehaviourID)
		}
	}

	for _, g := range groups {
		g.NetSupport = g.PositiveSupport - g.NegativeSupport
	}
	return groups
}

func newValuePaths(id string) *ValuePaths {
	return &ValuePaths{
		ValueID:                  id,
		Paths:                    []Path{},
		ContributingBehaviourIDs: []string{},
		HarmingBehaviourIDs:      []string{},
	}
}

// #endregion group-by-value

// #region helpers
func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// #endregion helpers
