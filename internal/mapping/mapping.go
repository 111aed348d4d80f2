// Package mapping converts the qualitative network enums into the numbers every score is built from.
package mapping

import "github.com/danielpatrickdp/valuesnet/internal/network"

// #region tables

var reliability = map[network.Reliability]float64{
	network.ReliabilityAlways:    1.0,
	network.ReliabilityUsually:   0.75,
	network.ReliabilitySometimes: 0.5,
	network.ReliabilityRarely:    0.25,
}

var strength = map[network.Strength]float64{
	network.StrengthStrong:   1.0,
	network.StrengthModerate: 0.6,
	network.StrengthWeak:     0.3,
}

var valence = map[network.Valence]float64{
	network.ValencePositive: 1,
	network.ValenceNegative: -1,
}

// cost doubles per step.
var cost = map[network.Cost]float64{
	network.CostTrivial:  1,
	network.CostLow:      2,
	network.CostMedium:   4,
	network.CostHigh:     8,
	network.CostVeryHigh: 16,
}

var importance = map[network.Importance]float64{
	network.ImportanceCritical: 4,
	network.ImportanceHigh:     3,
	network.ImportanceMedium:   2,
	network.ImportanceLow:      1,
}

var neglect = map[network.Neglect]float64{
	network.NeglectSevere:     4,
	network.NeglectSomewhat:   3,
	network.NeglectAdequate:   2,
	network.NeglectWellServed: 1,
}

// #endregion tables

// #region lookups
// Each lookup is total over its enum. Members outside the set never reach here:
// network.Validate rejects them at the import boundary.

// Reliability maps a behaviour-outcome reliability into [0,1].
func Reliability(r network.Reliability) float64 { return reliability[r] }

// Strength maps an outcome-value strength into [0,1].
func Strength(s network.Strength) float64 { return strength[s] }

// ValenceMultiplier is +1 for positive and -1 for negative.
func ValenceMultiplier(v network.Valence) float64 { return valence[v] }

// CostNumber maps a behaviour cost onto the doubling scale 1..16.
func CostNumber(c network.Cost) float64 { return cost[c] }

// ImportanceNumber maps a value importance onto 1..4.
func ImportanceNumber(i network.Importance) float64 { return importance[i] }

// NeglectNumber maps a value neglect onto 1..4.
func NeglectNumber(n network.Neglect) float64 { return neglect[n] }

// #endregion lookups
