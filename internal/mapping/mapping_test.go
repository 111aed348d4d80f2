package mapping

import (
	"testing"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

func TestReliability(t *testing.T) {
	cases := map[network.Reliability]float64{
		network.ReliabilityAlways:    1.0,
		network.ReliabilityUsually:   0.75,
		network.ReliabilitySometimes: 0.5,
		network.ReliabilityRarely:    0.25,
	}
	for in, want := range cases {
		if got := Reliability(in); got != want {
			t.Errorf("Reliability(%s) = %v, want %v", in, got, want)
		}
	}
}

func TestStrength(t *testing.T) {
	cases := map[network.Strength]float64{
		network.StrengthStrong:   1.0,
		network.StrengthModerate: 0.6,
		network.StrengthWeak:     0.3,
	}
	for in, want := range cases {
		if got := Strength(in); got != want {
			t.Errorf("Strength(%s) = %v, want %v", in, got, want)
		}
	}
}

func TestValenceMultiplier(t *testing.T) {
	if ValenceMultiplier(network.ValencePositive) != 1 || ValenceMultiplier(network.ValenceNegative) != -1 {
		t.Errorf("multipliers %v %v, want 1 and -1",
			ValenceMultiplier(network.ValencePositive), ValenceMultiplier(network.ValenceNegative))
	}
}

func TestCostNumberDoubles(t *testing.T) {
	ordered := []network.Cost{
		network.CostTrivial, network.CostLow, network.CostMedium, network.CostHigh, network.CostVeryHigh,
	}
	want := 1.0
	for _, c := range ordered {
		if got := CostNumber(c); got != want {
			t.Errorf("CostNumber(%s) = %v, want %v", c, got, want)
		}
		want *= 2
	}
}

func TestImportanceAndNeglect(t *testing.T) {
	importance := map[network.Importance]float64{
		network.ImportanceCritical: 4,
		network.ImportanceHigh:     3,
		network.ImportanceMedium:   2,
		network.ImportanceLow:      1,
	}
	for in, want := range importance {
		if got := ImportanceNumber(in); got != want {
			t.Errorf("ImportanceNumber(%s) = %v, want %v", in, got, want)
		}
	}

	neglect := map[network.Neglect]float64{
		network.NeglectSevere:     4,
		network.NeglectSomewhat:   3,
		network.NeglectAdequate:   2,
		network.NeglectWellServed: 1,
	}
	for in, want := range neglect {
		if got := NeglectNumber(in); got != want {
			t.Errorf("NeglectNumber(%s) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalisedWeightsStayInUnitRange(t *testing.T) {
	for _, r := range []network.Reliability{"always", "usually", "sometimes", "rarely"} {
		for _, s := range []network.Strength{"strong", "moderate", "weak"} {
			if w := Reliability(r) * Strength(s); w <= 0 || w > 1 {
				t.Errorf("%s x %s = %v, outside (0, 1]", r, s, w)
			}
		}
	}
}
