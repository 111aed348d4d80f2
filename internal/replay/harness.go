// Package replay runs stored networks through the analysis engine and compares the
// rankings and warning counts against recorded expectations.
package replay

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/danielpatrickdp/valuesnet/internal/engine"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// #region types

// Mismatch is one field where the engine disagreed with the fixture.
type Mismatch struct {
	Field    string
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", m.Field, m.Expected, m.Actual)
}

// Result is the outcome of replaying one fixture.
type Result struct {
	Description string
	Actual      Expectation
	Mismatches  []Mismatch
}

// Passed reports whether every expectation held.
func (r Result) Passed() bool { return len(r.Mismatches) == 0 }

// Summary provides aggregate stats over a set of replays.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// #endregion types

// #region replay

// Replay validates the fixture's network, runs it through a fresh uncached engine
// at the fixture's clock and diffs the outcome against the expectation.
func Replay(f *Fixture) (Result, error) {
	if err := network.Validate(f.Network); err != nil {
		return Result{}, err
	}
	eng := engine.New(engine.Config{Ranking: f.RankingConfig()}, nil)
	out, err := eng.Run(f.Network, f.State(), f.Now)
	if err != nil {
		return Result{}, err
	}

	actual := Capture(out)
	return Result{
		Description: f.Description,
		Actual:      actual,
		Mismatches:  Diff(f.Expected, actual),
	}, nil
}

// Capture reduces an engine outcome to the fields a fixture records.
func Capture(out engine.Outcome) Expectation {
	a := out.Analysis
	e := Expectation{
		TopLeverage:        make([]string, 0, len(a.TopLeverage)),
		FragileValues:      make([]string, 0, len(a.FragileValues)),
		ConflictBehaviours: make([]string, 0, len(a.ConflictBehaviours)),
		Warnings:           map[validation.WarningType]int{},
		Active:             out.Validation.Counts.Active,
		Snoozed:            out.Validation.Counts.Snoozed,
		Dismissed:          out.Validation.Counts.Dismissed,
	}
	for _, l := range a.TopLeverage {
		e.TopLeverage = append(e.TopLeverage, l.Behaviour.ID)
	}
	for _, v := range a.FragileValues {
		e.FragileValues = append(e.FragileValues, v.Value.ID)
	}
	for _, c := range a.ConflictBehaviours {
		e.ConflictBehaviours = append(e.ConflictBehaviours, c.Behaviour.ID)
	}
	for t, n := range out.Validation.Counts.ByType {
		if n > 0 {
			e.Warnings[t] = n
		}
	}
	return e
}

// Diff lists every field where actual departs from expected. Warning types missing
// from either side count as zero.
func Diff(expected, actual Expectation) []Mismatch {
	var out []Mismatch
	list := func(field string, want, got []string) {
		if !slices.Equal(want, got) {
			out = append(out, Mismatch{Field: field, Expected: fmtIDs(want), Actual: fmtIDs(got)})
		}
	}
	count := func(field string, want, got int) {
		if want != got {
			out = append(out, Mismatch{Field: field, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)})
		}
	}

	list("top_leverage", expected.TopLeverage, actual.TopLeverage)
	list("fragile_values", expected.FragileValues, actual.FragileValues)
	list("conflict_behaviours", expected.ConflictBehaviours, actual.ConflictBehaviours)

	types := slices.Sorted(maps.Keys(expected.Warnings))
	for t := range actual.Warnings {
		if _, ok := expected.Warnings[t]; !ok {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	for _, t := range types {
		count("warnings."+string(t), expected.Warnings[t], actual.Warnings[t])
	}

	count("active", expected.Active, actual.Active)
	count("snoozed", expected.Snoozed, actual.Snoozed)
	count("dismissed", expected.Dismissed, actual.Dismissed)
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion replay

func fmtIDs(ids []string) string {
	return "[" + strings.Join(ids, ", ") + "]"
}
