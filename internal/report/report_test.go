package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func input(t *testing.T, ws validation.WarningState) Input {
	t.Helper()
	n := network.Network{
		Behaviours: []network.Behaviour{{ID: "b", Label: "Walk", Cost: network.CostLow}},
		Outcomes:   []network.Outcome{{ID: "o", Label: "Fresh air"}},
		Values: []network.Value{
			{ID: "v", Label: "Health", Importance: network.ImportanceHigh, Neglect: network.NeglectSevere},
			{ID: "art", Label: "Art", Importance: network.ImportanceLow, Neglect: network.NeglectAdequate},
		},
		Links: []network.Link{
			network.BehaviourOutcomeLink{ID: "l1", SourceID: "b", TargetID: "o", Valence: network.ValencePositive, Reliability: network.ReliabilityUsually},
			network.OutcomeValueLink{ID: "l2", SourceID: "o", TargetID: "v", Valence: network.ValencePositive, Strength: network.StrengthStrong},
		},
	}
	a, err := metrics.Analyze(n, metrics.DefaultRankingConfig())
	require.NoError(t, err)
	return Input{
		Analysis:     a,
		Validation:   validation.ValidateNetworkAt(n, ws, now),
		WarningState: ws,
		NetworkHash:  "abc",
		Now:          now,
	}
}

func TestBuildSummaryKeepsRankingOrder(t *testing.T) {
	s := BuildSummary(input(t, validation.NewWarningState()))

	require.Len(t, s.TopLeverage, 1)
	assert.Equal(t, "Walk", s.TopLeverage[0].Label)
	assert.Equal(t, []string{"Health"}, s.TopLeverage[0].Supports)
	assert.Empty(t, s.TopLeverage[0].Harms)

	require.Len(t, s.FragileValues, 2)
	assert.Equal(t, "art", s.FragileValues[0].ValueID, "orphan first")
	assert.True(t, s.FragileValues[0].Fragility.IsInfinite())
	assert.Equal(t, "v", s.FragileValues[1].ValueID)
	assert.Equal(t, []string{"Walk"}, s.FragileValues[1].Supporters)

	assert.Equal(t, 1, s.Warnings.Total)
	require.Len(t, s.ActiveWarnings, 1)
	assert.Equal(t, validation.WarningOrphanValue, s.ActiveWarnings[0].Type)
}

func TestSummaryJSONShape(t *testing.T) {
	data, err := json.Marshal(BuildSummary(input(t, validation.NewWarningState())))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	for _, key := range []string{"generatedAt", "networkHash", "topLeverage", "fragileValues", "conflictBehaviours", "warnings", "activeWarnings"} {
		assert.Contains(t, generic, key)
	}
	fragile := generic["fragileValues"].([]any)
	assert.Equal(t, "Infinity", fragile[0].(map[string]any)["fragility"])
}

func TestMarkdown(t *testing.T) {
	md := Markdown(input(t, validation.NewWarningState()))

	assert.True(t, strings.HasPrefix(md, "# Network analysis"))
	assert.Contains(t, md, "| 1 | Walk | 1.12 | 1 | Health |")
	assert.Contains(t, md, "| Art | ∞ | none |")
	assert.Contains(t, md, "No behaviour pulls strongly in both directions.")
	assert.Contains(t, md, "1 total, 1 active, 0 snoozed, 0 dismissed.")
	assert.Contains(t, md, "[warning]")
}

func TestMarkdownHidesDismissed(t *testing.T) {
	ws := validation.NewWarningState()
	ws.Dismissed["art"] = true

	md := Markdown(input(t, ws))

	assert.Contains(t, md, "1 total, 0 active, 0 snoozed, 1 dismissed.")
	assert.NotContains(t, md, "[warning]")
}

func TestMarkdownEscapesTableCells(t *testing.T) {
	in := input(t, validation.NewWarningState())
	in.Analysis.TopLeverage[0].Behaviour.Label = "Walk | run"
	in.Analysis.TopLeverage[0].SupportedValues[0].Label = "Health|body"
	for i := range in.Analysis.FragileValues {
		if in.Analysis.FragileValues[i].Value.ID == "art" {
			in.Analysis.FragileValues[i].Value.Label = "Art\nand craft"
		}
	}

	md := Markdown(in)

	assert.Contains(t, md, `| 1 | Walk \| run | 1.12 | 1 | Health\|body |`)
	assert.Contains(t, md, "| Art and craft | ∞ | none |")
}
