// Package report turns analysis and validation results into human-readable Markdown and a
// compact JSON summary. Both read the ranked views in the order the engine produced them.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// #region types

// Summary is the JSON export. Field names are part of the export format.
type Summary struct {
	GeneratedAt        time.Time            `json:"generatedAt"`
	NetworkHash        string               `json:"networkHash,omitempty"`
	TopLeverage        []LeverageLine       `json:"topLeverage"`
	FragileValues      []FragileLine        `json:"fragileValues"`
	ConflictBehaviours []ConflictLine       `json:"conflictBehaviours"`
	Warnings           validation.Counts    `json:"warnings"`
	ActiveWarnings     []validation.Warning `json:"activeWarnings"`
}

// LeverageLine is one top-leverage behaviour.
type LeverageLine struct {
	BehaviourID string   `json:"behaviourId"`
	Label       string   `json:"label"`
	Leverage    float64  `json:"leverage"`
	Coverage    int      `json:"coverage"`
	Supports    []string `json:"supports"`
	Harms       []string `json:"harms"`
}

// FragileLine is one fragile value.
type FragileLine struct {
	ValueID    string        `json:"valueId"`
	Label      string        `json:"label"`
	Fragility  metrics.Score `json:"fragility"`
	Supporters []string      `json:"supporters"`
}

// ConflictLine is one conflicted behaviour.
type ConflictLine struct {
	BehaviourID string   `json:"behaviourId"`
	Label       string   `json:"label"`
	Conflict    float64  `json:"conflict"`
	Supports    []string `json:"supports"`
	Harms       []string `json:"harms"`
}

// Input is everything a report is rendered from.
type Input struct {
	Analysis     metrics.Report
	Validation   validation.Result
	WarningState validation.WarningState
	NetworkHash  string
	Now          time.Time
}

// #endregion types

// #region summary

// BuildSummary projects the ranked views onto labels and ids.
func BuildSummary(in Input) Summary {
	s := Summary{
		GeneratedAt:        in.Now.UTC(),
		NetworkHash:        in.NetworkHash,
		TopLeverage:        make([]LeverageLine, 0, len(in.Analysis.TopLeverage)),
		FragileValues:      make([]FragileLine, 0, len(in.Analysis.FragileValues)),
		ConflictBehaviours: make([]ConflictLine, 0, len(in.Analysis.ConflictBehaviours)),
		Warnings:           in.Validation.Counts,
		ActiveWarnings:     in.Validation.Filter(in.WarningState, in.Now, validation.StatusActive),
	}
	for _, e := range in.Analysis.TopLeverage {
		s.TopLeverage = append(s.TopLeverage, LeverageLine{
			BehaviourID: e.Behaviour.ID,
			Label:       e.Behaviour.Label,
			Leverage:    e.Metrics.LeverageScore,
			Coverage:    e.Metrics.Coverage,
			Supports:    valueLabels(e.SupportedValues),
			Harms:       valueLabels(e.HarmedValues),
		})
	}
	for _, e := range in.Analysis.FragileValues {
		s.FragileValues = append(s.FragileValues, FragileLine{
			ValueID:    e.Value.ID,
			Label:      e.Value.Label,
			Fragility:  e.Metrics.FragilityScore,
			Supporters: behaviourLabels(e.Supporters),
		})
	}
	for _, e := range in.Analysis.ConflictBehaviours {
		s.ConflictBehaviours = append(s.ConflictBehaviours, ConflictLine{
			BehaviourID: e.Behaviour.ID,
			Label:       e.Behaviour.Label,
			Conflict:    e.Metrics.ConflictIndex,
			Supports:    valueLabels(e.SupportedValues),
			Harms:       valueLabels(e.HarmedValues),
		})
	}
	return s
}

// #endregion summary

// #region markdown

// Markdown renders the summary as a Markdown document.
func Markdown(in Input) string {
	s := BuildSummary(in)
	var b strings.Builder

	b.WriteString("# Network analysis\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", s.GeneratedAt.Format(time.RFC1123))

	b.WriteString("## Highest leverage\n\n")
	if len(s.TopLeverage) == 0 {
		b.WriteString("No behaviour has positive leverage yet.\n\n")
	} else {
		b.WriteString("| # | Behaviour | Leverage | Coverage | Supports |\n|---|---|---|---|---|\n")
		for i, l := range s.TopLeverage {
			fmt.Fprintf(&b, "| %d | %s | %.2f | %d | %s |\n", i+1, cell(l.Label), l.Leverage, l.Coverage, cell(join(l.Supports)))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Fragile values\n\n")
	if len(s.FragileValues) == 0 {
		b.WriteString("Every value is adequately supported.\n\n")
	} else {
		b.WriteString("| Value | Fragility | Supported by |\n|---|---|---|\n")
		for _, f := range s.FragileValues {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(f.Label), f.Fragility, cell(join(f.Supporters)))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Conflicted behaviours\n\n")
	if len(s.ConflictBehaviours) == 0 {
		b.WriteString("No behaviour pulls strongly in both directions.\n\n")
	} else {
		for _, c := range s.ConflictBehaviours {
			fmt.Fprintf(&b, "- **%s** (conflict %.2f): supports %s, harms %s\n", c.Label, c.Conflict, join(c.Supports), join(c.Harms))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Warnings\n\n")
	fmt.Fprintf(&b, "%d total, %d active, %d snoozed, %d dismissed.\n\n",
		s.Warnings.Total, s.Warnings.Active, s.Warnings.Snoozed, s.Warnings.Dismissed)
	for _, w := range s.ActiveWarnings {
		fmt.Fprintf(&b, "- [%s] %s", w.Severity, w.Message)
		if w.Suggestion != "" {
			fmt.Fprintf(&b, " %s", w.Suggestion)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// #endregion markdown

// #region helpers

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// cell makes text safe inside a Markdown table cell.
func cell(text string) string {
	return cellEscaper.Replace(text)
}

func join(labels []string) string {
	if len(labels) == 0 {
		return "none"
	}
	return strings.Join(labels, ", ")
}

func valueLabels(vs []network.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Label
	}
	return out
}

func behaviourLabels(bs []network.Behaviour) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Label
	}
	return out
}

// #endregion helpers
