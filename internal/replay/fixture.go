package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a regression fixture: one network,
// the warning state and clock it is judged under, and the rankings it must produce.
type Fixture struct {
	Description  string                   `json:"description"`
	Now          time.Time                `json:"now"`
	Config       *metrics.RankingConfig   `json:"config,omitempty"`
	Network      network.Network          `json:"network"`
	WarningState *validation.WarningState `json:"warning_state,omitempty"`
	Expected     Expectation              `json:"expected"`
}

// Expectation is what a fixture pins down. Ranked lists are compared in order.
type Expectation struct {
	TopLeverage        []string                       `json:"top_leverage"`
	FragileValues      []string                       `json:"fragile_values"`
	ConflictBehaviours []string                       `json:"conflict_behaviours"`
	Warnings           map[validation.WarningType]int `json:"warnings"`
	Active             int                            `json:"active"`
	Snoozed            int                            `json:"snoozed"`
	Dismissed          int                            `json:"dismissed"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// RankingConfig returns the fixture's thresholds, or the defaults when it names none.
func (f *Fixture) RankingConfig() metrics.RankingConfig {
	if f.Config == nil {
		return metrics.DefaultRankingConfig()
	}
	return *f.Config
}

// State returns the fixture's warning state, or an empty one.
func (f *Fixture) State() validation.WarningState {
	if f.WarningState == nil {
		return validation.NewWarningState()
	}
	return *f.WarningState
}

// #endregion fixture-loader
