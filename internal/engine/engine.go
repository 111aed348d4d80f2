// Package engine bundles analysis and validation behind one call and owns the
// caller-side memoization of analysis reports.
package engine

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// #region types
// Config bundles the knobs of every stage.
type Config struct {
	Ranking metrics.RankingConfig
}

// DefaultConfig returns the default ranking thresholds.
func DefaultConfig() Config {
	return Config{Ranking: metrics.DefaultRankingConfig()}
}

// Outcome is one full pass over a network.
type Outcome struct {
	Hash       string            `json:"hash"`
	Analysis   metrics.Report    `json:"analysis"`
	Validation validation.Result `json:"validation"`
	Cached     bool              `json:"cached"`
}

// #endregion types

// #region engine
// Engine runs analysis and validation. A nil Cache disables memoization.
type Engine struct {
	config Config
	cache  *Cache
}

// New creates an engine. cache may be nil.
func New(config Config, cache *Cache) *Engine {
	return &Engine{config: config, cache: cache}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.config }

// Analyze returns the analysis report for n, from the cache when n's content was seen before.
func (e *Engine) Analyze(n network.Network) (metrics.Report, bool, error) {
	hash, err := network.Hash(n)
	if err != nil {
		return metrics.Report{}, false, err
	}
	return e.analyzeHashed(n, hash)
}

func (e *Engine) analyzeHashed(n network.Network, hash string) (metrics.Report, bool, error) {
	if e.cache != nil {
		if r, ok := e.cache.Get(hash); ok {
			return r, true, nil
		}
	}
	r, err := metrics.Analyze(n, e.config.Ranking)
	if err != nil {
		return metrics.Report{}, false, fmt.Errorf("analyze network %s: %w", short(hash), err)
	}
	if e.cache != nil {
		e.cache.Add(hash, r)
	}
	return r, false, nil
}

// Validate is never cached: its output depends on ws and now.
func (e *Engine) Validate(n network.Network, ws validation.WarningState, now time.Time) validation.Result {
	return validation.ValidateNetworkAt(n, ws, now)
}

// Run performs analysis and validation on the same snapshot.
func (e *Engine) Run(n network.Network, ws validation.WarningState, now time.Time) (Outcome, error) {
	hash, err := network.Hash(n)
	if err != nil {
		return Outcome{}, err
	}
	r, cached, err := e.analyzeHashed(n, hash)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Hash:       hash,
		Analysis:   r,
		Validation: e.Validate(n, ws, now),
		Cached:     cached,
	}, nil
}

// #endregion engine

// #region helpers
func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// #endregion helpers
