package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Runs      *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	Warnings  *prometheus.GaugeVec
	CacheHits prometheus.Counter
	Imports   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "valuesnet_analysis_total",
			Help: "Analysis and validation runs by kind and result.",
		}, []string{"kind", "result"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "valuesnet_analysis_duration_seconds",
			Help:    "Time spent computing a run.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"kind"}),
		Warnings: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "valuesnet_warnings",
			Help: "Warnings on the current network by status, as of the last validation.",
		}, []string{"status"}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "valuesnet_analysis_cache_hits_total",
			Help: "Analysis reports served from the cache.",
		}),
		Imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "valuesnet_imports_total",
			Help: "Network imports by outcome.",
		}, []string{"outcome"}),
	}
}
