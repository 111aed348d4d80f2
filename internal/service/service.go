// Package service is the caller-side owner of a network: it persists snapshots and warning
// state, runs the engine over the current snapshot, and records every run.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielpatrickdp/valuesnet/internal/engine"
	"github.com/danielpatrickdp/valuesnet/internal/logging"
	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/report"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/telemetry"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
	"github.com/danielpatrickdp/valuesnet/internal/warnstate"
)

// #region types

// Deps are the collaborators a Service is built from. Logger, Metrics, Tracer and Clock
// may be left zero.
type Deps struct {
	Snapshots      *snapshot.Store
	Warnings       *warnstate.Store
	Engine         *engine.Engine
	Logger         *slog.Logger
	Metrics        *Metrics
	Tracer         trace.Tracer
	Clock          func() time.Time
	SnoozeDuration time.Duration
}

// Service is safe for concurrent use; SQLite serializes writes.
type Service struct {
	snapshots *snapshot.Store
	warnings  *warnstate.Store
	engine    *engine.Engine
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	clock     func() time.Time
	snooze    time.Duration
}

// Run is one analysis of the current snapshot.
type Run struct {
	RunID     string         `json:"runId"`
	VersionID string         `json:"versionId"`
	Outcome   engine.Outcome `json:"outcome"`
}

// #endregion types

// #region constructor

// New wires a Service. Snapshots, Warnings and Engine are required.
func New(d Deps) *Service {
	s := &Service{
		snapshots: d.Snapshots,
		warnings:  d.Warnings,
		engine:    d.Engine,
		logger:    d.Logger,
		metrics:   d.Metrics,
		tracer:    d.Tracer,
		clock:     d.Clock,
		snooze:    d.SnoozeDuration,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = telemetry.Tracer()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.snooze <= 0 {
		s.snooze = 7 * 24 * time.Hour
	}
	return s
}

// Now reads the service clock.
func (s *Service) Now() time.Time { return s.clock() }

// #endregion constructor

// #region network

// Import validates n and commits it as the new current version.
func (s *Service) Import(ctx context.Context, n network.Network, note string) (snapshot.Record, bool, error) {
	_, span := s.tracer.Start(ctx, "service.Import")
	defer span.End()

	if err := network.Validate(n); err != nil {
		s.countImport("invalid")
		return snapshot.Record{}, false, fail(span, err)
	}
	rec, created, err := s.snapshots.Commit(n, "", note)
	if err != nil {
		s.countImport("error")
		return snapshot.Record{}, false, fail(span, fmt.Errorf("import network: %w", err))
	}

	outcome := "unchanged"
	if created {
		outcome = "created"
	}
	s.countImport(outcome)
	span.SetAttributes(attribute.String("version.id", rec.VersionID), attribute.Bool("version.created", created))
	s.logger.Info("network imported",
		"version", rec.VersionID, "created", created,
		"behaviours", len(n.Behaviours), "outcomes", len(n.Outcomes), "values", len(n.Values), "links", len(n.Links))
	return rec, created, nil
}

// Current returns the current snapshot.
func (s *Service) Current(ctx context.Context) (snapshot.Record, error) {
	_, span := s.tracer.Start(ctx, "service.Current")
	defer span.End()

	rec, err := s.snapshots.GetCurrent()
	if err != nil {
		return snapshot.Record{}, fail(span, err)
	}
	return rec, nil
}

// History lists recent versions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]snapshot.Summary, error) {
	_, span := s.tracer.Start(ctx, "service.History")
	defer span.End()

	out, err := s.snapshots.ListVersions(limit)
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

// Runs lists recorded runs, optionally for one version.
func (s *Service) Runs(ctx context.Context, versionID string, limit int) ([]logging.RunEntry, error) {
	_, span := s.tracer.Start(ctx, "service.Runs")
	defer span.End()

	out, err := logging.ListRuns(s.snapshots.DB(), versionID, limit)
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

// Rollback makes an earlier version current.
func (s *Service) Rollback(ctx context.Context, versionID string) error {
	_, span := s.tracer.Start(ctx, "service.Rollback")
	defer span.End()

	if err := s.snapshots.Rollback(versionID); err != nil {
		return fail(span, err)
	}
	s.logger.Info("rolled back", "version", versionID)
	return nil
}

// #endregion network

// #region analysis

// Analyze runs analysis and validation over the current snapshot and records the run.
func (s *Service) Analyze(ctx context.Context) (Run, error) {
	ctx, span := s.tracer.Start(ctx, "service.Analyze")
	defer span.End()

	rec, err := s.snapshots.GetCurrent()
	if err != nil {
		return Run{}, fail(span, err)
	}
	ws, err := s.warnings.Load()
	if err != nil {
		return Run{}, fail(span, err)
	}

	start := time.Now()
	out, err := s.engine.Run(rec.Network, ws, s.clock())
	elapsed := time.Since(start)
	if err != nil {
		s.observe(logging.RunFull, "error", elapsed)
		s.logger.Error("analysis failed", "version", rec.VersionID, "error", err)
		return Run{}, fail(span, err)
	}
	s.observe(logging.RunFull, "ok", elapsed)
	s.recordWarnings(out.Validation.Counts)
	if out.Cached && s.metrics != nil {
		s.metrics.CacheHits.Inc()
	}

	entry := runEntry(logging.RunFull, rec.VersionID, out.Hash, &out.Analysis, &out.Validation, out.Cached, elapsed)
	entry = s.logRun(ctx, entry)

	span.SetAttributes(
		attribute.String("version.id", rec.VersionID),
		attribute.Bool("cache.hit", out.Cached),
		attribute.Int("warnings.total", out.Validation.Counts.Total),
	)
	s.logger.Info("analysis complete",
		"version", rec.VersionID, "cached", out.Cached, "duration", elapsed,
		"top_leverage", len(out.Analysis.TopLeverage), "fragile", len(out.Analysis.FragileValues),
		"warnings", out.Validation.Counts.Total)
	return Run{RunID: entry.RunID, VersionID: rec.VersionID, Outcome: out}, nil
}

// Report analyzes the current snapshot and returns what the report renderers need.
func (s *Service) Report(ctx context.Context) (report.Input, error) {
	run, err := s.Analyze(ctx)
	if err != nil {
		return report.Input{}, err
	}
	ws, err := s.warnings.Load()
	if err != nil {
		return report.Input{}, err
	}
	return report.Input{
		Analysis:     run.Outcome.Analysis,
		Validation:   run.Outcome.Validation,
		WarningState: ws,
		NetworkHash:  run.Outcome.Hash,
		Now:          s.clock(),
	}, nil
}

// Validate validates the current snapshot against the stored warning state.
func (s *Service) Validate(ctx context.Context) (validation.Result, error) {
	ctx, span := s.tracer.Start(ctx, "service.Validate")
	defer span.End()

	rec, err := s.snapshots.GetCurrent()
	if err != nil {
		return validation.Result{}, fail(span, err)
	}
	ws, err := s.warnings.Load()
	if err != nil {
		return validation.Result{}, fail(span, err)
	}

	start := time.Now()
	r := s.engine.Validate(rec.Network, ws, s.clock())
	elapsed := time.Since(start)
	s.observe(logging.RunValidation, "ok", elapsed)
	s.recordWarnings(r.Counts)
	s.logRun(ctx, runEntry(logging.RunValidation, rec.VersionID, rec.Hash, nil, &r, false, elapsed))
	return r, nil
}

// AnalyzeNetwork analyzes a network that is not stored. It is validated first.
func (s *Service) AnalyzeNetwork(ctx context.Context, n network.Network) (metrics.Report, error) {
	ctx, span := s.tracer.Start(ctx, "service.AnalyzeNetwork")
	defer span.End()

	if err := network.Validate(n); err != nil {
		return metrics.Report{}, fail(span, err)
	}
	hash, err := network.Hash(n)
	if err != nil {
		return metrics.Report{}, fail(span, err)
	}

	start := time.Now()
	r, cached, err := s.engine.Analyze(n)
	elapsed := time.Since(start)
	if err != nil {
		s.observe(logging.RunAnalysis, "error", elapsed)
		return metrics.Report{}, fail(span, err)
	}
	s.observe(logging.RunAnalysis, "ok", elapsed)
	if cached && s.metrics != nil {
		s.metrics.CacheHits.Inc()
	}
	s.logRun(ctx, runEntry(logging.RunAnalysis, "", hash, &r, nil, cached, elapsed))
	return r, nil
}

// ValidateNetwork validates a network that is not stored, against a caller-supplied state.
func (s *Service) ValidateNetwork(ctx context.Context, n network.Network, ws validation.WarningState) (validation.Result, error) {
	_, span := s.tracer.Start(ctx, "service.ValidateNetwork")
	defer span.End()

	if err := network.Validate(n); err != nil {
		return validation.Result{}, fail(span, err)
	}
	start := time.Now()
	r := s.engine.Validate(n, ws, s.clock())
	s.observe(logging.RunValidation, "ok", time.Since(start))
	return r, nil
}

// #endregion analysis

// #region warning-state

// WarningState returns the stored snooze and dismiss marks.
func (s *Service) WarningState(ctx context.Context) (validation.WarningState, error) {
	_, span := s.tracer.Start(ctx, "service.WarningState")
	defer span.End()

	ws, err := s.warnings.Load()
	if err != nil {
		return ws, fail(span, err)
	}
	return ws, nil
}

// Snooze hides nodeID's warnings until until, or for the configured duration when until is zero.
// It returns the effective snooze end.
func (s *Service) Snooze(ctx context.Context, nodeID string, until time.Time) (time.Time, error) {
	_, span := s.tracer.Start(ctx, "service.Snooze")
	defer span.End()

	if until.IsZero() {
		until = s.clock().Add(s.snooze)
	}
	if err := s.warnings.Snooze(nodeID, until); err != nil {
		return time.Time{}, fail(span, err)
	}
	s.logger.Info("warning snoozed", "node", nodeID, "until", until)
	return until, nil
}

// Unsnooze clears a snooze on nodeID.
func (s *Service) Unsnooze(ctx context.Context, nodeID string) error {
	_, span := s.tracer.Start(ctx, "service.Unsnooze")
	defer span.End()

	if err := s.warnings.Unsnooze(nodeID); err != nil {
		return fail(span, err)
	}
	s.logger.Info("warning unsnoozed", "node", nodeID)
	return nil
}

// Dismiss dismisses nodeID's warnings.
func (s *Service) Dismiss(ctx context.Context, nodeID string) error {
	_, span := s.tracer.Start(ctx, "service.Dismiss")
	defer span.End()

	if err := s.warnings.Dismiss(nodeID); err != nil {
		return fail(span, err)
	}
	s.logger.Info("warning dismissed", "node", nodeID)
	return nil
}

// Undismiss restores nodeID's warnings.
func (s *Service) Undismiss(ctx context.Context, nodeID string) error {
	_, span := s.tracer.Start(ctx, "service.Undismiss")
	defer span.End()

	if err := s.warnings.Undismiss(nodeID); err != nil {
		return fail(span, err)
	}
	s.logger.Info("warning undismissed", "node", nodeID)
	return nil
}

// Warnings validates the current snapshot and returns the warnings in status s.
// An empty status returns every warning.
func (s *Service) Warnings(ctx context.Context, status validation.Status) ([]validation.Warning, error) {
	r, err := s.Validate(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return r.Warnings, nil
	}
	ws, err := s.warnings.Load()
	if err != nil {
		return nil, err
	}
	return r.Filter(ws, s.clock(), status), nil
}

// PruneSnoozes drops snoozes that have ended.
func (s *Service) PruneSnoozes(ctx context.Context) (int64, error) {
	_, span := s.tracer.Start(ctx, "service.PruneSnoozes")
	defer span.End()

	n, err := s.warnings.Prune(s.clock())
	if err != nil {
		return 0, fail(span, err)
	}
	return n, nil
}

// #endregion warning-state

// #region helpers

func runEntry(kind logging.RunKind, versionID, hash string, a *metrics.Report, v *validation.Result, cached bool, d time.Duration) logging.RunEntry {
	e := logging.RunEntry{
		VersionID:   versionID,
		NetworkHash: hash,
		Kind:        kind,
		Cached:      cached,
		Duration:    d,
	}
	if a != nil {
		e.FragileCount = len(a.FragileValues)
		if len(a.TopLeverage) > 0 {
			e.TopLeverageID = a.TopLeverage[0].Behaviour.ID
		}
	}
	if v != nil {
		e.WarningsTotal = v.Counts.Total
		e.WarningsActive = v.Counts.Active
	}
	return e
}

// logRun records e. A failed write is logged and does not fail the run.
func (s *Service) logRun(ctx context.Context, e logging.RunEntry) logging.RunEntry {
	logged, err := logging.LogRun(s.snapshots.DB(), e)
	if err != nil {
		s.logger.WarnContext(ctx, "run log write failed", "kind", e.Kind, "error", err)
	}
	return logged
}

func (s *Service) observe(kind logging.RunKind, result string, d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.Runs.WithLabelValues(string(kind), result).Inc()
	s.metrics.Duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (s *Service) recordWarnings(c validation.Counts) {
	if s.metrics == nil {
		return
	}
	s.metrics.Warnings.WithLabelValues(string(validation.StatusActive)).Set(float64(c.Active))
	s.metrics.Warnings.WithLabelValues(string(validation.StatusSnoozed)).Set(float64(c.Snoozed))
	s.metrics.Warnings.WithLabelValues(string(validation.StatusDismissed)).Set(float64(c.Dismissed))
}

func (s *Service) countImport(outcome string) {
	if s.metrics != nil {
		s.metrics.Imports.WithLabelValues(outcome).Inc()
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// #endregion helpers
