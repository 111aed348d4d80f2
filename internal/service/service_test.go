package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/valuesnet/internal/engine"
	"github.com/danielpatrickdp/valuesnet/internal/logging"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
	"github.com/danielpatrickdp/valuesnet/internal/warnstate"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	metrics *Metrics
	store   *snapshot.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := snapshot.NewStore(filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ws, err := warnstate.NewStore(store.DB())
	require.NoError(t, err)
	cache, err := engine.NewCache(8)
	require.NoError(t, err)

	m := NewMetrics(prometheus.NewRegistry())
	svc := New(Deps{
		Snapshots:      store,
		Warnings:       ws,
		Engine:         engine.New(engine.DefaultConfig(), cache),
		Metrics:        m,
		Clock:          func() time.Time { return now },
		SnoozeDuration: 48 * time.Hour,
	})
	return fixture{svc: svc, metrics: m, store: store}
}

func sample() network.Network {
	return network.Network{
		Behaviours: []network.Behaviour{
			{ID: "b1", Label: "Walk", Cost: network.CostLow},
			{ID: "b2", Label: "Scroll", Cost: network.CostTrivial},
			{ID: "idle", Label: "Idle", Cost: network.CostLow},
		},
		Outcomes: []network.Outcome{{ID: "o1", Label: "Fresh air"}, {ID: "o2", Label: "Distraction"}},
		Values: []network.Value{
			{ID: "v1", Label: "Health", Importance: network.ImportanceHigh, Neglect: network.NeglectSomewhat},
			{ID: "v2", Label: "Focus", Importance: network.ImportanceCritical, Neglect: network.NeglectSevere},
		},
		Links: []network.Link{
			network.BehaviourOutcomeLink{ID: "l1", SourceID: "b1", TargetID: "o1", Valence: network.ValencePositive, Reliability: network.ReliabilityUsually},
			network.BehaviourOutcomeLink{ID: "l2", SourceID: "b2", TargetID: "o2", Valence: network.ValencePositive, Reliability: network.ReliabilityAlways},
			network.OutcomeValueLink{ID: "l3", SourceID: "o1", TargetID: "v1", Valence: network.ValencePositive, Strength: network.StrengthStrong},
			network.OutcomeValueLink{ID: "l4", SourceID: "o2", TargetID: "v2", Valence: network.ValenceNegative, Strength: network.StrengthModerate},
		},
	}
}

func TestImportCommitsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, created, err := f.svc.Import(ctx, sample(), "first")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.Import(ctx, sample(), "same content")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.VersionID, again.VersionID)

	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Imports.WithLabelValues("created")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Imports.WithLabelValues("unchanged")), 0)

	cur, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.VersionID, cur.VersionID)
}

func TestImportRejectsInvalidNetwork(t *testing.T) {
	f := newFixture(t)

	bad := sample()
	bad.Links = append(bad.Links, network.BehaviourOutcomeLink{
		ID: "l9", SourceID: "b1", TargetID: "ghost", Valence: network.ValencePositive, Reliability: network.ReliabilityUsually,
	})
	_, _, err := f.svc.Import(context.Background(), bad, "")

	assert.ErrorIs(t, err, network.ErrInvalidNetwork)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Imports.WithLabelValues("invalid")), 0)
	_, err = f.svc.Current(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrNoCurrent)
}

func TestAnalyzeWithoutCurrent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Analyze(context.Background())

	assert.ErrorIs(t, err, snapshot.ErrNoCurrent)
}

func TestAnalyzeRecordsRunAndMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec, _, err := f.svc.Import(ctx, sample(), "")
	require.NoError(t, err)

	first, err := f.svc.Analyze(ctx)
	require.NoError(t, err)
	assert.False(t, first.Outcome.Cached)
	assert.Equal(t, rec.VersionID, first.VersionID)
	assert.NotEmpty(t, first.RunID)
	require.NotEmpty(t, first.Outcome.Analysis.TopLeverage)
	assert.Equal(t, "b1", first.Outcome.Analysis.TopLeverage[0].Behaviour.ID)

	second, err := f.svc.Analyze(ctx)
	require.NoError(t, err)
	assert.True(t, second.Outcome.Cached)

	assert.InDelta(t, 2, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("full", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.CacheHits), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(f.metrics.Duration))

	runs, err := f.svc.Runs(ctx, rec.VersionID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID, runs[0].RunID)
	assert.Equal(t, logging.RunFull, runs[0].Kind)
	assert.True(t, runs[0].Cached)
	assert.Equal(t, "b1", runs[0].TopLeverageID)
	assert.Equal(t, rec.Hash, runs[0].NetworkHash)
}

func TestSnoozeAndDismissFlowIntoValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.svc.Import(ctx, sample(), "")
	require.NoError(t, err)

	r, err := f.svc.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, r.ByNodeID["idle"], 1)
	active := r.Counts.Active

	until, err := f.svc.Snooze(ctx, "idle", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, now.Add(48*time.Hour), until)

	r, err = f.svc.Validate(ctx)
	require.NoError(t, err)
	assert.Equal(t, active-1, r.Counts.Active)
	assert.Equal(t, 1, r.Counts.Snoozed)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Warnings.WithLabelValues("snoozed")), 0)

	require.NoError(t, f.svc.Dismiss(ctx, "idle"))
	r, err = f.svc.Validate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Counts.Dismissed)
	assert.Equal(t, 0, r.Counts.Snoozed)

	require.NoError(t, f.svc.Undismiss(ctx, "idle"))
	require.NoError(t, f.svc.Unsnooze(ctx, "idle"))
	r, err = f.svc.Validate(ctx)
	require.NoError(t, err)
	assert.Equal(t, active, r.Counts.Active)

	ws, err := f.svc.WarningState(ctx)
	require.NoError(t, err)
	assert.Empty(t, ws.Dismissed)
	assert.Empty(t, ws.Snoozed)
}

func TestSnoozeRejectsEmptyNode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Snooze(context.Background(), "", now.Add(time.Hour))

	assert.True(t, errors.Is(err, warnstate.ErrEmptyNodeID))
}

func TestAnalyzeNetworkIsNotStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.AnalyzeNetwork(ctx, sample())
	require.NoError(t, err)
	assert.Len(t, r.BehaviourMetrics, 3)

	_, err = f.svc.Current(ctx)
	assert.ErrorIs(t, err, snapshot.ErrNoCurrent)

	runs, err := f.svc.Runs(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, logging.RunAnalysis, runs[0].Kind)
	assert.Empty(t, runs[0].VersionID)
}

func TestValidateNetworkUsesGivenState(t *testing.T) {
	f := newFixture(t)
	ws := validation.NewWarningState()
	ws.Dismissed["idle"] = true

	r, err := f.svc.ValidateNetwork(context.Background(), sample(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Counts.Dismissed)
}

func TestHistoryAndRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _, err := f.svc.Import(ctx, sample(), "v1")
	require.NoError(t, err)
	changed := sample()
	changed.Behaviours[0].Label = "Long walk"
	second, _, err := f.svc.Import(ctx, changed, "v2")
	require.NoError(t, err)

	hist, err := f.svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, second.VersionID, hist[0].VersionID)
	assert.True(t, hist[0].Current)

	require.NoError(t, f.svc.Rollback(ctx, first.VersionID))
	cur, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.VersionID, cur.VersionID)

	err = f.svc.Rollback(ctx, "missing")
	assert.ErrorIs(t, err, snapshot.ErrVersionNotFound)
}

func TestPruneSnoozes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Snooze(ctx, "expired", now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Snooze(ctx, "live", now.Add(time.Hour))
	require.NoError(t, err)

	pruned, err := f.svc.PruneSnoozes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	ws, err := f.svc.WarningState(ctx)
	require.NoError(t, err)
	assert.Contains(t, ws.Snoozed, "live")
	assert.NotContains(t, ws.Snoozed, "expired")
}

func TestReportAndWarnings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec, _, err := f.svc.Import(ctx, sample(), "")
	require.NoError(t, err)
	require.NoError(t, f.svc.Dismiss(ctx, "idle"))

	in, err := f.svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.Hash, in.NetworkHash)
	assert.Equal(t, now, in.Now)
	assert.True(t, in.WarningState.Dismissed["idle"])

	all, err := f.svc.Warnings(ctx, "")
	require.NoError(t, err)
	dismissed, err := f.svc.Warnings(ctx, validation.StatusDismissed)
	require.NoError(t, err)
	require.Len(t, dismissed, 1)
	assert.Equal(t, "idle", dismissed[0].NodeID)
	assert.GreaterOrEqual(t, len(all), 1)
}
