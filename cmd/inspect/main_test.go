package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/valuesnet/internal/engine"
	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/service"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/warnstate"
)

func chainNetwork() network.Network {
	return network.Network{
		Behaviours: []network.Behaviour{{ID: "B", Label: "Walk", Cost: network.CostLow}},
		Outcomes:   []network.Outcome{{ID: "O", Label: "Fresh air"}},
		Values: []network.Value{{ID: "V", Label: "Health",
			Importance: network.ImportanceHigh, Neglect: network.NeglectAdequate}},
		Links: []network.Link{
			network.BehaviourOutcomeLink{ID: "l1", SourceID: "B", TargetID: "O",
				Valence: network.ValencePositive, Reliability: network.ReliabilityUsually},
			network.OutcomeValueLink{ID: "l2", SourceID: "O", TargetID: "V",
				Valence: network.ValencePositive, Strength: network.StrengthStrong},
		},
	}
}

func openService(t *testing.T) (*snapshot.Store, *service.Service) {
	t.Helper()
	store, err := snapshot.NewStore(filepath.Join(t.TempDir(), "valuesnet.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ws, err := warnstate.NewStore(store.DB())
	if err != nil {
		t.Fatalf("warnstate.NewStore: %v", err)
	}
	return store, service.New(service.Deps{
		Snapshots: store,
		Warnings:  ws,
		Engine:    engine.New(engine.Config{Ranking: metrics.DefaultRankingConfig()}, nil),
	})
}

func TestListRows_ValidateKeepsAnalysisSummary(t *testing.T) {
	store, svc := openService(t)
	ctx := context.Background()
	if _, _, err := svc.Import(ctx, chainNetwork(), "seed"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := svc.Analyze(ctx); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, err := svc.Validate(ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	rows, err := listRows(store, 20)
	if err != nil {
		t.Fatalf("listRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Runs != 2 {
		t.Errorf("expected 2 runs, got %d", row.Runs)
	}
	if row.TopID != "B" {
		t.Errorf("expected top leverage B from the analysis run, got %q", row.TopID)
	}
	if row.Warnings == nil || *row.Warnings != 0 {
		t.Errorf("expected 0 active warnings from the analysis run, got %v", row.Warnings)
	}
}

func TestListRows_NeverAnalyzed(t *testing.T) {
	store, svc := openService(t)
	ctx := context.Background()
	if _, _, err := svc.Import(ctx, chainNetwork(), "seed"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := svc.Validate(ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	rows, err := listRows(store, 20)
	if err != nil {
		t.Fatalf("listRows: %v", err)
	}
	if len(rows) != 1 || rows[0].TopID != "" || rows[0].Warnings != nil {
		t.Fatalf("expected a bare row for an unanalyzed version, got %+v", rows)
	}
}
