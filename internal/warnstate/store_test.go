package warnstate

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "warn.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestLoadEmpty(t *testing.T) {
	s := setupStore(t)

	ws, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ws.Snoozed) != 0 || len(ws.Dismissed) != 0 {
		t.Fatalf("expected empty state, got %+v", ws)
	}
	if ws.Snoozed == nil || ws.Dismissed == nil {
		t.Fatal("expected allocated maps")
	}
}

func TestSnoozeDismissRoundTrip(t *testing.T) {
	s := setupStore(t)
	until := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	if err := s.Snooze("v1", until); err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if err := s.Dismiss("b1"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}

	ws, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ws.Snoozed["v1"].Equal(until) {
		t.Fatalf("expected snooze until %v, got %v", until, ws.Snoozed["v1"])
	}
	if !ws.Dismissed["b1"] {
		t.Fatal("expected b1 dismissed")
	}
	if ws.Dismissed["v1"] {
		t.Fatal("v1 should not be dismissed")
	}
}

func TestUndismissRestoresSnooze(t *testing.T) {
	s := setupStore(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	w := validation.Warning{NodeID: "n"}

	s.Snooze("n", now.Add(time.Hour))
	s.Dismiss("n")

	ws, _ := s.Load()
	if got := validation.StatusOf(w, ws, now); got != validation.StatusDismissed {
		t.Fatalf("expected dismissed, got %s", got)
	}

	if err := s.Undismiss("n"); err != nil {
		t.Fatalf("Undismiss: %v", err)
	}
	ws, _ = s.Load()
	if got := validation.StatusOf(w, ws, now); got != validation.StatusSnoozed {
		t.Fatalf("expected snoozed after undismiss, got %s", got)
	}

	if err := s.Unsnooze("n"); err != nil {
		t.Fatalf("Unsnooze: %v", err)
	}
	ws, _ = s.Load()
	if got := validation.StatusOf(w, ws, now); got != validation.StatusActive {
		t.Fatalf("expected active, got %s", got)
	}
}

func TestEmptyNodeID(t *testing.T) {
	s := setupStore(t)

	if err := s.Snooze("", time.Now()); !errors.Is(err, ErrEmptyNodeID) {
		t.Fatalf("expected ErrEmptyNodeID from Snooze, got %v", err)
	}
	if err := s.Dismiss(""); !errors.Is(err, ErrEmptyNodeID) {
		t.Fatalf("expected ErrEmptyNodeID from Dismiss, got %v", err)
	}
}

func TestPrune(t *testing.T) {
	s := setupStore(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	s.Snooze("expired", now.Add(-time.Minute))
	s.Snooze("future", now.Add(time.Hour))
	s.Snooze("dismissed", now.Add(-time.Minute))
	s.Dismiss("dismissed")

	removed, err := s.Prune(now)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 row removed, got %d", removed)
	}

	ws, _ := s.Load()
	if _, ok := ws.Snoozed["expired"]; ok {
		t.Fatal("expired snooze should be gone")
	}
	if _, ok := ws.Snoozed["future"]; !ok {
		t.Fatal("future snooze should remain")
	}
	if _, ok := ws.Snoozed["dismissed"]; ok {
		t.Fatal("expired snooze on dismissed node should be cleared")
	}
	if !ws.Dismissed["dismissed"] {
		t.Fatal("dismissal should survive prune")
	}
}
