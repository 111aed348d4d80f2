package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE run_log (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id          TEXT NOT NULL,
		version_id      TEXT,
		network_hash    TEXT NOT NULL,
		kind            TEXT NOT NULL,
		warnings_total  INTEGER NOT NULL DEFAULT 0,
		warnings_active INTEGER NOT NULL DEFAULT 0,
		top_leverage_id TEXT,
		fragile_count   INTEGER NOT NULL DEFAULT 0,
		cached          INTEGER NOT NULL DEFAULT 0,
		duration_ms     REAL NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-run-tests
func TestLogRun_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := RunEntry{
		RunID:          "r1",
		VersionID:      "v1",
		NetworkHash:    "abc123",
		Kind:           RunFull,
		WarningsTotal:  3,
		WarningsActive: 2,
		TopLeverageID:  "b1",
		FragileCount:   1,
		Cached:         true,
		Duration:       1500 * time.Microsecond,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if _, err := LogRun(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runs, err := ListRuns(db, "", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.RunID != "r1" || got.VersionID != "v1" || got.Kind != RunFull {
		t.Errorf("unexpected identity fields: %+v", got)
	}
	if got.WarningsTotal != 3 || got.WarningsActive != 2 || got.FragileCount != 1 || !got.Cached {
		t.Errorf("unexpected counters: %+v", got)
	}
	if got.Duration != 1500*time.Microsecond {
		t.Errorf("expected 1.5ms, got %v", got.Duration)
	}
	if !got.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("expected %v, got %v", entry.CreatedAt, got.CreatedAt)
	}
}

func TestLogRun_FillsDefaults(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	logged, err := LogRun(db, RunEntry{NetworkHash: "h", Kind: RunAnalysis})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logged.RunID == "" {
		t.Error("expected generated run id")
	}
	if logged.CreatedAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}

	var version, top sql.NullString
	db.QueryRow("SELECT version_id, top_leverage_id FROM run_log").Scan(&version, &top)
	if version.Valid {
		t.Error("expected NULL version_id for empty string")
	}
	if top.Valid {
		t.Error("expected NULL top_leverage_id for empty string")
	}
}

func TestListRuns_FilterAndOrder(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for _, e := range []RunEntry{
		{RunID: "a", VersionID: "v1", NetworkHash: "h1", Kind: RunAnalysis},
		{RunID: "b", VersionID: "v2", NetworkHash: "h2", Kind: RunValidation},
		{RunID: "c", VersionID: "v1", NetworkHash: "h1", Kind: RunFull},
	} {
		if _, err := LogRun(db, e); err != nil {
			t.Fatalf("LogRun %s: %v", e.RunID, err)
		}
	}

	runs, err := ListRuns(db, "v1", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "a" {
		t.Fatalf("expected [c a], got %+v", runs)
	}

	limited, _ := ListRuns(db, "", 1)
	if len(limited) != 1 || limited[0].RunID != "c" {
		t.Fatalf("expected newest run only, got %+v", limited)
	}
}

func TestLatestAnalysis_SkipsValidationRuns(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for _, e := range []RunEntry{
		{RunID: "a", VersionID: "v1", NetworkHash: "h1", Kind: RunFull, TopLeverageID: "b1"},
		{RunID: "b", VersionID: "v1", NetworkHash: "h1", Kind: RunValidation},
		{RunID: "c", VersionID: "v2", NetworkHash: "h2", Kind: RunValidation},
	} {
		if _, err := LogRun(db, e); err != nil {
			t.Fatalf("LogRun %s: %v", e.RunID, err)
		}
	}

	got, ok, err := LatestAnalysis(db, "v1")
	if err != nil {
		t.Fatalf("LatestAnalysis: %v", err)
	}
	if !ok || got.RunID != "a" || got.TopLeverageID != "b1" {
		t.Fatalf("expected run a, got ok=%v %+v", ok, got)
	}

	if _, ok, err := LatestAnalysis(db, "v2"); err != nil || ok {
		t.Fatalf("expected no analysis for v2, got ok=%v err=%v", ok, err)
	}
}

func TestLogRun_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	if _, err := LogRun(db, RunEntry{NetworkHash: "h", Kind: RunFull}); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-run-tests

// #region null-if-empty-tests
func TestNullIfEmpty(t *testing.T) {
	if result := nullIfEmpty(""); result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
	if result := nullIfEmpty("hello"); result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}

// #endregion null-if-empty-tests
