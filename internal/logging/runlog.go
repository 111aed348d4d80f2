// Package logging records every analysis and validation run in the run_log table.
package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #region log-run
// LogRun writes a run entry. RunID and CreatedAt are filled in when empty.
func LogRun(db *sql.DB, entry RunEntry) (RunEntry, error) {
	if entry.RunID == "" {
		entry.RunID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO run_log (run_id, version_id, network_hash, kind, warnings_total, warnings_active,
			top_leverage_id, fragile_count, cached, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		nullIfEmpty(entry.VersionID),
		entry.NetworkHash,
		string(entry.Kind),
		entry.WarningsTotal,
		entry.WarningsActive,
		nullIfEmpty(entry.TopLeverageID),
		entry.FragileCount,
		entry.Cached,
		float64(entry.Duration)/float64(time.Millisecond),
		entry.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return entry, fmt.Errorf("log run: %w", err)
	}
	return entry, nil
}

// #endregion log-run

// #region list-runs
// ListRuns returns the most recent runs, newest first. A non-empty versionID restricts
// the listing to runs over that version. A non-positive limit lists every run.
func ListRuns(db *sql.DB, versionID string, limit int) ([]RunEntry, error) {
	query := `SELECT run_id, version_id, network_hash, kind, warnings_total, warnings_active,
			top_leverage_id, fragile_count, cached, duration_ms, created_at
		 FROM run_log`
	args := []any{}
	if versionID != "" {
		query += ` WHERE version_id = ?`
		args = append(args, versionID)
	}
	if limit <= 0 {
		limit = -1
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	return queryRuns(db, query, args...)
}

// LatestAnalysis returns the newest run over versionID that computed an analysis report,
// skipping validation-only runs. ok is false when the version was never analyzed.
func LatestAnalysis(db *sql.DB, versionID string) (entry RunEntry, ok bool, err error) {
	entries, err := queryRuns(db, `SELECT run_id, version_id, network_hash, kind, warnings_total, warnings_active,
			top_leverage_id, fragile_count, cached, duration_ms, created_at
		 FROM run_log WHERE version_id = ? AND kind != ? ORDER BY id DESC LIMIT 1`,
		versionID, string(RunValidation))
	if err != nil {
		return RunEntry{}, false, err
	}
	if len(entries) == 0 {
		return RunEntry{}, false, nil
	}
	return entries[0], true, nil
}

func queryRuns(db *sql.DB, query string, args ...any) ([]RunEntry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	entries := []RunEntry{}
	for rows.Next() {
		var e RunEntry
		var version, top sql.NullString
		var kind, created string
		var ms float64
		if err := rows.Scan(&e.RunID, &version, &e.NetworkHash, &kind, &e.WarningsTotal, &e.WarningsActive,
			&top, &e.FragileCount, &e.Cached, &ms, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.VersionID = version.String
		e.TopLeverageID = top.String
		e.Kind = RunKind(kind)
		e.Duration = time.Duration(ms * float64(time.Millisecond))
		e.CreatedAt, _ = time.Parse(timeFormat, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list-runs

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
