// Package snapshot keeps versioned copies of the network in SQLite. Every commit writes a
// new row; the active pointer selects which version the engine sees.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS network_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	network_json  TEXT NOT NULL,
	network_hash  TEXT NOT NULL,
	note          TEXT,
	behaviours    INTEGER NOT NULL DEFAULT 0,
	outcomes      INTEGER NOT NULL DEFAULT 0,
	value_count   INTEGER NOT NULL DEFAULT 0,
	links         INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES network_versions(version_id)
);

CREATE TABLE IF NOT EXISTS run_log (
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
	created_at      TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES network_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_network (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES network_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store manages versioned networks in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the run log and the warning-state store.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region commit
// Commit stores n as a new version on top of parentID and makes it current.
// An empty parentID means "on top of the current version". When n hashes the same as the
// current version nothing is written and the current record is returned with created=false.
func (s *Store) Commit(n network.Network, parentID, note string) (rec Record, created bool, err error) {
	hash, err := network.Hash(n)
	if err != nil {
		return Record{}, false, err
	}

	cur, err := s.GetCurrent()
	switch {
	case err == nil:
		if cur.Hash == hash {
			return cur, false, nil
		}
		if parentID == "" {
			parentID = cur.VersionID
		}
	case errors.Is(err, ErrNoCurrent):
	default:
		return Record{}, false, err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return Record{}, false, fmt.Errorf("marshal network: %w", err)
	}

	rec = Record{
		VersionID: uuid.New().String(),
		ParentID:  parentID,
		Network:   n,
		Hash:      hash,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO network_versions (version_id, parent_id, network_json, network_hash, note,
			behaviours, outcomes, value_count, links, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), string(body), hash, nullIfEmpty(note),
		len(n.Behaviours), len(n.Outcomes), len(n.Values), len(n.Links),
		rec.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_network (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, false, fmt.Errorf("commit: %w", err)
	}
	return rec, true, nil
}

// #endregion commit

// #region get-current
// GetCurrent reads the active version. It returns ErrNoCurrent before the first commit.
func (s *Store) GetCurrent() (Record, error) {
	id, err := s.currentID()
	if err != nil {
		return Record{}, err
	}
	return s.GetVersion(id)
}

func (s *Store) currentID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT version_id FROM active_network WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCurrent
	}
	if err != nil {
		return "", fmt.Errorf("get active: %w", err)
	}
	return id, nil
}

// #endregion get-current

// #region get-version
// GetVersion retrieves a specific version by id.
func (s *Store) GetVersion(id string) (Record, error) {
	var rec Record
	var parentID, note sql.NullString
	var body, createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, parent_id, network_json, network_hash, note, created_at
		 FROM network_versions WHERE version_id = ?`, id,
	).Scan(&rec.VersionID, &parentID, &body, &rec.Hash, &note, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get version %s: %w", id, ErrVersionNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}

	rec.ParentID = parentID.String
	rec.Note = note.String
	if err := json.Unmarshal([]byte(body), &rec.Network); err != nil {
		return Record{}, fmt.Errorf("unmarshal network %s: %w", id, err)
	}
	rec.CreatedAt, _ = time.Parse(timeFormat, createdStr)
	return rec, nil
}

// #endregion get-version

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM network_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("rollback to %s: %w", targetVersionID, ErrVersionNotFound)
	}

	_, err = s.db.Exec(`UPDATE active_network SET version_id = ? WHERE id = 1`, targetVersionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent versions, newest first, without their network bodies.
// A non-positive limit lists every version.
func (s *Store) ListVersions(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	current, err := s.currentID()
	if err != nil && !errors.Is(err, ErrNoCurrent) {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT version_id, parent_id, network_hash, note, behaviours, outcomes, value_count, links, created_at
		 FROM network_versions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		var parentID, note sql.NullString
		var createdStr string
		if err := rows.Scan(&sum.VersionID, &parentID, &sum.Hash, &note,
			&sum.Behaviours, &sum.Outcomes, &sum.Values, &sum.Links, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.ParentID = parentID.String
		sum.Note = note.String
		sum.CreatedAt, _ = time.Parse(timeFormat, createdStr)
		sum.Current = sum.VersionID == current
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// #endregion list-versions

// #region helpers
// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
