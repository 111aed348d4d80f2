// Package warnstate persists the snooze and dismiss marks the validation engine reads.
package warnstate

// #region imports
import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// #endregion imports

// ErrEmptyNodeID is returned by every mutation given an empty node id.
var ErrEmptyNodeID = errors.New("empty node id")

const timeFormat = time.RFC3339Nano

// #region store

// Store keeps one row per node that has ever been snoozed or dismissed.
type Store struct {
	db *sql.DB
}

// NewStore creates the warning_state table if needed and returns a store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(); err != nil {
		return nil, fmt.Errorf("init warning state: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS warning_state (
		node_id       TEXT PRIMARY KEY,
		snoozed_until TEXT,
		dismissed     INTEGER NOT NULL DEFAULT 0,
		updated_at    TEXT NOT NULL
	)`)
	return err
}

// Snooze hides warnings on nodeID until the given time.
func (s *Store) Snooze(nodeID string, until time.Time) error {
	if nodeID == "" {
		return ErrEmptyNodeID
	}
	_, err := s.db.Exec(
		`INSERT INTO warning_state (node_id, snoozed_until, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(node_id) DO UPDATE SET snoozed_until = excluded.snoozed_until, updated_at = excluded.updated_at`,
		nodeID, until.UTC().Format(timeFormat), stamp(),
	)
	if err != nil {
		return fmt.Errorf("snooze %s: %w", nodeID, err)
	}
	return nil
}

// Unsnooze clears a snooze. Unknown nodes are ignored.
func (s *Store) Unsnooze(nodeID string) error {
	if nodeID == "" {
		return ErrEmptyNodeID
	}
	_, err := s.db.Exec(
		`UPDATE warning_state SET snoozed_until = NULL, updated_at = ? WHERE node_id = ?`,
		stamp(), nodeID,
	)
	if err != nil {
		return fmt.Errorf("unsnooze %s: %w", nodeID, err)
	}
	return nil
}

// Dismiss marks warnings on nodeID as dismissed. Dismissal outranks any snooze.
func (s *Store) Dismiss(nodeID string) error {
	return s.setDismissed(nodeID, true)
}

// Undismiss lifts a dismissal. A snooze still in the future applies again.
func (s *Store) Undismiss(nodeID string) error {
	return s.setDismissed(nodeID, false)
}

func (s *Store) setDismissed(nodeID string, dismissed bool) error {
	if nodeID == "" {
		return ErrEmptyNodeID
	}
	_, err := s.db.Exec(
		`INSERT INTO warning_state (node_id, dismissed, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(node_id) DO UPDATE SET dismissed = excluded.dismissed, updated_at = excluded.updated_at`,
		nodeID, dismissed, stamp(),
	)
	if err != nil {
		return fmt.Errorf("set dismissed %s: %w", nodeID, err)
	}
	return nil
}

// Load reads the whole state. Expired snoozes are returned as stored; the engine
// compares them against its own clock.
func (s *Store) Load() (validation.WarningState, error) {
	ws := validation.NewWarningState()
	rows, err := s.db.Query(`SELECT node_id, snoozed_until, dismissed FROM warning_state`)
	if err != nil {
		return ws, fmt.Errorf("load warning state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nodeID string
		var until sql.NullString
		var dismissed bool
		if err := rows.Scan(&nodeID, &until, &dismissed); err != nil {
			return ws, fmt.Errorf("scan warning state: %w", err)
		}
		if dismissed {
			ws.Dismissed[nodeID] = true
		}
		if until.Valid {
			t, err := time.Parse(timeFormat, until.String)
			if err != nil {
				return ws, fmt.Errorf("parse snooze for %s: %w", nodeID, err)
			}
			ws.Snoozed[nodeID] = t
		}
	}
	return ws, rows.Err()
}

// Prune clears snoozes that ended before now and drops rows left with no marks.
// It returns the number of rows removed.
func (s *Store) Prune(now time.Time) (int64, error) {
	rows, err := s.db.Query(`SELECT node_id, snoozed_until FROM warning_state WHERE snoozed_until IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	var expired []string
	for rows.Next() {
		var nodeID, until string
		if err := rows.Scan(&nodeID, &until); err != nil {
			rows.Close()
			return 0, fmt.Errorf("prune scan: %w", err)
		}
		if t, err := time.Parse(timeFormat, until); err == nil && !t.After(now) {
			expired = append(expired, nodeID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}

	for _, id := range expired {
		if _, err := s.db.Exec(`UPDATE warning_state SET snoozed_until = NULL WHERE node_id = ?`, id); err != nil {
			return 0, fmt.Errorf("prune %s: %w", id, err)
		}
	}
	res, err := s.db.Exec(`DELETE FROM warning_state WHERE snoozed_until IS NULL AND dismissed = 0`)
	if err != nil {
		return 0, fmt.Errorf("prune empty rows: %w", err)
	}
	return res.RowsAffected()
}

// #endregion store

func stamp() string {
	return time.Now().UTC().Format(timeFormat)
}
