package sqlite

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/curia-network/curia/internal/domain"
)

var _ domain.Journal = (*DB)(nil)

// ─── Event Operations ───────────────────────────────────────────────────────

// EventFilter narrows an Events query. Zero fields match everything.
type EventFilter struct {
	Kind       string
	Subject    string
	ItemID     uint64
	ProposalID uint64
}

// RecordEvent appends one journal row. An empty ID is assigned here.
func (db *DB) RecordEvent(e domain.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := db.db.Exec(`
		INSERT INTO events (id, kind, subject, item_id, proposal_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Kind, e.Subject, e.ItemID, e.ProposalID, e.Detail, e.At.UTC().Format(time.RFC3339))
	return err
}

// Events returns journal rows matching the filter, newest first.
// A non-positive limit defaults to 100.
func (db *DB) Events(filter EventFilter, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, kind, subject, item_id, proposal_id, detail, created_at FROM events WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if filter.Subject != "" {
		query += ` AND subject = ?`
		args = append(args, filter.Subject)
	}
	if filter.ItemID != 0 {
		query += ` AND item_id = ?`
		args = append(args, filter.ItemID)
	}
	if filter.ProposalID != 0 {
		query += ` AND proposal_id = ?`
		args = append(args, filter.ProposalID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		var e domain.Event
		var createdStr string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Subject, &e.ItemID, &e.ProposalID, &e.Detail, &createdStr); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, createdStr)
		result = append(result, e)
	}
	return result, rows.Err()
}

// EventCount returns the total number of journal rows.
func (db *DB) EventCount() (int64, error) {
	var count int64
	err := db.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

// ─── Parameter History Operations ───────────────────────────────────────────

// ParamRecord is one executed configuration change.
type ParamRecord struct {
	ID         int64            `json:"id"`
	Param      domain.ParamName `json:"param"`
	Value      uint64           `json:"value"`
	ProposalID uint64           `json:"proposal_id"`
	ChangedAt  time.Time        `json:"changed_at"`
}

// RecordParamChange appends one parameter-history row.
func (db *DB) RecordParamChange(param domain.ParamName, value uint64, proposalID uint64, at time.Time) error {
	_, err := db.db.Exec(`
		INSERT INTO param_history (param, value, proposal_id, changed_at)
		VALUES (?, ?, ?, ?)
	`, string(param), value, proposalID, at.UTC().Format(time.RFC3339))
	return err
}

// ParamHistory returns every recorded change in application order.
func (db *DB) ParamHistory() ([]ParamRecord, error) {
	rows, err := db.db.Query(`
		SELECT id, param, value, proposal_id, changed_at
		FROM param_history ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ParamRecord
	for rows.Next() {
		var r ParamRecord
		var paramStr, changedStr string
		if err := rows.Scan(&r.ID, &paramStr, &r.Value, &r.ProposalID, &changedStr); err != nil {
			return nil, err
		}
		r.Param = domain.ParamName(paramStr)
		r.ChangedAt, _ = time.Parse(time.RFC3339, changedStr)
		result = append(result, r)
	}
	return result, rows.Err()
}

// ─── Snapshot Operations ────────────────────────────────────────────────────

// Snapshot is one stored full-state capture.
type Snapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	State   []byte    `json:"-"`
}

// SaveSnapshot stores a full-state capture and returns its row ID.
func (db *DB) SaveSnapshot(state []byte, takenAt time.Time) (int64, error) {
	res, err := db.db.Exec(`
		INSERT INTO snapshots (taken_at, state) VALUES (?, ?)
	`, takenAt.UTC().Format(time.RFC3339), state)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LatestSnapshot returns the most recent capture, or a zero Snapshot when
// none has been taken.
func (db *DB) LatestSnapshot() (Snapshot, error) {
	var snap Snapshot
	var takenStr string
	err := db.db.QueryRow(`
		SELECT id, taken_at, state FROM snapshots ORDER BY id DESC LIMIT 1
	`).Scan(&snap.ID, &takenStr, &snap.State)
	if err == sql.ErrNoRows {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	snap.TakenAt, _ = time.Parse(time.RFC3339, takenStr)
	return snap, nil
}
