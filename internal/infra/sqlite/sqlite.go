// Package sqlite persists the audit surface: journal events, governed
// parameter history, and full-state snapshots.
//
// The database is never the source of truth — engine state lives in
// memory and is rebuilt by replaying operations, not by reading these
// tables. Writes are best-effort from the engine's point of view: a
// failed journal append is logged and the state transition stands.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements. Each string is a
// single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Journal events, one row per successful mutation
		`CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			subject     TEXT NOT NULL DEFAULT '',
			item_id     INTEGER NOT NULL DEFAULT 0,
			proposal_id INTEGER NOT NULL DEFAULT 0,
			detail      TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_events_subject ON events(subject)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at)`,

		// Governed parameter history, one row per executed change
		`CREATE TABLE IF NOT EXISTS param_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			param       TEXT NOT NULL,
			value       INTEGER NOT NULL,
			proposal_id INTEGER NOT NULL DEFAULT 0,
			changed_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_param_history_param ON param_history(param)`,

		// Full-state snapshots taken by the operator
		`CREATE TABLE IF NOT EXISTS snapshots (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at TEXT NOT NULL,
			state    BLOB NOT NULL
		)`,
	}
}

// ─── Database Handle ────────────────────────────────────────────────────────

// DB wraps the journal database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path and runs
// the migrations. SQLite has a single writer, so the pool is capped at
// one connection.
func Open(path string) (*DB, error) {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	sdb.SetMaxOpenConns(1)

	if _, err := sdb.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	for _, stmt := range Migrations() {
		if _, err := sdb.Exec(stmt); err != nil {
			sdb.Close()
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
	}
	return &DB{db: sdb}, nil
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.db.Close()
}
