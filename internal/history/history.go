// Package history keeps an append-only log of engine applies in a
// local SQLite database. Recording is best effort: a failing history
// write must never fail the reconciliation pass it describes.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Event is one recorded engine action.
type Event struct {
	ID        int64  `json:"id"`
	Event     string `json:"event"`
	RuleID    string `json:"rule_id"`
	ToolID    string `json:"tool_id"`
	File      string `json:"file"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Store is the apply-history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and
// runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			event      TEXT NOT NULL,
			rule_id    TEXT NOT NULL,
			tool_id    TEXT NOT NULL,
			file       TEXT NOT NULL,
			detail     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_events_rule ON events(rule_id);
		CREATE INDEX IF NOT EXISTS idx_events_tool ON events(tool_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record satisfies the engine's recorder contract. Errors are dropped;
// the log is advisory.
func (s *Store) Record(event, ruleID, toolID, file, detail string) {
	_, _ = s.db.Exec(
		`INSERT INTO events (event, rule_id, tool_id, file, detail) VALUES (?, ?, ?, ?, ?)`,
		event, ruleID, toolID, file, detail,
	)
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, event, rule_id, tool_id, file, detail, created_at
		 FROM events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Event, &e.RuleID, &e.ToolID, &e.File, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
