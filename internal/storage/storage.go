// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists client-side state in a local SQLite database:
// the selected-model preference and the sidebar session snapshots. This is
// the durable half of what the web client keeps in localStorage; the chat
// transcript itself lives on the backend.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/ploymind-tui/internal/config"
	"github.com/jeranaias/ploymind-tui/internal/model"
)

// ErrSessionNotFound is returned when a session ID has no stored row.
var ErrSessionNotFound = errors.New("session not found")

// Preference keys.
const (
	// PrefSelectedModel remembers the user's model choice across runs.
	PrefSelectedModel = "selected_model"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	timestamp     INTEGER NOT NULL,
	preview       TEXT NOT NULL DEFAULT '',
	model         TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	messages      TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp DESC);
`

// Store is the local persistence layer. Safe for concurrent use; SQLite
// serializes writers internally.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the standard database location under the config dir.
func DefaultPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ploymind.db"), nil
}

// Open opens (and if needed creates) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// PREFERENCES
// =============================================================================

// SetPreference stores one key/value preference.
func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to store preference %q: %w", key, err)
	}
	return nil
}

// Preference returns the stored value for key, or "" when unset.
func (s *Store) Preference(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return value, nil
}

// SelectedModel returns the persisted model choice, or "" when none.
func (s *Store) SelectedModel() string {
	value, _ := s.Preference(PrefSelectedModel)
	return value
}

// SetSelectedModel persists the model choice.
func (s *Store) SetSelectedModel(id string) error {
	return s.SetPreference(PrefSelectedModel, id)
}

// =============================================================================
// SESSION SNAPSHOTS
// =============================================================================

// SaveSession upserts one session summary, then trims the table to the
// newest model.MaxSessions rows.
func (s *Store) SaveSession(sess model.ChatSession) error {
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode session messages: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, title, timestamp, preview, model, message_count, messages)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			timestamp = excluded.timestamp,
			preview = excluded.preview,
			model = excluded.model,
			message_count = excluded.message_count,
			messages = excluded.messages`,
		sess.ID, sess.Title, sess.Timestamp.UnixMilli(), sess.Preview,
		sess.Model, sess.MessageCount, string(messages),
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	// Keep only the newest entries; the sidebar never shows more.
	_, err = tx.Exec(
		`DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY timestamp DESC LIMIT ?
		)`, model.MaxSessions,
	)
	if err != nil {
		return fmt.Errorf("failed to trim sessions: %w", err)
	}

	return tx.Commit()
}

// Sessions returns stored session summaries, newest first.
func (s *Store) Sessions() ([]model.ChatSession, error) {
	rows, err := s.db.Query(
		`SELECT id, title, timestamp, preview, model, message_count, messages
		 FROM sessions ORDER BY timestamp DESC LIMIT ?`, model.MaxSessions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.ChatSession
	for rows.Next() {
		var sess model.ChatSession
		var ts int64
		var messages string
		if err := rows.Scan(&sess.ID, &sess.Title, &ts, &sess.Preview,
			&sess.Model, &sess.MessageCount, &messages); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.Timestamp = time.UnixMilli(ts)
		if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
			// A corrupt snapshot loses its transcript but keeps its
			// summary row.
			sess.Messages = nil
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Session returns one stored session by ID.
func (s *Store) Session(id string) (model.ChatSession, error) {
	var sess model.ChatSession
	var ts int64
	var messages string
	err := s.db.QueryRow(
		`SELECT id, title, timestamp, preview, model, message_count, messages
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Title, &ts, &sess.Preview, &sess.Model, &sess.MessageCount, &messages)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return model.ChatSession{}, fmt.Errorf("failed to read session: %w", err)
	}
	sess.Timestamp = time.UnixMilli(ts)
	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		sess.Messages = nil
	}
	return sess, nil
}

// DeleteSession removes one session row. Deleting a missing session is
// not an error; the UI treats deletion as idempotent.
func (s *Store) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ReplaceSessions overwrites the stored list with the given sessions.
func (s *Store) ReplaceSessions(sessions []model.ChatSession) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	for i, sess := range sessions {
		if i >= model.MaxSessions {
			break
		}
		messages, err := json.Marshal(sess.Messages)
		if err != nil {
			return fmt.Errorf("failed to encode session messages: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO sessions (id, title, timestamp, preview, model, message_count, messages)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.Title, sess.Timestamp.UnixMilli(), sess.Preview,
			sess.Model, sess.MessageCount, string(messages),
		); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
	}
	return tx.Commit()
}
