// Package dictionary persists the personal dictionary and the
// correction history in SQLite.
//
// The personal dictionary overlays the spell oracle's wordlists: words
// the user has added are always correct in their language. The history
// table records every correction the engine performed and backs the
// layoutctl stats surface.
package dictionary

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"layoutd/internal/layout"
)

const schema = `
CREATE TABLE IF NOT EXISTS words (
    word        TEXT NOT NULL,
    lang        TEXT NOT NULL,
    added_at    INTEGER NOT NULL,
    PRIMARY KEY (word, lang)
);

CREATE TABLE IF NOT EXISTS corrections (
    id          TEXT PRIMARY KEY,
    original    TEXT NOT NULL,
    converted   TEXT NOT NULL,
    lang        TEXT NOT NULL,
    kind        TEXT NOT NULL,
    created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_corrections_created ON corrections(created_at);
`

// Store wraps the SQLite database. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddWord inserts a personal word for lang. Re-adding is a no-op.
func (s *Store) AddWord(word string, lang layout.Lang) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO words (word, lang, added_at) VALUES (?, ?, ?)`,
		word, lang.String(), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("add word: %w", err)
	}
	return nil
}

// RemoveWord deletes a personal word.
func (s *Store) RemoveWord(word string, lang layout.Lang) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM words WHERE word = ? AND lang = ?`, word, lang.String())
	if err != nil {
		return fmt.Errorf("remove word: %w", err)
	}
	return nil
}

// Contains reports whether word is in the personal dictionary for lang.
// Implements spell.Personal.
func (s *Store) Contains(word string, lang layout.Lang) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM words WHERE word = ? AND lang = ?`, word, lang.String(),
	).Scan(&one)
	return err == nil
}

// Words lists the personal words for lang.
func (s *Store) Words(lang layout.Lang) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`SELECT word FROM words WHERE lang = ? ORDER BY word`, lang.String())
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Correction is one recorded engine action.
type Correction struct {
	ID        string
	Original  string
	Converted string
	Lang      string
	Kind      string
	CreatedAt time.Time
}

// RecordCorrection appends a correction record. Implements
// engine.Recorder.
func (s *Store) RecordCorrection(original, converted string, target layout.Lang, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO corrections (id, original, converted, lang, kind, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), original, converted, target.String(), kind, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record correction: %w", err)
	}
	return nil
}

// RecentCorrections returns the latest records, newest first.
func (s *Store) RecentCorrections(limit int) ([]Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(
		`SELECT id, original, converted, lang, kind, created_at
		 FROM corrections ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	defer rows.Close()

	var out []Correction
	for rows.Next() {
		var c Correction
		var ns int64
		if err := rows.Scan(&c.ID, &c.Original, &c.Converted, &c.Lang, &c.Kind, &ns); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		c.CreatedAt = time.Unix(0, ns)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CorrectionCount returns the total number of recorded corrections.
func (s *Store) CorrectionCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM corrections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count corrections: %w", err)
	}
	return n, nil
}
