// Package store persists user preferences and search history in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// DefaultHistorySize is how many recent queries are kept.
const DefaultHistorySize = 8

// Store is a small key/value store backed by one SQLite table.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	historySize  int
	defaultTheme Theme
}

// Option configures a Store.
type Option func(*Store)

// WithHistorySize caps the recent query list. Non-positive values are ignored.
func WithHistorySize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithDefaultTheme sets the theme returned before one has been saved.
func WithDefaultTheme(t Theme) Option {
	return func(s *Store) {
		if t.Valid() {
			s.defaultTheme = t
		}
	}
}

// Open opens (creating if needed) the database at path and ensures the schema.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to store database: %w", err), closeErr)
	}

	if _, err := db.ExecContext(ctx, PrefsSchema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create prefs table: %w", err), closeErr)
	}

	s := &Store{
		db:           db,
		path:         path,
		historySize:  DefaultHistorySize,
		defaultTheme: ThemeDark,
	}
	for _, opt := range opts {
		opt(s)
	}

	slog.Debug("Opened preferences store", "path", path)
	return s, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM prefs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM prefs WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Theme returns the saved theme, or the default when none is saved or the
// saved value is unrecognised.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	value, ok, err := s.Get(ctx, keyTheme)
	if err != nil {
		return s.defaultTheme, err
	}
	if !ok {
		return s.defaultTheme, nil
	}
	theme, err := ParseTheme(value)
	if err != nil {
		slog.Warn("Ignoring unknown saved theme", "value", value)
		return s.defaultTheme, nil
	}
	return theme, nil
}

// SetTheme saves t.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("invalid theme %q", t)
	}
	return s.Set(ctx, keyTheme, string(t))
}

// Recent returns saved queries, most recent first.
func (s *Store) Recent(ctx context.Context) ([]string, error) {
	value, ok, err := s.Get(ctx, keyRecent)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}

	var recent []string
	if err := json.Unmarshal([]byte(value), &recent); err != nil {
		slog.Warn("Discarding unreadable search history", "error", err)
		return []string{}, nil
	}
	if recent == nil {
		recent = []string{}
	}
	return recent, nil
}

// AddRecent records query at the front of the history and returns the new
// list. Queries that differ only by case or accents replace each other.
// Blank queries are ignored.
func (s *Store) AddRecent(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	recent, err := s.Recent(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return recent, nil
	}

	key := FoldQuery(query)
	updated := make([]string, 0, s.historySize)
	updated = append(updated, query)
	for _, q := range recent {
		if len(updated) >= s.historySize {
			break
		}
		if FoldQuery(q) == key {
			continue
		}
		updated = append(updated, q)
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search history: %w", err)
	}
	if err := s.Set(ctx, keyRecent, string(data)); err != nil {
		return nil, err
	}
	return updated, nil
}

// ClearRecent forgets the search history.
func (s *Store) ClearRecent(ctx context.Context) error {
	return s.Delete(ctx, keyRecent)
}
