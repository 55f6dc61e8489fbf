// Package sqlite implements memorial.Persister over an embedded SQLite
// database, storing the whole session collection as one row of a key-value
// table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/memorial"
	memorialjson "github.com/fwojciec/memorial/json"
	_ "modernc.org/sqlite"
)

// Interface compliance check.
var _ memorial.Persister = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// Store persists the session collection under a single key.
type Store struct {
	db  *sql.DB
	key string
	now func() time.Time
}

// Open opens (creating if needed) the database at path. Use ":memory:" for a
// throwaway database.
func Open(ctx context.Context, path, key string) (*Store, error) {
	if key == "" {
		return nil, fmt.Errorf("empty storage key: %w", memorial.ErrValidation)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, key: key, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the stored collection. ok is false when the key is absent.
func (s *Store) Load(ctx context.Context) ([]memorial.Session, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", s.key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query %q: %w", s.key, err)
	}
	sessions, err := memorialjson.UnmarshalSessions(blob)
	if err != nil {
		return nil, false, fmt.Errorf("decode %q: %w", s.key, err)
	}
	return sessions, true, nil
}

// Save overwrites the stored collection.
func (s *Store) Save(ctx context.Context, sessions []memorial.Session) error {
	blob, err := memorialjson.MarshalSessions(sessions)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, blob, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert %q: %w", s.key, err)
	}
	return nil
}
