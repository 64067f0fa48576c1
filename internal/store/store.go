// Package store is the persistent key-value store backing all user state:
// settings, API keys, todos, theme, and the domain caches. Values are JSON
// documents keyed by string, persisted in a local SQLite database so state
// survives across sessions.
//
// The store never propagates failures to callers: a read that misses or
// fails to decode reports false and leaves the destination untouched, so
// callers fall back to the defaults they pre-populated.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
	log     *slog.Logger
}

func Open(dbPath string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB, log: log}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Read unmarshals the value stored under key into dest. It reports false
// when the key is absent or the stored document cannot be decoded; dest is
// left untouched in that case.
func (s *Store) Read(key string, dest any) bool {
	var raw string
	err := s.readDB.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		s.log.Warn("store read failed", "key", key, "err", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.log.Warn("store decode failed", "key", key, "err", err)
		return false
	}
	return true
}

// Write stores v under key as JSON, overwriting any prior value.
func (s *Store) Write(key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("store encode failed", "key", key, "err", err)
		return false
	}
	_, err = s.writeDB.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(raw))
	if err != nil {
		s.log.Warn("store write failed", "key", key, "err", err)
		return false
	}
	return true
}

func (s *Store) Remove(key string) bool {
	if _, err := s.writeDB.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		s.log.Warn("store remove failed", "key", key, "err", err)
		return false
	}
	return true
}

func (s *Store) ClearAll() bool {
	if _, err := s.writeDB.Exec("DELETE FROM kv"); err != nil {
		s.log.Warn("store clear failed", "err", err)
		return false
	}
	return true
}

// Usage reports the stored size in bytes per key plus the total.
func (s *Store) Usage() (map[string]int64, int64, error) {
	rows, err := s.readDB.Query("SELECT key, LENGTH(value) FROM kv ORDER BY key")
	if err != nil {
		return nil, 0, fmt.Errorf("querying usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]int64)
	var total int64
	for rows.Next() {
		var key string
		var size int64
		if err := rows.Scan(&key, &size); err != nil {
			return nil, 0, fmt.Errorf("scanning usage: %w", err)
		}
		usage[key] = size
		total += size
	}
	return usage, total, rows.Err()
}
