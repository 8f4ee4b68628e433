package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`

// SQLiteStore keeps the token in the key/value metadata table of a local
// SQLite database.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// metadata table exists. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var value []byte
	err := s.db.QueryRowContext(context.Background(), `SELECT value FROM metadata WHERE key = ?`, tokenKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", tokenKey, err)
	}
	return string(value), nil
}

func (s *SQLiteStore) Set(token string) error {
	token = Normalize(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, tokenKey, []byte(token))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", tokenKey, err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(context.Background(), `DELETE FROM metadata WHERE key = ?`, tokenKey)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", tokenKey, err)
	}
	return nil
}
