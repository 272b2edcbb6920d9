package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nts-go/internal/database/migrations"
	"nts-go/internal/nts"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore is a LocalStore backed by a single SQLite table keyed by
// (namespace, key). The database file can be opened by both the app and
// the widget process at once.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
	path      string
	clock     nts.Clock
}

// NewSQLiteStore opens the database at path, applies pending migrations and
// returns a store scoped to namespace. path can be ":memory:".
func NewSQLiteStore(path, namespace string, clock nts.Clock) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Apply(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return NewSQLiteStoreFromDB(db, namespace, clock), nil
}

// NewSQLiteStoreFromDB wraps an existing, already migrated connection.
func NewSQLiteStoreFromDB(db *sql.DB, namespace string, clock nts.Clock) *SQLiteStore {
	if clock == nil {
		clock = nts.RealClock{}
	}
	return &SQLiteStore{db: db, namespace: namespace, clock: clock}
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// The widget process reads while the app writes.
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	return db, nil
}

func (s *SQLiteStore) Read(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(
		"SELECT value FROM kv WHERE namespace = ? AND key = ?",
		s.namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("reading key %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *SQLiteStore) Write(key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.Exec(
		`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, data, s.clock.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE namespace = ? AND key = ?", s.namespace, key); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written, or the zero time if absent.
func (s *SQLiteStore) UpdatedAt(key string) (time.Time, error) {
	var raw string
	err := s.db.QueryRow(
		"SELECT updated_at FROM kv WHERE namespace = ? AND key = ?",
		s.namespace, key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("reading timestamp of %s: %w", key, err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp of %s: %w", key, err)
	}
	return t, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteStore implements nts.LocalStore
var _ nts.LocalStore = (*SQLiteStore)(nil)
