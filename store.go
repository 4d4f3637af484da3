package tsvdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// sqliteDriverName is the database/sql driver name registered by modernc.org/sqlite
const sqliteDriverName = "sqlite"

// Opener opens a database handle for one operation.
type Opener func(ctx context.Context) (*sql.DB, error)

// Store is the relational store a table lives in. It holds no connection
// between operations: every operation opens its own handle and releases it
// on every exit path.
//
// Store assumes a single writer per table. Running two imports into the same
// table concurrently is not supported.
type Store struct {
	path   string
	open   Opener
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store and the components built on it.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOpener replaces the function used to open database handles.
func WithOpener(open Opener) Option {
	return func(s *Store) {
		if open != nil {
			s.open = open
		}
	}
}

// NewStore creates a Store backed by the SQLite database file at path.
// The parent directory is created if needed. In-memory paths are rejected
// with ErrInMemoryDatabase.
func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("tsvdb: database path cannot be empty")
	}
	if isInMemoryPath(path) {
		return nil, fmt.Errorf("%w: %s", ErrInMemoryDatabase, path)
	}

	s := &Store{
		path:   path,
		logger: slog.Default(),
	}
	s.open = s.openSQLite
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	return s, nil
}

func isInMemoryPath(path string) bool {
	return path == ":memory:" ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Logger returns the store logger.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

func (s *Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, s.path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection per operation
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}
	return db, nil
}

// withDB opens a handle, runs fn and closes the handle.
func (s *Store) withDB(ctx context.Context, fn func(db *sql.DB) error) (err error) {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing database: %w", closeErr)
		}
	}()
	return fn(db)
}
