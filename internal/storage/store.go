// Package storage keeps an exported SQLite snapshot of the contacts file.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned by OpenSnapshot when nothing has been exported to
// the database yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Store manages the SQLite snapshot of the contacts file.
type Store struct {
	db   *sqlx.DB
	path string
}

// NewStore opens the snapshot database at path and brings its schema up to date.
func NewStore(path string) (*Store, error) {
	// Pragmas go in the DSN so every pooled connection gets them
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: path}

	if err := store.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// OpenSnapshot opens an existing snapshot for reading. Unlike NewStore it
// never creates the database file, and it fails with ErrNoSnapshot when the
// file is missing or holds no export.
func OpenSnapshot(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNoSnapshot, path)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := NewStore(path)
	if err != nil {
		return nil, err
	}

	if _, err := store.Meta(ctx); err != nil {
		store.Close()
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w at %s", ErrNoSnapshot, path)
		}
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// ListTables returns all table names in the database.
func (s *Store) ListTables() []string {
	var tables []string
	err := s.db.Select(&tables, `
		SELECT name FROM sqlite_master
		WHERE type='table'
		ORDER BY name
	`)
	if err != nil {
		return nil
	}
	return tables
}
