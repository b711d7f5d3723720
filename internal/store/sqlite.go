// Package store owns qmd's single embedded database: connection setup,
// schema creation and migration, and the full-text and vector virtual
// tables. It holds no policy — the internal/repo package is where query
// logic and invariants live.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	sqlite_vec.Auto()
}

// Store is the embedded database handle shared by every repository.
// Access is serialized with a mutex per spec.md §5: Store access is
// single-threaded per connection, and a long-lived process keeps one
// handle for its whole lifetime.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens (creating if necessary) the SQLite database at dbPath with
// WAL journaling and foreign keys enabled, and brings its schema up to
// date.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("opened store", "path", dbPath)

	return &Store{db: db, path: dbPath}, nil
}

// DB returns the underlying *sql.DB for repositories to build statements
// against. Callers must take Lock/RLock via the Store for the duration of
// any multi-statement operation that must be serialized.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Lock acquires the store's write lock.
func (s *Store) Lock() { s.mu.Lock() }

// Unlock releases the store's write lock.
func (s *Store) Unlock() { s.mu.Unlock() }

// RLock acquires the store's read lock.
func (s *Store) RLock() { s.mu.RLock() }

// RUnlock releases the store's read lock.
func (s *Store) RUnlock() { s.mu.RUnlock() }

// Path returns the on-disk path of the database file.
func (s *Store) Path() string {
	return s.path
}

// EnsureVecTable creates or recreates vectors_vec sized to dimensions,
// per spec.md §4.2's Vectors.ensureVecTable contract.
func (s *Store) EnsureVecTable(dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ensureVecTable(s.db, dimensions)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
