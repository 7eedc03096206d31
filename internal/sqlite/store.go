// Package sqlite implements the SQLite storage backend for Pensieve.
// The backend owns a single relocatable database file holding templates,
// entries, links, the project tag registry, and migration state.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// Compile-time interface check: Store must implement types.Store.
var _ types.Store = (*Store)(nil)

// busyTimeoutMillis bounds how long a writer waits for the file lock before
// the operation fails with ErrStoreBusy.
const busyTimeoutMillis = 5000

// Store implements types.Store on a single SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database file at dbPath. The parent
// directory is created when missing. WAL mode keeps readers from blocking on
// concurrent writers; busy_timeout bounds writer lock waits.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := "file:" + dbPath +
		"?_pragma=busy_timeout(" + fmt.Sprint(busyTimeoutMillis) + ")" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}
	// One connection serializes writers within the process; cross-process
	// contention is handled by the busy_timeout pragma.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database %s: %w", dbPath, busyWrap(err))
	}

	s := &Store{db: db, path: dbPath}
	if err := ensureMigrationsTable(db); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle. Idempotent; operations after Close
// fail with the driver's closed-database error.
func (s *Store) Close() error {
	return s.db.Close()
}

// RequireCurrent returns ErrMigrationRequired when schema migrations are
// pending. Every command except migrate and version calls this before
// touching the store.
func (s *Store) RequireCurrent() error {
	pending, err := NewRunner(s).Pending()
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("%w: %d pending (run \"pensieve migrate apply\")",
			types.ErrMigrationRequired, len(pending))
	}
	return nil
}

// begin starts a write transaction, mapping lock-contention failures to
// ErrStoreBusy.
func (s *Store) begin() (*sql.Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, busyWrap(err)
	}
	return tx, nil
}

// busyWrap maps SQLITE_BUSY and SQLITE_LOCKED to the retryable ErrStoreBusy.
func busyWrap(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", types.ErrStoreBusy, err)
		}
	}
	return err
}

// uniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint
// failure. Callers map it to the domain duplicate error for their table, so
// two writers racing past a pre-check still get the right answer.
func uniqueViolation(err error) bool {
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT,
		sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
