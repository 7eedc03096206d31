package sqlite

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

// AppliedMigration is one recorded schema_migrations row.
type AppliedMigration struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
	Checksum  string    `json:"checksum"`
}

// MigrationStatus reports the current schema position.
type MigrationStatus struct {
	CurrentVersion int                `json:"current_version"`
	Applied        []AppliedMigration `json:"applied"`
	Pending        []Migration        `json:"pending"`
}

// Runner applies schema migrations strictly forward, one transaction per
// migration, verifying build-time checksums before anything runs. There is
// no rollback: a failed migration leaves the schema at the last successfully
// applied version.
type Runner struct {
	db         *sql.DB
	migrations []Migration
}

// NewRunner returns a Runner over the store's database using the built-in
// migration list.
func NewRunner(s *Store) *Runner {
	return newRunnerWith(s.db, Migrations())
}

// newRunnerWith exists so tests can substitute a tampered migration list.
func newRunnerWith(db *sql.DB, migrations []Migration) *Runner {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return &Runner{db: db, migrations: sorted}
}

// ensureMigrationsTable creates the schema_migrations table on first open.
func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL,
    checksum TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", busyWrap(err))
	}
	return nil
}

// CurrentVersion returns the highest applied migration version, 0 when none
// has been applied.
func (r *Runner) CurrentVersion() (int, error) {
	var version sql.NullInt64
	err := r.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", busyWrap(err))
	}
	return int(version.Int64), nil
}

// Applied returns the recorded migrations in version order.
func (r *Runner) Applied() ([]AppliedMigration, error) {
	rows, err := r.db.Query(
		"SELECT version, name, applied_at, checksum FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", busyWrap(err))
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		var appliedAt string
		if err := rows.Scan(&m.Version, &m.Name, &appliedAt, &m.Checksum); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, appliedAt); err == nil {
			m.AppliedAt = t
		}
		applied = append(applied, m)
	}
	return applied, rows.Err()
}

// Pending returns migrations above the current version, in apply order.
func (r *Runner) Pending() ([]Migration, error) {
	current, err := r.CurrentVersion()
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, m := range r.migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Status reports the current version plus applied and pending migrations.
func (r *Runner) Status() (*MigrationStatus, error) {
	current, err := r.CurrentVersion()
	if err != nil {
		return nil, err
	}
	applied, err := r.Applied()
	if err != nil {
		return nil, err
	}
	pending, err := r.Pending()
	if err != nil {
		return nil, err
	}
	return &MigrationStatus{CurrentVersion: current, Applied: applied, Pending: pending}, nil
}

// VerifyApplied checks every applied version's recorded checksum against the
// binary's migration list. A mismatch is fatal: the database was migrated by
// a different definition of the same version.
func (r *Runner) VerifyApplied() error {
	applied, err := r.Applied()
	if err != nil {
		return err
	}
	byVersion := make(map[int]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byVersion[m.Version] = m
	}
	for _, a := range applied {
		m, ok := byVersion[a.Version]
		if !ok {
			continue
		}
		if a.Checksum != ComputeChecksum(m.Statements) {
			return fmt.Errorf("%w: migration %d (%s) was recorded with checksum %s",
				types.ErrIntegrity, a.Version, a.Name, a.Checksum)
		}
	}
	return nil
}

// verifyOne recomputes a migration's checksum and compares it to the value
// embedded at build time.
func verifyOne(m Migration) error {
	if actual := ComputeChecksum(m.Statements); actual != m.Checksum {
		return fmt.Errorf("%w: migration %d (%s) statements do not match the build-time checksum",
			types.ErrIntegrity, m.Version, m.Name)
	}
	return nil
}

// ApplyPending applies all pending migrations in ascending version order and
// returns how many ran. Each migration's statements and its version record
// commit in one transaction; on failure the run halts with the schema at the
// last successfully applied version.
func (r *Runner) ApplyPending() (int, error) {
	if err := r.VerifyApplied(); err != nil {
		return 0, err
	}
	pending, err := r.Pending()
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, m := range pending {
		// Verify immediately before each apply so a tampered migration halts
		// the run with the schema at the last good version.
		if err := verifyOne(m); err != nil {
			return applied, err
		}
		if err := r.applyOne(m); err != nil {
			return applied, fmt.Errorf("applying migration %d (%s): %w", m.Version, m.Name, err)
		}
		applied++
	}
	return applied, nil
}

// applyOne runs a single migration transactionally.
func (r *Runner) applyOne(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return busyWrap(err)
	}
	defer tx.Rollback()

	for _, stmt := range m.Statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing statement: %w", busyWrap(err))
		}
	}
	_, err = tx.Exec(
		"INSERT INTO schema_migrations (version, name, applied_at, checksum) VALUES (?, ?, ?, ?)",
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339), m.Checksum,
	)
	if err != nil {
		return fmt.Errorf("recording migration: %w", busyWrap(err))
	}
	return tx.Commit()
}
