package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Statement is one schema change. NoTx marks statements that postgres
// refuses to run inside a transaction (CREATE INDEX CONCURRENTLY and
// friends); the runner applies those outside the transaction boundary
// and the remaining statements of the same migration inside one.
type Statement struct {
	SQL  string
	NoTx bool
}

type Migration struct {
	Version int
	Name    string
	Up      []Statement
	Down    []string
}

type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
}

type Runner struct {
	db         *sql.DB
	migrations []Migration
}

func NewRunner(db *sql.DB, migrations []Migration) (*Runner, error) {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for i, m := range sorted {
		if m.Version <= 0 {
			return nil, fmt.Errorf("migration %q has non-positive version %d", m.Name, m.Version)
		}
		if i > 0 && sorted[i-1].Version == m.Version {
			return nil, fmt.Errorf("duplicate migration version %d", m.Version)
		}
	}

	return &Runner{db: db, migrations: sorted}, nil
}

// TargetVersion is the highest known migration version.
func (r *Runner) TargetVersion() int {
	if len(r.migrations) == 0 {
		return 0
	}
	return r.migrations[len(r.migrations)-1].Version
}

// CurrentVersion returns the highest applied version, 0 when the version
// table does not exist yet.
func (r *Runner) CurrentVersion(ctx context.Context) (int, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT to_regclass('schema_migrations') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("checking schema_migrations table: %w", err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading current version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending migrations strictly in ascending order, each
// inside its own transaction. On statement failure that migration is
// rolled back and the run aborts; later migrations are not attempted.
func (r *Runner) Migrate(ctx context.Context) error {
	if err := r.ensureVersionTable(ctx); err != nil {
		return err
	}

	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	pending := pendingMigrations(r.migrations, current)
	if len(pending) == 0 {
		slog.Info("schema up to date", "version", current)
		return nil
	}

	for _, m := range pending {
		if err := r.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		slog.Info("migration applied", "version", m.Version, "name", m.Name)
	}

	return nil
}

func (r *Runner) applyMigration(ctx context.Context, m Migration) error {
	// Non-transactional statements go first; a failure here aborts before
	// the transactional part touches anything.
	for _, st := range m.Up {
		if !st.NoTx {
			continue
		}
		if _, err := r.db.ExecContext(ctx, st.SQL); err != nil {
			return fmt.Errorf("non-transactional statement: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, st := range m.Up {
		if st.NoTx {
			continue
		}
		if _, err := tx.ExecContext(ctx, st.SQL); err != nil {
			tx.Rollback()
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)`,
		m.Version, m.Name, time.Now()); err != nil {
		tx.Rollback()
		return fmt.Errorf("recording version: %w", err)
	}

	return tx.Commit()
}

// Rollback reverts all migrations above targetVersion in descending
// order, each transactionally, removing the version record on success.
func (r *Runner) Rollback(ctx context.Context, targetVersion int) error {
	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if targetVersion > current {
		return fmt.Errorf("target version %d is above current %d", targetVersion, current)
	}

	plan := rollbackPlan(r.migrations, current, targetVersion)
	for _, m := range plan {
		if err := r.revertMigration(ctx, m); err != nil {
			return fmt.Errorf("rollback of %d (%s): %w", m.Version, m.Name, err)
		}
		slog.Info("migration rolled back", "version", m.Version, "name", m.Name)
	}

	return nil
}

func (r *Runner) revertMigration(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, stmt := range m.Down {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schema_migrations WHERE version = $1`, m.Version); err != nil {
		tx.Rollback()
		return fmt.Errorf("removing version record: %w", err)
	}

	return tx.Commit()
}

// History lists applied migrations for operational audit.
func (r *Runner) History(ctx context.Context) ([]AppliedMigration, error) {
	if err := r.ensureVersionTable(ctx); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		if err := rows.Scan(&m.Version, &m.Name, &m.AppliedAt); err != nil {
			return nil, err
		}
		history = append(history, m)
	}

	return history, rows.Err()
}

func (r *Runner) ensureVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	return nil
}

func pendingMigrations(all []Migration, current int) []Migration {
	var pending []Migration
	for _, m := range all {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	return pending
}

func rollbackPlan(all []Migration, current, target int) []Migration {
	var plan []Migration
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if m.Version > target && m.Version <= current {
			plan = append(plan, m)
		}
	}
	return plan
}
