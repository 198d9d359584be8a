package migration

import (
	"context"

	"policysim/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. Every statement is
// valid on both Postgres and sqlite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaVersionTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}

	if err := r.createSimulationRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create simulation_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

// Reset drops every table the runner owns
func (r *MigrationRunner) Reset(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"simulation_runs", "schema_version"} {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return errors.Wrapf(err, "failed to drop %s", table)
		}
	}
	return nil
}

// Applied returns the versions recorded so far
func (r *MigrationRunner) Applied(ctx context.Context, db *sqlx.DB) ([]string, error) {
	var versions []string
	err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_version ORDER BY applied_at`)
	return versions, err
}

func (r *MigrationRunner) createSchemaVersionTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version VARCHAR(32) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *MigrationRunner) createSimulationRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS simulation_runs (
			id VARCHAR(36) PRIMARY KEY,
			fingerprint VARCHAR(64) NOT NULL,
			policy_name TEXT NOT NULL DEFAULT '',
			badge VARCHAR(32) NOT NULL DEFAULT '',
			payload TEXT NOT NULL,
			result TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_simulation_runs_created_at ON simulation_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_simulation_runs_fingerprint ON simulation_runs(fingerprint)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO schema_version (version) VALUES (?)
		ON CONFLICT (version) DO NOTHING
	`), r.version)
	return err
}
