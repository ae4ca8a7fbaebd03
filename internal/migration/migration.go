package migration

import (
	"context"
	"fmt"

	"idsampler/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles ledger schema migrations. Statements stick to SQL
// that both postgres and sqlite accept.
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
	if err := r.createRunLedgerTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create run_ledger table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRunLedgerTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_ledger (
			run_id VARCHAR(64) PRIMARY KEY,
			fingerprint VARCHAR(64) NOT NULL,
			state VARCHAR(32) NOT NULL,
			sample_size INTEGER NOT NULL,
			seed BIGINT,
			min_id BIGINT,
			max_id BIGINT,
			pool_count INTEGER NOT NULL DEFAULT 0,
			retained_count INTEGER NOT NULL DEFAULT 0,
			excluded_count INTEGER NOT NULL DEFAULT 0,
			eligible_count INTEGER NOT NULL DEFAULT 0,
			new_count INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0,
			code_version VARCHAR(64) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_run_ledger_created_at ON run_ledger(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_run_ledger_fingerprint ON run_ledger(fingerprint)",
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
