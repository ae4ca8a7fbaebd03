package ledger

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"idsampler/domain/run"
	"idsampler/internal/errors"
	"idsampler/internal/migration"
	"idsampler/ports"
)

// Repository stores run manifests through sqlx. Queries use named and '?'
// parameters rebound per driver so the same code serves postgres and sqlite3.
type Repository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to the ledger database and applies migrations
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to connect to %s ledger", driver)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Named("ledger").Info("run ledger ready",
		zap.String("driver", driver),
		zap.String("schema_version", runner.Version()))

	return NewRepository(db, logger), nil
}

// NewRepository wraps an already migrated database
func NewRepository(db *sqlx.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger.Named("ledger")}
}

var _ ports.RunLedgerPort = (*Repository)(nil)

// Record inserts one manifest
func (r *Repository) Record(ctx context.Context, manifest *run.Manifest) error {
	if err := manifest.Validate(); err != nil {
		return errors.Wrap(errors.ValidationError(err.Error()), "refusing to record run")
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO run_ledger (
			run_id, fingerprint, state, sample_size, seed, min_id, max_id,
			pool_count, retained_count, excluded_count, eligible_count, new_count,
			error_count, code_version, created_at
		) VALUES (
			:run_id, :fingerprint, :state, :sample_size, :seed, :min_id, :max_id,
			:pool_count, :retained_count, :excluded_count, :eligible_count, :new_count,
			:error_count, :code_version, :created_at
		)
	`, manifest)
	if err != nil {
		return errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to record run %s", manifest.RunID)
	}

	r.logger.Debug("run recorded",
		zap.String("run_id", manifest.RunID.String()),
		zap.String("fingerprint", manifest.Fingerprint.Short()))
	return nil
}

// List returns the most recent manifests, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]run.Manifest, error) {
	if limit <= 0 {
		limit = 50
	}

	var manifests []run.Manifest
	query := r.db.Rebind(`
		SELECT run_id, fingerprint, state, sample_size, seed, min_id, max_id,
			pool_count, retained_count, excluded_count, eligible_count, new_count,
			error_count, code_version, created_at
		FROM run_ledger
		ORDER BY created_at DESC, run_id DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &manifests, query, limit); err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to list runs")
	}
	return manifests, nil
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}
