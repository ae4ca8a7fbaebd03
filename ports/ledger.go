package ports

import (
	"context"

	"idsampler/domain/run"
)

// RunLedgerPort records finished runs for reproducibility auditing.
// Manifests carry counts and hashes only.
type RunLedgerPort interface {
	Record(ctx context.Context, manifest *run.Manifest) error
	List(ctx context.Context, limit int) ([]run.Manifest, error)
}
