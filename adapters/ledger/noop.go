package ledger

import (
	"context"

	"idsampler/domain/run"
	"idsampler/ports"
)

// Noop discards manifests. It stands in when no ledger DSN is configured.
type Noop struct{}

var _ ports.RunLedgerPort = Noop{}

func (Noop) Record(context.Context, *run.Manifest) error { return nil }

func (Noop) List(context.Context, int) ([]run.Manifest, error) { return nil, nil }
