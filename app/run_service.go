package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"idsampler/domain/core"
	"idsampler/domain/run"
	"idsampler/domain/sampling"
	"idsampler/internal/errors"
	"idsampler/internal/reconcile"
	"idsampler/ports"
)

// RunService owns the single run context shared by the operator surfaces.
// Each Execute builds a fresh context and swaps it in whole, so readers see
// either the previous run or the finished one.
type RunService struct {
	mu      sync.RWMutex
	current *run.Context

	sampler     *reconcile.Sampler
	ledger      ports.RunLedgerPort
	logger      *zap.Logger
	codeVersion string
	now         func() time.Time
}

// NewRunService creates a run service. A nil rng uses MT19937, a nil ledger
// disables run recording and a nil logger discards logs.
func NewRunService(rng ports.RNGPort, ledger ports.RunLedgerPort, logger *zap.Logger, codeVersion string) *RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunService{
		current:     run.NewContext(),
		sampler:     reconcile.NewSampler(rng),
		ledger:      ledger,
		logger:      logger.Named("runs"),
		codeVersion: codeVersion,
		now:         time.Now,
	}
}

// LoadPool replaces the identifier pool. A pool is what moves the service
// out of Idle, so an empty pool is rejected here.
func (s *RunService) LoadPool(ids []sampling.Identifier) error {
	if len(ids) == 0 {
		return errors.Wrap(errors.InvalidInput(core.ErrEmptyTable.Error()), "failed to load pool")
	}
	return s.load("pool", func(in *run.Inputs) {
		in.Pool = slices.Clone(ids)
	})
}

// LoadRetained replaces the retained set
func (s *RunService) LoadRetained(ids []sampling.Identifier) error {
	return s.load("retained", func(in *run.Inputs) {
		in.Retained = slices.Clone(ids)
	})
}

// LoadExcluded replaces the excluded set
func (s *RunService) LoadExcluded(ids []sampling.Identifier) error {
	return s.load("excluded", func(in *run.Inputs) {
		in.Excluded = slices.Clone(ids)
	})
}

// load applies one input change on a copy and commits it. Results of a
// previous run are dropped because they no longer describe the inputs.
func (s *RunService) load(kind string, apply func(*run.Inputs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &run.Context{
		State:  s.current.State,
		Inputs: s.current.Inputs.Clone(),
		Params: s.current.Params,
	}
	apply(&next.Inputs)

	if len(next.Inputs.Pool) > 0 {
		if err := next.Transition(run.StateInputsLoaded); err != nil {
			return errors.Wrap(errors.Conflict(err.Error()), "failed to load "+kind)
		}
	} else if next.State != run.StateIdle {
		next.State = run.StateIdle
	}

	s.current = next
	s.logger.Info("inputs loaded",
		zap.String("kind", kind),
		zap.Int("pool", len(next.Inputs.Pool)),
		zap.Int("retained", len(next.Inputs.Retained)),
		zap.Int("excluded", len(next.Inputs.Excluded)),
		zap.String("state", string(next.State)))
	return nil
}

// Execute runs eligibility, validation, sampling and composition against the
// loaded inputs. A rejected run is a normal outcome: the returned context is
// in StateRejected with its errors and the error return is nil. Invalid
// parameters are reported as an error and leave the current context alone.
func (s *RunService) Execute(ctx context.Context, params run.Params) (*run.Context, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	c := &run.Context{
		RunID:     core.NewRunID(),
		State:     run.StateValidating,
		Inputs:    s.current.Inputs.Clone(),
		Params:    params,
		StartedAt: s.now(),
	}
	s.evaluate(c)
	s.current = c
	s.mu.Unlock()

	s.logger.Info("run finished",
		zap.String("run_id", c.RunID.String()),
		zap.String("state", string(c.State)),
		zap.Int("eligible", len(c.Eligible)),
		zap.Int("new", len(c.Sample)),
		zap.Int("errors", len(c.Errors)),
		zap.Duration("duration", c.Duration()))

	s.record(ctx, c)
	return c.Clone(), nil
}

func (s *RunService) evaluate(c *run.Context) {
	in := c.Inputs
	c.Eligible = reconcile.ComputeEligible(in.Pool, in.Retained, in.Excluded, c.Params.Range)
	c.Errors = reconcile.Validate(in.Pool, in.Retained, in.Excluded, c.Eligible, c.Params.SampleSize)

	if c.Errors.OK() {
		c.Sample = s.sampler.Sample(c.Eligible, c.Params.SampleSize, c.Params.Seed)
		c.Dataset = reconcile.Compose(in.Retained, c.Sample)
		c.State = run.StateSampled
	} else {
		c.State = run.StateRejected
	}

	c.Fingerprint = run.NewFingerprint(in, c.Params)
	c.FinishedAt = s.now()
}

func (s *RunService) record(ctx context.Context, c *run.Context) {
	if s.ledger == nil {
		return
	}
	manifest := run.NewManifest(c, s.codeVersion)
	if err := s.ledger.Record(ctx, manifest); err != nil {
		s.logger.Warn("failed to record run",
			zap.String("run_id", c.RunID.String()),
			zap.Error(err))
	}
}

// Reset discards all inputs and results
func (s *RunService) Reset() {
	s.mu.Lock()
	s.current = run.NewContext()
	s.mu.Unlock()
	s.logger.Info("run state reset")
}

// Snapshot returns a copy of the current context
func (s *RunService) Snapshot() *run.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Dataset returns the final dataset of the last run, or core.ErrNotSampled
// when the last run did not reach StateSampled.
func (s *RunService) Dataset() (sampling.FinalDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.State != run.StateSampled {
		return nil, core.ErrNotSampled
	}
	return slices.Clone(s.current.Dataset), nil
}

// History lists recent run manifests from the ledger
func (s *RunService) History(ctx context.Context, limit int) ([]run.Manifest, error) {
	if s.ledger == nil {
		return nil, nil
	}
	manifests, err := s.ledger.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to list the last %d runs", limit))
	}
	return manifests, nil
}
