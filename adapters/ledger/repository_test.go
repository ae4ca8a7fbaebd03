package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idsampler/domain/core"
	"idsampler/domain/run"
	"idsampler/domain/sampling"
	apperrors "idsampler/internal/errors"
)

func openTestLedger(t *testing.T) *Repository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := Open(context.Background(), "sqlite3", dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func manifestAt(t *testing.T, at time.Time, state run.State) *run.Manifest {
	t.Helper()
	seed := int64(42)
	c := &run.Context{
		RunID: core.NewRunID(),
		State: state,
		Inputs: run.Inputs{
			Pool:     sampling.IdentifierPool{1, 2, 3, 4, 5},
			Retained: sampling.RetainedSet{1},
		},
		Params:     run.Params{SampleSize: 2, Seed: &seed, Range: sampling.RangeFilter{Min: sampling.Bound(2)}},
		Eligible:   sampling.EligibleSet{2, 3, 4, 5},
		Sample:     sampling.Sample{3, 5},
		FinishedAt: at,
	}
	c.Fingerprint = run.NewFingerprint(c.Inputs, c.Params)
	return run.NewManifest(c, "test")
}

func TestRepositoryRecordAndList(t *testing.T) {
	repo := openTestLedger(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	older := manifestAt(t, base, run.StateSampled)
	newer := manifestAt(t, base.Add(time.Minute), run.StateRejected)

	require.NoError(t, repo.Record(ctx, older))
	require.NoError(t, repo.Record(ctx, newer))

	manifests, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, manifests, 2)

	assert.Equal(t, newer.RunID, manifests[0].RunID)
	assert.Equal(t, older.RunID, manifests[1].RunID)

	got := manifests[1]
	assert.Equal(t, run.StateSampled, got.State)
	assert.Equal(t, older.Fingerprint, got.Fingerprint)
	assert.Equal(t, 5, got.PoolCount)
	assert.Equal(t, 1, got.RetainedCount)
	assert.Equal(t, 4, got.EligibleCount)
	assert.Equal(t, 2, got.NewCount)
	require.NotNil(t, got.Seed)
	assert.Equal(t, int64(42), *got.Seed)
	require.NotNil(t, got.MinID)
	assert.Equal(t, int64(2), *got.MinID)
	assert.Nil(t, got.MaxID)
	assert.True(t, base.Equal(got.CreatedAt))

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRepositoryRejectsIncompleteManifest(t *testing.T) {
	repo := openTestLedger(t)

	err := repo.Record(context.Background(), &run.Manifest{CodeVersion: "test"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
}

func TestRepositoryDuplicateRunID(t *testing.T) {
	repo := openTestLedger(t)
	m := manifestAt(t, time.Now().UTC(), run.StateSampled)

	require.NoError(t, repo.Record(context.Background(), m))
	err := repo.Record(context.Background(), m)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "nosuchdriver", "x", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}

func TestNoop(t *testing.T) {
	var l Noop
	assert.NoError(t, l.Record(context.Background(), nil))
	manifests, err := l.List(context.Background(), 5)
	assert.NoError(t, err)
	assert.Empty(t, manifests)
}
