package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "idsampler/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "PPROF_ENABLED", "LEDGER_DSN", "LEDGER_DRIVER", "DEFAULT_SAMPLE_SIZE", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Profiling.Enabled)
	assert.False(t, cfg.Ledger.Enabled())
	assert.Equal(t, 10, cfg.Sampling.DefaultSampleSize)
	assert.Equal(t, int64(32<<20), cfg.Sampling.MaxUploadBytes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("LEDGER_DRIVER", "postgres")
	t.Setenv("LEDGER_DSN", "postgres://localhost/ledger")
	t.Setenv("DEFAULT_SAMPLE_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Profiling.Enabled)
	assert.True(t, cfg.Ledger.Enabled())
	assert.Equal(t, "postgres", cfg.Ledger.Driver)
	assert.Equal(t, 25, cfg.Sampling.DefaultSampleSize)
}

func TestLoadRejectsUnknownLedgerDriver(t *testing.T) {
	t.Setenv("LEDGER_DRIVER", "mysql")
	t.Setenv("LEDGER_DSN", "user@/db")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestRunSpecSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")

	seed := int64(42)
	minID := int64(5)
	spec := &RunSpec{
		Pool:       "pool.csv",
		Excluded:   filepath.Join(dir, "abs", "excluded.xlsx"),
		SampleSize: 3,
		Seed:       &seed,
		MinID:      &minID,
	}
	require.NoError(t, spec.Save(path))

	loaded, err := LoadRunSpec(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "pool.csv"), loaded.Pool)
	assert.Equal(t, filepath.Join(dir, "abs", "excluded.xlsx"), loaded.Excluded)
	assert.Empty(t, loaded.Retained)
	assert.Equal(t, 3, loaded.SampleSize)

	params := loaded.Params()
	require.NotNil(t, params.Seed)
	assert.Equal(t, int64(42), *params.Seed)
	require.NotNil(t, params.Range.Min)
	assert.Equal(t, int64(5), *params.Range.Min)
	assert.Nil(t, params.Range.Max)
}

func TestRunSpecDefaultsSampleSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool: ids.csv\n"), 0o644))

	spec, err := LoadRunSpec(path)
	require.NoError(t, err)
	assert.Equal(t, 10, spec.SampleSize)
}

func TestLoadRunSpecErrors(t *testing.T) {
	_, err := LoadRunSpec(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_size: [oops"), 0o644))
	_, err = LoadRunSpec(path)
	assert.Error(t, err)
}
