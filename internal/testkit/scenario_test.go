package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idsampler/adapters/excel"
)

func TestGenerateScenarioDeterministic(t *testing.T) {
	cfg := DefaultScenarioConfig()
	a, err := GenerateScenario(cfg)
	require.NoError(t, err)
	b, err := GenerateScenario(cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Pool, b.Pool)
	assert.Equal(t, a.Retained, b.Retained)
	assert.Equal(t, a.Excluded, b.Excluded)
	assert.Len(t, a.Pool, cfg.PoolSize)
	assert.Len(t, a.Retained, cfg.RetainedCount)
	assert.Len(t, a.Excluded, cfg.ExcludedCount)
}

func TestGenerateScenarioOverlap(t *testing.T) {
	cfg := DefaultScenarioConfig()
	cfg.Overlap = 3

	s, err := GenerateScenario(cfg)
	require.NoError(t, err)

	excluded := make(map[int64]bool, len(s.Excluded))
	for _, id := range s.Excluded {
		excluded[id] = true
	}
	shared := 0
	for _, id := range s.Retained {
		if excluded[id] {
			shared++
		}
	}
	assert.Equal(t, 3, shared)
}

func TestGenerateScenarioRejectsImpossibleConfig(t *testing.T) {
	tests := []ScenarioConfig{
		{PoolSize: 0},
		{PoolSize: 5, RetainedCount: 4, ExcludedCount: 4},
		{PoolSize: 10, RetainedCount: 1, ExcludedCount: 1, Overlap: 2},
		{PoolSize: 10, RetainedCount: -1},
	}
	for _, cfg := range tests {
		_, err := GenerateScenario(cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestWriteFilesRoundTrip(t *testing.T) {
	cfg := DefaultScenarioConfig()
	cfg.PoolSize = 40
	cfg.RetainedCount = 4
	cfg.ExcludedCount = 2
	cfg.DirtyCells = 2

	s, err := GenerateScenario(cfg)
	require.NoError(t, err)

	for _, ext := range []string{"csv", "xlsx"} {
		t.Run(ext, func(t *testing.T) {
			files, err := s.WriteFiles(t.TempDir(), ext)
			require.NoError(t, err)

			pool, err := excel.NewDataReader(files.Pool).ReadIdentifiers()
			require.NoError(t, err)
			assert.Equal(t, s.Pool, pool.IDs)
			assert.True(t, pool.HeaderSkipped)
			assert.Equal(t, 2, pool.Dropped)

			retained, err := excel.NewDataReader(files.Retained).ReadIdentifiers()
			require.NoError(t, err)
			assert.Equal(t, s.Retained, retained.IDs)
		})
	}

	_, err = s.WriteFiles(t.TempDir(), "json")
	assert.Error(t, err)
}
