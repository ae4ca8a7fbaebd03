package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ScenarioConfig configures a synthetic pool / retained / excluded triple
type ScenarioConfig struct {
	PoolSize      int    `json:"pool_size" yaml:"pool_size"`
	StartID       int64  `json:"start_id" yaml:"start_id"`
	RetainedCount int    `json:"retained_count" yaml:"retained_count"`
	ExcludedCount int    `json:"excluded_count" yaml:"excluded_count"`
	Overlap       int    `json:"overlap" yaml:"overlap"`
	DirtyCells    int    `json:"dirty_cells" yaml:"dirty_cells"`
	Header        string `json:"header" yaml:"header"`
	Seed          int64  `json:"seed" yaml:"seed"`
}

// DefaultScenarioConfig returns a clean, valid scenario
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		PoolSize:      1000,
		StartID:       100000,
		RetainedCount: 50,
		ExcludedCount: 25,
		Header:        "id",
		Seed:          42,
	}
}

// Scenario is one generated set of inputs. Retained and Excluded are drawn
// from the pool; Overlap of them are shared on purpose to trigger validation.
type Scenario struct {
	Config   ScenarioConfig
	Pool     []int64
	Retained []int64
	Excluded []int64
}

// ScenarioFiles are the paths written by WriteFiles
type ScenarioFiles struct {
	Pool     string
	Retained string
	Excluded string
}

// GenerateScenario builds a deterministic scenario from cfg.Seed
func GenerateScenario(cfg ScenarioConfig) (*Scenario, error) {
	if cfg.PoolSize < 1 {
		return nil, fmt.Errorf("pool size must be positive, got %d", cfg.PoolSize)
	}
	if cfg.RetainedCount < 0 || cfg.ExcludedCount < 0 || cfg.Overlap < 0 {
		return nil, fmt.Errorf("counts must not be negative")
	}
	if cfg.Overlap > cfg.RetainedCount || cfg.Overlap > cfg.ExcludedCount {
		return nil, fmt.Errorf("overlap %d exceeds retained or excluded count", cfg.Overlap)
	}
	if cfg.RetainedCount+cfg.ExcludedCount-cfg.Overlap > cfg.PoolSize {
		return nil, fmt.Errorf("retained and excluded need %d distinct IDs but the pool has %d",
			cfg.RetainedCount+cfg.ExcludedCount-cfg.Overlap, cfg.PoolSize)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	pool := make([]int64, cfg.PoolSize)
	for i := range pool {
		pool[i] = cfg.StartID + int64(i)
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	picks := rng.Perm(cfg.PoolSize)
	distinct := cfg.RetainedCount + cfg.ExcludedCount - cfg.Overlap

	retained := make([]int64, 0, cfg.RetainedCount)
	for _, idx := range picks[:cfg.RetainedCount] {
		retained = append(retained, pool[idx])
	}

	excluded := make([]int64, 0, cfg.ExcludedCount)
	for _, idx := range picks[cfg.RetainedCount-cfg.Overlap : distinct] {
		excluded = append(excluded, pool[idx])
	}

	return &Scenario{
		Config:   cfg,
		Pool:     pool,
		Retained: retained,
		Excluded: excluded,
	}, nil
}

// WriteFiles writes the scenario as pool, retained and excluded files in dir.
// ext is "csv" or "xlsx". Dirty cells are appended to the pool only.
func (s *Scenario) WriteFiles(dir, ext string) (ScenarioFiles, error) {
	files := ScenarioFiles{
		Pool:     filepath.Join(dir, "pool."+ext),
		Retained: filepath.Join(dir, "retained."+ext),
		Excluded: filepath.Join(dir, "excluded."+ext),
	}

	dirty := make([]string, s.Config.DirtyCells)
	for i := range dirty {
		dirty[i] = fmt.Sprintf("n/a-%d", i+1)
	}

	for _, f := range []struct {
		path  string
		ids   []int64
		extra []string
	}{
		{files.Pool, s.Pool, dirty},
		{files.Retained, s.Retained, nil},
		{files.Excluded, s.Excluded, nil},
	} {
		cells := s.column(f.ids, f.extra)
		var err error
		switch ext {
		case "csv":
			err = writeCSVColumn(f.path, cells)
		case "xlsx":
			err = writeXLSXColumn(f.path, cells)
		default:
			return ScenarioFiles{}, fmt.Errorf("unsupported fixture format %q", ext)
		}
		if err != nil {
			return ScenarioFiles{}, err
		}
	}
	return files, nil
}

func (s *Scenario) column(ids []int64, extra []string) []string {
	cells := make([]string, 0, len(ids)+len(extra)+1)
	if s.Config.Header != "" {
		cells = append(cells, s.Config.Header)
	}
	for _, id := range ids {
		cells = append(cells, strconv.FormatInt(id, 10))
	}
	return append(cells, extra...)
}

func writeCSVColumn(path string, cells []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, c := range cells {
		if err := w.Write([]string{c}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeXLSXColumn(path string, cells []string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, c := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		var value interface{} = c
		if n, err := strconv.ParseInt(c, 10, 64); err == nil {
			value = n
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
