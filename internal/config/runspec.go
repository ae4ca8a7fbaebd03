package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"idsampler/domain/run"
	"idsampler/domain/sampling"
)

// RunSpec describes a batch run: where the three identifier files live and
// the sampling parameters. Relative paths resolve against the YAML file.
type RunSpec struct {
	Pool     string `yaml:"pool"`
	Retained string `yaml:"retained,omitempty"`
	Excluded string `yaml:"excluded,omitempty"`

	SampleSize int    `yaml:"sample_size"`
	Seed       *int64 `yaml:"seed,omitempty"`
	MinID      *int64 `yaml:"min_id,omitempty"`
	MaxID      *int64 `yaml:"max_id,omitempty"`

	Output string `yaml:"output,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DefaultRunSpec returns a spec with the default sample size
func DefaultRunSpec() *RunSpec {
	return &RunSpec{SampleSize: run.DefaultSampleSize}
}

// LoadRunSpec reads a YAML run spec
func LoadRunSpec(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run spec: %w", err)
	}

	spec := DefaultRunSpec()
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("failed to parse run spec: %w", err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&spec.Pool, &spec.Retained, &spec.Excluded, &spec.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return spec, nil
}

// Save writes the run spec as YAML
func (s *RunSpec) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal run spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run spec: %w", err)
	}
	return nil
}

// Params converts the run spec into run parameters
func (s *RunSpec) Params() run.Params {
	return run.Params{
		SampleSize: s.SampleSize,
		Seed:       s.Seed,
		Range:      sampling.RangeFilter{Min: s.MinID, Max: s.MaxID},
	}
}
