package profiling

import (
	"idsampler/domain/run"
	"idsampler/domain/sampling"
)

// Summary carries the headline counts shown after a successful run
type Summary struct {
	PoolCount     int           `json:"pool_count"`
	EligibleCount int           `json:"eligible_count"`
	RetainedCount int           `json:"retained_count"`
	NewCount      int           `json:"new_count"`
	FinalCount    int           `json:"final_count"`
	Final         *Distribution `json:"final_distribution,omitempty"`
	// SpreadPValue is the uniformity p-value of the new sample over the
	// eligible set, nil when the sample is too small to test
	SpreadPValue *float64 `json:"spread_p_value,omitempty"`
}

// Summarize computes metrics for a run context. Counts are filled in for any
// state; distributions only once a dataset exists.
func Summarize(c *run.Context) Summary {
	s := Summary{
		PoolCount:     len(c.Inputs.Pool),
		EligibleCount: len(c.Eligible),
		RetainedCount: len(c.Inputs.Retained),
		NewCount:      len(c.Sample),
		FinalCount:    len(c.Dataset),
	}
	if c.State != run.StateSampled {
		return s
	}

	if d, err := AnalyzeDistribution(c.Dataset.IDs()); err == nil {
		s.Final = &d
	}
	if p, err := UniformityPValue([]sampling.Identifier(c.Sample), []sampling.Identifier(c.Eligible)); err == nil {
		s.SpreadPValue = &p
	}
	return s
}
