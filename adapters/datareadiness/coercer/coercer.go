package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TypeCoercer turns raw spreadsheet cells into integer identifiers with
// deterministic, versioned rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// NumericThreshold is the share of non-empty cells that must coerce for a
	// column to be reported as an identifier column
	NumericThreshold float64 `json:"numeric_threshold"`
	// StripThousands removes ',' and '_' separators before parsing. Off by
	// default: "1,234" is not a number to the extractor.
	StripThousands bool `json:"strip_thousands"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		StripThousands:   false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// CoerceIdentifier interprets a cell as a float and truncates it toward zero.
// Empty cells, non-numeric text, NaN, infinities and values outside the int64
// range are rejected.
func (c *TypeCoercer) CoerceIdentifier(raw string) (int64, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0, false
	}
	if c.config.StripThousands {
		clean = strings.NewReplacer(",", "", "_", "").Replace(clean)
	}

	if v, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return v, true
	}

	// ParseFloat accepts hex-float literals such as 0x1p4
	digits := strings.TrimLeft(clean, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, false
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	// float64(MaxInt64) rounds up to 2^63, so the upper check is >=
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// IsNumeric reports whether the cell would coerce to an identifier
func (c *TypeCoercer) IsNumeric(raw string) bool {
	_, ok := c.CoerceIdentifier(raw)
	return ok
}

// AnalyzeTypeDistribution summarises how many cells of a column coerce
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, val := range values {
		if strings.TrimSpace(val) == "" {
			analysis.EmptyCount++
			continue
		}
		analysis.ValidCount++
		if c.IsNumeric(val) {
			analysis.NumericCount++
		} else if len(analysis.Rejected) < maxRejectedExamples {
			analysis.Rejected = append(analysis.Rejected, val)
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.IdentifierColumn = analysis.ValidCount > 0 && analysis.NumericRatio >= c.config.NumericThreshold

	return analysis
}

const maxRejectedExamples = 5

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount       int      `json:"total_count"`
	EmptyCount       int      `json:"empty_count"`
	ValidCount       int      `json:"valid_count"`
	NumericCount     int      `json:"numeric_count"`
	NumericRatio     float64  `json:"numeric_ratio"`
	IdentifierColumn bool     `json:"identifier_column"`
	Rejected         []string `json:"rejected,omitempty"`
}

// String renders the analysis on one line
func (a TypeAnalysis) String() string {
	return fmt.Sprintf("%d cells, %d empty, %d numeric (%.1f%%)",
		a.TotalCount, a.EmptyCount, a.NumericCount, a.NumericRatio*100)
}
