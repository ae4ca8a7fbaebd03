package profiling

import (
	"errors"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution summarises where a set of identifiers falls
type Distribution struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// ErrTooFewValues is returned when a statistic needs more data than given
var ErrTooFewValues = errors.New("too few values for statistic")

// AnalyzeDistribution computes summary statistics over identifiers
func AnalyzeDistribution(ids []int64) (Distribution, error) {
	d := Distribution{Count: len(ids)}
	if len(ids) == 0 {
		return d, ErrTooFewValues
	}

	data := make(stats.Float64Data, len(ids))
	for i, id := range ids {
		data[i] = float64(id)
	}

	var err error
	if d.Min, err = data.Min(); err != nil {
		return d, err
	}
	if d.Max, err = data.Max(); err != nil {
		return d, err
	}
	if d.Mean, err = data.Mean(); err != nil {
		return d, err
	}
	if d.Median, err = data.Median(); err != nil {
		return d, err
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	d.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	d.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	return d, nil
}

// minExpectedPerBin keeps the chi-squared approximation valid
const minExpectedPerBin = 5

// UniformityPValue tests whether sample is spread evenly over eligible. The
// eligible set is split into equal-count bins by rank and a chi-squared
// goodness-of-fit test compares observed and expected hits per bin. Small
// p-values mean the sample clusters. Every sample member must be eligible.
func UniformityPValue(sample, eligible []int64) (float64, error) {
	if len(eligible) == 0 || len(sample) == 0 {
		return 0, ErrTooFewValues
	}
	bins := len(sample) / minExpectedPerBin
	if bins > 10 {
		bins = 10
	}
	if bins > len(eligible) {
		bins = len(eligible)
	}
	if bins < 2 {
		return 0, ErrTooFewValues
	}

	sorted := make([]int64, len(eligible))
	copy(sorted, eligible)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	binOf := func(rank int) int {
		return rank * bins / len(sorted)
	}

	binSize := make([]int, bins)
	for rank := range sorted {
		binSize[binOf(rank)]++
	}

	observed := make([]int, bins)
	for _, id := range sample {
		rank := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= id })
		if rank == len(sorted) || sorted[rank] != id {
			return 0, errors.New("sample contains an identifier outside the eligible set")
		}
		observed[binOf(rank)]++
	}

	chi2 := 0.0
	for b := 0; b < bins; b++ {
		expected := float64(len(sample)) * float64(binSize[b]) / float64(len(sorted))
		diff := float64(observed[b]) - expected
		chi2 += diff * diff / expected
	}

	dist := distuv.ChiSquared{K: float64(bins - 1)}
	p := 1 - dist.CDF(chi2)
	return math.Max(0, math.Min(1, p)), nil
}
