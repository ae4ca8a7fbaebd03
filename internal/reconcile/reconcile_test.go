package reconcile

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idsampler/domain/sampling"
)

func seq(from, to int64) []int64 {
	out := make([]int64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func seedPtr(v int64) *int64 { return &v }

func TestComputeEligible(t *testing.T) {
	tests := []struct {
		name     string
		pool     sampling.IdentifierPool
		retained sampling.RetainedSet
		excluded sampling.ExcludedSet
		bounds   sampling.RangeFilter
		want     sampling.EligibleSet
	}{
		{
			name: "empty pool",
			want: sampling.EligibleSet{},
		},
		{
			name: "no overrides returns pool",
			pool: sampling.IdentifierPool{9, 3, 7},
			want: sampling.EligibleSet{9, 3, 7},
		},
		{
			name:     "removes retained and excluded keeping order",
			pool:     sampling.IdentifierPool{10, 4, 8, 2, 6},
			retained: sampling.RetainedSet{8},
			excluded: sampling.ExcludedSet{2, 99},
			want:     sampling.EligibleSet{10, 4, 6},
		},
		{
			name:   "min bound only",
			pool:   sampling.IdentifierPool{1, 5, 10},
			bounds: sampling.RangeFilter{Min: sampling.Bound(5)},
			want:   sampling.EligibleSet{5, 10},
		},
		{
			name:   "max bound only",
			pool:   sampling.IdentifierPool{1, 5, 10},
			bounds: sampling.RangeFilter{Max: sampling.Bound(5)},
			want:   sampling.EligibleSet{1, 5},
		},
		{
			name:     "both bounds inclusive",
			pool:     seq(1, 20),
			retained: sampling.RetainedSet{1, 2},
			excluded: sampling.ExcludedSet{3, 4},
			bounds:   sampling.RangeFilter{Min: sampling.Bound(5), Max: sampling.Bound(15)},
			want:     seq(5, 15),
		},
		{
			name:   "inverted range is empty",
			pool:   seq(1, 10),
			bounds: sampling.RangeFilter{Min: sampling.Bound(8), Max: sampling.Bound(2)},
			want:   sampling.EligibleSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEligible(tt.pool, tt.retained, tt.excluded, tt.bounds)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ComputeEligible mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("clean inputs", func(t *testing.T) {
		pool := sampling.IdentifierPool{1, 2, 3}
		errs := Validate(pool, nil, nil, sampling.EligibleSet(pool), 2)
		assert.True(t, errs.OK())
	})

	t.Run("pool required", func(t *testing.T) {
		errs := Validate(nil, nil, nil, nil, 5)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "Full ID Pool")
	})

	t.Run("pool duplicates", func(t *testing.T) {
		pool := sampling.IdentifierPool{1, 2, 2, 3}
		errs := Validate(pool, nil, nil, sampling.EligibleSet(pool), 1)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "duplicate")
	})

	t.Run("no duplicate error for unique pool", func(t *testing.T) {
		pool := sampling.IdentifierPool{1, 2, 3}
		errs := Validate(pool, nil, nil, sampling.EligibleSet(pool), 1)
		for _, e := range errs {
			assert.NotContains(t, e, "duplicate")
		}
	})

	t.Run("overlap lists offending value", func(t *testing.T) {
		pool := sampling.IdentifierPool(seq(1, 10))
		retained := sampling.RetainedSet{5, 6}
		excluded := sampling.ExcludedSet{6, 7}
		eligible := ComputeEligible(pool, retained, excluded, sampling.RangeFilter{})
		errs := Validate(pool, retained, excluded, eligible, 1)
		require.Len(t, errs, 1)
		assert.Equal(t, "IDs appear in both Current Selections and Excluded IDs: 6", errs[0])
	})

	t.Run("overlap truncates after five", func(t *testing.T) {
		pool := sampling.IdentifierPool(seq(1, 20))
		retained := sampling.RetainedSet(seq(1, 7))
		excluded := sampling.ExcludedSet(seq(1, 7))
		errs := Validate(pool, retained, excluded, sampling.EligibleSet(seq(8, 20)), 1)
		require.Len(t, errs, 1)
		assert.Equal(t, "IDs appear in both Current Selections and Excluded IDs: 1, 2, 3, 4, 5... and more", errs[0])
	})

	t.Run("insufficient eligible pool", func(t *testing.T) {
		pool := sampling.IdentifierPool{1, 2, 3}
		errs := Validate(pool, nil, nil, sampling.EligibleSet(pool), 5)
		require.Len(t, errs, 1)
		assert.Equal(t, "Requested sample size (5) exceeds available eligible IDs (3).", errs[0])
	})

	t.Run("all checks accumulate in order", func(t *testing.T) {
		pool := sampling.IdentifierPool{1, 1, 2}
		retained := sampling.RetainedSet{2, 2}
		excluded := sampling.ExcludedSet{2, 2}
		errs := Validate(pool, retained, excluded, sampling.EligibleSet{1, 1}, 10)
		want := sampling.ValidationErrors{
			"Full ID Pool contains duplicate values.",
			"Current Selections contains duplicate values.",
			"Excluded IDs contains duplicate values.",
			"IDs appear in both Current Selections and Excluded IDs: 2",
			"Requested sample size (10) exceeds available eligible IDs (2).",
		}
		if diff := cmp.Diff(want, errs); diff != "" {
			t.Errorf("Validate mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSamplerEdgeCases(t *testing.T) {
	s := NewSampler(nil)

	assert.Empty(t, s.Sample(nil, 3, seedPtr(1)))
	assert.Empty(t, s.Sample(sampling.EligibleSet{1, 2}, 0, seedPtr(1)))
	assert.Empty(t, s.Sample(sampling.EligibleSet{1, 2}, -4, nil))

	all := s.Sample(sampling.EligibleSet{4, 2, 9}, 3, seedPtr(1))
	assert.ElementsMatch(t, []int64{4, 2, 9}, all)

	more := s.Sample(sampling.EligibleSet{4, 2, 9}, 50, nil)
	assert.ElementsMatch(t, []int64{4, 2, 9}, more)
}

func TestSamplerProperties(t *testing.T) {
	eligible := sampling.EligibleSet(seq(100, 199))
	member := make(map[int64]bool, len(eligible))
	for _, id := range eligible {
		member[id] = true
	}

	for _, size := range []int{1, 7, 50, 99} {
		got := Draw(eligible, size, seedPtr(int64(size)))
		require.Len(t, got, size)

		seen := make(map[int64]bool, size)
		for _, id := range got {
			assert.True(t, member[id], "sampled %d is not eligible", id)
			assert.False(t, seen[id], "sampled %d twice", id)
			seen[id] = true
		}
	}
}

func TestSamplerDeterminism(t *testing.T) {
	eligible := sampling.EligibleSet(seq(1, 1000))

	a := Draw(eligible, 25, seedPtr(42))
	b := Draw(eligible, 25, seedPtr(42))
	assert.Equal(t, a, b)

	shuffled := slices.Clone(eligible)
	slices.Reverse(shuffled)
	c := Draw(shuffled, 25, seedPtr(42))
	assert.Equal(t, a, c, "same seed and same set content must reproduce the sample")

	differing := 0
	for seed := int64(1); seed <= 20; seed++ {
		x := Draw(eligible, 25, seedPtr(seed))
		y := Draw(eligible, 25, seedPtr(seed+1000))
		if !slices.Equal(x, y) {
			differing++
		}
	}
	assert.GreaterOrEqual(t, differing, 19)
}

func TestSamplerDoesNotMutateInput(t *testing.T) {
	eligible := sampling.EligibleSet{5, 3, 1, 4, 2}
	before := slices.Clone(eligible)
	Draw(eligible, 2, seedPtr(7))
	assert.Equal(t, before, eligible)
}

// Every element of a 10-element set should be drawn roughly equally often
// when sampling 3 at a time.
func TestSamplerIsRoughlyUniform(t *testing.T) {
	eligible := sampling.EligibleSet(seq(0, 9))
	counts := make(map[int64]int)
	const trials = 20000
	for i := int64(0); i < trials; i++ {
		for _, id := range Draw(eligible, 3, seedPtr(i+1)) {
			counts[id]++
		}
	}
	expected := float64(trials*3) / 10
	for id, n := range counts {
		assert.InDelta(t, expected, float64(n), expected*0.08, "id %d drawn %d times", id, n)
	}
}

func TestUint64nBounds(t *testing.T) {
	src := MT19937{}.Seeded(3)
	for _, n := range []uint64{1, 2, 3, 10, 64, 1000} {
		for i := 0; i < 200; i++ {
			assert.Less(t, uint64n(src, n), n)
		}
	}
}

func TestCompose(t *testing.T) {
	retained := sampling.RetainedSet{40, 2}
	sample := sampling.Sample{17, 5, 33}

	got := Compose(retained, sample)
	want := sampling.FinalDataset{
		{ID: 2, Source: sampling.ProvenanceCurrent},
		{ID: 5, Source: sampling.ProvenanceNew},
		{ID: 17, Source: sampling.ProvenanceNew},
		{ID: 33, Source: sampling.ProvenanceNew},
		{ID: 40, Source: sampling.ProvenanceCurrent},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compose mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, got, len(retained)+len(sample))
	assert.True(t, got.IsSorted())
}

func TestComposeEmpty(t *testing.T) {
	assert.Empty(t, Compose(nil, nil))
	got := Compose(nil, sampling.Sample{3, 1})
	assert.Equal(t, []int64{1, 3}, got.IDs())
	assert.Equal(t, 2, got.Count(sampling.ProvenanceNew))
}

func TestEndToEnd(t *testing.T) {
	pool := sampling.IdentifierPool(seq(1, 20))
	retained := sampling.RetainedSet{1, 2}
	excluded := sampling.ExcludedSet{3, 4}
	bounds := sampling.RangeFilter{Min: sampling.Bound(5), Max: sampling.Bound(15)}

	eligible := ComputeEligible(pool, retained, excluded, bounds)
	require.Equal(t, seq(5, 15), []int64(eligible))

	errs := Validate(pool, retained, excluded, eligible, 3)
	require.True(t, errs.OK(), "unexpected errors: %v", errs)

	sample := Draw(eligible, 3, seedPtr(42))
	require.Len(t, sample, 3)

	final := Compose(retained, sample)
	require.Len(t, final, 5)
	assert.True(t, final.IsSorted())
	assert.Equal(t, sampling.Entry{ID: 1, Source: sampling.ProvenanceCurrent}, final[0])
	assert.Equal(t, sampling.Entry{ID: 2, Source: sampling.ProvenanceCurrent}, final[1])
	for _, e := range final[2:] {
		assert.Equal(t, sampling.ProvenanceNew, e.Source)
		assert.GreaterOrEqual(t, e.ID, int64(5))
		assert.LessOrEqual(t, e.ID, int64(15))
	}
}
