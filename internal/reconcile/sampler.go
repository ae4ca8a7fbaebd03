package reconcile

import (
	"slices"

	"idsampler/domain/sampling"
	"idsampler/ports"
)

// Sampler draws uniform samples without replacement
type Sampler struct {
	rng ports.RNGPort
}

// NewSampler creates a sampler backed by rng. A nil rng uses MT19937.
func NewSampler(rng ports.RNGPort) *Sampler {
	if rng == nil {
		rng = MT19937{}
	}
	return &Sampler{rng: rng}
}

// Sample draws size distinct identifiers from eligible.
//
// With size <= 0 or an empty set the result is empty; with size >= |eligible|
// the whole set is returned. Otherwise the eligible set is sorted into a
// private copy and a partial Fisher-Yates shuffle picks the first size slots,
// so a given seed reproduces the same sample for the same set content whatever
// order the caller supplied it in. A nil seed draws from a clock-seeded source.
func (s *Sampler) Sample(eligible sampling.EligibleSet, size int, seed *int64) sampling.Sample {
	if len(eligible) == 0 || size <= 0 {
		return sampling.Sample{}
	}
	if size >= len(eligible) {
		return sampling.Sample(slices.Clone(eligible))
	}

	var src ports.RandomSource
	if seed != nil {
		src = s.rng.Seeded(*seed)
	} else {
		src = s.rng.Unseeded()
	}

	pool := slices.Clone(eligible)
	slices.Sort(pool)

	n := len(pool)
	for i := 0; i < size; i++ {
		j := i + int(uint64n(src, uint64(n-i)))
		pool[i], pool[j] = pool[j], pool[i]
	}
	return sampling.Sample(pool[:size:size])
}

var defaultSampler = NewSampler(nil)

// Draw samples with the default MT19937 sampler
func Draw(eligible sampling.EligibleSet, size int, seed *int64) sampling.Sample {
	return defaultSampler.Sample(eligible, size, seed)
}
