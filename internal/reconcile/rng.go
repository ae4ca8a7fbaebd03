package reconcile

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mathext/prng"

	"idsampler/ports"
)

// MT19937 hands out independent Mersenne Twister sources. It keeps no state
// of its own, so concurrent callers never share a generator.
type MT19937 struct{}

var _ ports.RNGPort = MT19937{}

// Seeded returns a generator whose stream depends only on seed
func (MT19937) Seeded(seed int64) ports.RandomSource {
	src := prng.NewMT19937()
	src.Seed(uint64(seed))
	return src
}

// Unseeded returns a generator seeded from the clock
func (MT19937) Unseeded() ports.RandomSource {
	src := prng.NewMT19937()
	src.Seed(uint64(time.Now().UnixNano()))
	return src
}

// uint64n returns a uniform value in [0, n). n must be positive.
func uint64n(src ports.RandomSource, n uint64) uint64 {
	if n&(n-1) == 0 {
		return src.Uint64() & (n - 1)
	}
	// Reject the tail that would bias the modulo.
	limit := math.MaxUint64 - math.MaxUint64%n
	v := src.Uint64()
	for v >= limit {
		v = src.Uint64()
	}
	return v % n
}
