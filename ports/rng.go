package ports

// RandomSource is a stream of uniformly distributed 64-bit values. Sources
// are not safe for concurrent use; each sampler call owns its own.
type RandomSource interface {
	Uint64() uint64
}

// RNGPort provides fresh random sources for sampling runs
type RNGPort interface {
	// Seeded returns a new source whose stream is fully determined by seed
	Seeded(seed int64) RandomSource

	// Unseeded returns a new source seeded from the clock
	Unseeded() RandomSource
}
