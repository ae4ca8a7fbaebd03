package excel

import (
	"go.uber.org/zap"

	"idsampler/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for reading identifier files
type ReaderConfig struct {
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	// Sheet names the worksheet to read; empty means the first sheet
	Sheet string `json:"sheet"`
}

// DefaultReaderConfig returns sensible defaults for identifier extraction
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}

// Option customises a DataReader
type Option func(*DataReader)

// WithConfig replaces the reader configuration
func WithConfig(cfg ReaderConfig) Option {
	return func(r *DataReader) {
		r.config = cfg
	}
}

// WithLogger sets the logger used for read timings
func WithLogger(logger *zap.Logger) Option {
	return func(r *DataReader) {
		if logger != nil {
			r.logger = logger.Named("reader")
		}
	}
}
