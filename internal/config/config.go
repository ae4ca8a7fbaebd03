package config

import (
	"os"
	"strconv"
	"strings"

	"idsampler/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Profiling ProfilingConfig
	Ledger    LedgerConfig
	Logging   LoggingConfig
	Sampling  SamplingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// LedgerConfig selects the optional run ledger. An empty DSN disables it.
type LedgerConfig struct {
	Driver string
	DSN    string
}

// Enabled reports whether runs should be recorded
func (l LedgerConfig) Enabled() bool {
	return l.DSN != ""
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// SamplingConfig holds defaults for operator-facing surfaces
type SamplingConfig struct {
	DefaultSampleSize int
	MaxUploadBytes    int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Profiling: *loadProfilingConfig(),
		Ledger:    *loadLedgerConfig(),
		Logging:   *loadLoggingConfig(),
		Sampling:  *loadSamplingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Driver: getEnvOrDefault("LEDGER_DRIVER", "sqlite3"),
		DSN:    getEnvOrDefault("LEDGER_DSN", ""),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func loadSamplingConfig() *SamplingConfig {
	return &SamplingConfig{
		DefaultSampleSize: getEnvIntOrDefault("DEFAULT_SAMPLE_SIZE", 10),
		MaxUploadBytes:    int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Ledger.Enabled() {
		switch config.Ledger.Driver {
		case "postgres", "sqlite3":
		default:
			return errors.ConfigInvalid("LEDGER_DRIVER must be postgres or sqlite3, got " + config.Ledger.Driver)
		}
	}
	if config.Sampling.DefaultSampleSize < 1 {
		return errors.ConfigInvalid("DEFAULT_SAMPLE_SIZE must be at least 1")
	}
	if config.Sampling.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
