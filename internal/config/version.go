package config

// Version is stamped at build time with -ldflags "-X idsampler/internal/config.Version=..."
var Version = "dev"
