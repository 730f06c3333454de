package app

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all the necessary configuration for an App instance to
// run. Environment variables provide defaults; explicit flag values
// overwrite them afterwards.
type Config struct {
	ManifestPath string `env:"ACTIONHUB_MANIFESTS"`

	LogFormat string `env:"ACTIONHUB_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"ACTIONHUB_LOG_LEVEL" envDefault:"info"`

	// DispatchMode selects how async actions resolve: "blocking" or
	// "nonblocking".
	DispatchMode string `env:"ACTIONHUB_DISPATCH_MODE" envDefault:"blocking"`

	// RateLimit caps dispatches per second; 0 disables the limiter.
	RateLimit float64 `env:"ACTIONHUB_RATE_LIMIT"`
	RateBurst int     `env:"ACTIONHUB_RATE_BURST" envDefault:"1"`

	MetricsEnabled bool `env:"ACTIONHUB_METRICS"`
}

// ConfigFromEnv returns a Config with environment variables applied.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	switch cfg.DispatchMode {
	case "blocking", "nonblocking":
	default:
		return nil, fmt.Errorf("DispatchMode must be 'blocking' or 'nonblocking', got %q", cfg.DispatchMode)
	}
	if cfg.RateLimit < 0 {
		return nil, errors.New("RateLimit cannot be negative")
	}

	return &cfg, nil
}
