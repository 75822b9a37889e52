// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "github.com/g-but/palfare/internal/domain/scoring"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir is the directory holding the persisted ledger documents and
	// saved audit reports.
	DataDir string `koanf:"data_dir"`

	// Address is the subject address the ledger tracks.
	Address string `koanf:"address"`

	// CategoryWeights maps scoring category names to their weights. The
	// table must cover all six categories and sum to the maximum score.
	CategoryWeights map[string]float64 `koanf:"category_weights"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		DataDir:         "data",
		Address:         "",
		CategoryWeights: scoring.DefaultWeights(),
	}
}
