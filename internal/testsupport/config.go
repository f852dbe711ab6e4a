// Package testsupport provides shared helpers for package tests: temp-dir
// configs and throwaway ledger stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"firewatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.FIRMS.APIKey = "test"
	cfg.Workflow.RetryBaseSeconds = 1
	cfg.Workflow.RetryMaxSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithVerifierKey sets the classification endpoint key on the test config.
func WithVerifierKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Verifier.APIKey = key
	}
}

// WithEmissionProfile selects the emission-factor profile on the test config.
func WithEmissionProfile(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Emissions.Profile = name
	}
}
