package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpipe/internal/cluster"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200.0, cfg.Analysis.ThresholdKm)
	assert.Equal(t, 2, cfg.Analysis.MinClusterSize)
	assert.Equal(t, 0.30, cfg.Analysis.ShockThreshold)
	assert.Equal(t, cluster.DefaultComponentWeights(), cfg.Analysis.Weights)
	assert.True(t, cfg.Output.WriteCSV)
	assert.False(t, cfg.Output.WriteExcel)
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := `
analysis:
  threshold_km: 150
  min_cluster_size: 3
output:
  dir: results
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.Analysis.ThresholdKm)
	assert.Equal(t, 3, cfg.Analysis.MinClusterSize)
	assert.Equal(t, "results", cfg.Output.Dir)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.30, cfg.Analysis.ShockThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  threshold_km: 150\n"), 0644))

	t.Setenv("MARKETPIPE_ANALYSIS_THRESHOLD_KM", "75")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 75.0, cfg.Analysis.ThresholdKm)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: ["), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.Analysis.ThresholdKm = 0 }},
		{"negative threshold", func(c *Config) { c.Analysis.ThresholdKm = -5 }},
		{"zero min cluster size", func(c *Config) { c.Analysis.MinClusterSize = 0 }},
		{"zero shock threshold", func(c *Config) { c.Analysis.ShockThreshold = 0 }},
		{"zero concurrency", func(c *Config) { c.Analysis.MaxConcurrency = 0 }},
		{"bad weights", func(c *Config) { c.Analysis.Weights = cluster.ComponentWeights{Connectivity: 2} }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
