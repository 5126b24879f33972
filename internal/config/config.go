// Package config loads and validates the pipeline configuration: explicit
// defaults, overlaid by an optional YAML file, overlaid by
// MARKETPIPE_-prefixed environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"marketpipe/internal/cluster"
)

// Config is the complete pipeline configuration.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs" envconfig:"INPUTS"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// InputsConfig names the raw JSON input files.
type InputsConfig struct {
	MarketsFile    string `yaml:"markets_file" envconfig:"MARKETS_FILE"`
	FlowsFile      string `yaml:"flows_file" envconfig:"FLOWS_FILE"`
	TimeSeriesFile string `yaml:"time_series_file" envconfig:"TIME_SERIES_FILE"`
}

// OutputConfig controls where and in which formats artifacts are written.
type OutputConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR"`
	WriteCSV   bool   `yaml:"write_csv" envconfig:"WRITE_CSV"`
	WriteExcel bool   `yaml:"write_excel" envconfig:"WRITE_EXCEL"`
}

// AnalysisConfig carries the tunable analysis parameters.
type AnalysisConfig struct {
	ThresholdKm    float64                  `yaml:"threshold_km" envconfig:"THRESHOLD_KM"`
	MinClusterSize int                      `yaml:"min_cluster_size" envconfig:"MIN_CLUSTER_SIZE"`
	ShockThreshold float64                  `yaml:"shock_threshold" envconfig:"SHOCK_THRESHOLD"`
	MaxConcurrency int                      `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY"`
	Weights        cluster.ComponentWeights `yaml:"weights"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// Default returns the configuration the pipeline runs with when nothing is
// overridden.
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			MarketsFile:    "data/markets.geojson",
			FlowsFile:      "data/flows.json",
			TimeSeriesFile: "data/time-series.geojson",
		},
		Output: OutputConfig{
			Dir:      "output",
			WriteCSV: true,
		},
		Analysis: AnalysisConfig{
			ThresholdKm:    200,
			MinClusterSize: cluster.DefaultMinClusterSize,
			ShockThreshold: 0.30,
			MaxConcurrency: 4,
			Weights:        cluster.DefaultComponentWeights(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, then the optional YAML file at
// path, then environment variables, then validation. An empty path skips the
// file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("MARKETPIPE", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Analysis.ThresholdKm <= 0 {
		return fmt.Errorf("analysis.threshold_km must be positive, got %v", c.Analysis.ThresholdKm)
	}
	if c.Analysis.MinClusterSize < 1 {
		return fmt.Errorf("analysis.min_cluster_size must be at least 1, got %d", c.Analysis.MinClusterSize)
	}
	if c.Analysis.ShockThreshold <= 0 {
		return fmt.Errorf("analysis.shock_threshold must be positive, got %v", c.Analysis.ShockThreshold)
	}
	if c.Analysis.MaxConcurrency < 1 {
		return fmt.Errorf("analysis.max_concurrency must be at least 1, got %d", c.Analysis.MaxConcurrency)
	}
	if !c.Analysis.Weights.IsValid() {
		return fmt.Errorf("analysis.weights must be non-negative and sum to 1")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
