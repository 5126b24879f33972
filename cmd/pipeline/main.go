package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"marketpipe/internal/config"
	"marketpipe/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	outputDir := flag.String("out", "", "output directory for artifacts (overrides config)")
	thresholdKm := flag.Float64("threshold-km", 0, "spatial weights distance threshold in km (overrides config)")
	minClusterSize := flag.Int("min-cluster-size", 0, "minimum cluster size (overrides config)")
	shockThreshold := flag.Float64("shock-threshold", 0, "relative price change treated as a shock (overrides config)")
	writeExcel := flag.Bool("excel", false, "also write the Excel analysis workbook")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Dir = *outputDir
		case "threshold-km":
			cfg.Analysis.ThresholdKm = *thresholdKm
		case "min-cluster-size":
			cfg.Analysis.MinClusterSize = *minClusterSize
		case "shock-threshold":
			cfg.Analysis.ShockThreshold = *shockThreshold
		case "excel":
			cfg.Output.WriteExcel = *writeExcel
		}
	})
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := pipeline.NewRunner(cfg, logger)
	if err := runner.Run(ctx); err != nil {
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the slog handler from the logging configuration.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
