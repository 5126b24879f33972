package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marketpipe/internal/cluster"
	"marketpipe/internal/config"
	"marketpipe/internal/dataload"
	"marketpipe/internal/exporter"
	"marketpipe/internal/network"
)

// Runner executes the full analysis pipeline for one configuration.
type Runner struct {
	cfg    *config.Config
	loader *dataload.Loader
	writer *exporter.Writer
	logger *slog.Logger
}

// NewRunner wires a runner from the configuration. A nil logger uses
// slog.Default.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    cfg,
		loader: dataload.NewLoader(logger),
		writer: exporter.NewWriter(cfg.Output.Dir, logger),
		logger: logger,
	}
}

// Run executes the pipeline: load, the concurrent independent stages, the
// sequential dependent stages, then a single artifact flush. Any stage
// failure aborts the run before anything is written.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()
	state := NewState(runID)
	start := time.Now()

	r.logger.InfoContext(ctx, "starting pipeline run",
		"run_id", runID,
		"threshold_km", r.cfg.Analysis.ThresholdKm,
		"min_cluster_size", r.cfg.Analysis.MinClusterSize,
	)

	load := &loadStage{
		loader: r.loader,
		inputs: r.cfg.Inputs,
		limit:  r.cfg.Analysis.MaxConcurrency,
	}
	if err := r.runStage(ctx, load, state); err != nil {
		return err
	}

	// Independent stages read disjoint parts of the load output.
	independent := []Stage{
		&weightsStage{thresholdKm: r.cfg.Analysis.ThresholdKm},
		&seriesStage{},
		&networkStage{analyzer: network.NewAnalyzer(r.logger)},
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Analysis.MaxConcurrency)
	for _, stage := range independent {
		stage := stage
		g.Go(func() error {
			return r.runStage(gctx, stage, state)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Dependent phase, strictly sequential.
	sequential := []Stage{
		&clustersStage{
			calculator: cluster.NewCalculator(r.cfg.Analysis.Weights, r.logger),
			minSize:    r.cfg.Analysis.MinClusterSize,
			logger:     r.logger,
		},
		&shocksStage{threshold: r.cfg.Analysis.ShockThreshold},
		&performanceStage{},
	}
	for _, stage := range sequential {
		if err := r.runStage(ctx, stage, state); err != nil {
			return err
		}
	}

	if err := r.writeArtifacts(state); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "pipeline run completed",
		"run_id", runID,
		"duration", time.Since(start),
		"clusters", len(state.Clusters()),
		"shocks", len(state.Shocks()),
	)
	return nil
}

// runStage executes one stage with lifecycle tracking and logging.
func (r *Runner) runStage(ctx context.Context, stage Stage, state *State) error {
	ss := NewStageState(stage.ID(), stage.Name())
	ss.Start()
	r.logger.InfoContext(ctx, "stage started", "run_id", state.RunID(), "stage", stage.ID())

	if err := stage.Run(ctx, state); err != nil {
		ss.Fail(err)
		r.logger.ErrorContext(ctx, "stage failed",
			"run_id", state.RunID(),
			"stage", stage.ID(),
			"duration", ss.Duration(),
			"error", err,
		)
		return fmt.Errorf("stage %s: %w", stage.ID(), err)
	}

	ss.Complete()
	r.logger.InfoContext(ctx, "stage completed",
		"run_id", state.RunID(),
		"stage", stage.ID(),
		"duration", ss.Duration(),
	)
	return nil
}

// writeArtifacts flushes every artifact after all stages succeeded, keeping
// the output directory a consistent set.
func (r *Runner) writeArtifacts(state *State) error {
	artifacts := []struct {
		name string
		data any
	}{
		{exporter.SpatialWeightsFile, state.Weights()},
		{exporter.MarketClustersFile, state.Clusters()},
		{exporter.TimeSeriesAnalysisFile, state.Summaries()},
		{exporter.MarketShocksFile, state.Shocks()},
		{exporter.RegionalPerformanceFile, state.Performance()},
	}
	for _, a := range artifacts {
		if err := r.writer.WriteJSON(a.name, a.data); err != nil {
			return fmt.Errorf("write artifacts: %w", err)
		}
	}

	if r.cfg.Output.WriteCSV {
		if err := r.writer.WriteClusterSummaryCSV(state.Clusters()); err != nil {
			return fmt.Errorf("write cluster summary: %w", err)
		}
	}
	if r.cfg.Output.WriteExcel {
		if err := r.writer.WriteExcelReport(state.Clusters(), state.Network(), state.Performance()); err != nil {
			return fmt.Errorf("write excel report: %w", err)
		}
	}
	return nil
}
