package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"marketpipe/internal/analysis"
	"marketpipe/internal/cluster"
	"marketpipe/internal/config"
	"marketpipe/internal/dataload"
	"marketpipe/internal/geo"
	"marketpipe/internal/network"
	"marketpipe/pkg/contracts/domain"
)

// loadStage reads the three raw inputs. The files are independent, so reads
// fan out under a bounded errgroup; any parse failure aborts the run.
type loadStage struct {
	loader *dataload.Loader
	inputs config.InputsConfig
	limit  int
}

func (s *loadStage) ID() string   { return "load" }
func (s *loadStage) Name() string { return "Load Inputs" }

func (s *loadStage) Run(ctx context.Context, state *State) error {
	var (
		markets []geo.Market
		flows   []domain.Flow
		points  []domain.TimeSeriesPoint
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	g.Go(func() error {
		var err error
		markets, err = s.loader.LoadMarkets(s.inputs.MarketsFile)
		return err
	})
	g.Go(func() error {
		var err error
		flows, err = s.loader.LoadFlows(s.inputs.FlowsFile)
		return err
	})
	g.Go(func() error {
		var err error
		points, err = s.loader.LoadTimeSeries(s.inputs.TimeSeriesFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load inputs: %w", err)
	}

	state.SetInputs(markets, flows, points)
	return nil
}

// weightsStage builds the row-normalized spatial weights matrix.
type weightsStage struct {
	thresholdKm float64
}

func (s *weightsStage) ID() string   { return "spatial_weights" }
func (s *weightsStage) Name() string { return "Spatial Weights" }

func (s *weightsStage) Run(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state.SetWeights(geo.BuildWeights(state.Markets(), s.thresholdKm))
	return nil
}

// seriesStage groups the time-series points and computes per-series
// summaries.
type seriesStage struct{}

func (s *seriesStage) ID() string   { return "time_series" }
func (s *seriesStage) Name() string { return "Time Series Aggregation" }

func (s *seriesStage) Run(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	points := state.Points()
	state.SetSeries(analysis.GroupByMarket(points), analysis.Summarize(points))
	return nil
}

// networkStage computes the flow-network metrics.
type networkStage struct {
	analyzer *network.Analyzer
}

func (s *networkStage) ID() string   { return "network" }
func (s *networkStage) Name() string { return "Network Analysis" }

func (s *networkStage) Run(ctx context.Context, state *State) error {
	coords := make(map[string]geo.Coordinate)
	for _, m := range state.Markets() {
		coords[m.Key] = m.Coordinate
	}
	metrics, err := s.analyzer.ComputeMetrics(ctx, state.Flows(), coords)
	if err != nil {
		return fmt.Errorf("network analysis: %w", err)
	}
	state.SetNetwork(metrics)
	return nil
}

// clustersStage detects the market clusters and scores each one. A cluster
// whose metric computation fails keeps a zero-valued metrics record so one
// bad cluster never fails the stage.
type clustersStage struct {
	calculator *cluster.Calculator
	minSize    int
	logger     *slog.Logger
}

func (s *clustersStage) ID() string   { return "clusters" }
func (s *clustersStage) Name() string { return "Cluster Detection" }

func (s *clustersStage) Run(ctx context.Context, state *State) error {
	clusters := cluster.DetectClusters(state.Weights(), state.Flows(), s.minSize)
	series := state.SeriesByMarket()

	for i := range clusters {
		metrics, err := s.calculator.Calculate(ctx, clusters[i], series)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("cluster metrics: %w", err)
			}
			s.logger.WarnContext(ctx, "cluster metrics failed, using zero metrics",
				"cluster_id", clusters[i].ID, "error", err)
			metrics = domain.ClusterMetrics{MarketCount: len(clusters[i].Markets)}
		}
		clusters[i].Metrics = metrics
	}

	state.SetClusters(clusters)
	return nil
}

// shocksStage detects month-over-month price shocks. It depends on the
// time-series stage output and runs in the sequential phase.
type shocksStage struct {
	threshold float64
}

func (s *shocksStage) ID() string   { return "shocks" }
func (s *shocksStage) Name() string { return "Shock Detection" }

func (s *shocksStage) Run(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state.SetShocks(analysis.DetectShocks(state.Points(), s.threshold))
	return nil
}

// performanceStage computes the regional performance roll-up from every
// prior stage's output; it must run last.
type performanceStage struct{}

func (s *performanceStage) ID() string   { return "regional_performance" }
func (s *performanceStage) Name() string { return "Regional Performance" }

func (s *performanceStage) Run(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state.SetPerformance(analysis.ComputeRegionalPerformance(
		state.SeriesByMarket(),
		state.Shocks(),
		state.Clusters(),
		state.Network(),
	))
	return nil
}
