package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpipe/internal/config"
	"marketpipe/internal/exporter"
	"marketpipe/internal/geo"
	"marketpipe/pkg/contracts/domain"
)

// writeFixtures lays down a three-market input set: the markets sit on the
// equator roughly 56 km apart, so all three fall inside the default 200 km
// threshold and form one cluster.
func writeFixtures(t *testing.T, dir string) config.InputsConfig {
	t.Helper()

	markets := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.0, 0.0]},
		 "properties": {"region_id": "'Adan"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.5, 0.0]},
		 "properties": {"region_id": "Lahij"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1.0, 0.0]},
		 "properties": {"region_id": "Ta'izz"}}
	]}`

	flows := `[
		{"source": "'Adan", "target": "Lahij", "flow_weight": 10},
		{"source": "Lahij", "target": "Ta'izz", "flow_weight": 5}
	]`

	timeSeries := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {"region_id": "'Adan", "commodity": "wheat",
		 "date": "2023-01", "price": 100, "conflict_intensity": 2}},
		{"type": "Feature", "properties": {"region_id": "'Adan", "commodity": "wheat",
		 "date": "2023-02", "price": 150, "conflict_intensity": 2}},
		{"type": "Feature", "properties": {"region_id": "Lahij", "commodity": "wheat",
		 "date": "2023-01", "price": 100}},
		{"type": "Feature", "properties": {"region_id": "Lahij", "commodity": "wheat",
		 "date": "2023-02", "price": 105}}
	]}`

	inputs := config.InputsConfig{
		MarketsFile:    filepath.Join(dir, "markets.geojson"),
		FlowsFile:      filepath.Join(dir, "flows.json"),
		TimeSeriesFile: filepath.Join(dir, "time-series.geojson"),
	}
	require.NoError(t, os.WriteFile(inputs.MarketsFile, []byte(markets), 0644))
	require.NoError(t, os.WriteFile(inputs.FlowsFile, []byte(flows), 0644))
	require.NoError(t, os.WriteFile(inputs.TimeSeriesFile, []byte(timeSeries), 0644))
	return inputs
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Inputs = writeFixtures(t, dir)
	cfg.Output.Dir = filepath.Join(dir, "out")
	return cfg
}

func TestRunnerEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, nil)
	require.NoError(t, runner.Run(context.Background()))

	readJSON := func(name string, v any) {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, name))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, v))
	}

	var weights geo.SpatialWeights
	readJSON(exporter.SpatialWeightsFile, &weights)
	require.Len(t, weights, 3)
	for key, row := range weights {
		require.NotEmpty(t, row.Neighbors, "all three markets are within threshold: %s", key)
		var sum float64
		for _, w := range row.Weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row sum for %s", key)
	}

	var clusters []domain.Cluster
	readJSON(exporter.MarketClustersFile, &clusters)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"aden", "lahj", "taizz"}, clusters[0].Markets)
	assert.Equal(t, "aden", clusters[0].MainMarket)
	assert.GreaterOrEqual(t, clusters[0].Metrics.Efficiency, 0.0)
	assert.LessOrEqual(t, clusters[0].Metrics.Efficiency, 1.0)

	var shocks []domain.MarketShock
	readJSON(exporter.MarketShocksFile, &shocks)
	require.Len(t, shocks, 1, "only aden's +50% move crosses the threshold")
	assert.Equal(t, "aden", shocks[0].Market)
	assert.Equal(t, domain.ShockSurge, shocks[0].Direction)

	var summaries []domain.SeriesSummary
	readJSON(exporter.TimeSeriesAnalysisFile, &summaries)
	assert.Len(t, summaries, 2)

	var performance []domain.RegionalPerformance
	readJSON(exporter.RegionalPerformanceFile, &performance)
	require.Len(t, performance, 2, "markets without time series stay out of the roll-up")
	assert.Equal(t, "aden", performance[0].Market)
	assert.Equal(t, 1, performance[0].ShockCount)

	// CSV summary is on by default.
	_, err := os.Stat(filepath.Join(cfg.Output.Dir, exporter.ClusterSummaryCSVFile))
	assert.NoError(t, err)
}

func TestRunnerLoadFailureWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inputs.FlowsFile = filepath.Join(t.TempDir(), "missing.json")

	runner := NewRunner(cfg, nil)
	require.Error(t, runner.Run(context.Background()))

	_, err := os.Stat(cfg.Output.Dir)
	assert.True(t, os.IsNotExist(err), "no artifacts on a failed run")
}

func TestRunnerMalformedInputAborts(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Inputs.FlowsFile, []byte(`{"not": "an array"}`), 0644))

	runner := NewRunner(cfg, nil)
	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage load")
}

func TestRunnerCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, NewRunner(cfg, nil).Run(ctx))
}

func TestStageState(t *testing.T) {
	ss := NewStageState("load", "Load Inputs")
	assert.Equal(t, StageStatusPending, ss.Status())
	assert.Equal(t, int64(0), int64(ss.Duration()))

	ss.Start()
	assert.Equal(t, StageStatusActive, ss.Status())

	ss.Complete()
	assert.Equal(t, StageStatusCompleted, ss.Status())
	assert.NoError(t, ss.Err())

	failed := NewStageState("network", "Network Analysis")
	failed.Start()
	failed.Fail(assert.AnError)
	assert.Equal(t, StageStatusFailed, failed.Status())
	assert.Error(t, failed.Err())
}
