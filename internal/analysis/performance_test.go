package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpipe/pkg/contracts/domain"
)

func TestComputeRegionalPerformance(t *testing.T) {
	conflict := 2.0
	points := []domain.TimeSeriesPoint{
		point("aden", "wheat", 2023, time.January, 100),
		point("aden", "wheat", 2023, time.February, 100),
		point("sanaa", "wheat", 2023, time.January, 50),
	}
	points[0].ConflictIntensity = &conflict
	seriesByMarket := GroupByMarket(points)

	clusters := []domain.Cluster{{ID: 7, Markets: []string{"aden", "sanaa"}}}
	network := domain.NetworkMetrics{
		Centrality: map[string]domain.Centrality{
			"aden": {Degree: 1, Strength: 15, Betweenness: 0},
		},
	}

	perf := ComputeRegionalPerformance(seriesByMarket, nil, clusters, network)
	require.Len(t, perf, 2)

	aden := perf[0]
	assert.Equal(t, "aden", aden.Market)
	assert.InDelta(t, 100.0, aden.AvgPrice, 1e-9)
	assert.Equal(t, 0.0, aden.Volatility)
	assert.InDelta(t, 2.0, aden.AvgConflict, 1e-9)
	require.NotNil(t, aden.ClusterID)
	assert.Equal(t, 7, *aden.ClusterID)
	require.NotNil(t, aden.Centrality)
	assert.Equal(t, 1.0, aden.Centrality.Degree)

	// stability 1, resilience 0.8, centrality 1, no shocks over 1
	// transition: 0.35 + 0.25*0.8 + 0.2 + 0.2 = 0.95
	assert.InDelta(t, 0.95, aden.Score, 1e-9)

	sanaa := perf[1]
	assert.Nil(t, sanaa.Centrality, "sanaa is not in the flow network")
	require.NotNil(t, sanaa.ClusterID)
}

func TestComputeRegionalPerformanceShockCounts(t *testing.T) {
	points := []domain.TimeSeriesPoint{
		point("aden", "wheat", 2023, time.January, 100),
		point("aden", "wheat", 2023, time.February, 200),
		point("aden", "wheat", 2023, time.March, 100),
	}
	seriesByMarket := GroupByMarket(points)
	shocks := DetectShocks(points, 0.30)
	require.Len(t, shocks, 2)

	perf := ComputeRegionalPerformance(seriesByMarket, shocks, nil, domain.NetworkMetrics{})
	require.Len(t, perf, 1)
	assert.Equal(t, 2, perf[0].ShockCount)
	assert.Nil(t, perf[0].ClusterID)
}

func TestPerformanceScoreBounds(t *testing.T) {
	highConflict := 50.0
	points := []domain.TimeSeriesPoint{
		point("x", "wheat", 2023, time.January, 1),
		point("x", "wheat", 2023, time.February, 1000),
	}
	points[0].ConflictIntensity = &highConflict
	points[1].ConflictIntensity = &highConflict

	perf := ComputeRegionalPerformance(GroupByMarket(points), DetectShocks(points, 0.3), nil, domain.NetworkMetrics{})
	require.Len(t, perf, 1)
	assert.GreaterOrEqual(t, perf[0].Score, 0.0)
	assert.LessOrEqual(t, perf[0].Score, 1.0)
}
