package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpipe/pkg/contracts/domain"
)

// series builds a monthly time series for a market with the given prices and
// an optional uniform conflict intensity.
func series(market string, prices []float64, conflict *float64) []domain.TimeSeriesPoint {
	points := make([]domain.TimeSeriesPoint, len(prices))
	for i := range prices {
		p := prices[i]
		points[i] = domain.TimeSeriesPoint{
			Market:            market,
			Date:              time.Date(2023, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Price:             &p,
			ConflictIntensity: conflict,
		}
	}
	return points
}

func floatPtr(v float64) *float64 { return &v }

func TestComponentWeights(t *testing.T) {
	assert.True(t, DefaultComponentWeights().IsValid())
	assert.False(t, ComponentWeights{Connectivity: 0.5, PriceIntegration: 0.5, Stability: 0.5}.IsValid())
	assert.False(t, ComponentWeights{Connectivity: -0.4, PriceIntegration: 0.6, Stability: 0.4, ConflictResilience: 0.4}.IsValid())
}

func TestCalculateComposite(t *testing.T) {
	conflict := floatPtr(2.0)
	cl := domain.Cluster{
		ID:      1,
		Markets: []string{"a", "b"},
		Flows:   []domain.Flow{flow("a", "b", 10)},
	}
	seriesByMarket := map[string][]domain.TimeSeriesPoint{
		"a": series("a", []float64{10, 20, 30}, conflict),
		"b": series("b", []float64{20, 40, 60}, conflict),
	}

	calc := NewCalculator(DefaultComponentWeights(), nil)
	metrics, err := calc.Calculate(context.Background(), cl, seriesByMarket)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, metrics.Connectivity, 1e-9, "one connected pair of one possible")
	assert.InDelta(t, 1.0, metrics.PriceIntegration, 1e-9, "perfectly correlated prices")
	assert.InDelta(t, 0.5, metrics.Stability, 1e-9, "both members have volatility 0.5")
	assert.InDelta(t, 0.8, metrics.ConflictResilience, 1e-9)
	assert.InDelta(t, 0.88, metrics.Efficiency, 1e-9)
	assert.InDelta(t, 30.0, metrics.AvgPrice, 1e-9)
	assert.InDelta(t, 2.0, metrics.AvgConflict, 1e-9)
	assert.Equal(t, 2, metrics.MarketCount)
}

func TestCalculateBounds(t *testing.T) {
	tests := []struct {
		name   string
		cl     domain.Cluster
		series map[string][]domain.TimeSeriesPoint
	}{
		{
			name: "no flows no data",
			cl:   domain.Cluster{Markets: []string{"a", "b"}},
			series: map[string][]domain.TimeSeriesPoint{
				"a": nil, "b": nil,
			},
		},
		{
			name: "anticorrelated volatile prices",
			cl: domain.Cluster{
				Markets: []string{"a", "b", "c"},
				Flows:   []domain.Flow{flow("a", "b", 1), flow("b", "c", 1), flow("c", "a", 1)},
			},
			series: map[string][]domain.TimeSeriesPoint{
				"a": series("a", []float64{1, 100, 1, 100}, floatPtr(10)),
				"b": series("b", []float64{100, 1, 100, 1}, floatPtr(10)),
				"c": series("c", []float64{50, 50, 50, 50}, nil),
			},
		},
	}

	calc := NewCalculator(DefaultComponentWeights(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, err := calc.Calculate(context.Background(), tt.cl, tt.series)
			require.NoError(t, err)
			for name, v := range map[string]float64{
				"efficiency":          metrics.Efficiency,
				"connectivity":        metrics.Connectivity,
				"price_integration":   metrics.PriceIntegration,
				"stability":           metrics.Stability,
				"conflict_resilience": metrics.ConflictResilience,
			} {
				assert.GreaterOrEqual(t, v, 0.0, name)
				assert.LessOrEqual(t, v, 1.0, name)
			}
		})
	}
}

func TestCalculateConflictDefault(t *testing.T) {
	cl := domain.Cluster{Markets: []string{"a", "b"}}
	seriesByMarket := map[string][]domain.TimeSeriesPoint{
		"a": series("a", []float64{10, 10}, nil),
		"b": series("b", []float64{10, 10}, nil),
	}

	calc := NewCalculator(DefaultComponentWeights(), nil)
	metrics, err := calc.Calculate(context.Background(), cl, seriesByMarket)
	require.NoError(t, err)

	assert.Equal(t, 10.0, metrics.AvgConflict, "no conflict data assumes the worst case")
	assert.Equal(t, 0.0, metrics.ConflictResilience)
}

func TestCalculateNoValidPricePairs(t *testing.T) {
	cl := domain.Cluster{Markets: []string{"a", "b"}}
	seriesByMarket := map[string][]domain.TimeSeriesPoint{
		"a": series("a", []float64{10}, nil),
		"b": series("b", []float64{20}, nil),
	}

	calc := NewCalculator(DefaultComponentWeights(), nil)
	metrics, err := calc.Calculate(context.Background(), cl, seriesByMarket)
	require.NoError(t, err)
	assert.Equal(t, 0.0, metrics.PriceIntegration)
	assert.Equal(t, 0.0, metrics.Stability, "no member has two price points")
}

func TestCalculateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calc := NewCalculator(DefaultComponentWeights(), nil)
	_, err := calc.Calculate(ctx, domain.Cluster{Markets: []string{"a", "b"}}, nil)
	assert.Error(t, err)
}

func TestNewCalculatorInvalidWeightsFallBack(t *testing.T) {
	calc := NewCalculator(ComponentWeights{Connectivity: 2}, nil)
	assert.Equal(t, DefaultComponentWeights(), calc.weights)
}
