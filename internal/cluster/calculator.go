package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"marketpipe/internal/stats"
	"marketpipe/pkg/contracts/domain"
)

// DefaultConflictCeiling is the conflict intensity treated as maximally
// adverse. Members without conflict data assume this worst case.
const DefaultConflictCeiling = 10.0

// ComponentWeights are the relative weights of the four efficiency
// sub-metrics. They must be non-negative and sum to one.
type ComponentWeights struct {
	Connectivity       float64 `json:"connectivity" yaml:"connectivity"`
	PriceIntegration   float64 `json:"price_integration" yaml:"price_integration"`
	Stability          float64 `json:"stability" yaml:"stability"`
	ConflictResilience float64 `json:"conflict_resilience" yaml:"conflict_resilience"`
}

// DefaultComponentWeights returns the standard efficiency weighting.
func DefaultComponentWeights() ComponentWeights {
	return ComponentWeights{
		Connectivity:       0.4,
		PriceIntegration:   0.3,
		Stability:          0.2,
		ConflictResilience: 0.1,
	}
}

// IsValid reports whether the weights are non-negative and sum to one within
// floating tolerance.
func (w ComponentWeights) IsValid() bool {
	if w.Connectivity < 0 || w.PriceIntegration < 0 || w.Stability < 0 || w.ConflictResilience < 0 {
		return false
	}
	sum := w.Connectivity + w.PriceIntegration + w.Stability + w.ConflictResilience
	return math.Abs(sum-1) < 1e-9
}

// Calculator computes ClusterMetrics for detected clusters.
type Calculator struct {
	weights         ComponentWeights
	conflictCeiling float64
	logger          *slog.Logger
}

// NewCalculator creates a metrics calculator. Invalid weights fall back to
// the defaults; a nil logger uses slog.Default.
func NewCalculator(weights ComponentWeights, logger *slog.Logger) *Calculator {
	if !weights.IsValid() {
		weights = DefaultComponentWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		weights:         weights,
		conflictCeiling: DefaultConflictCeiling,
		logger:          logger,
	}
}

// Calculate computes the efficiency metrics for one cluster from the member
// price series and the cluster's attached flows. It fails only on context
// cancellation; callers degrade a failed cluster to a zero-valued metrics
// record rather than aborting the run.
func (c *Calculator) Calculate(ctx context.Context, cl domain.Cluster, seriesByMarket map[string][]domain.TimeSeriesPoint) (domain.ClusterMetrics, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClusterMetrics{}, fmt.Errorf("cluster metrics cancelled: %w", err)
	}

	prices := memberPrices(cl.Markets, seriesByMarket)

	connectivity := c.connectivity(cl)
	integration := c.priceIntegration(ctx, cl.Markets, prices)
	stability, avgPrice := c.stability(cl.Markets, prices)
	resilience, avgConflict := c.conflictResilience(cl.Markets, seriesByMarket)

	efficiency := stats.Clamp01(
		c.weights.Connectivity*connectivity +
			c.weights.PriceIntegration*integration +
			c.weights.Stability*stability +
			c.weights.ConflictResilience*resilience)

	c.logger.DebugContext(ctx, "computed cluster metrics",
		"cluster_id", cl.ID,
		"markets", len(cl.Markets),
		"efficiency", efficiency,
	)

	return domain.ClusterMetrics{
		Efficiency:         efficiency,
		Connectivity:       connectivity,
		PriceIntegration:   integration,
		Stability:          stability,
		ConflictResilience: resilience,
		AvgPrice:           avgPrice,
		AvgConflict:        avgConflict,
		MarketCount:        len(cl.Markets),
	}, nil
}

// connectivity is the share of member pairs joined by a flow in either
// direction, over all C(n,2) possible pairs.
func (c *Calculator) connectivity(cl domain.Cluster) float64 {
	n := len(cl.Markets)
	if n < 2 {
		return 0
	}
	connected := make(map[[2]string]bool)
	inCluster := make(map[string]bool, n)
	for _, m := range cl.Markets {
		inCluster[m] = true
	}
	for _, f := range cl.Flows {
		if !inCluster[f.Source] || !inCluster[f.Target] || f.Source == f.Target {
			continue
		}
		a, b := f.Source, f.Target
		if a > b {
			a, b = b, a
		}
		connected[[2]string{a, b}] = true
	}
	possible := float64(n*(n-1)) / 2
	return stats.Clamp01(float64(len(connected)) / possible)
}

// priceIntegration averages the pairwise Pearson correlation of member price
// series, each rescaled from [-1, 1] to [0, 1]. Pairs need at least two
// overlapping observations; zero valid pairs scores zero.
func (c *Calculator) priceIntegration(ctx context.Context, members []string, prices map[string][]float64) float64 {
	var sum float64
	var pairs int
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if ctx.Err() != nil {
				return 0
			}
			a, b := prices[members[i]], prices[members[j]]
			n := len(a)
			if len(b) < n {
				n = len(b)
			}
			if n < 2 {
				continue
			}
			r := stats.Correlation(a, b)
			sum += (r + 1) / 2
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return stats.Clamp01(sum / float64(pairs))
}

// stability derives a score from the mean coefficient of variation over
// members with at least two price points. It also reports the mean price over
// every member observation, for the metrics record.
func (c *Calculator) stability(members []string, prices map[string][]float64) (score, avgPrice float64) {
	var volSum float64
	var volMembers int
	var all []float64
	for _, m := range members {
		series := prices[m]
		all = append(all, series...)
		if len(series) < 2 {
			continue
		}
		volSum += stats.Volatility(series)
		volMembers++
	}
	avgPrice = stats.Mean(all)
	if volMembers == 0 {
		return 0, avgPrice
	}
	avgVol := volSum / float64(volMembers)
	return stats.Clamp01(1 - math.Min(avgVol, 1)), avgPrice
}

// conflictResilience inverts the mean conflict intensity across members with
// data. When no member has conflict data the cluster assumes the ceiling,
// i.e. the worst case.
func (c *Calculator) conflictResilience(members []string, seriesByMarket map[string][]domain.TimeSeriesPoint) (score, avgConflict float64) {
	var sum float64
	var count int
	for _, m := range members {
		for _, p := range seriesByMarket[m] {
			if p.ConflictIntensity == nil || math.IsNaN(*p.ConflictIntensity) {
				continue
			}
			sum += *p.ConflictIntensity
			count++
		}
	}
	if count == 0 {
		avgConflict = c.conflictCeiling
	} else {
		avgConflict = sum / float64(count)
	}
	return stats.Clamp01(1 - avgConflict/c.conflictCeiling), avgConflict
}

// memberPrices extracts each member's price observations ordered by date.
func memberPrices(members []string, seriesByMarket map[string][]domain.TimeSeriesPoint) map[string][]float64 {
	prices := make(map[string][]float64, len(members))
	for _, m := range members {
		series := make([]domain.TimeSeriesPoint, len(seriesByMarket[m]))
		copy(series, seriesByMarket[m])
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
		var ps []float64
		for _, p := range series {
			if p.HasPrice() {
				ps = append(ps, *p.Price)
			}
		}
		prices[m] = ps
	}
	return prices
}
