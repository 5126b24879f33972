package analysis

import (
	"math"
	"sort"

	"marketpipe/internal/stats"
	"marketpipe/pkg/contracts/domain"
)

// Performance score component weights. Stability and conflict dominate since
// they track the conditions traders actually face; network position and
// shock exposure refine the ranking.
const (
	perfStabilityWeight  = 0.35
	perfResilienceWeight = 0.25
	perfCentralityWeight = 0.20
	perfShockWeight      = 0.20
)

// ComputeRegionalPerformance rolls the per-market series, detected shocks,
// cluster membership, and network centrality into one record per market with
// a composite score in [0, 1]. Markets appear in the result when they have
// any time-series data. Output is sorted by market key.
func ComputeRegionalPerformance(
	seriesByMarket map[string][]domain.TimeSeriesPoint,
	shocks []domain.MarketShock,
	clusters []domain.Cluster,
	network domain.NetworkMetrics,
) []domain.RegionalPerformance {
	shockCounts := make(map[string]int)
	for _, s := range shocks {
		shockCounts[s.Market]++
	}

	clusterOf := make(map[string]int)
	for _, cl := range clusters {
		for _, m := range cl.Markets {
			clusterOf[m] = cl.ID
		}
	}

	markets := make([]string, 0, len(seriesByMarket))
	for m := range seriesByMarket {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	out := make([]domain.RegionalPerformance, 0, len(markets))
	for _, m := range markets {
		series := seriesByMarket[m]
		var prices, conflicts []float64
		for _, p := range series {
			if p.HasPrice() {
				prices = append(prices, *p.Price)
			}
			if p.ConflictIntensity != nil {
				conflicts = append(conflicts, *p.ConflictIntensity)
			}
		}

		perf := domain.RegionalPerformance{
			Market:      m,
			AvgPrice:    stats.Mean(prices),
			Volatility:  stats.Volatility(prices),
			AvgConflict: stats.Mean(conflicts),
			ShockCount:  shockCounts[m],
		}
		if id, ok := clusterOf[m]; ok {
			perf.ClusterID = &id
		}
		if c, ok := network.Centrality[m]; ok {
			perf.Centrality = &c
		}
		perf.Score = performanceScore(perf, len(prices))
		out = append(out, perf)
	}
	return out
}

// performanceScore combines the sub-signals, each bounded to [0, 1]:
// stability inverts volatility, resilience inverts conflict against the
// standard ceiling of 10, centrality uses the normalized degree, and the
// shock component is the share of month transitions that were not shocks.
func performanceScore(p domain.RegionalPerformance, priceObservations int) float64 {
	stability := stats.Clamp01(1 - math.Min(p.Volatility, 1))
	resilience := stats.Clamp01(1 - p.AvgConflict/10)

	var centrality float64
	if p.Centrality != nil {
		centrality = stats.Clamp01(p.Centrality.Degree)
	}

	transitions := priceObservations - 1
	shockScore := 1.0
	if transitions > 0 {
		shockScore = stats.Clamp01(1 - float64(p.ShockCount)/float64(transitions))
	} else if p.ShockCount > 0 {
		shockScore = 0
	}

	return stats.Clamp01(
		perfStabilityWeight*stability +
			perfResilienceWeight*resilience +
			perfCentralityWeight*centrality +
			perfShockWeight*shockScore)
}
