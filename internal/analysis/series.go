package analysis

import (
	"sort"

	"marketpipe/internal/stats"
	"marketpipe/pkg/contracts/domain"
)

// GroupByMarket indexes time-series points by normalized market key, each
// series sorted by date. Points with an empty market key are dropped.
func GroupByMarket(points []domain.TimeSeriesPoint) map[string][]domain.TimeSeriesPoint {
	grouped := make(map[string][]domain.TimeSeriesPoint)
	for _, p := range points {
		if p.Market == "" {
			continue
		}
		grouped[p.Market] = append(grouped[p.Market], p)
	}
	for key := range grouped {
		series := grouped[key]
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	}
	return grouped
}

// seriesKey identifies one market/commodity series.
type seriesKey struct {
	market    string
	commodity string
}

// groupByMarketCommodity indexes points by market and commodity, sorted by
// date within each series.
func groupByMarketCommodity(points []domain.TimeSeriesPoint) map[seriesKey][]domain.TimeSeriesPoint {
	grouped := make(map[seriesKey][]domain.TimeSeriesPoint)
	for _, p := range points {
		if p.Market == "" {
			continue
		}
		k := seriesKey{market: p.Market, commodity: p.Commodity}
		grouped[k] = append(grouped[k], p)
	}
	for k := range grouped {
		series := grouped[k]
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	}
	return grouped
}

// Summarize aggregates every market/commodity series into one summary
// record. Observations without a price still contribute conflict data; the
// result is sorted by market then commodity.
func Summarize(points []domain.TimeSeriesPoint) []domain.SeriesSummary {
	grouped := groupByMarketCommodity(points)

	summaries := make([]domain.SeriesSummary, 0, len(grouped))
	for k, series := range grouped {
		var prices, usdPrices, conflicts []float64
		for _, p := range series {
			if p.HasPrice() {
				prices = append(prices, *p.Price)
			}
			if p.USDPrice != nil && *p.USDPrice >= 0 {
				usdPrices = append(usdPrices, *p.USDPrice)
			}
			if p.ConflictIntensity != nil {
				conflicts = append(conflicts, *p.ConflictIntensity)
			}
		}
		summaries = append(summaries, domain.SeriesSummary{
			Market:       k.market,
			Commodity:    k.commodity,
			Observations: len(series),
			AvgPrice:     stats.Mean(prices),
			AvgUSDPrice:  stats.Mean(usdPrices),
			Volatility:   stats.Volatility(prices),
			AvgConflict:  stats.Mean(conflicts),
			StartDate:    series[0].Date.Format("2006-01"),
			EndDate:      series[len(series)-1].Date.Format("2006-01"),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Market == summaries[j].Market {
			return summaries[i].Commodity < summaries[j].Commodity
		}
		return summaries[i].Market < summaries[j].Market
	})
	return summaries
}
