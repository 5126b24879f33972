package analysis

import (
	"sort"

	"marketpipe/pkg/contracts/domain"
)

// DefaultShockThreshold is the relative month-over-month price change that
// qualifies as a shock.
const DefaultShockThreshold = 0.30

// DetectShocks scans every market/commodity series for month-over-month
// price movements whose relative magnitude meets the threshold. Observations
// without a price break the comparison chain rather than being treated as
// zero. Results are sorted by market, commodity, then date.
func DetectShocks(points []domain.TimeSeriesPoint, threshold float64) []domain.MarketShock {
	if threshold <= 0 {
		threshold = DefaultShockThreshold
	}

	grouped := groupByMarketCommodity(points)

	var shocks []domain.MarketShock
	for k, series := range grouped {
		var prev *domain.TimeSeriesPoint
		for i := range series {
			p := series[i]
			if !p.HasPrice() {
				prev = nil
				continue
			}
			if prev != nil && *prev.Price > 0 {
				change := (*p.Price - *prev.Price) / *prev.Price
				magnitude := change
				direction := domain.ShockSurge
				if change < 0 {
					magnitude = -change
					direction = domain.ShockCollapse
				}
				if magnitude >= threshold {
					shocks = append(shocks, domain.MarketShock{
						Market:        k.market,
						Commodity:     k.commodity,
						Date:          p.Date.Format("2006-01"),
						Direction:     direction,
						Magnitude:     magnitude,
						PreviousPrice: *prev.Price,
						CurrentPrice:  *p.Price,
					})
				}
			}
			prev = &series[i]
		}
	}

	sort.Slice(shocks, func(i, j int) bool {
		a, b := shocks[i], shocks[j]
		if a.Market != b.Market {
			return a.Market < b.Market
		}
		if a.Commodity != b.Commodity {
			return a.Commodity < b.Commodity
		}
		return a.Date < b.Date
	})
	return shocks
}
