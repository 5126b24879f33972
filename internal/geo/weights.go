package geo

import (
	"sort"
)

// Market is a normalized market location. Key is the canonical region key
// produced by Normalize; DisplayName preserves the original spelling for
// presentation only and takes no part in joins.
type Market struct {
	Key         string     `json:"key"`
	DisplayName string     `json:"display_name,omitempty"`
	Coordinate  Coordinate `json:"coordinate"`
}

// WeightRow holds one market's neighbors within the distance threshold and
// the matching row-normalized weights. Neighbors and Weights are parallel
// slices; both are empty when no market lies within threshold.
type WeightRow struct {
	Neighbors []string  `json:"neighbors"`
	Weights   []float64 `json:"weights"`
}

// SpatialWeights maps each market key to its weight row.
type SpatialWeights map[string]WeightRow

// BuildWeights computes the row-normalized inverse-distance spatial weights
// matrix over the given markets. For every ordered pair within thresholdKm
// the raw weight is 1/distance; each row is then divided by its sum so a
// market's weights sum to one. Markets with no neighbor within threshold get
// an empty row. Markets at identical coordinates (zero distance) are skipped
// as neighbors of each other since an inverse-distance weight is undefined
// for them.
//
// Neighbor lists are ordered by market key so output is deterministic
// regardless of input order.
func BuildWeights(markets []Market, thresholdKm float64) SpatialWeights {
	sorted := make([]Market, len(markets))
	copy(sorted, markets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	weights := make(SpatialWeights, len(sorted))
	for i, m := range sorted {
		row := WeightRow{Neighbors: []string{}, Weights: []float64{}}
		var sum float64
		for j, n := range sorted {
			if i == j || m.Key == n.Key {
				continue
			}
			d := Haversine(m.Coordinate, n.Coordinate)
			if d <= 0 || d > thresholdKm {
				continue
			}
			w := 1 / d
			row.Neighbors = append(row.Neighbors, n.Key)
			row.Weights = append(row.Weights, w)
			sum += w
		}
		if sum > 0 {
			for k := range row.Weights {
				row.Weights[k] /= sum
			}
		}
		weights[m.Key] = row
	}
	return weights
}
