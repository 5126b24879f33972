package domain

import (
	"math"
	"time"
)

// Flow represents a directed trade flow between two markets. Source and
// Target are canonical region keys.
type Flow struct {
	Source            string   `json:"source" validate:"required"`
	Target            string   `json:"target" validate:"required"`
	FlowWeight        float64  `json:"flow_weight" validate:"min=0"`
	PriceDifferential *float64 `json:"price_differential,omitempty"`
	Date              string   `json:"date,omitempty"`
}

// IsValid reports whether the flow can participate in aggregate statistics.
// Invalid flows are excluded everywhere, never defaulted.
func (f Flow) IsValid() bool {
	return f.Source != "" && f.Target != "" &&
		!math.IsNaN(f.FlowWeight) && !math.IsInf(f.FlowWeight, 0) &&
		f.FlowWeight >= 0
}

// TimeSeriesPoint is one monthly price observation for a market and
// commodity. Optional fields are pointers so a missing value is
// distinguishable from an explicit zero.
type TimeSeriesPoint struct {
	Market            string    `json:"market" validate:"required"`
	Commodity         string    `json:"commodity"`
	Date              time.Time `json:"date" validate:"required"`
	Price             *float64  `json:"price,omitempty"`
	USDPrice          *float64  `json:"usdprice,omitempty"`
	ConflictIntensity *float64  `json:"conflict_intensity,omitempty"`
}

// HasPrice reports whether the point carries a usable price observation.
func (p TimeSeriesPoint) HasPrice() bool {
	return p.Price != nil && !math.IsNaN(*p.Price) && *p.Price >= 0
}
