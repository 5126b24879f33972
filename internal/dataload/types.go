package dataload

import "encoding/json"

// featureCollection mirrors the subset of GeoJSON the pipeline consumes.
type featureCollection struct {
	Type     string    `json:"type" validate:"required,eq=FeatureCollection"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   *geometry         `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// featureProperties covers both the market-location features and the
// time-series features; unused fields stay nil.
type featureProperties struct {
	RegionID          string   `json:"region_id"`
	RegionName        string   `json:"region_name,omitempty"`
	Commodity         string   `json:"commodity,omitempty"`
	Date              string   `json:"date,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	USDPrice          *float64 `json:"usdprice,omitempty"`
	ConflictIntensity *float64 `json:"conflict_intensity,omitempty"`
}

// rawFlow is the on-disk flow record shape.
type rawFlow struct {
	Source            string   `json:"source" validate:"required"`
	Target            string   `json:"target" validate:"required"`
	FlowWeight        *float64 `json:"flow_weight"`
	PriceDifferential *float64 `json:"price_differential,omitempty"`
	Date              string   `json:"date,omitempty"`
}
