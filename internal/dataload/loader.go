package dataload

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"marketpipe/internal/geo"
	"marketpipe/pkg/contracts/domain"
)

// Loader reads and validates the pipeline's raw JSON inputs.
type Loader struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewLoader creates a loader with the given logger (nil uses slog.Default).
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// LoadMarkets reads a GeoJSON FeatureCollection of market locations and
// returns one Market per distinct normalized region key. Features without a
// usable point geometry or region name are skipped and counted; a payload
// that is not a FeatureCollection is a fatal load error.
func (l *Loader) LoadMarkets(path string) ([]geo.Market, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markets file: %w", err)
	}
	return l.ParseMarkets(data)
}

// ParseMarkets parses the raw GeoJSON market payload.
func (l *Loader) ParseMarkets(data []byte) ([]geo.Market, error) {
	fc, err := l.parseFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse markets geojson: %w", err)
	}

	seen := make(map[string]bool)
	var markets []geo.Market
	var skipped int
	for _, f := range fc.Features {
		key := geo.Normalize(regionName(f.Properties))
		coord, ok := pointCoordinate(f.Geometry)
		if key == "" || !ok {
			skipped++
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		markets = append(markets, geo.Market{
			Key:         key,
			DisplayName: regionName(f.Properties),
			Coordinate:  coord,
		})
	}
	if skipped > 0 {
		l.logger.Warn("skipped market features with missing name or geometry",
			"skipped", skipped, "loaded", len(markets))
	}
	return markets, nil
}

// LoadFlows reads the flow records array. A payload that is not a JSON array
// is a fatal load error; records that fail structural validation are skipped
// and counted. Flow endpoints are normalized to canonical region keys.
func (l *Loader) LoadFlows(path string) ([]domain.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flows file: %w", err)
	}
	return l.ParseFlows(data)
}

// ParseFlows parses the raw flow-records payload.
func (l *Loader) ParseFlows(data []byte) ([]domain.Flow, error) {
	var raw []rawFlow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse flows: expected a JSON array of flow records: %w", err)
	}

	flows := make([]domain.Flow, 0, len(raw))
	var skipped int
	for _, r := range raw {
		if err := l.validate.Struct(r); err != nil || r.FlowWeight == nil {
			skipped++
			continue
		}
		f := domain.Flow{
			Source:            geo.Normalize(r.Source),
			Target:            geo.Normalize(r.Target),
			FlowWeight:        *r.FlowWeight,
			PriceDifferential: r.PriceDifferential,
			Date:              r.Date,
		}
		if !f.IsValid() {
			skipped++
			continue
		}
		flows = append(flows, f)
	}
	if skipped > 0 {
		l.logger.Warn("skipped invalid flow records", "skipped", skipped, "loaded", len(flows))
	}
	return flows, nil
}

// LoadTimeSeries reads the time-series GeoJSON and returns one point per
// feature carrying a region, parseable date, and at least one observation.
func (l *Loader) LoadTimeSeries(path string) ([]domain.TimeSeriesPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read time series file: %w", err)
	}
	return l.ParseTimeSeries(data)
}

// ParseTimeSeries parses the raw time-series GeoJSON payload.
func (l *Loader) ParseTimeSeries(data []byte) ([]domain.TimeSeriesPoint, error) {
	fc, err := l.parseFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse time series geojson: %w", err)
	}

	points := make([]domain.TimeSeriesPoint, 0, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		key := geo.Normalize(regionName(f.Properties))
		date, ok := parseMonth(f.Properties.Date)
		if key == "" || !ok {
			skipped++
			continue
		}
		points = append(points, domain.TimeSeriesPoint{
			Market:            key,
			Commodity:         f.Properties.Commodity,
			Date:              date,
			Price:             f.Properties.Price,
			USDPrice:          f.Properties.USDPrice,
			ConflictIntensity: f.Properties.ConflictIntensity,
		})
	}
	if skipped > 0 {
		l.logger.Warn("skipped time series features with missing region or date",
			"skipped", skipped, "loaded", len(points))
	}
	return points, nil
}

func (l *Loader) parseFeatureCollection(data []byte) (*featureCollection, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if err := l.validate.Struct(fc); err != nil {
		return nil, fmt.Errorf("not a FeatureCollection: %w", err)
	}
	return &fc, nil
}

func regionName(p featureProperties) string {
	if p.RegionID != "" {
		return p.RegionID
	}
	return p.RegionName
}

// pointCoordinate extracts a [lon, lat] pair from a Point geometry.
func pointCoordinate(g *geometry) (geo.Coordinate, bool) {
	if g == nil || g.Type != "Point" || len(g.Coordinates) == 0 {
		return geo.Coordinate{}, false
	}
	var pair []float64
	if err := json.Unmarshal(g.Coordinates, &pair); err != nil || len(pair) < 2 {
		return geo.Coordinate{}, false
	}
	c := geo.Coordinate{Lon: pair[0], Lat: pair[1]}
	return c, c.IsValid()
}

// monthFormats are the accepted date layouts, coarsest last.
var monthFormats = []string{time.RFC3339, "2006-01-02", "2006-01"}

// parseMonth parses a date string and truncates it to month granularity.
func parseMonth(s string) (time.Time, bool) {
	for _, layout := range monthFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
