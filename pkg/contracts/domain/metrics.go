package domain

// ClusterMetrics describes how well-integrated a cluster's markets are. The
// composite Efficiency score and each named component are bounded to [0, 1].
type ClusterMetrics struct {
	Efficiency         float64 `json:"efficiency"`
	Connectivity       float64 `json:"connectivity"`
	PriceIntegration   float64 `json:"price_integration"`
	Stability          float64 `json:"stability"`
	ConflictResilience float64 `json:"conflict_resilience"`
	AvgPrice           float64 `json:"avg_price"`
	AvgConflict        float64 `json:"avg_conflict"`
	MarketCount        int     `json:"market_count"`
}

// Cluster is a connected component of the spatial-weights adjacency graph
// above the minimum size, together with the flows touching its members.
type Cluster struct {
	ID         int            `json:"cluster_id"`
	MainMarket string         `json:"main_market"`
	Markets    []string       `json:"connected_markets"`
	Flows      []Flow         `json:"flows"`
	Metrics    ClusterMetrics `json:"metrics"`
}

// Centrality holds the per-market centrality measures of the flow network.
type Centrality struct {
	Degree      float64 `json:"degree"`
	Strength    float64 `json:"strength"`
	Betweenness float64 `json:"betweenness"`
}

// NetworkMetrics summarizes the structure of the full flow network.
type NetworkMetrics struct {
	Density               float64               `json:"density"`
	AvgPathLength         float64               `json:"avg_path_length"`
	ClusteringCoefficient float64               `json:"clustering_coefficient"`
	Centrality            map[string]Centrality `json:"centrality"`
	Communities           [][]string            `json:"communities"`
}

// MarketShock is a month-over-month price movement beyond the shock
// threshold for one market and commodity.
type MarketShock struct {
	Market        string  `json:"market"`
	Commodity     string  `json:"commodity"`
	Date          string  `json:"date"`
	Direction     string  `json:"direction"`
	Magnitude     float64 `json:"magnitude"`
	PreviousPrice float64 `json:"previous_price"`
	CurrentPrice  float64 `json:"current_price"`
}

// Shock direction labels.
const (
	ShockSurge    = "price_surge"
	ShockCollapse = "price_collapse"
)

// SeriesSummary aggregates one market/commodity time series.
type SeriesSummary struct {
	Market       string  `json:"market"`
	Commodity    string  `json:"commodity"`
	Observations int     `json:"observations"`
	AvgPrice     float64 `json:"avg_price"`
	AvgUSDPrice  float64 `json:"avg_usd_price"`
	Volatility   float64 `json:"volatility"`
	AvgConflict  float64 `json:"avg_conflict"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
}

// RegionalPerformance is the per-market roll-up emitted at the end of the
// sequential phase, combining price behavior, shocks, cluster membership,
// and network position into a composite score in [0, 1].
type RegionalPerformance struct {
	Market      string      `json:"market"`
	AvgPrice    float64     `json:"avg_price"`
	Volatility  float64     `json:"volatility"`
	AvgConflict float64     `json:"avg_conflict"`
	ShockCount  int         `json:"shock_count"`
	ClusterID   *int        `json:"cluster_id,omitempty"`
	Centrality  *Centrality `json:"centrality,omitempty"`
	Score       float64     `json:"score"`
}
