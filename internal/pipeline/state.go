package pipeline

import (
	"sync"

	"marketpipe/internal/geo"
	"marketpipe/pkg/contracts/domain"
)

// State carries the data flowing between stages of one run. Concurrent
// stages write disjoint fields, but access still goes through the mutex so a
// misbehaving stage cannot introduce a data race.
type State struct {
	mu sync.RWMutex

	runID string

	markets []geo.Market
	flows   []domain.Flow
	points  []domain.TimeSeriesPoint

	weights        geo.SpatialWeights
	seriesByMarket map[string][]domain.TimeSeriesPoint
	summaries      []domain.SeriesSummary
	network        domain.NetworkMetrics
	clusters       []domain.Cluster
	shocks         []domain.MarketShock
	performance    []domain.RegionalPerformance
}

// NewState creates the state for one run.
func NewState(runID string) *State {
	return &State{runID: runID}
}

// RunID returns the run identifier.
func (s *State) RunID() string { return s.runID }

func (s *State) SetInputs(markets []geo.Market, flows []domain.Flow, points []domain.TimeSeriesPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets = markets
	s.flows = flows
	s.points = points
}

func (s *State) Markets() []geo.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markets
}

func (s *State) Flows() []domain.Flow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flows
}

func (s *State) Points() []domain.TimeSeriesPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points
}

func (s *State) SetWeights(w geo.SpatialWeights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights = w
}

func (s *State) Weights() geo.SpatialWeights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

func (s *State) SetSeries(byMarket map[string][]domain.TimeSeriesPoint, summaries []domain.SeriesSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seriesByMarket = byMarket
	s.summaries = summaries
}

func (s *State) SeriesByMarket() map[string][]domain.TimeSeriesPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seriesByMarket
}

func (s *State) Summaries() []domain.SeriesSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries
}

func (s *State) SetNetwork(n domain.NetworkMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = n
}

func (s *State) Network() domain.NetworkMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.network
}

func (s *State) SetClusters(clusters []domain.Cluster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters = clusters
}

func (s *State) Clusters() []domain.Cluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clusters
}

func (s *State) SetShocks(shocks []domain.MarketShock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shocks = shocks
}

func (s *State) Shocks() []domain.MarketShock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shocks
}

func (s *State) SetPerformance(perf []domain.RegionalPerformance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.performance = perf
}

func (s *State) Performance() []domain.RegionalPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.performance
}
