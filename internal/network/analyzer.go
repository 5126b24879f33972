package network

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"marketpipe/internal/geo"
	"marketpipe/internal/stats"
	"marketpipe/pkg/contracts/domain"
)

// Analyzer computes NetworkMetrics over the full flow network.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer with the given logger (nil uses
// slog.Default).
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// graph is the dense undirected representation the metrics work over. Nodes
// are market keys in sorted order; adjacency is 0/1 and weight accumulates
// flow volume across parallel and reverse flows.
type graph struct {
	nodes     []string
	index     map[string]int
	adjacency [][]bool
	weight    [][]float64
}

// ComputeMetrics builds the flow graph and derives the full metrics record.
// Invalid flows are excluded; coordinates are used only to report markets
// missing a location. An empty flow set is an error since every metric would
// be degenerate.
func (a *Analyzer) ComputeMetrics(ctx context.Context, flows []domain.Flow, coords map[string]geo.Coordinate) (domain.NetworkMetrics, error) {
	g := buildGraph(flows)
	if len(g.nodes) == 0 {
		return domain.NetworkMetrics{}, fmt.Errorf("compute network metrics: no valid flows")
	}
	if err := ctx.Err(); err != nil {
		return domain.NetworkMetrics{}, fmt.Errorf("compute network metrics: %w", err)
	}

	var missing int
	for _, n := range g.nodes {
		if _, ok := coords[n]; !ok {
			missing++
		}
	}
	if missing > 0 {
		a.logger.WarnContext(ctx, "markets in flow network missing coordinates",
			"missing", missing, "markets", len(g.nodes))
	}

	dist := a.floydWarshall(g)

	metrics := domain.NetworkMetrics{
		Density:               g.density(),
		AvgPathLength:         averagePathLength(dist),
		ClusteringCoefficient: g.clusteringCoefficient(),
		Centrality:            a.centrality(ctx, g),
		Communities:           a.detectCommunities(ctx, g),
	}

	a.logger.InfoContext(ctx, "computed network metrics",
		"markets", len(g.nodes),
		"density", metrics.Density,
		"communities", len(metrics.Communities),
	)
	return metrics, nil
}

// buildGraph constructs the dense undirected graph from valid flows.
// Self-loops are dropped; weights of parallel flows accumulate on both
// triangle halves of the matrix.
func buildGraph(flows []domain.Flow) *graph {
	nodeSet := make(map[string]bool)
	for _, f := range flows {
		if !f.IsValid() || f.Source == f.Target {
			continue
		}
		nodeSet[f.Source] = true
		nodeSet[f.Target] = true
	}

	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	n := len(nodes)
	adjacency := make([][]bool, n)
	weight := make([][]float64, n)
	for i := range adjacency {
		adjacency[i] = make([]bool, n)
		weight[i] = make([]float64, n)
	}
	for _, f := range flows {
		if !f.IsValid() || f.Source == f.Target {
			continue
		}
		i, j := index[f.Source], index[f.Target]
		adjacency[i][j] = true
		adjacency[j][i] = true
		weight[i][j] += f.FlowWeight
		weight[j][i] += f.FlowWeight
	}
	return &graph{nodes: nodes, index: index, adjacency: adjacency, weight: weight}
}

// edgeCount returns the number of undirected edges.
func (g *graph) edgeCount() int {
	var edges int
	for i := range g.adjacency {
		for j := i + 1; j < len(g.adjacency); j++ {
			if g.adjacency[i][j] {
				edges++
			}
		}
	}
	return edges
}

// density is the edge count over all possible undirected pairs.
func (g *graph) density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	possible := float64(n*(n-1)) / 2
	return stats.Clamp01(float64(g.edgeCount()) / possible)
}

// neighbors returns the adjacency row of node i as indices.
func (g *graph) neighbors(i int) []int {
	var out []int
	for j, connected := range g.adjacency[i] {
		if connected {
			out = append(out, j)
		}
	}
	return out
}

// clusteringCoefficient is the mean local coefficient over nodes with at
// least two neighbors: triangles among neighbors over C(k, 2).
func (g *graph) clusteringCoefficient() float64 {
	var sum float64
	var qualifying int
	for i := range g.nodes {
		ns := g.neighbors(i)
		k := len(ns)
		if k < 2 {
			continue
		}
		var triangles int
		for a := 0; a < k; a++ {
			for b := a + 1; b < k; b++ {
				if g.adjacency[ns[a]][ns[b]] {
					triangles++
				}
			}
		}
		possible := float64(k*(k-1)) / 2
		sum += float64(triangles) / possible
		qualifying++
	}
	if qualifying == 0 {
		return 0
	}
	return stats.Clamp01(sum / float64(qualifying))
}

// unreachable is the hop-count sentinel for disconnected pairs.
const unreachable = 1 << 30

// floydWarshall computes all-pairs shortest hop counts. Unreachable pairs
// stay at the sentinel value.
func (a *Analyzer) floydWarshall(g *graph) [][]int {
	n := len(g.nodes)
	dist := make([][]int, n)
	for i := range dist {
		dist[i] = make([]int, n)
		for j := range dist[i] {
			switch {
			case i == j:
				dist[i][j] = 0
			case g.adjacency[i][j]:
				dist[i][j] = 1
			default:
				dist[i][j] = unreachable
			}
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if dist[i][k] == unreachable {
				continue
			}
			for j := 0; j < n; j++ {
				if d := dist[i][k] + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
				}
			}
		}
	}
	return dist
}

// averagePathLength averages the finite shortest-path lengths over all
// connected ordered pairs, excluding unreachable pairs rather than treating
// them as an infinite penalty.
func averagePathLength(dist [][]int) float64 {
	var sum float64
	var pairs int
	for i := range dist {
		for j := range dist[i] {
			if i == j || dist[i][j] >= unreachable {
				continue
			}
			sum += float64(dist[i][j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}
