package cluster

import (
	"sort"

	"marketpipe/internal/geo"
	"marketpipe/pkg/contracts/domain"
)

// DefaultMinClusterSize is the smallest component retained by detection.
const DefaultMinClusterSize = 2

// DetectClusters partitions the spatial-weights graph into connected
// components and returns those with at least minSize members. Adjacency is
// treated as undirected: presence in either market's neighbor list connects
// the pair. Traversal uses an explicit stack rather than recursion so deep
// components cannot overflow the call stack.
//
// Each retained cluster carries every valid flow touching one of its members
// and names a main market: the member with the highest total outbound weight
// over intra-cluster flows, ties broken alphabetically.
func DetectClusters(weights geo.SpatialWeights, flows []domain.Flow, minSize int) []domain.Cluster {
	if minSize < 1 {
		minSize = DefaultMinClusterSize
	}

	adjacency := undirectedAdjacency(weights)

	keys := make([]string, 0, len(adjacency))
	for k := range adjacency {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	visited := make(map[string]bool, len(keys))
	var clusters []domain.Cluster
	for _, start := range keys {
		if visited[start] {
			continue
		}
		members := traverse(start, adjacency, visited)
		if len(members) < minSize {
			continue
		}
		sort.Strings(members)

		clusterFlows := touchingFlows(members, flows)
		clusters = append(clusters, domain.Cluster{
			ID:         len(clusters) + 1,
			MainMarket: mainMarket(members, clusterFlows),
			Markets:    members,
			Flows:      clusterFlows,
		})
	}
	return clusters
}

// undirectedAdjacency symmetrizes the weights map: j is adjacent to i when
// either row lists the other as a neighbor.
func undirectedAdjacency(weights geo.SpatialWeights) map[string]map[string]bool {
	adjacency := make(map[string]map[string]bool, len(weights))
	link := func(a, b string) {
		if adjacency[a] == nil {
			adjacency[a] = make(map[string]bool)
		}
		adjacency[a][b] = true
	}
	for key, row := range weights {
		if adjacency[key] == nil {
			adjacency[key] = make(map[string]bool)
		}
		for _, n := range row.Neighbors {
			link(key, n)
			link(n, key)
		}
	}
	return adjacency
}

// traverse performs a stack-based depth-first search from start and returns
// the connected component, marking every member visited. Neighbors are pushed
// in sorted order so component membership order is deterministic.
func traverse(start string, adjacency map[string]map[string]bool, visited map[string]bool) []string {
	var members []string
	stack := []string{start}
	visited[start] = true
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		members = append(members, current)

		neighbors := make([]string, 0, len(adjacency[current]))
		for n := range adjacency[current] {
			if !visited[n] {
				neighbors = append(neighbors, n)
			}
		}
		sort.Strings(neighbors)
		for _, n := range neighbors {
			visited[n] = true
			stack = append(stack, n)
		}
	}
	return members
}

// touchingFlows returns the valid flows with at least one endpoint in the
// member set.
func touchingFlows(members []string, flows []domain.Flow) []domain.Flow {
	inCluster := make(map[string]bool, len(members))
	for _, m := range members {
		inCluster[m] = true
	}
	var out []domain.Flow
	for _, f := range flows {
		if !f.IsValid() {
			continue
		}
		if inCluster[f.Source] || inCluster[f.Target] {
			out = append(out, f)
		}
	}
	return out
}

// mainMarket picks the member with the highest total outbound flow weight
// over intra-cluster flows. Ties and the no-flow case resolve to the
// alphabetically first candidate; members are already sorted.
func mainMarket(members []string, flows []domain.Flow) string {
	if len(members) == 0 {
		return ""
	}
	inCluster := make(map[string]bool, len(members))
	for _, m := range members {
		inCluster[m] = true
	}
	outbound := make(map[string]float64, len(members))
	for _, f := range flows {
		if inCluster[f.Source] && inCluster[f.Target] {
			outbound[f.Source] += f.FlowWeight
		}
	}
	best := members[0]
	for _, m := range members[1:] {
		if outbound[m] > outbound[best] {
			best = m
		}
	}
	return best
}
