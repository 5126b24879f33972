package network

import (
	"context"

	"marketpipe/pkg/contracts/domain"
)

// centrality computes degree, strength, and betweenness for every market.
func (a *Analyzer) centrality(ctx context.Context, g *graph) map[string]domain.Centrality {
	n := len(g.nodes)
	betweenness := a.betweenness(ctx, g)

	out := make(map[string]domain.Centrality, n)
	for i, node := range g.nodes {
		var degree, strength float64
		for j := 0; j < n; j++ {
			if g.adjacency[i][j] {
				degree++
				strength += g.weight[i][j]
			}
		}
		if n > 1 {
			degree /= float64(n - 1)
		} else {
			degree = 0
		}
		out[node] = domain.Centrality{
			Degree:      degree,
			Strength:    strength,
			Betweenness: betweenness[i],
		}
	}
	return out
}

// betweenness computes, for each node v, the sum over unordered pairs (s, t)
// with s != v != t of the fraction of shortest s-t paths passing through v.
// Every shortest path is enumerated explicitly from the BFS predecessor DAG,
// which grows exponentially on dense symmetric graphs; the pipeline only
// runs this on networks of tens of markets.
func (a *Analyzer) betweenness(ctx context.Context, g *graph) []float64 {
	n := len(g.nodes)
	scores := make([]float64, n)

	for s := 0; s < n; s++ {
		if ctx.Err() != nil {
			return scores
		}
		dist, preds := bfsPredecessors(g, s)
		for t := s + 1; t < n; t++ {
			if dist[t] < 0 {
				continue
			}
			paths := enumeratePaths(preds, s, t)
			if len(paths) == 0 {
				continue
			}
			through := make(map[int]int)
			for _, path := range paths {
				// Interior nodes only.
				for _, v := range path[1 : len(path)-1] {
					through[v]++
				}
			}
			for v, count := range through {
				scores[v] += float64(count) / float64(len(paths))
			}
		}
	}
	return scores
}

// bfsPredecessors runs breadth-first search from s, returning hop distances
// (-1 for unreachable) and the shortest-path predecessor lists.
func bfsPredecessors(g *graph, s int) (dist []int, preds [][]int) {
	n := len(g.nodes)
	dist = make([]int, n)
	preds = make([][]int, n)
	for i := range dist {
		dist[i] = -1
	}
	dist[s] = 0
	queue := []int{s}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for v := 0; v < n; v++ {
			if !g.adjacency[u][v] {
				continue
			}
			if dist[v] < 0 {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
			if dist[v] == dist[u]+1 {
				preds[v] = append(preds[v], u)
			}
		}
	}
	return dist, preds
}

// enumeratePaths expands the predecessor DAG into every shortest path from s
// to t, each returned in s-to-t order.
func enumeratePaths(preds [][]int, s, t int) [][]int {
	if s == t {
		return [][]int{{s}}
	}
	var paths [][]int
	// Each stack entry is a partial path from t backward.
	stack := [][]int{{t}}
	for len(stack) > 0 {
		partial := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		head := partial[len(partial)-1]
		if head == s {
			reversed := make([]int, len(partial))
			for i, v := range partial {
				reversed[len(partial)-1-i] = v
			}
			paths = append(paths, reversed)
			continue
		}
		for _, p := range preds[head] {
			next := make([]int, len(partial)+1)
			copy(next, partial)
			next[len(partial)] = p
			stack = append(stack, next)
		}
	}
	return paths
}
