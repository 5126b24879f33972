package network

import (
	"context"
	"sort"
)

// detectCommunities partitions the graph by greedy modularity optimization
// in the Louvain manner, single level: every node starts in its own
// community and repeatedly moves to the neighboring community with the
// largest positive modularity gain until a full pass makes no move. The
// result is a local optimum, not necessarily a global one.
//
// Modularity is computed over the weight matrix:
//
//	Q = (1/2m) * sum over same-community pairs of (A_ij - k_i*k_j/2m)
//
// with k the weighted degree and m the total edge weight.
func (a *Analyzer) detectCommunities(ctx context.Context, g *graph) [][]string {
	n := len(g.nodes)
	if n == 0 {
		return nil
	}

	k := make([]float64, n)
	var twoM float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k[i] += g.weight[i][j]
		}
		twoM += k[i]
	}

	community := make([]int, n)
	for i := range community {
		community[i] = i
	}

	if twoM > 0 {
		m := twoM / 2
		tot := make([]float64, n)
		copy(tot, k)

		for improved := true; improved; {
			improved = false
			if ctx.Err() != nil {
				break
			}
			for i := 0; i < n; i++ {
				current := community[i]
				tot[current] -= k[i]

				// Accumulate edge weight from i into each neighboring
				// community, including its current one.
				links := make(map[int]float64)
				links[current] = 0
				for j := 0; j < n; j++ {
					if j == i || !g.adjacency[i][j] {
						continue
					}
					links[community[j]] += g.weight[i][j]
				}

				gain := func(c int) float64 {
					return links[c]/m - k[i]*tot[c]/(2*m*m)
				}

				best, bestGain := current, gain(current)
				candidates := make([]int, 0, len(links))
				for c := range links {
					candidates = append(candidates, c)
				}
				sort.Ints(candidates)
				for _, c := range candidates {
					if dq := gain(c); dq > bestGain {
						best, bestGain = c, dq
					}
				}

				community[i] = best
				tot[best] += k[i]
				if best != current {
					improved = true
				}
			}
		}
	}

	byCommunity := make(map[int][]string)
	for i, c := range community {
		byCommunity[c] = append(byCommunity[c], g.nodes[i])
	}
	ids := make([]int, 0, len(byCommunity))
	for c := range byCommunity {
		ids = append(ids, c)
	}
	sort.Ints(ids)

	out := make([][]string, 0, len(ids))
	for _, c := range ids {
		members := byCommunity[c]
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
