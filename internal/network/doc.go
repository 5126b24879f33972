// Package network derives structural statistics from the market flow
// network: density, average shortest-path length, clustering coefficient,
// per-market centrality, and modularity-based communities.
//
// The analyzer builds an undirected 0/1 adjacency matrix and a parallel
// weight matrix over the markets appearing in valid flows. Shortest paths
// use unit edge weights (hop counts); betweenness enumerates every shortest
// path between each pair via breadth-first search, which is exponential in
// the worst case and only suitable for the small networks (tens of markets)
// this pipeline targets. Community detection is a Louvain-style single-pass
// greedy modularity search over the weight matrix.
package network
