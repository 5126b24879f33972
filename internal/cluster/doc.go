// Package cluster partitions the market network into connected components of
// the spatial-weights adjacency and scores how well-integrated each component
// is.
//
// DetectClusters walks the weights graph with an iterative depth-first
// search, drops components below the minimum size, and attaches the flows
// touching each component. Calculator then combines four sub-metrics into a
// composite efficiency score per cluster:
//
//  1. Connectivity (0.4): share of member pairs joined by a flow
//  2. Price integration (0.3): mean pairwise price correlation, rescaled to [0, 1]
//  3. Stability (0.2): inverse of the mean price coefficient of variation
//  4. Conflict resilience (0.1): inverse of mean conflict intensity
//
// Every sub-score and the composite are bounded to [0, 1]. A cluster whose
// metric computation fails is reported with a zero-valued metrics record so
// one bad cluster never aborts the run.
package cluster
