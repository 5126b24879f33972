// Package analysis implements the time-series stages of the pipeline:
// grouping the monthly price observations into per-market series, per-series
// summary statistics, month-over-month shock detection, and the final
// regional performance roll-up that combines price behavior, shocks, cluster
// membership, and network position into one score per market.
package analysis
