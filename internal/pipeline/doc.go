// Package pipeline orchestrates the market integration analysis as a staged
// batch run. The load stage reads the three raw inputs concurrently; the
// independent analysis stages (spatial weights, time-series aggregation,
// network metrics) then run in parallel under a bounded errgroup, followed
// by cluster detection and scoring; the dependent phase (shock detection,
// regional performance) runs strictly sequentially. A load or stage failure
// aborts the whole run.
//
// Artifacts are staged in memory and written only after every stage has
// succeeded, so the output directory always contains a consistent set.
package pipeline
