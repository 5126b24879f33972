// Package exporter persists the pipeline's analysis artifacts. The primary
// outputs are pretty-printed JSON files, one per artifact, written via a
// temp-file rename so a crash never leaves a truncated artifact behind.
// Optional CSV and Excel summaries of the cluster analysis are produced for
// spreadsheet consumers.
package exporter
