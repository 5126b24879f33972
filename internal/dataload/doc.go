// Package dataload is the validation boundary between raw JSON inputs and
// the typed records the pipeline computes over. Each loader performs one
// eager validation pass: structurally malformed payloads (a GeoJSON document
// that is not a FeatureCollection, a flow file that is not an array) fail
// immediately and abort the run, while individually incomplete records are
// skipped with a logged count so aggregates never see defaulted values.
//
// Region names are normalized here, once, so every downstream package joins
// on canonical keys.
package dataload
