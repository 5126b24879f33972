// Package geo provides the spatial primitives for the market integration
// pipeline: canonical region-name normalization, great-circle distance, and
// construction of the row-normalized spatial weights matrix.
//
// Region names arrive from multiple upstream datasets with inconsistent
// spellings (diacritics, apostrophe variants, governorate suffixes). Normalize
// collapses all of them to a single stable key which every other package uses
// as the join key. Two raw strings that refer to the same market MUST
// normalize identically, otherwise downstream joins silently drop data.
//
// BuildWeights derives, for each market, the list of neighbors within a
// distance threshold together with inverse-distance weights normalized to sum
// to one per row. Row normalization is independent per market, so the weight
// from i to j generally differs from j to i even though the underlying
// adjacency is symmetric.
package geo
