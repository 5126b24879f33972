// Package stats wraps the gonum statistics routines with the divide-by-zero
// guards the pipeline relies on: every helper returns 0 instead of NaN when a
// series is too short or has no variance.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample standard deviation of xs, or 0 when fewer than
// two points are available.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd := stat.StdDev(xs, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

// Correlation returns the Pearson correlation of the two series truncated to
// the shorter length. It returns 0 when fewer than two paired observations
// exist or when either truncated series has zero variance.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}
	a, b = a[:n], b[:n]
	if StdDev(a) == 0 || StdDev(b) == 0 {
		return 0
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Volatility returns the coefficient of variation stddev/mean, or 0 when the
// mean is zero or the series has fewer than two points.
func Volatility(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 || len(xs) < 2 {
		return 0
	}
	return StdDev(xs) / m
}

// Clamp01 bounds v to the closed interval [0, 1].
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
