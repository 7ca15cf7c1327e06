// Package curve provides the curve data model shared by the comparison
// engine and the HTTP layer: loading from uploaded CSV files, stride
// downsampling, and basic statistical summaries.
package curve

import (
	"errors"
	"math"
)

// Shape errors reported when an uploaded curve cannot be used.
var (
	// ErrEmptyCurve indicates a curve with zero data points.
	ErrEmptyCurve = errors.New("curve has no data points")

	// ErrTooFewColumns indicates a data row with fewer than two columns.
	ErrTooFewColumns = errors.New("curve row has fewer than 2 columns")
)

// Curve is an ordered sequence of (x, y) samples stored as parallel columns.
// X values are kept in the order the caller supplied them; the engine's
// interpolation path assumes the sample curve's x column ascends, which is
// the caller's responsibility to guarantee.
type Curve struct {
	X []float64
	Y []float64
}

// Len returns the number of points in the curve.
func (c Curve) Len() int {
	return len(c.X)
}

// Validate checks the curve's shape. It returns ErrEmptyCurve for a curve
// with no points and ErrTooFewColumns when the X and Y columns disagree in
// length (a row was missing a value).
func (c Curve) Validate() error {
	if len(c.X) == 0 {
		return ErrEmptyCurve
	}
	if len(c.X) != len(c.Y) {
		return ErrTooFewColumns
	}
	return nil
}

// Summary holds the per-curve statistics reported alongside similarity
// metrics.
type Summary struct {
	Count  int        `json:"count"`
	MeanY  float64    `json:"mean_y"`
	StdY   float64    `json:"std_y"`
	MinY   float64    `json:"min_y"`
	MaxY   float64    `json:"max_y"`
	RangeX [2]float64 `json:"range_x"`
}

// Summarize computes the statistical summary of a curve. The standard
// deviation uses the sample (n-1) form to match the reported values the
// service has always produced; for a single point it is 0.
func Summarize(c Curve) Summary {
	n := c.Len()
	if n == 0 {
		return Summary{}
	}

	s := Summary{
		Count:  n,
		MinY:   c.Y[0],
		MaxY:   c.Y[0],
		RangeX: [2]float64{c.X[0], c.X[0]},
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += c.Y[i]
		if c.Y[i] < s.MinY {
			s.MinY = c.Y[i]
		}
		if c.Y[i] > s.MaxY {
			s.MaxY = c.Y[i]
		}
		if c.X[i] < s.RangeX[0] {
			s.RangeX[0] = c.X[i]
		}
		if c.X[i] > s.RangeX[1] {
			s.RangeX[1] = c.X[i]
		}
	}
	s.MeanY = sum / float64(n)

	if n > 1 {
		var sq float64
		for _, y := range c.Y {
			d := y - s.MeanY
			sq += d * d
		}
		s.StdY = math.Sqrt(sq / float64(n-1))
	}

	return s
}

// Differences holds the baseline-to-sample deltas of the summary statistics.
type Differences struct {
	MeanDiff  float64 `json:"mean_diff"`
	StdDiff   float64 `json:"std_diff"`
	RangeDiff float64 `json:"range_diff"`
}

// Diff computes the statistical differences between a baseline summary and a
// sample summary.
func Diff(baseline, sample Summary) Differences {
	return Differences{
		MeanDiff:  sample.MeanY - baseline.MeanY,
		StdDiff:   sample.StdY - baseline.StdY,
		RangeDiff: (sample.MaxY - sample.MinY) - (baseline.MaxY - baseline.MinY),
	}
}

// Variance returns the population variance of the curve's y values.
// The engine uses this to normalize SSE against the baseline.
func Variance(c Curve) float64 {
	n := c.Len()
	if n == 0 {
		return 0
	}

	var sum float64
	for _, y := range c.Y {
		sum += y
	}
	mean := sum / float64(n)

	var sq float64
	for _, y := range c.Y {
		d := y - mean
		sq += d * d
	}
	return sq / float64(n)
}
