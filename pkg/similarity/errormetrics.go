package similarity

import (
	"math"
	"sort"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/curve"
)

// interp linearly interpolates the sample curve's y value at query x. The
// sample's x column is treated as an ascending abscissa; queries outside its
// range clamp to the first/last y value. This matches the interpolation
// semantics the arrays were originally compared with, including the
// implementation-defined (but crash-free) result for unsorted sample x.
func interp(x float64, sample curve.Curve) float64 {
	n := sample.Len()
	if n == 1 {
		return sample.Y[0]
	}

	if x <= sample.X[0] {
		return sample.Y[0]
	}
	if x >= sample.X[n-1] {
		return sample.Y[n-1]
	}

	// Index of the first sample x >= query x; the segment [i-1, i] brackets it.
	i := sort.SearchFloat64s(sample.X, x)
	if i <= 0 {
		return sample.Y[0]
	}
	if i >= n {
		return sample.Y[n-1]
	}

	x0, x1 := sample.X[i-1], sample.X[i]
	y0, y1 := sample.Y[i-1], sample.Y[i]
	if x1 == x0 {
		return y0
	}
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

// errorMetrics computes the pointwise error between the curves after
// aligning the sample onto the baseline's x grid by interpolation. Non-finite
// input values propagate through the sums deterministically; the engine does
// not filter points.
func errorMetrics(baseline, sample curve.Curve) (sse, rmse float64) {
	n := baseline.Len()
	for i := 0; i < n; i++ {
		r := baseline.Y[i] - interp(baseline.X[i], sample)
		sse += r * r
	}
	rmse = math.Sqrt(sse / float64(n))
	return sse, rmse
}
