package similarity

import (
	"math"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/curve"
)

// frechetDistance computes the discrete Fréchet distance between two curves
// using the standard coupling-measure recurrence, filled iteratively over an
// n×m table to bound stack depth on the largest permitted inputs. Both
// curves are expected to be downsampled by the caller; a 500×500 table is
// the worst case the engine allows.
//
// The point distance is Euclidean in (x, y) space. The two axes carry
// different physical units (wavenumber vs absorbance) and are deliberately
// not rescaled, which preserves the numeric output the service has always
// produced.
func frechetDistance(a, b curve.Curve) float64 {
	n, m := a.Len(), b.Len()
	if n == 0 || m == 0 {
		return 0
	}

	dist := func(i, j int) float64 {
		dx := a.X[i] - b.X[j]
		dy := a.Y[i] - b.Y[j]
		return math.Sqrt(dx*dx + dy*dy)
	}

	ca := make([][]float64, n)
	for i := range ca {
		ca[i] = make([]float64, m)
	}

	ca[0][0] = dist(0, 0)
	for j := 1; j < m; j++ {
		ca[0][j] = math.Max(ca[0][j-1], dist(0, j))
	}
	for i := 1; i < n; i++ {
		ca[i][0] = math.Max(ca[i-1][0], dist(i, 0))
	}
	for i := 1; i < n; i++ {
		for j := 1; j < m; j++ {
			d := dist(i, j)
			ca[i][j] = math.Max(math.Min(ca[i-1][j], math.Min(ca[i-1][j-1], ca[i][j-1])), d)
		}
	}

	return ca[n-1][m-1]
}
