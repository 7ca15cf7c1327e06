package curve

// Downsample reduces a curve to roughly maxPoints points using fixed-stride
// decimation: stride = len/maxPoints (integer division), keeping every
// stride-th point starting at index 0. A curve at or under the cap is
// returned unchanged. The result can exceed maxPoints when the length is not
// evenly divisible by the stride; callers accept that, the cap is a latency
// bound rather than an exact contract.
func Downsample(c Curve, maxPoints int) Curve {
	n := c.Len()
	if maxPoints <= 0 || n <= maxPoints {
		return c
	}

	stride := n / maxPoints
	if stride <= 1 {
		return c
	}

	out := Curve{
		X: make([]float64, 0, n/stride+1),
		Y: make([]float64, 0, n/stride+1),
	}
	for i := 0; i < n; i += stride {
		out.X = append(out.X, c.X[i])
		out.Y = append(out.Y, c.Y[i])
	}
	return out
}
