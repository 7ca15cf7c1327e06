// Package similarity implements the curve comparison engine: interpolation
// based error metrics, the discrete Fréchet distance, and the normalized,
// unit-free similarity scores derived from them.
//
// The engine is a pure, synchronous computation with no shared mutable
// state; a single Engine is safe for concurrent use across requests.
package similarity

import (
	"math"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/curve"
)

const (
	// DefaultErrorMetricsCap bounds the point count for the interpolation
	// based error metrics.
	DefaultErrorMetricsCap = 5000

	// DefaultFrechetCap bounds each curve independently before the Fréchet
	// table is filled, keeping the n×m table within interactive latency.
	DefaultFrechetCap = 500

	// degeneracyFloor is the denominator floor below which a normalized
	// value is reported as absent instead of a near-infinite number.
	degeneracyFloor = 1e-10
)

// Options configures the engine's downsampling caps. Zero values take the
// defaults.
type Options struct {
	// ErrorMetricsCap is the downsampling cap applied before SSE/RMSE.
	ErrorMetricsCap int

	// FrechetCap is the downsampling cap applied to each curve before the
	// Fréchet distance.
	FrechetCap int
}

// Engine computes similarity reports between a baseline curve and a sample
// curve. The two downsampling caps are fixed at construction so every call
// site compares with the same policy.
type Engine struct {
	errorMetricsCap int
	frechetCap      int
}

// NewEngine creates an engine with the given options, applying defaults for
// zero values.
func NewEngine(opts Options) *Engine {
	if opts.ErrorMetricsCap == 0 {
		opts.ErrorMetricsCap = DefaultErrorMetricsCap
	}
	if opts.FrechetCap == 0 {
		opts.FrechetCap = DefaultFrechetCap
	}
	return &Engine{
		errorMetricsCap: opts.ErrorMetricsCap,
		frechetCap:      opts.FrechetCap,
	}
}

// Report is the immutable result of one comparison. The normalized fields
// are nil (JSON null) when the normalizing denominator is numerically
// degenerate; the similarity percentages fold that case into 0 rather than
// propagating a non-finite value.
type Report struct {
	SSE               float64  `json:"sse"`
	NormalizedSSE     *float64 `json:"normalized_sse"`
	RMSE              float64  `json:"rmse"`
	FrechetDistance   float64  `json:"frechet_distance"`
	NormalizedFrechet *float64 `json:"normalized_frechet"`
	NSSESimilarityPct float64  `json:"nsse_similarity_pct"`
	NFDSimilarityPct  float64  `json:"nfd_similarity_pct"`
}

// Compare produces a similarity report for a sample curve against a
// baseline curve.
//
// Error metrics run on copies downsampled to the error-metrics cap; the
// Fréchet distance runs on copies further downsampled (independently per
// curve) to the Fréchet cap. Both normalizing quantities, the baseline y
// variance and the baseline diagonal length, come from the error-metrics
// scale baseline so a single consistent scale normalizes every metric.
//
// Shape errors return a *ComparisonError naming the offending curve.
// Numerical degeneracy never fails; it only leaves the affected normalized
// fields absent.
func (e *Engine) Compare(baseline, sample curve.Curve) (Report, error) {
	if err := baseline.Validate(); err != nil {
		return Report{}, &ComparisonError{Role: RoleBaseline, Err: err}
	}
	if err := sample.Validate(); err != nil {
		return Report{}, &ComparisonError{Role: RoleSample, Err: err}
	}

	baseWork := curve.Downsample(baseline, e.errorMetricsCap)
	sampleWork := curve.Downsample(sample, e.errorMetricsCap)

	var r Report
	r.SSE, r.RMSE = errorMetrics(baseWork, sampleWork)

	n := float64(baseWork.Len())
	if v := curve.Variance(baseWork); v > degeneracyFloor {
		nsse := r.SSE / (n * v)
		r.NormalizedSSE = &nsse
	}

	baseFrechet := curve.Downsample(baseWork, e.frechetCap)
	sampleFrechet := curve.Downsample(sampleWork, e.frechetCap)
	r.FrechetDistance = frechetDistance(baseFrechet, sampleFrechet)

	if d := diagonalLength(baseWork); d > degeneracyFloor {
		nfd := r.FrechetDistance / d
		r.NormalizedFrechet = &nfd
	}

	r.NSSESimilarityPct = similarityPct(r.NormalizedSSE, 1)
	r.NFDSimilarityPct = similarityPct(r.NormalizedFrechet, 2)

	return r, nil
}

// diagonalLength is the length of the bounding-box diagonal of a curve,
// sqrt(xRange² + yRange²). It is the scale reference for the normalized
// Fréchet distance.
func diagonalLength(c curve.Curve) float64 {
	if c.Len() == 0 {
		return 0
	}

	minX, maxX := c.X[0], c.X[0]
	minY, maxY := c.Y[0], c.Y[0]
	for i := 1; i < c.Len(); i++ {
		if c.X[i] < minX {
			minX = c.X[i]
		}
		if c.X[i] > maxX {
			maxX = c.X[i]
		}
		if c.Y[i] < minY {
			minY = c.Y[i]
		}
		if c.Y[i] > maxY {
			maxY = c.Y[i]
		}
	}

	dx := maxX - minX
	dy := maxY - minY
	return math.Sqrt(dx*dx + dy*dy)
}

// similarityPct maps a normalized distance to a [0, 100] score via
// 100·exp(-k·value). An absent or negative normalized value scores 0.
func similarityPct(value *float64, k float64) float64 {
	if value == nil || *value < 0 || math.IsNaN(*value) {
		return 0
	}
	return 100 * math.Exp(-k**value)
}
