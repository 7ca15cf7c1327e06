package curve

import (
	"errors"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	if err := (Curve{}).Validate(); !errors.Is(err, ErrEmptyCurve) {
		t.Errorf("Empty curve: got %v, want ErrEmptyCurve", err)
	}

	ragged := Curve{X: []float64{1, 2}, Y: []float64{1}}
	if err := ragged.Validate(); !errors.Is(err, ErrTooFewColumns) {
		t.Errorf("Ragged curve: got %v, want ErrTooFewColumns", err)
	}

	ok := Curve{X: []float64{1}, Y: []float64{2}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Valid curve: got %v, want nil", err)
	}
}

func TestSummarize(t *testing.T) {
	c := Curve{
		X: []float64{0, 1, 2, 3},
		Y: []float64{2, 4, 6, 8},
	}
	s := Summarize(c)

	if s.Count != 4 {
		t.Errorf("Count: got %d, want 4", s.Count)
	}
	if s.MeanY != 5 {
		t.Errorf("MeanY: got %f, want 5", s.MeanY)
	}
	if s.MinY != 2 || s.MaxY != 8 {
		t.Errorf("Min/Max: got (%f, %f), want (2, 8)", s.MinY, s.MaxY)
	}
	if s.RangeX != [2]float64{0, 3} {
		t.Errorf("RangeX: got %v, want [0 3]", s.RangeX)
	}

	// sample std of 2,4,6,8 = sqrt(20/3)
	want := math.Sqrt(20.0 / 3.0)
	if math.Abs(s.StdY-want) > 1e-12 {
		t.Errorf("StdY: got %f, want %f", s.StdY, want)
	}
}

func TestSummarizeSinglePoint(t *testing.T) {
	s := Summarize(Curve{X: []float64{1}, Y: []float64{7}})

	if s.StdY != 0 {
		t.Errorf("StdY for single point: got %f, want 0", s.StdY)
	}
	if s.MeanY != 7 || s.MinY != 7 || s.MaxY != 7 {
		t.Errorf("Degenerate stats wrong: %+v", s)
	}
}

func TestDiff(t *testing.T) {
	baseline := Summary{MeanY: 1, StdY: 0.5, MinY: 0, MaxY: 2}
	sample := Summary{MeanY: 3, StdY: 1.5, MinY: 1, MaxY: 5}

	d := Diff(baseline, sample)
	if d.MeanDiff != 2 {
		t.Errorf("MeanDiff: got %f, want 2", d.MeanDiff)
	}
	if d.StdDiff != 1 {
		t.Errorf("StdDiff: got %f, want 1", d.StdDiff)
	}
	if d.RangeDiff != 2 {
		t.Errorf("RangeDiff: got %f, want 2", d.RangeDiff)
	}
}

func TestVariance(t *testing.T) {
	c := Curve{X: []float64{0, 1, 2}, Y: []float64{0, 1, 2}}
	// population variance of 0,1,2 = 2/3
	want := 2.0 / 3.0
	if got := Variance(c); math.Abs(got-want) > 1e-12 {
		t.Errorf("Variance: got %f, want %f", got, want)
	}

	constant := Curve{X: []float64{0, 1, 2}, Y: []float64{5, 5, 5}}
	if got := Variance(constant); got != 0 {
		t.Errorf("Variance of constant curve: got %f, want 0", got)
	}
}
