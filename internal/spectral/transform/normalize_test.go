package transform

import (
	"math"
	"testing"

	"github.com/spectra-data/spectra.report/internal/spectral"
	"github.com/spectra-data/spectra.report/internal/testutil"
)

func TestNormalizeMaxProperty(t *testing.T) {
	testCases := []struct {
		name string
		y    []float64
	}{
		{"positive", []float64{0.5, 2, 1}},
		{"negative_peak", []float64{-4, 1, 2}},
		{"tiny_values", []float64{1e-9, -3e-9, 2e-9}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := spectral.Spectrum{X: []float64{1, 2, 3}, Y: tc.y}
			out, err := Normalize(s, NormalizeMax, nil)
			testutil.AssertNoError(t, err)

			peak := 0.0
			for _, v := range out {
				peak = math.Max(peak, math.Abs(v))
			}
			testutil.FloatNear(t, peak, 1, 1e-12)
		})
	}
}

func TestNormalizeMinMax(t *testing.T) {
	s := spectral.Spectrum{X: []float64{1, 2, 3, 4}, Y: []float64{3, 7, 5, 11}}
	out, err := Normalize(s, NormalizeMinMax, nil)
	testutil.AssertNoError(t, err)
	testutil.FloatsNear(t, out, []float64{0, 0.5, 0.25, 1}, 1e-12)
}

func TestNormalizeZScore(t *testing.T) {
	s := spectral.Spectrum{X: []float64{1, 2, 3, 4}, Y: []float64{2, 4, 4, 6}}
	out, err := Normalize(s, NormalizeZScore, nil)
	testutil.AssertNoError(t, err)

	// Mean 4, population std sqrt(2).
	sq := math.Sqrt(2)
	testutil.FloatsNear(t, out, []float64{-2 / sq, 0, 0, 2 / sq}, 1e-12)
}

func TestNormalizeArea(t *testing.T) {
	// Constant 2 over [0, 3]: integral 6.
	s := spectral.Spectrum{X: []float64{0, 1, 2, 3}, Y: []float64{2, 2, 2, 2}}
	out, err := Normalize(s, NormalizeArea, nil)
	testutil.AssertNoError(t, err)
	testutil.FloatsNear(t, out, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3, 1.0 / 3}, 1e-12)
}

func TestNormalizeSelectionRestrictsStatistics(t *testing.T) {
	s := spectral.Spectrum{
		X: []float64{0, 1, 2, 3, 4},
		Y: []float64{10, 1, 2, 1, 10},
	}
	// Statistics over [1, 3] see a max of 2, but the whole series is
	// rescaled.
	out, err := Normalize(s, NormalizeMax, &Range{X0: 1, X1: 3})
	testutil.AssertNoError(t, err)
	testutil.FloatsNear(t, out, []float64{5, 0.5, 1, 0.5, 5}, 1e-12)
}

func TestNormalizeDegenerateSelections(t *testing.T) {
	s := spectral.Spectrum{X: []float64{0, 1, 2}, Y: []float64{1, 2, 3}}

	testCases := []struct {
		name string
		sel  Range
	}{
		{"inverted", Range{X0: 2, X1: 1}},
		{"zero_width", Range{X0: 1, X1: 1}},
		{"outside_domain", Range{X0: 10, X1: 20}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(s, NormalizeMax, &tc.sel)
			testutil.AssertErrorIs(t, err, spectral.ErrDegenerateRange)
		})
	}
}

func TestNormalizeZeroDivisors(t *testing.T) {
	testCases := []struct {
		name string
		y    []float64
		mode NormalizeMode
	}{
		{"all_zero_max", []float64{0, 0, 0}, NormalizeMax},
		{"constant_min_max", []float64{5, 5, 5}, NormalizeMinMax},
		{"zero_variance", []float64{5, 5, 5}, NormalizeZScore},
		{"zero_integral", []float64{-1, 0, 1}, NormalizeArea},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := spectral.Spectrum{X: []float64{0, 1, 2}, Y: tc.y}
			_, err := Normalize(s, tc.mode, nil)
			testutil.AssertErrorIs(t, err, spectral.ErrNumericalInstability)
		})
	}
}

func TestParseNormalizeMode(t *testing.T) {
	for _, mode := range []NormalizeMode{NormalizeMax, NormalizeMinMax, NormalizeZScore, NormalizeArea} {
		got, err := ParseNormalizeMode(mode.String())
		testutil.AssertNoError(t, err)
		if got != mode {
			t.Errorf("ParseNormalizeMode(%q) = %v, want %v", mode.String(), got, mode)
		}
	}
	_, err := ParseNormalizeMode("loudness")
	testutil.AssertErrorIs(t, err, spectral.ErrParameter)
}
