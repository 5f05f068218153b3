package transform

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/spectra-data/spectra.report/internal/spectral"
)

// NormalizeMode enumerates the supported normalization statistics.
type NormalizeMode int

const (
	// NormalizeMax divides by the maximum absolute Y.
	NormalizeMax NormalizeMode = iota
	// NormalizeMinMax rescales Y onto [0, 1].
	NormalizeMinMax
	// NormalizeZScore subtracts the mean and divides by the population
	// standard deviation.
	NormalizeZScore
	// NormalizeArea divides by the trapezoidal integral of Y over X.
	NormalizeArea
)

// String returns the mode spelling used in flags and provenance records.
func (m NormalizeMode) String() string {
	switch m {
	case NormalizeMinMax:
		return "min-max"
	case NormalizeZScore:
		return "z-score"
	case NormalizeArea:
		return "area"
	default:
		return "max"
	}
}

// ParseNormalizeMode maps a mode spelling onto a NormalizeMode.
func ParseNormalizeMode(s string) (NormalizeMode, error) {
	switch s {
	case "max":
		return NormalizeMax, nil
	case "min-max", "minmax":
		return NormalizeMinMax, nil
	case "z-score", "zscore":
		return NormalizeZScore, nil
	case "area":
		return NormalizeArea, nil
	default:
		return NormalizeMax, spectral.Errorf(spectral.ErrParameter,
			"unknown normalization mode %q (want max, min-max, z-score, or area)", s)
	}
}

// Range selects the closed X sub-range [X0, X1] used to compute
// normalization statistics. The transform itself is always applied to the
// full series.
type Range struct {
	X0 float64
	X1 float64
}

// Normalize rescales y according to mode and returns a new array. When
// sel is non-nil the statistics (max, min/max, mean/std, integral) are
// computed over that sub-range only. An inverted, zero-width, or
// out-of-domain selection returns ErrDegenerateRange. A zero divisor
// (all-zero max, flat min-max span, zero variance, zero integral) returns
// ErrNumericalInstability rather than an Inf/NaN result.
func Normalize(s spectral.Spectrum, mode NormalizeMode, sel *Range) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	// Range selection and area integration both rely on ascending X.
	if sel != nil || mode == NormalizeArea {
		if err := s.ValidateMonotonic(); err != nil {
			return nil, err
		}
	}

	lo, hi := 0, len(s.X)
	if sel != nil {
		if sel.X0 >= sel.X1 {
			return nil, spectral.Errorf(spectral.ErrDegenerateRange,
				"selection [%g, %g] is empty or inverted", sel.X0, sel.X1)
		}
		lo = sort.SearchFloat64s(s.X, sel.X0)
		hi = sort.Search(len(s.X), func(i int) bool { return s.X[i] > sel.X1 })
		if lo >= hi {
			return nil, spectral.Errorf(spectral.ErrDegenerateRange,
				"selection [%g, %g] contains no samples", sel.X0, sel.X1)
		}
	}
	xSel, ySel := s.X[lo:hi], s.Y[lo:hi]

	out := make([]float64, len(s.Y))
	switch mode {
	case NormalizeMax:
		peak := 0.0
		for _, v := range ySel {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
		if peak == 0 {
			return nil, spectral.Errorf(spectral.ErrNumericalInstability,
				"max normalization undefined: selection is all zero")
		}
		for i, v := range s.Y {
			out[i] = v / peak
		}

	case NormalizeMinMax:
		mn, mx := ySel[0], ySel[0]
		for _, v := range ySel {
			mn = math.Min(mn, v)
			mx = math.Max(mx, v)
		}
		if mx == mn {
			return nil, spectral.Errorf(spectral.ErrNumericalInstability,
				"min-max normalization undefined: selection is constant")
		}
		for i, v := range s.Y {
			out[i] = (v - mn) / (mx - mn)
		}

	case NormalizeZScore:
		mean := stat.Mean(ySel, nil)
		std := stat.PopStdDev(ySel, nil)
		if std == 0 {
			return nil, spectral.Errorf(spectral.ErrNumericalInstability,
				"z-score normalization undefined: selection has zero variance")
		}
		for i, v := range s.Y {
			out[i] = (v - mean) / std
		}

	case NormalizeArea:
		if len(xSel) < 2 {
			return nil, spectral.Errorf(spectral.ErrDegenerateRange,
				"area normalization needs at least two samples in the selection")
		}
		area := integrate.Trapezoidal(xSel, ySel)
		if area == 0 {
			return nil, spectral.Errorf(spectral.ErrNumericalInstability,
				"area normalization undefined: integral over selection is zero")
		}
		for i, v := range s.Y {
			out[i] = v / area
		}

	default:
		return nil, spectral.Errorf(spectral.ErrParameter, "unknown normalization mode %d", mode)
	}
	return out, nil
}
