// Package align resamples two traces onto a common grid restricted to the
// overlap of their X domains, as preparation for differential comparison.
package align

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/spectra-data/spectra.report/internal/spectral"
)

// Method selects the resampling strategy.
type Method int

const (
	// None requires both traces to share a bit-for-bit identical X grid.
	None Method = iota
	// Nearest maps each target X to the closest source sample, resolving
	// exact ties to the lower index.
	Nearest
	// Linear is piecewise-linear interpolation, never extrapolated.
	Linear
	// PChip is monotone cubic Hermite interpolation, never extrapolated.
	PChip
)

// String returns the method spelling used in flags and provenance.
func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	case PChip:
		return "pchip"
	default:
		return "none"
	}
}

// ParseMethod maps a method spelling onto a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "none":
		return None, nil
	case "nearest":
		return Nearest, nil
	case "linear":
		return Linear, nil
	case "pchip":
		return PChip, nil
	default:
		return None, spectral.Errorf(spectral.ErrParameter,
			"unknown alignment method %q (want none, nearest, linear, or pchip)", s)
	}
}

// Target selects which trace's grid the other trace is resampled onto.
type Target int

const (
	TargetA Target = iota
	TargetB
)

// String returns "A" or "B".
func (t Target) String() string {
	if t == TargetB {
		return "B"
	}
	return "A"
}

// Overlap is the X range common to both traces.
type Overlap struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
}

// Result holds two traces resampled onto a shared grid restricted to
// their overlap. Points outside the overlap are dropped outright, never
// represented as NaN.
type Result struct {
	X  []float64
	YA []float64
	YB []float64
	// Interpolated is true iff resampling actually changed either input's
	// sample positions.
	Interpolated bool
	Overlap      Overlap
}

// Align resamples a and b onto the grid of the target trace, clipped to
// the intersection of their domains. Both traces must resolve to the same
// known canonical unit; otherwise the call fails with ErrUnitMismatch
// rather than assuming compatibility.
func Align(a, b spectral.Spectrum, method Method, target Target) (*Result, error) {
	if err := validateTrace("trace A", a); err != nil {
		return nil, err
	}
	if err := validateTrace("trace B", b); err != nil {
		return nil, err
	}
	if a.XUnit == spectral.UnitUnknown || b.XUnit == spectral.UnitUnknown {
		return nil, spectral.Errorf(spectral.ErrUnitMismatch,
			"cannot compare traces with unresolved units (A=%s, B=%s)", a.XUnit, b.XUnit)
	}
	if a.XUnit != b.XUnit {
		return nil, spectral.Errorf(spectral.ErrUnitMismatch,
			"trace units differ (A=%s, B=%s); convert before comparing", a.XUnit, b.XUnit)
	}

	if method == None {
		if !sameGrid(a.X, b.X) {
			return nil, spectral.Errorf(spectral.ErrInvalidInput,
				"method none requires identical grids (%d vs %d samples)", len(a.X), len(b.X))
		}
		return &Result{
			X:            append([]float64(nil), a.X...),
			YA:           append([]float64(nil), a.Y...),
			YB:           append([]float64(nil), b.Y...),
			Interpolated: false,
			Overlap:      Overlap{X0: a.X[0], X1: a.X[len(a.X)-1]},
		}, nil
	}

	ov := Overlap{
		X0: max(a.X[0], b.X[0]),
		X1: min(a.X[len(a.X)-1], b.X[len(b.X)-1]),
	}
	if ov.X0 > ov.X1 {
		return nil, spectral.Errorf(spectral.ErrEmptyOverlap,
			"domains [%g, %g] and [%g, %g] do not intersect",
			a.X[0], a.X[len(a.X)-1], b.X[0], b.X[len(b.X)-1])
	}

	tgt, src := a, b
	if target == TargetB {
		tgt, src = b, a
	}

	// Clip the target grid to the overlap; everything on it lies inside
	// the source domain, so resampling never extrapolates.
	lo := sort.SearchFloat64s(tgt.X, ov.X0)
	hi := sort.Search(len(tgt.X), func(i int) bool { return tgt.X[i] > ov.X1 })
	if lo >= hi {
		return nil, spectral.Errorf(spectral.ErrEmptyOverlap,
			"target grid has no samples inside overlap [%g, %g]", ov.X0, ov.X1)
	}
	grid := append([]float64(nil), tgt.X[lo:hi]...)
	tgtY := append([]float64(nil), tgt.Y[lo:hi]...)

	srcY, err := resample(src, grid, method)
	if err != nil {
		return nil, err
	}

	res := &Result{
		X:            grid,
		Interpolated: !sameGrid(grid, clip(src.X, ov)),
		Overlap:      ov,
	}
	if target == TargetB {
		res.YA, res.YB = srcY, tgtY
	} else {
		res.YA, res.YB = tgtY, srcY
	}
	return res, nil
}

func validateTrace(name string, s spectral.Spectrum) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := s.ValidateMonotonic(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// resample evaluates src at each grid point, which must all lie inside
// the source domain.
func resample(src spectral.Spectrum, grid []float64, method Method) ([]float64, error) {
	out := make([]float64, len(grid))
	switch method {
	case Nearest:
		for i, g := range grid {
			out[i] = src.Y[nearestIndex(src.X, g)]
		}
	case Linear:
		var pl interp.PiecewiseLinear
		if err := pl.Fit(src.X, src.Y); err != nil {
			return nil, spectral.Errorf(spectral.ErrInvalidInput, "linear resample: %v", err)
		}
		for i, g := range grid {
			out[i] = pl.Predict(g)
		}
	case PChip:
		var fb interp.FritschButland
		if err := fb.Fit(src.X, src.Y); err != nil {
			return nil, spectral.Errorf(spectral.ErrInvalidInput, "pchip resample: %v", err)
		}
		for i, g := range grid {
			out[i] = fb.Predict(g)
		}
	default:
		return nil, spectral.Errorf(spectral.ErrParameter, "unknown alignment method %d", method)
	}
	return out, nil
}

// nearestIndex returns the index of the sample closest to g, resolving
// exact midpoints to the lower index.
func nearestIndex(xs []float64, g float64) int {
	i := sort.SearchFloat64s(xs, g)
	if i == 0 {
		return 0
	}
	if i == len(xs) {
		return len(xs) - 1
	}
	if g-xs[i-1] <= xs[i]-g {
		return i - 1
	}
	return i
}

// clip returns the samples of xs inside the overlap.
func clip(xs []float64, ov Overlap) []float64 {
	lo := sort.SearchFloat64s(xs, ov.X0)
	hi := sort.Search(len(xs), func(i int) bool { return xs[i] > ov.X1 })
	return xs[lo:hi]
}

func sameGrid(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
