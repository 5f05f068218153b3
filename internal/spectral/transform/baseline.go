// Package transform implements the non-destructive transform pipeline:
// polynomial baseline correction, Y normalization, and Savitzky-Golay
// smoothing. Every step produces a new trace and appends exactly one
// provenance record; callers' arrays are never mutated.
package transform

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/spectra-data/spectra.report/internal/spectral"
)

// condLimit is the 2-norm condition number above which a baseline fit is
// reported as unstable instead of solved.
const condLimit = 1e12

// BaselineResult holds the outputs of a polynomial baseline fit.
type BaselineResult struct {
	// Corrected is y minus the fitted baseline.
	Corrected []float64
	// Baseline is the fitted polynomial evaluated at each x.
	Baseline []float64
}

// Baseline fits a degree-k polynomial to (x, y) by least squares and
// subtracts it. The degree must satisfy 0 <= k < len(x). Near-singular
// systems (degree too high for the sample count, duplicate or
// near-duplicate X) return ErrNumericalInstability.
func Baseline(s spectral.Spectrum, degree int) (*BaselineResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := len(s.X)
	if degree < 0 {
		return nil, spectral.Errorf(spectral.ErrParameter, "baseline degree %d is negative", degree)
	}
	if degree >= n {
		return nil, spectral.Errorf(spectral.ErrParameter, "baseline degree %d needs more than %d samples", degree, n)
	}

	// Map X onto [-1, 1] before building the Vandermonde matrix; raw
	// wavelength values in the hundreds make higher degrees hopelessly
	// ill-conditioned.
	x0, x1 := s.X[0], s.X[n-1]
	span := x1 - x0
	scale := func(x float64) float64 {
		if span == 0 {
			return 0
		}
		return 2*(x-x0)/span - 1
	}

	a := mat.NewDense(n, degree+1, nil)
	for i := 0; i < n; i++ {
		t := scale(s.X[i])
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}

	if degree > 0 {
		if c := mat.Cond(a, 2); c > condLimit {
			return nil, spectral.Errorf(spectral.ErrNumericalInstability,
				"baseline fit ill-conditioned (degree %d over %d samples, cond %.3g)", degree, n, c)
		}
	}

	b := mat.NewVecDense(n, append([]float64(nil), s.Y...))
	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, spectral.Errorf(spectral.ErrNumericalInstability,
				"baseline fit ill-conditioned (degree %d over %d samples)", degree, n)
		}
		return nil, spectral.Errorf(spectral.ErrNumericalInstability, "baseline fit failed: %v", err)
	}

	res := &BaselineResult{
		Corrected: make([]float64, n),
		Baseline:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		t := scale(s.X[i])
		// Horner evaluation of the fitted polynomial.
		fit := 0.0
		for j := degree; j >= 0; j-- {
			fit = fit*t + coef.AtVec(j)
		}
		res.Baseline[i] = fit
		res.Corrected[i] = s.Y[i] - fit
	}
	return res, nil
}
