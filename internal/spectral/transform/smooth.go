package transform

import (
	"gonum.org/v1/gonum/mat"

	"github.com/spectra-data/spectra.report/internal/spectral"
)

// SavitzkyGolay smooths y with the standard local-polynomial least-squares
// convolution. The window length must be odd, greater than polyorder, and
// no larger than the sample count. Interior points use the symmetric
// central window; points within window/2 of either end are fitted over a
// truncated, asymmetric window anchored at the boundary, so no sample is
// ever extrapolated or left unsmoothed. The output always has the input's
// length.
func SavitzkyGolay(s spectral.Spectrum, window, polyorder int) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := len(s.Y)
	if polyorder < 0 {
		return nil, spectral.Errorf(spectral.ErrParameter, "polyorder %d is negative", polyorder)
	}
	if window%2 == 0 {
		return nil, spectral.Errorf(spectral.ErrParameter, "window length %d must be odd", window)
	}
	if window <= polyorder {
		return nil, spectral.Errorf(spectral.ErrParameter,
			"window length %d must exceed polyorder %d", window, polyorder)
	}
	if window > n {
		return nil, spectral.Errorf(spectral.ErrParameter,
			"window length %d exceeds sample count %d", window, n)
	}

	half := window / 2
	out := make([]float64, n)

	central, err := savgolWeights(-half, half, polyorder)
	if err != nil {
		return nil, err
	}
	for i := half; i < n-half; i++ {
		acc := 0.0
		for j, w := range central {
			acc += w * s.Y[i-half+j]
		}
		out[i] = acc
	}

	// Boundary fits reuse the same polynomial order wherever the truncated
	// window still determines it, dropping to the window size otherwise.
	for i := 0; i < half && i < n-half; i++ {
		// Left edge: samples 0 .. i+half, anchored at i.
		if err := smoothEdge(s.Y, out, i, -i, half, polyorder); err != nil {
			return nil, err
		}
		// Right edge: samples n-1-i-half .. n-1, anchored at n-1-i.
		if err := smoothEdge(s.Y, out, n-1-i, -half, i, polyorder); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// smoothEdge fits one truncated window [center+lo, center+hi] and writes
// the fitted value at center.
func smoothEdge(y, out []float64, center, lo, hi, polyorder int) error {
	order := polyorder
	if m := hi - lo; order > m {
		order = m
	}
	w, err := savgolWeights(lo, hi, order)
	if err != nil {
		return err
	}
	acc := 0.0
	for j, wj := range w {
		acc += wj * y[center+lo+j]
	}
	out[center] = acc
	return nil
}

// savgolWeights returns the convolution weights that evaluate, at offset
// zero, the least-squares polynomial of the given order fitted over the
// integer offsets lo..hi.
func savgolWeights(lo, hi, order int) ([]float64, error) {
	m := hi - lo + 1
	v := mat.NewDense(m, order+1, nil)
	for i := 0; i < m; i++ {
		t := float64(lo + i)
		p := 1.0
		for j := 0; j <= order; j++ {
			v.Set(i, j, p)
			p *= t
		}
	}

	var vtv mat.Dense
	vtv.Mul(v.T(), v)
	var inv mat.Dense
	if err := inv.Inverse(&vtv); err != nil {
		return nil, spectral.Errorf(spectral.ErrNumericalInstability,
			"smoothing weights singular for window [%d, %d] order %d", lo, hi, order)
	}
	var proj mat.Dense
	proj.Mul(&inv, v.T())

	// The fitted value at offset zero is the constant coefficient, i.e.
	// row zero of the projection.
	w := make([]float64, m)
	for j := 0; j < m; j++ {
		w[j] = proj.At(0, j)
	}
	return w, nil
}
