package spectral

import "math"

// Spectrum is one 1D trace: paired X/Y arrays with unit metadata. X values
// are assumed ascending; operations that require monotonicity call
// ValidateMonotonic and fail fast when it is violated. Components never
// mutate a caller's Spectrum in place.
type Spectrum struct {
	X     []float64
	Y     []float64
	XUnit CanonicalUnit
	// YUnit is carried verbatim from import; empty means unresolved.
	YUnit string
}

// Validate re-checks the array invariants guaranteed by the ingestion
// boundary: non-empty, equal-length, all-finite. Violations return
// ErrInvalidInput.
func (s Spectrum) Validate() error {
	if len(s.X) == 0 {
		return Errorf(ErrInvalidInput, "empty spectrum")
	}
	if len(s.X) != len(s.Y) {
		return Errorf(ErrInvalidInput, "length mismatch: %d x values, %d y values", len(s.X), len(s.Y))
	}
	for i, v := range s.X {
		if !finite(v) {
			return Errorf(ErrInvalidInput, "non-finite x at index %d", i)
		}
	}
	for i, v := range s.Y {
		if !finite(v) {
			return Errorf(ErrInvalidInput, "non-finite y at index %d", i)
		}
	}
	return nil
}

// ValidateMonotonic reports ErrInvalidInput unless X is strictly
// ascending.
func (s Spectrum) ValidateMonotonic() error {
	for i := 1; i < len(s.X); i++ {
		if s.X[i] <= s.X[i-1] {
			return Errorf(ErrInvalidInput, "x not strictly ascending at index %d (%g after %g)", i, s.X[i], s.X[i-1])
		}
	}
	return nil
}

// Clone returns a deep copy sharing no storage with the receiver.
func (s Spectrum) Clone() Spectrum {
	out := Spectrum{
		X:     make([]float64, len(s.X)),
		Y:     make([]float64, len(s.Y)),
		XUnit: s.XUnit,
		YUnit: s.YUnit,
	}
	copy(out.X, s.X)
	copy(out.Y, s.Y)
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
