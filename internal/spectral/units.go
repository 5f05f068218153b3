// Package spectral holds the shared data model for the spectral analysis
// engine: canonical units and conversions, the Spectrum and DerivedTrace
// types, transform provenance records, detected features, and the error
// kinds every component reports.
package spectral

import (
	"fmt"
	"strings"
)

// CanonicalUnit identifies the wavelength or wavenumber unit of a
// spectrum's X axis. The canonical base unit for all internal conversion
// is nanometres.
type CanonicalUnit int

const (
	// UnitUnknown marks a trace whose unit metadata could not be resolved
	// at import time. Conversion is refused; display stays "as imported".
	UnitUnknown CanonicalUnit = iota
	// UnitNanometre is the canonical base unit (nm).
	UnitNanometre
	// UnitAngstrom is ångströms (Å), 10 per nm.
	UnitAngstrom
	// UnitMicrometre is micrometres (µm), 1/1000 per nm.
	UnitMicrometre
	// UnitWavenumber is reciprocal centimetres (cm⁻¹). Conversion to and
	// from wavelength is nonlinear and order-reversing.
	UnitWavenumber
)

// String returns the plain-ASCII spelling used in manifests and logs.
func (u CanonicalUnit) String() string {
	switch u {
	case UnitNanometre:
		return "nm"
	case UnitAngstrom:
		return "angstrom"
	case UnitMicrometre:
		return "um"
	case UnitWavenumber:
		return "cm-1"
	default:
		return "unknown"
	}
}

// ParseUnit maps the unit spellings seen in imported metadata onto a
// CanonicalUnit. Unrecognised or empty spellings map to UnitUnknown so
// that nothing downstream ever guesses a unit.
func ParseUnit(s string) CanonicalUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nm", "nanometer", "nanometers", "nanometre", "nanometres":
		return UnitNanometre
	case "a", "å", "aa", "angstrom", "angstroms", "ångström":
		return UnitAngstrom
	case "um", "µm", "μm", "micron", "microns", "micrometer", "micrometre":
		return UnitMicrometre
	case "cm-1", "cm^-1", "cm⁻¹", "1/cm", "wavenumber", "wavenumbers":
		return UnitWavenumber
	default:
		return UnitUnknown
	}
}

// ToCanonical converts a scalar X value from unit into nanometres.
// UnitUnknown is refused with ErrUnknownUnit; a zero wavenumber has no
// finite wavelength and is refused with ErrParameter.
func ToCanonical(x float64, unit CanonicalUnit) (float64, error) {
	switch unit {
	case UnitNanometre:
		return x, nil
	case UnitAngstrom:
		return x / 10, nil
	case UnitMicrometre:
		return x * 1000, nil
	case UnitWavenumber:
		if x == 0 {
			return 0, Errorf(ErrParameter, "wavenumber 0 cm-1 has no finite wavelength")
		}
		return 1e7 / x, nil
	default:
		return 0, Errorf(ErrUnknownUnit, "cannot convert from unresolved unit")
	}
}

// FromCanonical converts a scalar X value in nanometres into unit.
// It is the exact inverse of ToCanonical everywhere both are defined.
func FromCanonical(x float64, unit CanonicalUnit) (float64, error) {
	switch unit {
	case UnitNanometre:
		return x, nil
	case UnitAngstrom:
		return x * 10, nil
	case UnitMicrometre:
		return x / 1000, nil
	case UnitWavenumber:
		if x == 0 {
			return 0, Errorf(ErrParameter, "0 nm has no finite wavenumber")
		}
		return 1e7 / x, nil
	default:
		return 0, Errorf(ErrUnknownUnit, "cannot convert to unresolved unit")
	}
}

// Convert converts a scalar X value between two display units via the
// canonical base.
func Convert(x float64, from, to CanonicalUnit) (float64, error) {
	nm, err := ToCanonical(x, from)
	if err != nil {
		return 0, err
	}
	return FromCanonical(nm, to)
}

// ConvertSlice converts every element of xs from one display unit to
// another, returning a freshly allocated slice. Wavenumber conversions
// reverse ordering; callers that require ascending X must reverse the
// result themselves.
func ConvertSlice(xs []float64, from, to CanonicalUnit) ([]float64, error) {
	out := make([]float64, len(xs))
	for i, x := range xs {
		v, err := Convert(x, from, to)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
