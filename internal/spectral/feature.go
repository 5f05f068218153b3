package spectral

import "fmt"

// FeatureMode selects whether detection looks for peaks or dips.
type FeatureMode int

const (
	FeaturePeaks FeatureMode = iota
	FeatureDips
)

// String returns the mode spelling used in labels and manifests.
func (m FeatureMode) String() string {
	if m == FeatureDips {
		return "dips"
	}
	return "peaks"
}

// ParseFeatureMode maps a mode spelling onto a FeatureMode.
func ParseFeatureMode(s string) (FeatureMode, error) {
	switch s {
	case "peaks":
		return FeaturePeaks, nil
	case "dips":
		return FeatureDips, nil
	default:
		return FeaturePeaks, Errorf(ErrParameter, "unknown feature mode %q (want peaks or dips)", s)
	}
}

// Feature is one detected peak or dip. Features are immutable: created by
// a single detector invocation and consumed downstream by matching or
// annotation conversion.
type Feature struct {
	// ID combines the owning trace key and an output index, so converting
	// the same detection run into annotations twice is idempotent.
	ID         string
	CenterX    float64
	ValueY     float64
	Prominence float64
	// Width is the X distance between the two valley samples that bound
	// the prominence scan.
	Width float64
	Mode  FeatureMode
}

// AnnotationLabel is the compact, parameter-bearing label used when the
// feature is converted into a point annotation.
func (f Feature) AnnotationLabel() string {
	noun := "peak"
	if f.Mode == FeatureDips {
		noun = "dip"
	}
	return fmt.Sprintf("%s @ %.6g (prominence %.4g, width %.4g)", noun, f.CenterX, f.Prominence, f.Width)
}
