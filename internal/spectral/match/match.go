// Package match scores detected features against reference line-lists or
// reference band intervals. References are read-only snapshots for the
// duration of a call.
package match

import (
	"fmt"
	"math"
	"sort"

	"github.com/spectra-data/spectra.report/internal/spectral"
)

// TopK is the number of candidates retained per feature.
const TopK = 10

// ambiguityWindow is the score gap below which the top two candidates are
// flagged as ambiguous for the caller to surface.
const ambiguityWindow = 0.02

// LineEntry is one reference line position with an optional strength used
// for tie-breaking.
type LineEntry struct {
	XRef     float64
	Strength float64
}

// LineList is an immutable reference line-list snapshot in a single
// canonical unit.
type LineList struct {
	Unit  spectral.CanonicalUnit
	Lines []LineEntry
}

// Band is one reference interval with its stored annotation text.
type Band struct {
	X0    float64
	X1    float64
	Label string
}

// BandSet is an immutable set of reference intervals in a single
// canonical unit.
type BandSet struct {
	Unit  spectral.CanonicalUnit
	Bands []Band
}

// Kind distinguishes line and band candidates.
type Kind int

const (
	KindLine Kind = iota
	KindBand
)

// String returns "line" or "band".
func (k Kind) String() string {
	if k == KindBand {
		return "band"
	}
	return "line"
}

// Candidate scores one reference entry against one feature. Scores lie in
// [0, 1].
type Candidate struct {
	FeatureID string
	Kind      Kind
	Score     float64

	// Line candidates.
	XRef     float64
	Delta    float64
	Strength float64

	// Band candidates.
	RangeX0 float64
	RangeX1 float64
	Label   string
}

// AnnotationLabel is the compact label used when the candidate is
// converted into a point annotation; citation text is supplied by the
// caller and embedded verbatim.
func (c Candidate) AnnotationLabel(citation string) string {
	var body string
	if c.Kind == KindBand {
		body = fmt.Sprintf("band [%.6g, %.6g] %s (score %.3f)", c.RangeX0, c.RangeX1, c.Label, c.Score)
	} else {
		body = fmt.Sprintf("line %.6g (Δ%+.4g, score %.3f)", c.XRef, c.Delta, c.Score)
	}
	if citation == "" {
		return body
	}
	return body + " — " + citation
}

// FeatureMatches groups the retained candidates for one feature.
type FeatureMatches struct {
	FeatureID string
	// Candidates is sorted by descending score and truncated to TopK.
	Candidates []Candidate
	// Ambiguous is set when the top two candidates score within 0.02 of
	// each other; the caller surfaces this, nothing is auto-resolved.
	Ambiguous bool
	// Skipped marks features that could not be matched at all, with the
	// diagnostic in SkipReason. A skipped feature never aborts the run.
	Skipped    bool
	SkipReason string
}

// Lines matches each feature against a reference line-list. The reference
// must be in the same canonical unit as the features' source trace; on a
// mismatch every feature is skipped with a diagnostic instead of aborting
// globally. Tolerance is in display units and must be positive.
func Lines(features []spectral.Feature, traceUnit spectral.CanonicalUnit, ref LineList, tolerance float64) ([]FeatureMatches, error) {
	if tolerance <= 0 {
		return nil, spectral.Errorf(spectral.ErrParameter, "tolerance %g must be positive", tolerance)
	}
	if len(ref.Lines) == 0 {
		return nil, spectral.Errorf(spectral.ErrInvalidInput, "reference line-list is empty")
	}
	for i, ln := range ref.Lines {
		if !finite(ln.XRef) || !finite(ln.Strength) {
			return nil, spectral.Errorf(spectral.ErrInvalidInput, "non-finite reference line at index %d", i)
		}
	}

	out := make([]FeatureMatches, 0, len(features))
	for _, f := range features {
		fm := FeatureMatches{FeatureID: f.ID}
		if ref.Unit == spectral.UnitUnknown || traceUnit == spectral.UnitUnknown || ref.Unit != traceUnit {
			fm.Skipped = true
			fm.SkipReason = fmt.Sprintf("reference unit %s does not match trace unit %s", ref.Unit, traceUnit)
			out = append(out, fm)
			continue
		}

		for _, ln := range ref.Lines {
			delta := ln.XRef - f.CenterX
			if math.Abs(delta) > tolerance {
				continue
			}
			score := 1 - math.Abs(delta)/tolerance
			if score < 0 {
				score = 0
			}
			fm.Candidates = append(fm.Candidates, Candidate{
				FeatureID: f.ID,
				Kind:      KindLine,
				Score:     score,
				XRef:      ln.XRef,
				Delta:     delta,
				Strength:  ln.Strength,
			})
		}
		sort.SliceStable(fm.Candidates, func(i, j int) bool {
			a, b := fm.Candidates[i], fm.Candidates[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Strength != b.Strength {
				return a.Strength > b.Strength
			}
			return a.XRef < b.XRef
		})
		finish(&fm)
		out = append(out, fm)
	}
	return out, nil
}

// Bands matches each feature against reference intervals. A feature
// matches an interval iff its centre lies inside it; the score decays
// linearly from the interval midpoint. A zero-width interval scores 1.0
// for its single contained point.
func Bands(features []spectral.Feature, traceUnit spectral.CanonicalUnit, ref BandSet) ([]FeatureMatches, error) {
	if len(ref.Bands) == 0 {
		return nil, spectral.Errorf(spectral.ErrInvalidInput, "reference band set is empty")
	}
	for i, b := range ref.Bands {
		if !finite(b.X0) || !finite(b.X1) {
			return nil, spectral.Errorf(spectral.ErrInvalidInput, "non-finite band bounds at index %d", i)
		}
		if b.X1 < b.X0 {
			return nil, spectral.Errorf(spectral.ErrInvalidInput, "inverted band [%g, %g] at index %d", b.X0, b.X1, i)
		}
	}

	out := make([]FeatureMatches, 0, len(features))
	for _, f := range features {
		fm := FeatureMatches{FeatureID: f.ID}
		if ref.Unit == spectral.UnitUnknown || traceUnit == spectral.UnitUnknown || ref.Unit != traceUnit {
			fm.Skipped = true
			fm.SkipReason = fmt.Sprintf("reference unit %s does not match trace unit %s", ref.Unit, traceUnit)
			out = append(out, fm)
			continue
		}

		for _, b := range ref.Bands {
			if f.CenterX < b.X0 || f.CenterX > b.X1 {
				continue
			}
			score := 1.0
			if half := (b.X1 - b.X0) / 2; half > 0 {
				mid := b.X0 + half
				score = 1 - math.Abs(f.CenterX-mid)/half
				if score < 0 {
					score = 0
				}
			}
			fm.Candidates = append(fm.Candidates, Candidate{
				FeatureID: f.ID,
				Kind:      KindBand,
				Score:     score,
				RangeX0:   b.X0,
				RangeX1:   b.X1,
				Label:     b.Label,
			})
		}
		sort.SliceStable(fm.Candidates, func(i, j int) bool {
			a, b := fm.Candidates[i], fm.Candidates[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.RangeX0 < b.RangeX0
		})
		finish(&fm)
		out = append(out, fm)
	}
	return out, nil
}

// finish truncates to TopK and flags ambiguity.
func finish(fm *FeatureMatches) {
	if len(fm.Candidates) > TopK {
		fm.Candidates = fm.Candidates[:TopK]
	}
	if len(fm.Candidates) >= 2 {
		fm.Ambiguous = fm.Candidates[0].Score-fm.Candidates[1].Score <= ambiguityWindow
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
