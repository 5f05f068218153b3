// Package feature detects peaks and dips in a transformed trace, with
// prominence computation, separation suppression, and count capping. The
// detector is state-free: one pass over display-unit arrays per call.
package feature

import (
	"fmt"
	"sort"

	"github.com/spectra-data/spectra.report/internal/spectral"
)

// Params configures one detection pass. Zero values disable the optional
// filters.
type Params struct {
	Mode spectral.FeatureMode
	// MinProminence drops candidates below this prominence; <= 0 keeps
	// all.
	MinProminence float64
	// MinSeparationX greedily suppresses candidates within this X
	// distance of a more prominent neighbour; <= 0 disables.
	MinSeparationX float64
	// MaxCount keeps only the top-N candidates by prominence; <= 0 keeps
	// all.
	MaxCount int
}

// candidate is one interior local maximum of the working signal.
type candidate struct {
	idx        int
	prominence float64
	// leftBase/rightBase are the valley samples bounding the prominence
	// scans.
	leftBase  int
	rightBase int
}

// Detect finds the peaks or dips of s and returns them sorted by X.
// Feature IDs combine traceKey with the output index, so downstream
// annotation conversion is idempotent. Dips run on the negated signal
// internally but report the original Y value.
func Detect(traceKey string, s spectral.Spectrum, p Params) ([]spectral.Feature, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.ValidateMonotonic(); err != nil {
		return nil, err
	}

	work := s.Y
	if p.Mode == spectral.FeatureDips {
		work = make([]float64, len(s.Y))
		for i, v := range s.Y {
			work[i] = -v
		}
	}

	// Strict interior maxima only: a flat-topped plateau yields no
	// candidate at all, matching the upstream detector's behaviour.
	var cands []candidate
	for i := 1; i < len(work)-1; i++ {
		if work[i] > work[i-1] && work[i] > work[i+1] {
			c := prominenceOf(work, i)
			if p.MinProminence > 0 && c.prominence < p.MinProminence {
				continue
			}
			cands = append(cands, c)
		}
	}

	if p.MinSeparationX > 0 {
		cands = suppressClose(cands, s.X, p.MinSeparationX)
	}
	if p.MaxCount > 0 && len(cands) > p.MaxCount {
		byStrength(cands, s.X)
		cands = cands[:p.MaxCount]
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].idx < cands[j].idx })

	features := make([]spectral.Feature, len(cands))
	for i, c := range cands {
		features[i] = spectral.Feature{
			ID:         fmt.Sprintf("%s/f%03d", traceKey, i),
			CenterX:    s.X[c.idx],
			ValueY:     s.Y[c.idx],
			Prominence: c.prominence,
			Width:      s.X[c.rightBase] - s.X[c.leftBase],
			Mode:       p.Mode,
		}
	}
	return features, nil
}

// prominenceOf scans outward from i until the trace boundary or a sample
// at least as high as work[i], tracking the lowest value seen on each
// side. The prominence is the candidate's height above the higher of the
// two side minima.
func prominenceOf(work []float64, i int) candidate {
	leftMin, leftBase := work[i], i
	for j := i - 1; j >= 0; j-- {
		if work[j] >= work[i] {
			break
		}
		if work[j] < leftMin {
			leftMin, leftBase = work[j], j
		}
	}
	rightMin, rightBase := work[i], i
	for j := i + 1; j < len(work); j++ {
		if work[j] >= work[i] {
			break
		}
		if work[j] < rightMin {
			rightMin, rightBase = work[j], j
		}
	}
	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return candidate{
		idx:        i,
		prominence: work[i] - base,
		leftBase:   leftBase,
		rightBase:  rightBase,
	}
}

// suppressClose keeps the most prominent candidate of every cluster:
// candidates are visited strongest first (ties to smaller X) and dropped
// when a kept candidate lies within minSep of them on the X axis.
func suppressClose(cands []candidate, x []float64, minSep float64) []candidate {
	order := append([]candidate(nil), cands...)
	byStrength(order, x)

	kept := make([]candidate, 0, len(order))
	for _, c := range order {
		ok := true
		for _, k := range kept {
			if abs(x[c.idx]-x[k.idx]) < minSep {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, c)
		}
	}
	return kept
}

// byStrength sorts candidates by descending prominence, breaking ties by
// smaller X.
func byStrength(cands []candidate, x []float64) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].prominence != cands[j].prominence {
			return cands[i].prominence > cands[j].prominence
		}
		return x[cands[i].idx] < x[cands[j].idx]
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
