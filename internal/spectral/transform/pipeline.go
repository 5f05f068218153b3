package transform

import (
	"fmt"

	"github.com/spectra-data/spectra.report/internal/spectral"
)

// Step is one non-destructive transform applied to a spectrum. Apply
// returns a new spectrum and never mutates its input.
type Step interface {
	// Name identifies the step in provenance records.
	Name() string
	// Params returns the parameter map recorded in provenance.
	Params() map[string]any
	Apply(s spectral.Spectrum) (spectral.Spectrum, error)
}

// BaselineStep subtracts a least-squares polynomial baseline.
type BaselineStep struct {
	Degree int
}

func (st BaselineStep) Name() string { return "baseline" }

func (st BaselineStep) Params() map[string]any {
	return map[string]any{"degree": st.Degree}
}

func (st BaselineStep) Apply(s spectral.Spectrum) (spectral.Spectrum, error) {
	res, err := Baseline(s, st.Degree)
	if err != nil {
		return spectral.Spectrum{}, err
	}
	out := s.Clone()
	out.Y = res.Corrected
	return out, nil
}

// NormalizeStep rescales Y, optionally restricting the statistics to a
// sub-range.
type NormalizeStep struct {
	Mode      NormalizeMode
	Selection *Range
}

func (st NormalizeStep) Name() string { return "normalize" }

func (st NormalizeStep) Params() map[string]any {
	p := map[string]any{"mode": st.Mode.String()}
	if st.Selection != nil {
		p["x0"] = st.Selection.X0
		p["x1"] = st.Selection.X1
	}
	return p
}

func (st NormalizeStep) Apply(s spectral.Spectrum) (spectral.Spectrum, error) {
	y, err := Normalize(s, st.Mode, st.Selection)
	if err != nil {
		return spectral.Spectrum{}, err
	}
	out := s.Clone()
	out.Y = y
	return out, nil
}

// SmoothStep applies Savitzky-Golay smoothing.
type SmoothStep struct {
	Window    int
	PolyOrder int
}

func (st SmoothStep) Name() string { return "smooth" }

func (st SmoothStep) Params() map[string]any {
	return map[string]any{"window": st.Window, "polyorder": st.PolyOrder}
}

func (st SmoothStep) Apply(s spectral.Spectrum) (spectral.Spectrum, error) {
	y, err := SavitzkyGolay(s, st.Window, st.PolyOrder)
	if err != nil {
		return spectral.Spectrum{}, err
	}
	out := s.Clone()
	out.Y = y
	return out, nil
}

// Pipeline applies steps in order. Each step produces a new derived trace
// and appends exactly one provenance record; records chain through the
// intermediate trace IDs, and the returned trace carries the full chain.
type Pipeline struct {
	steps []Step
}

// NewPipeline builds a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes the pipeline against s, which is identified by parentID
// for provenance purposes. Records are also appended to log when it is
// non-nil.
func (p *Pipeline) Run(parentID string, s spectral.Spectrum, log *spectral.ProvenanceLog) (*spectral.DerivedTrace, error) {
	if len(p.steps) == 0 {
		return nil, spectral.Errorf(spectral.ErrParameter, "pipeline has no steps")
	}

	cur := s
	curParent := parentID
	var chain []spectral.TransformRecord
	var last *spectral.DerivedTrace
	for _, st := range p.steps {
		out, err := st.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Name(), err)
		}
		dt := spectral.NewDerivedTrace(curParent, out.X, out.Y, out.XUnit, out.YUnit)
		rec := spectral.NewTransformRecord(st.Name(), st.Params(), dt.ID)
		chain = append(chain, rec)
		if log != nil {
			log.Append(rec)
		}
		cur = dt.Spectrum
		curParent = dt.ID
		last = dt
	}
	last.Records = chain
	return last, nil
}
