// Package compare computes differential traces (A−B and A÷B) from two
// aligned or alignable spectra. Ratio points with a near-zero denominator
// are masked out of the result rather than producing infinities.
package compare

import (
	"math"

	"github.com/spectra-data/spectra.report/internal/spectral"
	"github.com/spectra-data/spectra.report/internal/spectral/align"
)

// Op selects the differential operation.
type Op int

const (
	// Subtract computes A−B.
	Subtract Op = iota
	// Divide computes A÷B with near-zero denominators masked.
	Divide
)

// String returns the op spelling used in flags and provenance.
func (o Op) String() string {
	if o == Divide {
		return "divide"
	}
	return "subtract"
}

// ParseOp maps an op spelling onto an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "subtract":
		return Subtract, nil
	case "divide":
		return Divide, nil
	default:
		return Subtract, spectral.Errorf(spectral.ErrParameter,
			"unknown differential op %q (want subtract or divide)", s)
	}
}

// Options configures a differential comparison.
type Options struct {
	Op Op
	// Tau is the denominator magnitude below which a ratio point is
	// masked. Zero or negative selects the data-derived default.
	Tau float64
	// Method aligns the inputs when their grids differ; align.None
	// requires bit-identical grids.
	Method align.Method
	// Target selects which trace's grid the result lives on.
	Target align.Target
}

// Result is a differential trace over the overlap of the two inputs.
type Result struct {
	X  []float64
	Y  []float64
	Op Op
	// Interpolated is true iff alignment actually resampled either input.
	Interpolated bool
	Overlap      align.Overlap
	Method       align.Method
	Target       align.Target
	// MaskedCount is the number of ratio points excluded because the
	// denominator magnitude fell below Tau. Always zero for Subtract.
	MaskedCount int
	// Tau is the threshold actually applied (the supplied value or the
	// data-derived default). Zero for Subtract.
	Tau float64
}

// Compare aligns a and b as requested and computes the differential
// trace. Dividing masks every point with |B| < τ and reports the count;
// if masking leaves no points at all the call fails with
// ErrNumericalInstability.
func Compare(a, b spectral.Spectrum, opts Options) (*Result, error) {
	al, err := align.Align(a, b, opts.Method, opts.Target)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Op:           opts.Op,
		Interpolated: al.Interpolated,
		Overlap:      al.Overlap,
		Method:       opts.Method,
		Target:       opts.Target,
	}

	switch opts.Op {
	case Subtract:
		res.X = al.X
		res.Y = make([]float64, len(al.X))
		for i := range al.X {
			res.Y[i] = al.YA[i] - al.YB[i]
		}

	case Divide:
		tau := opts.Tau
		if tau <= 0 {
			tau = defaultTau(al.YB)
		}
		res.Tau = tau
		res.X = make([]float64, 0, len(al.X))
		res.Y = make([]float64, 0, len(al.X))
		for i := range al.X {
			if math.Abs(al.YB[i]) < tau {
				res.MaskedCount++
				continue
			}
			res.X = append(res.X, al.X[i])
			res.Y = append(res.Y, al.YA[i]/al.YB[i])
		}
		if len(res.X) == 0 {
			return nil, spectral.Errorf(spectral.ErrNumericalInstability,
				"all %d overlap points masked by tau=%g", res.MaskedCount, tau)
		}

	default:
		return nil, spectral.Errorf(spectral.ErrParameter, "unknown differential op %d", opts.Op)
	}
	return res, nil
}

// defaultTau derives a denominator threshold from the data itself:
// one millionth of the peak denominator magnitude, floored so an all-zero
// denominator still masks everything.
func defaultTau(y []float64) float64 {
	peak := 0.0
	for _, v := range y {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	tau := 1e-6 * peak
	if tau < 1e-12 {
		tau = 1e-12
	}
	return tau
}

// ToDerivedTrace converts the result into a derived trace carrying one
// provenance record for the alignment step (when resampling happened) and
// one for the differential op. Records are also appended to log when it
// is non-nil.
func (r *Result) ToDerivedTrace(parentA, parentB string, xUnit spectral.CanonicalUnit, yUnit string, log *spectral.ProvenanceLog) *spectral.DerivedTrace {
	dt := spectral.NewDerivedTrace(parentA, r.X, r.Y, xUnit, yUnit)

	var chain []spectral.TransformRecord
	if r.Interpolated {
		chain = append(chain, spectral.NewTransformRecord("align", map[string]any{
			"method": r.Method.String(),
			"target": r.Target.String(),
			"x0":     r.Overlap.X0,
			"x1":     r.Overlap.X1,
		}, dt.ID))
	}
	params := map[string]any{
		"op":       r.Op.String(),
		"parent_b": parentB,
	}
	if r.Op == Divide {
		params["tau"] = r.Tau
		params["masked_count"] = r.MaskedCount
	}
	chain = append(chain, spectral.NewTransformRecord(r.Op.String(), params, dt.ID))

	dt.Records = chain
	if log != nil {
		for _, rec := range chain {
			log.Append(rec)
		}
	}
	return dt
}
