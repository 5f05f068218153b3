package transform

import (
	"testing"

	"github.com/spectra-data/spectra.report/internal/spectral"
	"github.com/spectra-data/spectra.report/internal/testutil"
)

func TestPipelineChainsProvenance(t *testing.T) {
	s := linearSpectrum()
	log := spectral.NewProvenanceLog()

	p := NewPipeline(
		BaselineStep{Degree: 1},
		NormalizeStep{Mode: NormalizeMax},
		SmoothStep{Window: 5, PolyOrder: 2},
	)
	// Max normalization of an all-zero corrected signal would fail, so
	// leave a residual on top of the baseline.
	s.Y[5] += 10

	derived, err := p.Run("raw-1", s, log)
	testutil.AssertNoError(t, err)

	if len(derived.Records) != 3 {
		t.Fatalf("records = %d, want 3 (one per step)", len(derived.Records))
	}
	wantTypes := []string{"baseline", "normalize", "smooth"}
	for i, rec := range derived.Records {
		if rec.TransformType != wantTypes[i] {
			t.Errorf("record %d type = %q, want %q", i, rec.TransformType, wantTypes[i])
		}
	}

	// The final record's output is the returned trace; earlier records
	// chain through intermediate trace IDs.
	last := derived.Records[len(derived.Records)-1]
	if last.OutputTraceID != derived.ID {
		t.Errorf("final record output = %q, want %q", last.OutputTraceID, derived.ID)
	}
	seen := map[string]bool{}
	for _, rec := range derived.Records {
		if seen[rec.OutputTraceID] {
			t.Errorf("duplicate output trace ID %q in chain", rec.OutputTraceID)
		}
		seen[rec.OutputTraceID] = true
	}

	if log.Len() != 3 {
		t.Errorf("provenance log holds %d records, want 3", log.Len())
	}
	if got := log.ByOutput(derived.ID); len(got) != 1 || got[0].TransformType != "smooth" {
		t.Errorf("ByOutput(final) = %+v, want the smooth record", got)
	}
}

func TestPipelineDoesNotMutateInput(t *testing.T) {
	s := spectral.Spectrum{X: []float64{0, 1, 2, 3}, Y: []float64{1, 5, 2, 4}}
	orig := s.Clone()

	_, err := NewPipeline(NormalizeStep{Mode: NormalizeMax}).Run("raw-2", s, nil)
	testutil.AssertNoError(t, err)

	testutil.FloatsNear(t, s.Y, orig.Y, 0)
	testutil.FloatsNear(t, s.X, orig.X, 0)
}

func TestPipelineStopsOnFirstError(t *testing.T) {
	s := spectral.Spectrum{X: []float64{0, 1, 2}, Y: []float64{0, 0, 0}}
	_, err := NewPipeline(
		NormalizeStep{Mode: NormalizeMax}, // all-zero: fails
		SmoothStep{Window: 3, PolyOrder: 1},
	).Run("raw-3", s, nil)
	testutil.AssertErrorIs(t, err, spectral.ErrNumericalInstability)
}

func TestEmptyPipeline(t *testing.T) {
	s := spectral.Spectrum{X: []float64{0, 1}, Y: []float64{1, 2}}
	_, err := NewPipeline().Run("raw-4", s, nil)
	testutil.AssertErrorIs(t, err, spectral.ErrParameter)
}
