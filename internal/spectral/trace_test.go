package spectral

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDerivedTraceOwnsArrays(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{4, 5, 6}
	dt := NewDerivedTrace("parent", x, y, UnitNanometre, "flux")

	x[0] = 99
	y[0] = 99
	if dt.X[0] != 1 || dt.Y[0] != 4 {
		t.Error("derived trace aliased the caller's arrays")
	}
	if dt.ID == "" {
		t.Error("derived trace has no ID")
	}
	if dt.ParentTraceID != "parent" {
		t.Errorf("ParentTraceID = %q, want %q", dt.ParentTraceID, "parent")
	}
}

func TestManifestShape(t *testing.T) {
	dt := NewDerivedTrace("parent", []float64{1, 2}, []float64{3, 4}, UnitAngstrom, "counts")
	rec := NewTransformRecord("smooth", map[string]any{"window": 5}, dt.ID)
	dt.Records = []TransformRecord{rec}

	m := dt.Manifest()
	want := Manifest{
		ID:            dt.ID,
		ParentTraceID: "parent",
		XUnit:         "angstrom",
		YUnit:         "counts",
		X:             []float64{1, 2},
		Y:             []float64{3, 4},
		Records:       []TransformRecord{rec},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	// Manifests own their arrays too.
	m.X[0] = 99
	if dt.X[0] != 1 {
		t.Error("manifest aliased the trace's arrays")
	}
}

func TestProvenanceLog(t *testing.T) {
	log := NewProvenanceLog()
	r1 := NewTransformRecord("baseline", map[string]any{"degree": 2}, "t1")
	r2 := NewTransformRecord("normalize", map[string]any{"mode": "max"}, "t2")
	r3 := NewTransformRecord("smooth", map[string]any{"window": 5}, "t2")

	log.Append(r1)
	log.Append(r2)
	log.Append(r3)

	if log.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", log.Len())
	}
	if got := log.ByOutput("t2"); len(got) != 2 || got[0].ID != r2.ID || got[1].ID != r3.ID {
		t.Errorf("ByOutput(t2) returned wrong records: %+v", got)
	}
	if got := log.ByOutput("missing"); len(got) != 0 {
		t.Errorf("ByOutput(missing) = %+v, want empty", got)
	}

	all := log.All()
	if diff := cmp.Diff([]TransformRecord{r1, r2, r3}, all); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformRecordStamps(t *testing.T) {
	rec := NewTransformRecord("baseline", nil, "out")
	if rec.ID == "" {
		t.Error("record has no ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("record has no timestamp")
	}
	if rec.OutputTraceID != "out" {
		t.Errorf("OutputTraceID = %q, want %q", rec.OutputTraceID, "out")
	}
}
