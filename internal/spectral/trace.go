package spectral

import (
	"time"

	"github.com/google/uuid"
)

// TransformRecord is one immutable provenance entry describing a single
// transform step that produced a derived trace.
type TransformRecord struct {
	ID            string         `json:"id"`
	TransformType string         `json:"transform_type"`
	Parameters    map[string]any `json:"parameters"`
	CreatedAt     time.Time      `json:"created_at"`
	OutputTraceID string         `json:"output_trace_id"`
}

// NewTransformRecord stamps a record with a fresh ID and the current UTC
// time.
func NewTransformRecord(transformType string, params map[string]any, outputTraceID string) TransformRecord {
	return TransformRecord{
		ID:            uuid.NewString(),
		TransformType: transformType,
		Parameters:    params,
		CreatedAt:     time.Now().UTC(),
		OutputTraceID: outputTraceID,
	}
}

// DerivedTrace is the output of one or more transform steps. It owns its
// arrays outright (never aliasing the parent's) and carries the ordered
// provenance chain that produced it.
type DerivedTrace struct {
	ID            string
	ParentTraceID string
	Spectrum
	Records []TransformRecord
}

// NewDerivedTrace copies x and y into a trace with a fresh ID.
func NewDerivedTrace(parentID string, x, y []float64, xUnit CanonicalUnit, yUnit string) *DerivedTrace {
	s := Spectrum{X: x, Y: y, XUnit: xUnit, YUnit: yUnit}.Clone()
	return &DerivedTrace{
		ID:            uuid.NewString(),
		ParentTraceID: parentID,
		Spectrum:      s,
	}
}

// Manifest is the dataset-shaped JSON payload handed to the storage
// collaborator when a derived trace is persisted as a new dataset.
type Manifest struct {
	ID            string            `json:"id"`
	ParentTraceID string            `json:"parent_trace_id"`
	XUnit         string            `json:"x_unit"`
	YUnit         string            `json:"y_unit"`
	X             []float64         `json:"x"`
	Y             []float64         `json:"y"`
	Records       []TransformRecord `json:"transform_records"`
}

// Manifest builds the persistence payload for the trace.
func (d *DerivedTrace) Manifest() Manifest {
	records := make([]TransformRecord, len(d.Records))
	copy(records, d.Records)
	return Manifest{
		ID:            d.ID,
		ParentTraceID: d.ParentTraceID,
		XUnit:         d.XUnit.String(),
		YUnit:         d.YUnit,
		X:             append([]float64(nil), d.X...),
		Y:             append([]float64(nil), d.Y...),
		Records:       records,
	}
}

// ProvenanceLog is an append-only arena of transform records indexed by
// the trace each record produced. Records are appended in place, so long
// pipelines never re-copy the full history. A log belongs to a single
// pipeline invocation and is not safe for concurrent use.
type ProvenanceLog struct {
	records  []TransformRecord
	byOutput map[string][]int
}

// NewProvenanceLog returns an empty log.
func NewProvenanceLog() *ProvenanceLog {
	return &ProvenanceLog{byOutput: make(map[string][]int)}
}

// Append adds one record to the arena.
func (l *ProvenanceLog) Append(rec TransformRecord) {
	l.byOutput[rec.OutputTraceID] = append(l.byOutput[rec.OutputTraceID], len(l.records))
	l.records = append(l.records, rec)
}

// ByOutput returns the records that produced the given trace, in append
// order.
func (l *ProvenanceLog) ByOutput(traceID string) []TransformRecord {
	idx := l.byOutput[traceID]
	out := make([]TransformRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, l.records[i])
	}
	return out
}

// All returns a copy of every record in append order.
func (l *ProvenanceLog) All() []TransformRecord {
	return append([]TransformRecord(nil), l.records...)
}

// Len reports the number of records appended so far.
func (l *ProvenanceLog) Len() int {
	return len(l.records)
}
