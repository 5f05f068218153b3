// Package refdata validates JSON-shaped dataset and reference records at
// the ingestion boundary, turning them into the strict in-memory
// structures the core operates on. The core itself never re-parses JSON.
package refdata

import (
	"encoding/json"
	"math"

	"github.com/spectra-data/spectra.report/internal/spectral"
	"github.com/spectra-data/spectra.report/internal/spectral/match"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DatasetRecord is the dataset-native JSON shape produced by the
// ingestion service and the storage collaborator. Extra fields in stored
// payloads are ignored.
type DatasetRecord struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	XUnit string    `json:"x_unit"`
	YUnit string    `json:"y_unit"`
}

// Spectrum validates a dataset record into a strict Spectrum. Unit
// spellings that cannot be resolved map to UnitUnknown; array invariant
// violations return ErrInvalidInput.
func Spectrum(rec DatasetRecord) (spectral.Spectrum, error) {
	s := spectral.Spectrum{
		X:     append([]float64(nil), rec.X...),
		Y:     append([]float64(nil), rec.Y...),
		XUnit: spectral.ParseUnit(rec.XUnit),
		YUnit: rec.YUnit,
	}
	if err := s.Validate(); err != nil {
		return spectral.Spectrum{}, err
	}
	if err := s.ValidateMonotonic(); err != nil {
		return spectral.Spectrum{}, err
	}
	return s, nil
}

// DecodeSpectrum unmarshals and validates a dataset JSON payload,
// returning the spectrum and the record's ID.
func DecodeSpectrum(data []byte) (spectral.Spectrum, string, error) {
	var rec DatasetRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return spectral.Spectrum{}, "", spectral.Errorf(spectral.ErrInvalidInput, "dataset payload: %v", err)
	}
	s, err := Spectrum(rec)
	if err != nil {
		return spectral.Spectrum{}, "", err
	}
	return s, rec.ID, nil
}

// LineList validates a line-list dataset record: X carries the line
// positions and Y, when present, the per-line strengths. Strengths are
// optional but must pair with X when supplied.
func LineList(rec DatasetRecord) (match.LineList, error) {
	if len(rec.X) == 0 {
		return match.LineList{}, spectral.Errorf(spectral.ErrInvalidInput, "line-list has no positions")
	}
	if len(rec.Y) != 0 && len(rec.Y) != len(rec.X) {
		return match.LineList{}, spectral.Errorf(spectral.ErrInvalidInput,
			"line-list strength count %d does not match position count %d", len(rec.Y), len(rec.X))
	}

	ll := match.LineList{
		Unit:  spectral.ParseUnit(rec.XUnit),
		Lines: make([]match.LineEntry, len(rec.X)),
	}
	for i, x := range rec.X {
		if !finite(x) {
			return match.LineList{}, spectral.Errorf(spectral.ErrInvalidInput, "non-finite line position at index %d", i)
		}
		ll.Lines[i].XRef = x
		if len(rec.Y) != 0 {
			if !finite(rec.Y[i]) {
				return match.LineList{}, spectral.Errorf(spectral.ErrInvalidInput, "non-finite line strength at index %d", i)
			}
			ll.Lines[i].Strength = rec.Y[i]
		}
	}
	return ll, nil
}

// DecodeLineList unmarshals and validates a line-list dataset payload.
func DecodeLineList(data []byte) (match.LineList, error) {
	var rec DatasetRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return match.LineList{}, spectral.Errorf(spectral.ErrInvalidInput, "line-list payload: %v", err)
	}
	return LineList(rec)
}

// BandRecord is the stored range-annotation shape: an X interval with its
// text.
type BandRecord struct {
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
	Text string  `json:"text"`
}

// BandsRecord is the JSON payload wrapping a set of stored range
// annotations.
type BandsRecord struct {
	XUnit string       `json:"x_unit"`
	Bands []BandRecord `json:"bands"`
}

// Bands validates stored range annotations into a BandSet. Inverted
// bounds are normalised to x0 <= x1 the same way the annotation layer
// orders them; non-finite bounds return ErrInvalidInput.
func Bands(rec BandsRecord) (match.BandSet, error) {
	if len(rec.Bands) == 0 {
		return match.BandSet{}, spectral.Errorf(spectral.ErrInvalidInput, "band payload has no intervals")
	}
	bs := match.BandSet{
		Unit:  spectral.ParseUnit(rec.XUnit),
		Bands: make([]match.Band, len(rec.Bands)),
	}
	for i, b := range rec.Bands {
		if !finite(b.X0) || !finite(b.X1) {
			return match.BandSet{}, spectral.Errorf(spectral.ErrInvalidInput, "band %d: non-finite bounds", i)
		}
		x0, x1 := b.X0, b.X1
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		bs.Bands[i] = match.Band{X0: x0, X1: x1, Label: b.Text}
	}
	return bs, nil
}

// DecodeBands unmarshals and validates a band payload.
func DecodeBands(data []byte) (match.BandSet, error) {
	var rec BandsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return match.BandSet{}, spectral.Errorf(spectral.ErrInvalidInput, "band payload: %v", err)
	}
	return Bands(rec)
}
