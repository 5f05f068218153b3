package main

import (
	"math"

	"github.com/spectra-data/spectra.report/internal/config"
	"github.com/spectra-data/spectra.report/internal/spectral"
	"github.com/spectra-data/spectra.report/internal/spectral/match"
	"github.com/spectra-data/spectra.report/internal/spectral/transform"
)

// report is the JSON document the command emits.
type report struct {
	Trace    *spectral.Manifest `json:"trace,omitempty"`
	Features []featureReport    `json:"features,omitempty"`
	Matches  []matchReport      `json:"matches,omitempty"`
}

type featureReport struct {
	ID         string  `json:"id"`
	CenterX    float64 `json:"center_x"`
	ValueY     float64 `json:"value_y"`
	Prominence float64 `json:"prominence"`
	Width      float64 `json:"width"`
	Mode       string  `json:"mode"`
	Label      string  `json:"label"`
}

type matchReport struct {
	FeatureID  string            `json:"feature_id"`
	Ambiguous  bool              `json:"ambiguous"`
	Skipped    bool              `json:"skipped,omitempty"`
	SkipReason string            `json:"skip_reason,omitempty"`
	Candidates []candidateReport `json:"candidates,omitempty"`
}

type candidateReport struct {
	Kind     string  `json:"kind"`
	Score    float64 `json:"score"`
	XRef     float64 `json:"x_ref,omitempty"`
	Delta    float64 `json:"delta,omitempty"`
	Strength float64 `json:"strength,omitempty"`
	RangeX0  float64 `json:"range_x0,omitempty"`
	RangeX1  float64 `json:"range_x1,omitempty"`
	Label    string  `json:"label"`
}

func (r *report) addFeatures(features []spectral.Feature) {
	for _, f := range features {
		r.Features = append(r.Features, featureReport{
			ID:         f.ID,
			CenterX:    f.CenterX,
			ValueY:     f.ValueY,
			Prominence: f.Prominence,
			Width:      f.Width,
			Mode:       f.Mode.String(),
			Label:      f.AnnotationLabel(),
		})
	}
}

func (r *report) addMatches(matches []match.FeatureMatches, citation string) {
	for _, fm := range matches {
		mr := matchReport{
			FeatureID:  fm.FeatureID,
			Ambiguous:  fm.Ambiguous,
			Skipped:    fm.Skipped,
			SkipReason: fm.SkipReason,
		}
		for _, c := range fm.Candidates {
			mr.Candidates = append(mr.Candidates, candidateReport{
				Kind:     c.Kind.String(),
				Score:    c.Score,
				XRef:     c.XRef,
				Delta:    c.Delta,
				Strength: c.Strength,
				RangeX0:  c.RangeX0,
				RangeX1:  c.RangeX1,
				Label:    c.AnnotationLabel(citation),
			})
		}
		r.Matches = append(r.Matches, mr)
	}
}

// stepFlags carries the raw pipeline flag values so step construction can
// be tested without touching the flag globals.
type stepFlags struct {
	BaselineDegree int
	NormalizeMode  string
	NormalizeX0    float64
	NormalizeX1    float64
	SmoothWindow   int
	SmoothOrder    int
}

// buildSteps translates flag values into pipeline steps, filling gaps
// from the tuning config. A negative BaselineDegree and a zero
// SmoothWindow disable those stages.
func buildSteps(f stepFlags, tuning *config.Tuning) ([]transform.Step, error) {
	var steps []transform.Step

	if f.BaselineDegree >= 0 {
		steps = append(steps, transform.BaselineStep{Degree: f.BaselineDegree})
	}

	if f.NormalizeMode != "" {
		mode, err := transform.ParseNormalizeMode(f.NormalizeMode)
		if err != nil {
			return nil, err
		}
		st := transform.NormalizeStep{Mode: mode}
		hasX0 := !math.IsNaN(f.NormalizeX0)
		hasX1 := !math.IsNaN(f.NormalizeX1)
		if hasX0 != hasX1 {
			return nil, spectral.Errorf(spectral.ErrParameter,
				"normalization selection needs both -normalize-x0 and -normalize-x1")
		}
		if hasX0 {
			st.Selection = &transform.Range{X0: f.NormalizeX0, X1: f.NormalizeX1}
		}
		steps = append(steps, st)
	}

	if f.SmoothWindow != 0 {
		window := f.SmoothWindow
		if window < 0 {
			window = tuning.GetSmoothWindow()
		}
		order := f.SmoothOrder
		if order < 0 {
			order = tuning.GetSmoothPolyOrder()
		}
		steps = append(steps, transform.SmoothStep{Window: window, PolyOrder: order})
	}

	return steps, nil
}
