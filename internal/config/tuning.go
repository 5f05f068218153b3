// Package config loads analysis tuning defaults. The same JSON schema is
// used for the on-disk defaults file and for runtime overrides, and every
// field is optional: the Get* accessors supply fallbacks, so partial
// configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Fallback values applied when a field is absent from the tuning file.
const (
	defaultBaselineDegree  = 1
	defaultSmoothWindow    = 9
	defaultSmoothPolyOrder = 2
	defaultMinProminence   = 0.01
	defaultMatchTolerance  = 0.5
)

// Tuning holds the default parameters for the transform, detection, and
// matching stages.
type Tuning struct {
	// Transform params
	BaselineDegree  *int `json:"baseline_degree,omitempty"`
	SmoothWindow    *int `json:"smooth_window,omitempty"`
	SmoothPolyOrder *int `json:"smooth_poly_order,omitempty"`

	// Detection params
	MinProminence  *float64 `json:"min_prominence,omitempty"`
	MinSeparationX *float64 `json:"min_separation_x,omitempty"`
	MaxFeatures    *int     `json:"max_features,omitempty"`

	// Comparison / matching params
	RatioTau       *float64 `json:"ratio_tau,omitempty"` // 0 selects the data-derived default
	MatchTolerance *float64 `json:"match_tolerance,omitempty"`
}

// EmptyTuning returns a Tuning with all fields unset.
func EmptyTuning() *Tuning {
	return &Tuning{}
}

// Load reads a Tuning from a JSON file. The path must end in .json and
// the file is size-capped; fields omitted from the file keep their
// fallback values.
func Load(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuning()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that any values present are usable.
func (c *Tuning) Validate() error {
	if c.BaselineDegree != nil && *c.BaselineDegree < 0 {
		return fmt.Errorf("baseline_degree must be non-negative, got %d", *c.BaselineDegree)
	}
	if c.SmoothWindow != nil {
		if *c.SmoothWindow < 1 || *c.SmoothWindow%2 == 0 {
			return fmt.Errorf("smooth_window must be a positive odd number, got %d", *c.SmoothWindow)
		}
	}
	if c.SmoothPolyOrder != nil && *c.SmoothPolyOrder < 0 {
		return fmt.Errorf("smooth_poly_order must be non-negative, got %d", *c.SmoothPolyOrder)
	}
	if c.SmoothWindow != nil && c.SmoothPolyOrder != nil && *c.SmoothWindow <= *c.SmoothPolyOrder {
		return fmt.Errorf("smooth_window %d must exceed smooth_poly_order %d", *c.SmoothWindow, *c.SmoothPolyOrder)
	}
	if c.MinProminence != nil && *c.MinProminence < 0 {
		return fmt.Errorf("min_prominence must be non-negative, got %f", *c.MinProminence)
	}
	if c.MinSeparationX != nil && *c.MinSeparationX < 0 {
		return fmt.Errorf("min_separation_x must be non-negative, got %f", *c.MinSeparationX)
	}
	if c.MaxFeatures != nil && *c.MaxFeatures < 0 {
		return fmt.Errorf("max_features must be non-negative, got %d", *c.MaxFeatures)
	}
	if c.RatioTau != nil && *c.RatioTau < 0 {
		return fmt.Errorf("ratio_tau must be non-negative, got %f", *c.RatioTau)
	}
	if c.MatchTolerance != nil && *c.MatchTolerance <= 0 {
		return fmt.Errorf("match_tolerance must be positive, got %f", *c.MatchTolerance)
	}
	return nil
}

// GetBaselineDegree returns the baseline polynomial degree.
func (c *Tuning) GetBaselineDegree() int {
	if c.BaselineDegree == nil {
		return defaultBaselineDegree
	}
	return *c.BaselineDegree
}

// GetSmoothWindow returns the Savitzky-Golay window length.
func (c *Tuning) GetSmoothWindow() int {
	if c.SmoothWindow == nil {
		return defaultSmoothWindow
	}
	return *c.SmoothWindow
}

// GetSmoothPolyOrder returns the Savitzky-Golay polynomial order.
func (c *Tuning) GetSmoothPolyOrder() int {
	if c.SmoothPolyOrder == nil {
		return defaultSmoothPolyOrder
	}
	return *c.SmoothPolyOrder
}

// GetMinProminence returns the detection prominence floor.
func (c *Tuning) GetMinProminence() float64 {
	if c.MinProminence == nil {
		return defaultMinProminence
	}
	return *c.MinProminence
}

// GetMinSeparationX returns the detection separation distance; zero
// disables suppression.
func (c *Tuning) GetMinSeparationX() float64 {
	if c.MinSeparationX == nil {
		return 0
	}
	return *c.MinSeparationX
}

// GetMaxFeatures returns the detection count cap; zero disables it.
func (c *Tuning) GetMaxFeatures() int {
	if c.MaxFeatures == nil {
		return 0
	}
	return *c.MaxFeatures
}

// GetRatioTau returns the ratio-mask threshold; zero selects the
// data-derived default.
func (c *Tuning) GetRatioTau() float64 {
	if c.RatioTau == nil {
		return 0
	}
	return *c.RatioTau
}

// GetMatchTolerance returns the line-match tolerance in display units.
func (c *Tuning) GetMatchTolerance() float64 {
	if c.MatchTolerance == nil {
		return defaultMatchTolerance
	}
	return *c.MatchTolerance
}

// Env carries the process-environment overrides, all under the SPECTRA_
// prefix.
type Env struct {
	// DataDir overrides where the CLI looks for dataset payloads.
	DataDir string `envconfig:"DATA_DIR"`
	// TuningPath overrides the tuning defaults file.
	TuningPath string `envconfig:"TUNING_PATH"`
}

// LoadEnv reads SPECTRA_* environment overrides.
func LoadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process("spectra", &e); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return e, nil
}
