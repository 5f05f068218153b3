// Command spectra runs the spectral analysis engine against dataset JSON
// payloads: transform pipelines, differential comparison, feature
// detection, and reference matching. It reads the dataset-native shapes
// produced by the ingestion service and emits a single analysis report as
// JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spectra-data/spectra.report/internal/config"
	"github.com/spectra-data/spectra.report/internal/security"
	"github.com/spectra-data/spectra.report/internal/spectral"
	"github.com/spectra-data/spectra.report/internal/spectral/align"
	"github.com/spectra-data/spectra.report/internal/spectral/compare"
	"github.com/spectra-data/spectra.report/internal/spectral/feature"
	"github.com/spectra-data/spectra.report/internal/spectral/match"
	"github.com/spectra-data/spectra.report/internal/spectral/refdata"
	"github.com/spectra-data/spectra.report/internal/spectral/transform"
	"github.com/spectra-data/spectra.report/internal/version"
)

var (
	input  = flag.String("input", "", "dataset JSON payload (required)")
	inputB = flag.String("input-b", "", "second dataset payload for differential comparison")

	baselineDegree = flag.Int("baseline", -1, "polynomial baseline degree (-1 disables)")
	normalizeMode  = flag.String("normalize", "", "normalization mode: max, min-max, z-score, or area")
	normalizeX0    = flag.Float64("normalize-x0", math.NaN(), "restrict normalization statistics to x >= this")
	normalizeX1    = flag.Float64("normalize-x1", math.NaN(), "restrict normalization statistics to x <= this")
	smoothWindow   = flag.Int("smooth-window", 0, "Savitzky-Golay window length (0 disables, -1 uses tuning default)")
	smoothOrder    = flag.Int("smooth-order", -1, "Savitzky-Golay polynomial order (-1 uses tuning default)")

	diffOp      = flag.String("op", "", "differential op against -input-b: subtract or divide")
	alignMethod = flag.String("align", "linear", "alignment method: none, nearest, linear, or pchip")
	alignTarget = flag.String("align-target", "A", "grid to align onto: A or B")
	ratioTau    = flag.Float64("tau", 0, "ratio mask threshold (0 = tuning or data-derived default)")

	detectMode    = flag.String("detect", "", "feature detection mode: peaks or dips")
	minProminence = flag.Float64("min-prominence", -1, "prominence floor (-1 uses tuning default)")
	minSeparation = flag.Float64("min-separation", -1, "minimum X separation between features (-1 uses tuning default)")
	maxFeatures   = flag.Int("max-features", -1, "feature count cap (-1 uses tuning default)")

	refLines  = flag.String("ref-lines", "", "reference line-list dataset JSON to match against")
	refBands  = flag.String("ref-bands", "", "reference band annotations JSON to match against")
	tolerance = flag.Float64("tolerance", 0, "line-match tolerance in display units (0 uses tuning default)")
	citation  = flag.String("citation", "", "citation text embedded in match annotation labels")

	tuningPath  = flag.String("tuning", "", "tuning config JSON (defaults to "+config.DefaultConfigPath+" when present)")
	output      = flag.String("out", "", "write the report JSON here instead of stdout")
	showVersion = flag.Bool("version", false, "print build information and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println("spectra", version.String())
		return
	}
	if *input == "" {
		flag.Usage()
		log.Fatal("missing required -input")
	}

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("environment: %v", err)
	}
	tuning := loadTuning(env)

	sp, traceID, err := loadSpectrum(env, *input)
	if err != nil {
		log.Fatalf("load %s: %v", *input, err)
	}
	log.Printf("loaded %s: %d samples, x_unit=%s", *input, len(sp.X), sp.XUnit)

	var rep report
	plog := spectral.NewProvenanceLog()

	steps, err := buildSteps(stepFlags{
		BaselineDegree: *baselineDegree,
		NormalizeMode:  *normalizeMode,
		NormalizeX0:    *normalizeX0,
		NormalizeX1:    *normalizeX1,
		SmoothWindow:   *smoothWindow,
		SmoothOrder:    *smoothOrder,
	}, tuning)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}
	if len(steps) > 0 {
		derived, err := transform.NewPipeline(steps...).Run(traceID, sp, plog)
		if err != nil {
			log.Fatalf("pipeline: %v", err)
		}
		log.Printf("applied %d transform step(s), derived trace %s", len(derived.Records), derived.ID)
		sp = derived.Spectrum
		traceID = derived.ID
		m := derived.Manifest()
		rep.Trace = &m
	}

	if *inputB != "" || *diffOp != "" {
		if *inputB == "" || *diffOp == "" {
			log.Fatal("differential comparison needs both -input-b and -op")
		}
		derived, err := runCompare(env, sp, traceID, tuning, plog)
		if err != nil {
			log.Fatalf("compare: %v", err)
		}
		sp = derived.Spectrum
		traceID = derived.ID
		m := derived.Manifest()
		rep.Trace = &m
	}

	if *detectMode != "" {
		features, err := runDetect(sp, traceID, tuning)
		if err != nil {
			log.Fatalf("detect: %v", err)
		}
		log.Printf("detected %d feature(s)", len(features))
		rep.addFeatures(features)

		if *refLines != "" || *refBands != "" {
			matches, err := runMatch(env, features, sp.XUnit, tuning)
			if err != nil {
				log.Fatalf("match: %v", err)
			}
			rep.addMatches(matches, *citation)
		}
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	if *output == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(*output, append(out, '\n'), 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	log.Printf("report written to %s", *output)
}

// loadTuning resolves the tuning file from the flag, the environment, or
// the default path, falling back to built-in defaults when none exists.
func loadTuning(env config.Env) *config.Tuning {
	path := *tuningPath
	if path == "" {
		path = env.TuningPath
	}
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err != nil {
			return config.EmptyTuning()
		}
		path = config.DefaultConfigPath
	}
	tuning, err := config.Load(path)
	if err != nil {
		log.Fatalf("tuning: %v", err)
	}
	return tuning
}

// loadSpectrum reads and validates one dataset payload. Relative paths
// resolve against SPECTRA_DATA_DIR when it is set.
func loadSpectrum(env config.Env, path string) (spectral.Spectrum, string, error) {
	full, err := resolvePath(env, path)
	if err != nil {
		return spectral.Spectrum{}, "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return spectral.Spectrum{}, "", err
	}
	sp, id, err := refdata.DecodeSpectrum(data)
	if err != nil {
		return spectral.Spectrum{}, "", err
	}
	if id == "" {
		id = security.SanitizeFilename(strings.TrimSuffix(filepath.Base(full), filepath.Ext(full)))
	}
	return sp, id, nil
}

func runCompare(env config.Env, a spectral.Spectrum, traceID string, tuning *config.Tuning, plog *spectral.ProvenanceLog) (*spectral.DerivedTrace, error) {
	b, idB, err := loadSpectrum(env, *inputB)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", *inputB, err)
	}
	op, err := compare.ParseOp(*diffOp)
	if err != nil {
		return nil, err
	}
	method, err := align.ParseMethod(*alignMethod)
	if err != nil {
		return nil, err
	}
	target := align.TargetA
	switch strings.ToUpper(*alignTarget) {
	case "A":
	case "B":
		target = align.TargetB
	default:
		return nil, spectral.Errorf(spectral.ErrParameter, "align-target must be A or B, got %q", *alignTarget)
	}

	tau := *ratioTau
	if tau <= 0 {
		tau = tuning.GetRatioTau()
	}
	res, err := compare.Compare(a, b, compare.Options{
		Op:     op,
		Tau:    tau,
		Method: method,
		Target: target,
	})
	if err != nil {
		return nil, err
	}
	if res.MaskedCount > 0 {
		log.Printf("ratio masked %d point(s) below tau=%g", res.MaskedCount, res.Tau)
	}
	return res.ToDerivedTrace(traceID, idB, a.XUnit, a.YUnit, plog), nil
}

func runDetect(sp spectral.Spectrum, traceID string, tuning *config.Tuning) ([]spectral.Feature, error) {
	mode, err := spectral.ParseFeatureMode(*detectMode)
	if err != nil {
		return nil, err
	}
	params := feature.Params{
		Mode:           mode,
		MinProminence:  *minProminence,
		MinSeparationX: *minSeparation,
		MaxCount:       *maxFeatures,
	}
	if params.MinProminence < 0 {
		params.MinProminence = tuning.GetMinProminence()
	}
	if params.MinSeparationX < 0 {
		params.MinSeparationX = tuning.GetMinSeparationX()
	}
	if params.MaxCount < 0 {
		params.MaxCount = tuning.GetMaxFeatures()
	}
	return feature.Detect(traceID, sp, params)
}

func runMatch(env config.Env, features []spectral.Feature, unit spectral.CanonicalUnit, tuning *config.Tuning) ([]match.FeatureMatches, error) {
	if *refLines != "" && *refBands != "" {
		return nil, spectral.Errorf(spectral.ErrParameter, "use either -ref-lines or -ref-bands, not both")
	}

	if *refLines != "" {
		full, err := resolvePath(env, *refLines)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		ll, err := refdata.DecodeLineList(data)
		if err != nil {
			return nil, err
		}
		tol := *tolerance
		if tol <= 0 {
			tol = tuning.GetMatchTolerance()
		}
		return match.Lines(features, unit, ll, tol)
	}

	full, err := resolvePath(env, *refBands)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	bs, err := refdata.DecodeBands(data)
	if err != nil {
		return nil, err
	}
	return match.Bands(features, unit, bs)
}

// resolvePath joins relative paths onto SPECTRA_DATA_DIR and refuses
// paths that escape it.
func resolvePath(env config.Env, path string) (string, error) {
	if env.DataDir == "" || filepath.IsAbs(path) {
		return path, nil
	}
	full := filepath.Join(env.DataDir, path)
	if err := security.ValidatePathWithinDirectory(full, env.DataDir); err != nil {
		return "", err
	}
	return full, nil
}
