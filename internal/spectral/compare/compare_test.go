package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectra-data/spectra.report/internal/spectral"
	"github.com/spectra-data/spectra.report/internal/spectral/align"
)

func nmSpectrum(x, y []float64) spectral.Spectrum {
	return spectral.Spectrum{X: x, Y: y, XUnit: spectral.UnitNanometre}
}

func TestCompareSubtractIdenticalGrids(t *testing.T) {
	a := nmSpectrum([]float64{1, 2, 3}, []float64{5, 7, 9})
	b := nmSpectrum([]float64{1, 2, 3}, []float64{1, 2, 3})

	res, err := Compare(a, b, Options{Op: Subtract, Method: align.None})
	require.NoError(t, err)

	// Identical grids subtract sample-for-sample, no interpolation.
	assert.Equal(t, []float64{4, 5, 6}, res.Y)
	assert.Equal(t, []float64{1, 2, 3}, res.X)
	assert.False(t, res.Interpolated)
	assert.Zero(t, res.MaskedCount)
	assert.Zero(t, res.Tau)
}

func TestCompareDivideMasksNearZeroDenominators(t *testing.T) {
	a := nmSpectrum([]float64{1, 2, 3, 4}, []float64{10, 10, 10, 10})
	b := nmSpectrum([]float64{1, 2, 3, 4}, []float64{2, 0.001, 5, -0.005})

	res, err := Compare(a, b, Options{Op: Divide, Tau: 0.01, Method: align.None})
	require.NoError(t, err)

	// Points 2 and 4 fall below |B| < 0.01 and are dropped, not NaN'd.
	assert.Equal(t, []float64{1, 3}, res.X)
	assert.Equal(t, []float64{5, 2}, res.Y)
	assert.Equal(t, 2, res.MaskedCount)
	assert.Equal(t, 0.01, res.Tau)
}

func TestCompareDivideAllMasked(t *testing.T) {
	a := nmSpectrum([]float64{1, 2}, []float64{1, 1})
	b := nmSpectrum([]float64{1, 2}, []float64{0, 0})

	_, err := Compare(a, b, Options{Op: Divide, Method: align.None})
	assert.ErrorIs(t, err, spectral.ErrNumericalInstability)
}

func TestCompareDivideDefaultTau(t *testing.T) {
	a := nmSpectrum([]float64{1, 2, 3}, []float64{1, 1, 1})
	b := nmSpectrum([]float64{1, 2, 3}, []float64{1e6, 0.5, 1})

	res, err := Compare(a, b, Options{Op: Divide, Method: align.None})
	require.NoError(t, err)

	// Default tau is one millionth of the peak |B|: 1e-6 * 1e6 = 1.
	assert.Equal(t, 1.0, res.Tau)
	assert.Equal(t, 1, res.MaskedCount)
	assert.Equal(t, []float64{1, 3}, res.X)
}

func TestCompareDivideDefaultTauFloor(t *testing.T) {
	a := nmSpectrum([]float64{1, 2}, []float64{1, 1})
	b := nmSpectrum([]float64{1, 2}, []float64{1e-15, 2})

	res, err := Compare(a, b, Options{Op: Divide, Method: align.None})
	require.NoError(t, err)

	// Tiny denominators keep tau at the absolute floor, which still masks
	// the 1e-15 sample.
	assert.Equal(t, 1e-12, res.Tau)
	assert.Equal(t, 1, res.MaskedCount)
}

func TestCompareWithAlignment(t *testing.T) {
	a := nmSpectrum([]float64{0, 1, 2, 3, 4}, []float64{0, 2, 4, 6, 8})
	b := nmSpectrum([]float64{0.5, 1.5, 2.5, 3.5}, []float64{1, 1, 1, 1})

	res, err := Compare(a, b, Options{Op: Subtract, Method: align.Linear, Target: align.TargetA})
	require.NoError(t, err)

	assert.True(t, res.Interpolated)
	assert.Equal(t, []float64{1, 2, 3}, res.X)
	assert.InDeltaSlice(t, []float64{1, 3, 5}, res.Y, 1e-9)
	assert.Equal(t, align.Overlap{X0: 0.5, X1: 3.5}, res.Overlap)
}

func TestCompareUnitMismatchPropagates(t *testing.T) {
	a := nmSpectrum([]float64{1, 2}, []float64{1, 1})
	b := spectral.Spectrum{X: []float64{1, 2}, Y: []float64{1, 1}, XUnit: spectral.UnitAngstrom}

	_, err := Compare(a, b, Options{Op: Subtract, Method: align.Linear})
	assert.ErrorIs(t, err, spectral.ErrUnitMismatch)
}

func TestToDerivedTraceRecords(t *testing.T) {
	a := nmSpectrum([]float64{0, 1, 2, 3, 4}, []float64{1, 2, 3, 4, 5})
	b := nmSpectrum([]float64{0.5, 1.5, 2.5}, []float64{2, 0, 2})

	res, err := Compare(a, b, Options{Op: Divide, Tau: 0.5, Method: align.Linear, Target: align.TargetB})
	require.NoError(t, err)

	log := spectral.NewProvenanceLog()
	dt := res.ToDerivedTrace("parent-a", "parent-b", spectral.UnitNanometre, "counts", log)

	require.Len(t, dt.Records, 2)
	assert.Equal(t, "align", dt.Records[0].TransformType)
	assert.Equal(t, "divide", dt.Records[1].TransformType)
	assert.Equal(t, "parent-b", dt.Records[1].Parameters["parent_b"])
	assert.Equal(t, 0.5, dt.Records[1].Parameters["tau"])
	assert.Equal(t, res.MaskedCount, dt.Records[1].Parameters["masked_count"])
	for _, rec := range dt.Records {
		assert.Equal(t, dt.ID, rec.OutputTraceID)
	}
	assert.Equal(t, 2, log.Len())
	assert.Equal(t, "parent-a", dt.ParentTraceID)
}

func TestParseOp(t *testing.T) {
	for _, o := range []Op{Subtract, Divide} {
		got, err := ParseOp(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := ParseOp("xor")
	assert.ErrorIs(t, err, spectral.ErrParameter)
}
