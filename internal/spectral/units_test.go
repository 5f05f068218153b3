package spectral

import (
	"errors"
	"math"
	"testing"
)

func TestUnitRoundTrip(t *testing.T) {
	units := []CanonicalUnit{UnitNanometre, UnitAngstrom, UnitMicrometre, UnitWavenumber}
	values := []float64{0.001, 0.5, 1, 486.1, 656.28, 1e4, 2.5e6}

	for _, u1 := range units {
		for _, u2 := range units {
			for _, x := range values {
				nm, err := ToCanonical(x, u1)
				if err != nil {
					t.Fatalf("ToCanonical(%g, %s): %v", x, u1, err)
				}
				y, err := FromCanonical(nm, u2)
				if err != nil {
					t.Fatalf("FromCanonical(%g, %s): %v", nm, u2, err)
				}
				back, err := Convert(y, u2, u1)
				if err != nil {
					t.Fatalf("Convert(%g, %s, %s): %v", y, u2, u1, err)
				}
				if rel := math.Abs(back-x) / x; rel > 1e-9 {
					t.Errorf("%s->%s->%s round trip of %g drifted to %g (rel %g)", u1, u2, u1, x, back, rel)
				}
			}
		}
	}
}

func TestWavenumberOrderReversal(t *testing.T) {
	x1, err := FromCanonical(400, UnitWavenumber)
	if err != nil {
		t.Fatal(err)
	}
	x2, err := FromCanonical(700, UnitWavenumber)
	if err != nil {
		t.Fatal(err)
	}
	if x1 <= x2 {
		t.Errorf("wavenumber conversion should reverse order: got %g <= %g", x1, x2)
	}
}

func TestConversionFailures(t *testing.T) {
	testCases := []struct {
		name string
		fn   func() (float64, error)
		want error
	}{
		{"to_canonical_unknown", func() (float64, error) { return ToCanonical(500, UnitUnknown) }, ErrUnknownUnit},
		{"from_canonical_unknown", func() (float64, error) { return FromCanonical(500, UnitUnknown) }, ErrUnknownUnit},
		{"zero_wavenumber", func() (float64, error) { return ToCanonical(0, UnitWavenumber) }, ErrParameter},
		{"zero_wavelength_to_wavenumber", func() (float64, error) { return FromCanonical(0, UnitWavenumber) }, ErrParameter},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.fn(); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestConvertSlice(t *testing.T) {
	out, err := ConvertSlice([]float64{1, 2, 3}, UnitNanometre, UnitAngstrom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{10, 20, 30}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %g, want %g", i, out[i], want[i])
		}
	}

	if _, err := ConvertSlice([]float64{1, 0, 3}, UnitWavenumber, UnitNanometre); !errors.Is(err, ErrParameter) {
		t.Errorf("zero wavenumber in slice: error = %v, want ErrParameter", err)
	}
}

func TestParseUnit(t *testing.T) {
	testCases := []struct {
		input string
		want  CanonicalUnit
	}{
		{"nm", UnitNanometre},
		{" NM ", UnitNanometre},
		{"angstrom", UnitAngstrom},
		{"Å", UnitAngstrom},
		{"um", UnitMicrometre},
		{"µm", UnitMicrometre},
		{"cm-1", UnitWavenumber},
		{"cm⁻¹", UnitWavenumber},
		{"1/cm", UnitWavenumber},
		{"", UnitUnknown},
		{"furlongs", UnitUnknown},
	}

	for _, tc := range testCases {
		if got := ParseUnit(tc.input); got != tc.want {
			t.Errorf("ParseUnit(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
