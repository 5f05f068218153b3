// Package testutil provides shared numeric test helpers.
//
// This package centralises common assertions to reduce duplication across
// the analysis packages' test files.
package testutil

import (
	"errors"
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorIs fails the test unless err matches target.
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// FloatNear fails the test unless got is within tol of want.
func FloatNear(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("value = %g, want %g (±%g)", got, want, tol)
	}
}

// FloatsNear fails the test unless the slices have equal length and every
// element of got is within tol of want.
func FloatsNear(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.IsNaN(got[i]) || math.Abs(got[i]-want[i]) > tol {
			t.Errorf("value[%d] = %g, want %g (±%g)", i, got[i], want[i], tol)
		}
	}
}
