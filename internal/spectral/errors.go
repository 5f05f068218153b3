package spectral

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes shared by every analysis
// component. Callers match them with errors.Is; messages carry the
// invocation-specific detail.
var (
	// ErrInvalidInput reports length mismatches, empty arrays, non-finite
	// values, or non-monotonic X where an operation requires it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownUnit reports a conversion requested on a trace whose unit
	// was never resolved at import time.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrUnitMismatch reports a cross-trace operation over traces with
	// incompatible or unresolved canonical units.
	ErrUnitMismatch = errors.New("unit mismatch")

	// ErrParameter reports an invalid caller-supplied parameter such as a
	// bad window length, polynomial degree, or tolerance.
	ErrParameter = errors.New("invalid parameter")

	// ErrEmptyOverlap reports an alignment whose domain intersection is
	// empty.
	ErrEmptyOverlap = errors.New("empty overlap")

	// ErrDegenerateRange reports a zero-width, inverted, or out-of-domain
	// selection range.
	ErrDegenerateRange = errors.New("degenerate range")

	// ErrNumericalInstability reports an ill-conditioned fit or a
	// statistic that would otherwise divide by zero.
	ErrNumericalInstability = errors.New("numerical instability")
)

// Errorf wraps one of the sentinel error kinds with a formatted detail
// message so callers can still match the kind with errors.Is.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
