package table

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrNegativeCapacity    = errors.New("visible row capacity must be >= 0 or Unbounded")
	ErrNoOverflowDetector  = errors.New("unbounded capacity requires an overflow detector")
	ErrMissingCollaborator = errors.New("surface, render func and poster are required")
)

// ConfigurationError reports a clamp whose lower bound exceeds its upper bound.
type ConfigurationError struct {
	Lower float64
	Upper float64
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("table: lower bound %v exceeds upper bound %v", e.Lower, e.Upper)
}

// Bound clamps n into [lower, upper].
func Bound[N int | float64](n, lower, upper N) (N, error) {
	if lower > upper {
		return n, &ConfigurationError{Lower: float64(lower), Upper: float64(upper)}
	}

	return min(max(n, lower), upper), nil
}

// mustBound is Bound for call sites where an inverted range is a bug.
func mustBound[N int | float64](n, lower, upper N) N {
	v, err := Bound(n, lower, upper)
	if err != nil {
		panic(err)
	}
	return v
}

func indexError(index, length int) error {
	return fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, index, length)
}
