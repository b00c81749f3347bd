package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration. Typed errors below unwrap to these so
// callers match with errors.Is.
var (
	// ErrConfiguration indicates an invalid construction parameter.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrLiteralConversion indicates a numeric constant cannot be built in the chosen scalar type.
	ErrLiteralConversion = errors.New("dynamo: literal not representable in scalar type")

	// ErrDimensionMismatch indicates a buffer length disagrees with the declared dimension.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrOutOfRange indicates a dense output query outside its valid interval.
	ErrOutOfRange = errors.New("dynamo: time outside valid range")

	// ErrLengthMismatch indicates trajectories that are not index aligned.
	ErrLengthMismatch = errors.New("dynamo: trajectory length mismatch")

	// ErrNonConvergence indicates the step-size controller kept rejecting steps.
	ErrNonConvergence = errors.New("dynamo: step-size control did not converge")

	// ErrStepTooSmall indicates the adaptive step fell below the configured minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrInvalidState indicates NaN or Inf in a state vector.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// DimensionError carries the offending lengths of a dimension mismatch.
type DimensionError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s has length %d, want %d", ErrDimensionMismatch, e.What, e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// CheckDim returns a *DimensionError when got != want.
func CheckDim(what string, want, got int) error {
	if want != got {
		return &DimensionError{What: what, Want: want, Got: got}
	}
	return nil
}

// RangeError reports a dense output query outside [Start, End].
type RangeError struct {
	T, Start, End float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: t=%g not in [%g, %g]", ErrOutOfRange, e.T, e.Start, e.End)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// LengthError reports trajectories of different lengths.
type LengthError struct {
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: %d samples vs %d reference samples", ErrLengthMismatch, e.Want, e.Got)
}

func (e *LengthError) Unwrap() error { return ErrLengthMismatch }

// SimulationError wraps an error with integration context.
type SimulationError struct {
	Step    int
	Time    float64
	Dt      float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, dt=%.3g): %v", e.Step, e.Time, e.Dt, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
