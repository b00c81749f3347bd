package dynamo

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"dimension", CheckDim("x0", 2, 3), ErrDimensionMismatch},
		{"range", &RangeError{T: 2, Start: 0, End: 1}, ErrOutOfRange},
		{"length", &LengthError{Want: 3, Got: 2}, ErrLengthMismatch},
		{"simulation", &SimulationError{Step: 4, Time: 0.4, Dt: 0.1, Wrapped: ErrInvalidState}, ErrInvalidState},
		{"wrapped simulation", fmt.Errorf("run: %w", &SimulationError{Wrapped: ErrStepTooSmall}), ErrStepTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("%v does not match %v", tt.err, tt.want)
			}
		})
	}
}

func TestCheckDimOK(t *testing.T) {
	if err := CheckDim("x", 2, 2); err != nil {
		t.Errorf("CheckDim(2, 2) = %v", err)
	}
}

func TestSimulationErrorMessage(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Dt: 0.01, Wrapped: ErrInvalidState}
	want := "step 150 (t=1.5, dt=0.01): dynamo: invalid state (NaN or Inf detected)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
