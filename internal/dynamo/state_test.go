package dynamo

import (
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State[float64]
		valid bool
	}{
		{"empty", State[float64]{}, true},
		{"normal", State[float64]{1.0, 2.0, 3.0}, true},
		{"zeros", State[float64]{0.0, 0.0}, true},
		{"with NaN", State[float64]{1.0, math.NaN()}, false},
		{"with +Inf", State[float64]{1.0, math.Inf(1)}, false},
		{"with -Inf", State[float64]{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State[float64]
		norm     float64
		maxAbs   float64
	}{
		{State[float64]{3, 4}, 5.0, 4.0},
		{State[float64]{1, 0}, 1.0, 1.0},
		{State[float64]{0, 0}, 0.0, 0.0},
		{State[float64]{1, -1, 1, 1}, 2.0, 1.0},
		{State[float64]{-7, 2}, math.Sqrt(53), 7.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.norm) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.norm)
		}
		if got := tt.state.MaxAbs(); got != tt.maxAbs {
			t.Errorf("MaxAbs(%v) = %v, want %v", tt.state, got, tt.maxAbs)
		}
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	src := StateOf[float32](1, 2, 3)
	c := src.Clone()
	c[0] = 99
	if src[0] != 1 {
		t.Error("Clone shares storage with its source")
	}
	if State[float64](nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestState_SubAndWiden(t *testing.T) {
	a := StateOf[float32](4, 5, 6)
	b := StateOf[float32](1, 2, 3)
	diff := a.Sub(b).Float64()
	for i, v := range diff {
		if v != 3 {
			t.Errorf("diff[%d] = %v, want 3", i, v)
		}
	}
}
