package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/physics"
)

func TestSplitDimension(t *testing.T) {
	for _, dim := range []int{0, -2, 3} {
		if _, err := NewVerlet[float64](dim); !errors.Is(err, dynamo.ErrDimensionMismatch) {
			t.Errorf("NewVerlet(%d): got %v", dim, err)
		}
		if _, err := NewLeapfrog[float64](dim); !errors.Is(err, dynamo.ErrDimensionMismatch) {
			t.Errorf("NewLeapfrog(%d): got %v", dim, err)
		}
	}
}

func TestSymplecticEnergyBounded(t *testing.T) {
	osc := physics.NewHarmonicOscillator(1.0)
	v, _ := NewVerlet[float64](2)
	l, _ := NewLeapfrog[float64](2)

	for name, s := range map[string]dynamo.Stepper[float64]{"verlet": v, "leapfrog": l} {
		x := osc.DefaultState()
		e0 := osc.Energy(x)
		worst := 0.0
		dt := 0.02
		for i := 0; i < 10000; i++ {
			var err error
			if x, err = s.Step(osc, float64(i)*dt, x, dt); err != nil {
				t.Fatal(err)
			}
			worst = math.Max(worst, math.Abs(osc.Energy(x)-e0)/e0)
		}
		if worst > 1e-3 {
			t.Errorf("%s: energy error reached %g", name, worst)
		}
	}
}

func TestVerletSecondOrder(t *testing.T) {
	osc := physics.NewHarmonicOscillator(1.0)
	v, _ := NewVerlet[float64](2)

	globalErr := func(dt float64) float64 {
		x := osc.DefaultState()
		n := int(math.Round(1.0 / dt))
		for i := 0; i < n; i++ {
			var err error
			if x, err = v.Step(osc, float64(i)*dt, x, dt); err != nil {
				t.Fatal(err)
			}
		}
		ref, _ := osc.ExactSolution(1.0)
		return x.Sub(ref).MaxAbs()
	}
	ratio := globalErr(0.02) / globalErr(0.01)
	if ratio < 3.5 || ratio > 4.5 {
		t.Errorf("error ratio %.2f, want about 4", ratio)
	}
}
