package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/physics"
)

func TestDormandPrinceStep(t *testing.T) {
	d := physics.NewDecay(-1.0, 1.0)
	dp, err := NewDormandPrince[float64](1)
	if err != nil {
		t.Fatal(err)
	}

	next, errEst, err := dp.StepWithError(d, 0, dynamo.State[float64]{1}, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if e := math.Abs(next[0] - math.Exp(-0.1)); e > 1e-9 {
		t.Errorf("fifth-order error %g", e)
	}
	if est := math.Abs(errEst[0]); est == 0 || est > 1e-6 {
		t.Errorf("error estimate %g", est)
	}
}

func TestDormandPrinceEstimateScales(t *testing.T) {
	d := physics.NewDecay(-1.0, 1.0)
	dp, _ := NewDormandPrince[float64](1)

	est := func(h float64) float64 {
		_, e, err := dp.StepWithError(d, 0, dynamo.State[float64]{1}, h)
		if err != nil {
			t.Fatal(err)
		}
		return math.Abs(e[0])
	}
	// The embedded estimate is O(h^5).
	ratio := est(0.2) / est(0.1)
	if ratio < 24 || ratio > 40 {
		t.Errorf("estimate ratio %.2f, want about 32", ratio)
	}
}

func TestDormandPrinceEnergy(t *testing.T) {
	osc := physics.NewHarmonicOscillator(1.0)
	dp, _ := NewDormandPrince[float64](2)

	x := osc.DefaultState()
	e0 := osc.Energy(x)
	dt := 0.01
	for i := 0; i < 1000; i++ {
		var err error
		if x, err = dp.Step(osc, float64(i)*dt, x, dt); err != nil {
			t.Fatal(err)
		}
	}
	if drift := math.Abs(osc.Energy(x)-e0) / e0; drift > 1e-9 {
		t.Errorf("energy drift %g", drift)
	}
}

func TestDormandPrinceBeatsRK4(t *testing.T) {
	osc := physics.NewHarmonicOscillator(1.0)
	dp, _ := NewDormandPrince[float64](2)
	rk, _ := NewRK4[float64](2)

	run := func(s dynamo.Stepper[float64]) float64 {
		x := osc.DefaultState()
		dt := 0.1
		for i := 0; i < 50; i++ {
			var err error
			if x, err = s.Step(osc, float64(i)*dt, x, dt); err != nil {
				t.Fatal(err)
			}
		}
		ref, _ := osc.ExactSolution(5.0)
		return x.Sub(ref).MaxAbs()
	}
	if eDP, eRK := run(dp), run(rk); eDP >= eRK {
		t.Errorf("dopri error %g not below rk4 error %g", eDP, eRK)
	}
}
