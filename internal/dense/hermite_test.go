package dense

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/physics"
)

// cubic is x(t) = t³ - 2t + 1 and its derivative.
func cubic(t float64) (float64, float64) {
	return t*t*t - 2*t + 1, 3*t*t - 2
}

func TestHermiteReproducesCubics(t *testing.T) {
	t0, t1 := 0.5, 2.0
	x0, f0 := cubic(t0)
	x1, f1 := cubic(t1)
	h, err := NewHermite(t0,
		dynamo.State[float64]{x0}, dynamo.State[float64]{f0},
		t1, dynamo.State[float64]{x1}, dynamo.State[float64]{f1})
	if err != nil {
		t.Fatal(err)
	}

	for _, tq := range []float64{0.5, 0.75, 1.0, 1.3, 1.99, 2.0} {
		got, err := h.Evaluate(tq)
		if err != nil {
			t.Fatalf("Evaluate(%g): %v", tq, err)
		}
		want, _ := cubic(tq)
		if math.Abs(got[0]-want) > 1e-12 {
			t.Errorf("Evaluate(%g) = %v, want %v", tq, got[0], want)
		}
	}
}

func TestHermiteOutOfRange(t *testing.T) {
	h, err := NewHermite(1.0,
		dynamo.State[float64]{0}, dynamo.State[float64]{1},
		2.0, dynamo.State[float64]{1}, dynamo.State[float64]{1})
	if err != nil {
		t.Fatal(err)
	}
	for _, tq := range []float64{0.999, 2.001, math.NaN()} {
		_, err := h.Evaluate(tq)
		var re *dynamo.RangeError
		if !errors.As(err, &re) || !errors.Is(err, dynamo.ErrOutOfRange) {
			t.Errorf("Evaluate(%g): got %v", tq, err)
		}
	}
	lo, hi := h.ValidRange()
	if lo != 1 || hi != 2 {
		t.Errorf("ValidRange() = %v, %v", lo, hi)
	}
}

func TestNewHermiteDimensions(t *testing.T) {
	_, err := NewHermite(0.0,
		dynamo.State[float64]{0, 1}, dynamo.State[float64]{1},
		1.0, dynamo.State[float64]{1, 1}, dynamo.State[float64]{1, 1})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestBuilderReusesEndDerivative(t *testing.T) {
	osc := physics.NewHarmonicOscillator(1.0)
	b, err := NewHermiteBuilder[float64](2)
	if err != nil {
		t.Fatal(err)
	}

	x0 := dynamo.State[float64]{1, 0}
	x1, _ := osc.ExactSolution(0.1)
	x2, _ := osc.ExactSolution(0.2)

	if _, err := b.Build(osc, 0, x0, 0.1, x1); err != nil {
		t.Fatal(err)
	}
	if b.Evaluations() != 2 {
		t.Fatalf("first build: %d evaluations", b.Evaluations())
	}
	d, err := b.Build(osc, 0.1, x1, 0.2, x2)
	if err != nil {
		t.Fatal(err)
	}
	if b.Evaluations() != 3 {
		t.Errorf("chained build: %d evaluations, want 3", b.Evaluations())
	}

	mid, err := d.Evaluate(0.15)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := osc.ExactSolution(0.15)
	if e := mid.Sub(want).MaxAbs(); e > 1e-6 {
		t.Errorf("interpolation error %g", e)
	}

	b.Reset()
	if _, err := b.Build(osc, 0.1, x1, 0.2, x2); err != nil {
		t.Fatal(err)
	}
	if b.Evaluations() != 2 {
		t.Errorf("after reset: %d evaluations", b.Evaluations())
	}
}

func TestBuilderDimensions(t *testing.T) {
	if _, err := NewHermiteBuilder[float64](0); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v", err)
	}
	b, _ := NewHermiteBuilder[float64](1)
	_, err := b.Build(physics.NewHarmonicOscillator(1.0), 0, dynamo.State[float64]{1}, 1, dynamo.State[float64]{1})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v", err)
	}
}
