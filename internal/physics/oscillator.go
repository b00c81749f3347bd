package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// HarmonicOscillator is x'' = -ω²x written as the first-order system
// [x, v]. X0 and V0 are the initial conditions the exact solution is
// anchored to.
type HarmonicOscillator[T dynamo.Scalar] struct {
	Omega T
	X0    T
	V0    T
}

func NewHarmonicOscillator[T dynamo.Scalar](omega T) *HarmonicOscillator[T] {
	return &HarmonicOscillator[T]{Omega: omega, X0: 1}
}

func (h *HarmonicOscillator[T]) Dimension() int { return 2 }

func (h *HarmonicOscillator[T]) Evaluate(_ T, x, dx dynamo.State[T]) {
	dx[0] = x[1]
	dx[1] = -h.Omega * h.Omega * x[0]
}

// ExactSolution is x(t) = x0·cos(ωt) + (v0/ω)·sin(ωt) and its derivative.
func (h *HarmonicOscillator[T]) ExactSolution(t T) (dynamo.State[T], bool) {
	w := float64(h.Omega)
	if w == 0 {
		return dynamo.State[T]{h.X0 + h.V0*t, h.V0}, true
	}
	x0, v0, tt := float64(h.X0), float64(h.V0), float64(t)
	s, c := math.Sincos(w * tt)
	return dynamo.State[T]{
		T(x0*c + v0/w*s),
		T(-x0*w*s + v0*c),
	}, true
}

func (h *HarmonicOscillator[T]) Energy(x dynamo.State[T]) T {
	return (x[1]*x[1] + h.Omega*h.Omega*x[0]*x[0]) / 2
}

// SetInitial anchors the exact solution to x(0) = x[0], v(0) = x[1].
func (h *HarmonicOscillator[T]) SetInitial(x dynamo.State[T]) error {
	if err := dynamo.CheckDim("initial state", 2, len(x)); err != nil {
		return err
	}
	h.X0, h.V0 = x[0], x[1]
	return nil
}

func (h *HarmonicOscillator[T]) DefaultState() dynamo.State[T] {
	return dynamo.State[T]{h.X0, h.V0}
}

func (h *HarmonicOscillator[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"omega": float64(h.Omega),
		"x0":    float64(h.X0),
		"v0":    float64(h.V0),
	}
}

func (h *HarmonicOscillator[T]) SetParam(name string, value float64) error {
	switch name {
	case "omega":
		h.Omega = T(value)
	case "x0":
		h.X0 = T(value)
	case "v0":
		h.V0 = T(value)
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
