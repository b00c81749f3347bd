package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// Decay is the linear test equation x' = a·x with x(0) = X0.
type Decay[T dynamo.Scalar] struct {
	Rate T
	X0   T
}

func NewDecay[T dynamo.Scalar](rate, x0 T) *Decay[T] {
	return &Decay[T]{Rate: rate, X0: x0}
}

func (d *Decay[T]) Dimension() int { return 1 }

func (d *Decay[T]) Evaluate(_ T, x, dx dynamo.State[T]) {
	dx[0] = d.Rate * x[0]
}

func (d *Decay[T]) ExactSolution(t T) (dynamo.State[T], bool) {
	return dynamo.State[T]{T(float64(d.X0) * math.Exp(float64(d.Rate)*float64(t)))}, true
}

func (d *Decay[T]) SetInitial(x dynamo.State[T]) error {
	if err := dynamo.CheckDim("initial state", 1, len(x)); err != nil {
		return err
	}
	d.X0 = x[0]
	return nil
}

func (d *Decay[T]) DefaultState() dynamo.State[T] {
	return dynamo.State[T]{d.X0}
}

func (d *Decay[T]) GetParams() map[string]float64 {
	return map[string]float64{"rate": float64(d.Rate), "x0": float64(d.X0)}
}

func (d *Decay[T]) SetParam(name string, value float64) error {
	switch name {
	case "rate":
		d.Rate = T(value)
	case "x0":
		d.X0 = T(value)
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
