package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// Pendulum is a damped rigid pendulum with state [θ, ω].
type Pendulum[T dynamo.Scalar] struct {
	Mass    T
	Length  T
	Damping T
	Gravity T
}

func NewPendulum[T dynamo.Scalar]() *Pendulum[T] {
	return &Pendulum[T]{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum[T]) Dimension() int {
	return 2
}

func (p *Pendulum[T]) Evaluate(_ T, x, dx dynamo.State[T]) {
	theta := x[0]
	omega := x[1]

	sin := T(math.Sin(float64(theta)))
	dx[0] = omega
	dx[1] = (-p.Damping*omega - p.Mass*p.Gravity*p.Length*sin) / (p.Mass * p.Length * p.Length)
}

func (p *Pendulum[T]) Energy(x dynamo.State[T]) T {
	// KE = 0.5 * m * (L*omega)^2
	// PE = m * g * L * (1 - cos(theta))
	v := p.Length * x[1]
	ke := p.Mass * v * v / 2
	pe := p.Mass * p.Gravity * p.Length * (1 - T(math.Cos(float64(x[0]))))
	return ke + pe
}

func (p *Pendulum[T]) DefaultState() dynamo.State[T] {
	return dynamo.State[T]{0.5, 0}
}

func (p *Pendulum[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    float64(p.Mass),
		"length":  float64(p.Length),
		"damping": float64(p.Damping),
		"gravity": float64(p.Gravity),
	}
}

func (p *Pendulum[T]) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = T(value)
	case "length":
		p.Length = T(value)
	case "damping":
		p.Damping = T(value)
	case "gravity":
		p.Gravity = T(value)
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
