package physics

import (
	"fmt"

	"github.com/san-kum/odekit/internal/dynamo"
)

// VanDerPol implements the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
type VanDerPol[T dynamo.Scalar] struct {
	Mu T // Nonlinearity parameter
}

func NewVanDerPol[T dynamo.Scalar]() *VanDerPol[T] {
	return &VanDerPol[T]{
		Mu: 1.0, // Classic value for limit cycle
	}
}

func (v *VanDerPol[T]) Dimension() int { return 2 }

func (v *VanDerPol[T]) Evaluate(_ T, s, dx dynamo.State[T]) {
	x, y := s[0], s[1]
	dx[0] = y
	dx[1] = v.Mu*(1-x*x)*y - x
}

func (v *VanDerPol[T]) DefaultState() dynamo.State[T] {
	return dynamo.State[T]{2.0, 0.0}
}

// GetParams implements dynamo.Configurable
func (v *VanDerPol[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"mu": float64(v.Mu),
	}
}

// SetParam implements dynamo.Configurable
func (v *VanDerPol[T]) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("unknown param: %s", name)
	}
	v.Mu = T(value)
	return nil
}
