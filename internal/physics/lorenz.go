package physics

import (
	"fmt"

	"github.com/san-kum/odekit/internal/dynamo"
)

type Lorenz[T dynamo.Scalar] struct{ Sigma, Rho, Beta T }

func NewLorenz[T dynamo.Scalar]() *Lorenz[T] { return &Lorenz[T]{10.0, 28.0, 8.0 / 3.0} }
func (l *Lorenz[T]) Dimension() int         { return 3 }

// Evaluate writes the Lorenz attractor derivatives.
func (l *Lorenz[T]) Evaluate(_ T, s, dx dynamo.State[T]) {
	dx[0] = l.Sigma * (s[1] - s[0])
	dx[1] = s[0]*(l.Rho-s[2]) - s[1]
	dx[2] = s[0]*s[1] - l.Beta*s[2]
}
func (l *Lorenz[T]) DefaultState() dynamo.State[T] { return dynamo.State[T]{1.0, 1.0, 1.0} }
func (l *Lorenz[T]) GetParams() map[string]float64 {
	return map[string]float64{"sigma": float64(l.Sigma), "rho": float64(l.Rho), "beta": float64(l.Beta)}
}
func (l *Lorenz[T]) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.Sigma = T(v)
	case "rho":
		l.Rho = T(v)
	case "beta":
		l.Beta = T(v)
	default:
		return fmt.Errorf("unknown param: %s", n)
	}
	return nil
}
