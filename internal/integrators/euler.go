package integrators

import "github.com/san-kum/odekit/internal/dynamo"

// Euler is the explicit first-order method. It exists mostly as a
// baseline for convergence comparisons.
type Euler[T dynamo.Scalar] struct {
	dx dynamo.State[T]
}

func NewEuler[T dynamo.Scalar](dim int) (*Euler[T], error) {
	if dim <= 0 {
		return nil, &dynamo.DimensionError{What: "euler scratch", Want: 1, Got: dim}
	}
	return &Euler[T]{dx: make(dynamo.State[T], dim)}, nil
}

func (e *Euler[T]) Order() int { return 1 }

func (e *Euler[T]) Step(eq dynamo.Equation[T], t T, x dynamo.State[T], dt T) (dynamo.State[T], error) {
	if err := checkDims(len(e.dx), eq, x); err != nil {
		return nil, err
	}
	eq.Evaluate(t, x, e.dx)
	result := make(dynamo.State[T], len(x))
	for i := range x {
		result[i] = x[i] + dt*e.dx[i]
	}
	return result, nil
}

func checkDims[T dynamo.Scalar](dim int, eq dynamo.Equation[T], x dynamo.State[T]) error {
	if err := dynamo.CheckDim("equation", dim, eq.Dimension()); err != nil {
		return err
	}
	return dynamo.CheckDim("state", dim, len(x))
}
