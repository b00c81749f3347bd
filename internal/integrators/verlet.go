package integrators

import (
	"fmt"

	"github.com/san-kum/odekit/internal/dynamo"
)

// Verlet and Leapfrog assume a split state [q..., v...] where dq/dt = v
// and the second half of the derivative is the acceleration.

type Verlet[T dynamo.Scalar] struct {
	dx, dxNew dynamo.State[T]
	scratch   dynamo.State[T]
	half      T
}

func NewVerlet[T dynamo.Scalar](dim int) (*Verlet[T], error) {
	if err := checkSplit(dim, "verlet scratch"); err != nil {
		return nil, err
	}
	half, err := dynamo.Ratio[T](1, 2)
	if err != nil {
		return nil, err
	}
	return &Verlet[T]{
		dx:      make(dynamo.State[T], dim),
		dxNew:   make(dynamo.State[T], dim),
		scratch: make(dynamo.State[T], dim),
		half:    half,
	}, nil
}

func (v *Verlet[T]) Order() int { return 2 }

func (v *Verlet[T]) Step(eq dynamo.Equation[T], t T, x dynamo.State[T], dt T) (dynamo.State[T], error) {
	n := len(v.scratch)
	if err := checkDims(n, eq, x); err != nil {
		return nil, err
	}
	h := n / 2

	result := make(dynamo.State[T], n)
	eq.Evaluate(t, x, v.dx)
	dt2 := dt * dt

	for i := 0; i < h; i++ {
		result[i] = x[i] + x[h+i]*dt + v.half*v.dx[h+i]*dt2
		v.scratch[i] = result[i]
		v.scratch[h+i] = x[h+i]
	}

	eq.Evaluate(t+dt, v.scratch, v.dxNew)

	halfDt := v.half * dt
	for i := 0; i < h; i++ {
		result[h+i] = x[h+i] + (v.dx[h+i]+v.dxNew[h+i])*halfDt
	}

	return result, nil
}

type Leapfrog[T dynamo.Scalar] struct {
	dx      dynamo.State[T]
	scratch dynamo.State[T]
	half    T
}

func NewLeapfrog[T dynamo.Scalar](dim int) (*Leapfrog[T], error) {
	if err := checkSplit(dim, "leapfrog scratch"); err != nil {
		return nil, err
	}
	half, err := dynamo.Ratio[T](1, 2)
	if err != nil {
		return nil, err
	}
	return &Leapfrog[T]{
		dx:      make(dynamo.State[T], dim),
		scratch: make(dynamo.State[T], dim),
		half:    half,
	}, nil
}

func (l *Leapfrog[T]) Order() int { return 2 }

func (l *Leapfrog[T]) Step(eq dynamo.Equation[T], t T, x dynamo.State[T], dt T) (dynamo.State[T], error) {
	n := len(l.scratch)
	if err := checkDims(n, eq, x); err != nil {
		return nil, err
	}
	h := n / 2

	result := make(dynamo.State[T], n)
	eq.Evaluate(t, x, l.dx)
	halfDt := dt * l.half

	for i := 0; i < h; i++ {
		l.scratch[h+i] = x[h+i] + l.dx[h+i]*halfDt
	}

	for i := 0; i < h; i++ {
		result[i] = x[i] + l.scratch[h+i]*dt
		l.scratch[i] = result[i]
	}

	eq.Evaluate(t+dt, l.scratch, l.dx)

	for i := 0; i < h; i++ {
		result[h+i] = l.scratch[h+i] + l.dx[h+i]*halfDt
	}

	return result, nil
}

func checkSplit(dim int, what string) error {
	if dim <= 0 || dim%2 != 0 {
		return fmt.Errorf("%w: %s needs an even positive dimension, got %d", dynamo.ErrDimensionMismatch, what, dim)
	}
	return nil
}
