package integrators

import "github.com/san-kum/odekit/internal/dynamo"

// RK4 is the classical explicit fourth-order Runge-Kutta method.
// Slopes and the stage state live in scratch sized once at construction.
type RK4[T dynamo.Scalar] struct {
	dim            int
	k1, k2, k3, k4 dynamo.State[T]
	scratch        dynamo.State[T]

	half, third, sixth T
}

// NewRK4 returns an RK4 stepper for equations of dimension dim.
func NewRK4[T dynamo.Scalar](dim int) (*RK4[T], error) {
	if dim <= 0 {
		return nil, &dynamo.DimensionError{What: "rk4 scratch", Want: 1, Got: dim}
	}
	half, err := dynamo.Ratio[T](1, 2)
	if err != nil {
		return nil, err
	}
	third, err := dynamo.Ratio[T](1, 3)
	if err != nil {
		return nil, err
	}
	sixth, err := dynamo.Ratio[T](1, 6)
	if err != nil {
		return nil, err
	}
	return &RK4[T]{
		dim:     dim,
		k1:      make(dynamo.State[T], dim),
		k2:      make(dynamo.State[T], dim),
		k3:      make(dynamo.State[T], dim),
		k4:      make(dynamo.State[T], dim),
		scratch: make(dynamo.State[T], dim),
		half:    half,
		third:   third,
		sixth:   sixth,
	}, nil
}

func (r *RK4[T]) Order() int { return 4 }

func (r *RK4[T]) Dimension() int { return r.dim }

func (r *RK4[T]) Step(eq dynamo.Equation[T], t T, x dynamo.State[T], dt T) (dynamo.State[T], error) {
	if err := checkDims(r.dim, eq, x); err != nil {
		return nil, err
	}
	n := r.dim

	eq.Evaluate(t, x, r.k1)
	for i := 0; i < n; i++ {
		r.k1[i] *= dt
		r.scratch[i] = x[i] + r.half*r.k1[i]
	}

	eq.Evaluate(t+r.half*dt, r.scratch, r.k2)
	for i := 0; i < n; i++ {
		r.k2[i] *= dt
		r.scratch[i] = x[i] + r.half*r.k2[i]
	}

	eq.Evaluate(t+r.half*dt, r.scratch, r.k3)
	for i := 0; i < n; i++ {
		r.k3[i] *= dt
		r.scratch[i] = x[i] + r.k3[i]
	}

	eq.Evaluate(t+dt, r.scratch, r.k4)

	result := make(dynamo.State[T], n)
	for i := 0; i < n; i++ {
		r.k4[i] *= dt
		result[i] = x[i] + r.sixth*r.k1[i] + r.third*r.k2[i] + r.third*r.k3[i] + r.sixth*r.k4[i]
	}

	return result, nil
}
