package integrators

import "github.com/san-kum/odekit/internal/dynamo"

type ratio struct{ n, d int64 }

// Dormand-Prince 5(4) tableau. Row 6 of dpA equals dpB (first same as last).
var (
	dpC = [7]ratio{{0, 1}, {1, 5}, {3, 10}, {4, 5}, {8, 9}, {1, 1}, {1, 1}}

	dpA = [7][]ratio{
		{},
		{{1, 5}},
		{{3, 40}, {9, 40}},
		{{44, 45}, {-56, 15}, {32, 9}},
		{{19372, 6561}, {-25360, 2187}, {64448, 6561}, {-212, 729}},
		{{9017, 3168}, {-355, 33}, {46732, 5247}, {49, 176}, {-5103, 18656}},
		{{35, 384}, {0, 1}, {500, 1113}, {125, 192}, {-2187, 6784}, {11, 84}},
	}

	dpB = [7]ratio{{35, 384}, {0, 1}, {500, 1113}, {125, 192}, {-2187, 6784}, {11, 84}, {0, 1}}

	// fourth-order embedded weights
	dpBhat = [7]ratio{{5179, 57600}, {0, 1}, {7571, 16695}, {393, 640}, {-92097, 339200}, {187, 2100}, {1, 40}}
)

// DormandPrince is the embedded Runge-Kutta 5(4) pair. The fifth-order
// solution is propagated; the difference to the fourth-order solution is
// the local error estimate.
type DormandPrince[T dynamo.Scalar] struct {
	dim     int
	k       [7]dynamo.State[T]
	scratch dynamo.State[T]
	errEst  dynamo.State[T]

	a [7][]T
	b [7]T
	e [7]T
	c [7]T
}

func NewDormandPrince[T dynamo.Scalar](dim int) (*DormandPrince[T], error) {
	if dim <= 0 {
		return nil, &dynamo.DimensionError{What: "dopri scratch", Want: 1, Got: dim}
	}
	dp := &DormandPrince[T]{
		dim:     dim,
		scratch: make(dynamo.State[T], dim),
		errEst:  make(dynamo.State[T], dim),
	}
	for i := range dp.k {
		dp.k[i] = make(dynamo.State[T], dim)
	}

	var firstErr error
	conv := func(r ratio) T {
		v, err := dynamo.Ratio[T](r.n, r.d)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	}
	for i := 0; i < 7; i++ {
		dp.c[i] = conv(dpC[i])
		dp.a[i] = make([]T, len(dpA[i]))
		for j, r := range dpA[i] {
			dp.a[i][j] = conv(r)
		}
		dp.b[i] = conv(dpB[i])
		dp.e[i] = dp.b[i] - conv(dpBhat[i])
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return dp, nil
}

func (d *DormandPrince[T]) Order() int { return 5 }

func (d *DormandPrince[T]) Step(eq dynamo.Equation[T], t T, x dynamo.State[T], dt T) (dynamo.State[T], error) {
	next, _, err := d.StepWithError(eq, t, x, dt)
	return next, err
}

// StepWithError returns the fifth-order state and the per-component
// local error. errEst is scratch and is overwritten by the next call.
func (d *DormandPrince[T]) StepWithError(eq dynamo.Equation[T], t T, x dynamo.State[T], dt T) (dynamo.State[T], dynamo.State[T], error) {
	if err := checkDims(d.dim, eq, x); err != nil {
		return nil, nil, err
	}
	n := d.dim

	eq.Evaluate(t, x, d.k[0])
	for s := 1; s < 6; s++ {
		for i := 0; i < n; i++ {
			var acc T
			for j, a := range d.a[s] {
				acc += a * d.k[j][i]
			}
			d.scratch[i] = x[i] + dt*acc
		}
		eq.Evaluate(t+d.c[s]*dt, d.scratch, d.k[s])
	}

	next := make(dynamo.State[T], n)
	for i := 0; i < n; i++ {
		var acc T
		for j := 0; j < 6; j++ {
			acc += d.b[j] * d.k[j][i]
		}
		next[i] = x[i] + dt*acc
	}

	eq.Evaluate(t+dt, next, d.k[6])

	for i := 0; i < n; i++ {
		var acc T
		for j := 0; j < 7; j++ {
			acc += d.e[j] * d.k[j][i]
		}
		d.errEst[i] = dt * acc
	}

	return next, d.errEst, nil
}
