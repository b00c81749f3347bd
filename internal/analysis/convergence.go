package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/sim"
)

// Study holds errors measured at decreasing step sizes.
type Study struct {
	Steps  []float64
	Errors []float64
	// Ratios[i] is Errors[i]/Errors[i+1].
	Ratios []float64
	// Order is the slope of log(error) against log(dt). NaN when fewer
	// than two errors are positive.
	Order float64
}

// Build returns a fresh solver for the given step size.
type Build[T dynamo.Scalar] func(dt T) (*sim.Solver[T], error)

// Convergence integrates eq with dt0, dt0/2, ... (levels runs) and
// records the maximum absolute error against the closed form.
func Convergence[T dynamo.Scalar](ctx context.Context, eq dynamo.Equation[T], build Build[T], dt0 T, levels int) (Study, error) {
	if levels < 2 {
		return Study{}, fmt.Errorf("%w: need at least 2 levels, got %d", dynamo.ErrConfiguration, levels)
	}
	if _, ok := eq.(dynamo.ExactSolver[T]); !ok {
		return Study{}, fmt.Errorf("%w: equation has no closed-form solution", dynamo.ErrConfiguration)
	}

	var st Study
	dt := dt0
	for i := 0; i < levels; i++ {
		s, err := build(dt)
		if err != nil {
			return st, fmt.Errorf("level %d: %w", i, err)
		}
		if err := s.IntegrateContext(ctx, eq); err != nil {
			return st, fmt.Errorf("level %d (dt=%g): %w", i, float64(dt), err)
		}
		e, _, err := s.MaxAbsoluteError()
		if err != nil {
			return st, err
		}
		st.Steps = append(st.Steps, float64(dt))
		st.Errors = append(st.Errors, float64(e))
		dt /= 2
	}
	st.fit()
	return st, nil
}

// LocalError takes one step of each size from the exact state at t=0
// and compares it with the exact state at t=dt.
func LocalError[T dynamo.Scalar](eq dynamo.Equation[T], stepper dynamo.Stepper[T], steps []T) (Study, error) {
	exact, ok := eq.(dynamo.ExactSolver[T])
	if !ok {
		return Study{}, fmt.Errorf("%w: equation has no closed-form solution", dynamo.ErrConfiguration)
	}
	x0, ok := exact.ExactSolution(0)
	if !ok {
		return Study{}, fmt.Errorf("%w: no closed form at t=0", dynamo.ErrConfiguration)
	}

	var st Study
	for _, dt := range steps {
		next, err := stepper.Step(eq, 0, x0, dt)
		if err != nil {
			return st, err
		}
		ref, ok := exact.ExactSolution(dt)
		if !ok {
			return st, fmt.Errorf("%w: no closed form at t=%g", dynamo.ErrConfiguration, float64(dt))
		}
		st.Steps = append(st.Steps, float64(dt))
		st.Errors = append(st.Errors, float64(next.Sub(ref).MaxAbs()))
	}
	st.fit()
	return st, nil
}

func (st *Study) fit() {
	st.Ratios = st.Ratios[:0]
	for i := 1; i < len(st.Errors); i++ {
		st.Ratios = append(st.Ratios, st.Errors[i-1]/st.Errors[i])
	}

	var xs, ys []float64
	for i, e := range st.Errors {
		if e > 0 && !math.IsInf(e, 0) {
			xs = append(xs, math.Log(st.Steps[i]))
			ys = append(ys, math.Log(e))
		}
	}
	if len(xs) < 2 {
		st.Order = math.NaN()
		return
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	st.Order = slope
}
