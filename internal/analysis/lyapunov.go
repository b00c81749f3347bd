package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Two trajectories start perturbation apart in component 0 and are
// advanced with the same stepper. After each step λ accumulates
// ln(|δx|/δ0) and the perturbed trajectory is pulled back to distance δ0.
func LyapunovExponent[T dynamo.Scalar](ctx context.Context, eq dynamo.Equation[T], stepper dynamo.Stepper[T], x0 dynamo.State[T], dt, duration T, perturbation float64) (float64, error) {
	if len(x0) == 0 {
		return 0, fmt.Errorf("%w: empty initial state", dynamo.ErrConfiguration)
	}
	xp := x0.Clone()
	xp[0] += T(perturbation)
	return separation(ctx, eq, stepper, x0, xp, dt, duration, perturbation)
}

// LyapunovSpectrum perturbs each component in turn. The values are
// separation exponents along the coordinate axes, not a Gram-Schmidt
// spectrum.
func LyapunovSpectrum[T dynamo.Scalar](ctx context.Context, eq dynamo.Equation[T], stepper dynamo.Stepper[T], x0 dynamo.State[T], dt, duration T, perturbation float64) ([]float64, error) {
	spectrum := make([]float64, len(x0))
	for i := range x0 {
		xp := x0.Clone()
		xp[i] += T(perturbation)
		v, err := separation(ctx, eq, stepper, x0, xp, dt, duration, perturbation)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		spectrum[i] = v
	}
	return spectrum, nil
}

func separation[T dynamo.Scalar](ctx context.Context, eq dynamo.Equation[T], stepper dynamo.Stepper[T], x0, x0p dynamo.State[T], dt, duration T, d0 float64) (float64, error) {
	if !(dt > 0) || !(duration > 0) || !(d0 > 0) {
		return 0, fmt.Errorf("%w: dt=%g duration=%g perturbation=%g", dynamo.ErrConfiguration, float64(dt), float64(duration), d0)
	}

	x, xp := x0.Clone(), x0p.Clone()
	var t T
	sumLog := 0.0
	count := 0

	for step := 0; t < duration; step++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		var err error
		if x, err = stepper.Step(eq, t, x, dt); err != nil {
			return 0, err
		}
		if xp, err = stepper.Step(eq, t, xp, dt); err != nil {
			return 0, err
		}
		t += dt
		if !x.IsValid() || !xp.IsValid() {
			return 0, &dynamo.SimulationError{Step: step, Time: float64(t), Dt: float64(dt), Wrapped: dynamo.ErrInvalidState}
		}

		sep := float64(xp.Sub(x).Norm())
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			count++
			scale := T(d0 / sep)
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * float64(dt)), nil
}
