package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/logging"
)

func (s *Solver[T]) runAdaptive(ctx context.Context, eq dynamo.Equation[T], exact dynamo.ExactSolver[T], x dynamo.State[T], log logging.Logger) error {
	var t T
	dt := s.clampStep(s.stepSize)
	streak := 0

	for step := 0; t < s.endTime; {
		if err := ctx.Err(); err != nil {
			return s.fail(step, t, dt, err)
		}
		if step >= s.maxSteps {
			return s.fail(step, t, dt, fmt.Errorf("%w: %d steps without reaching t=%g", dynamo.ErrNonConvergence, step, float64(s.endTime)))
		}

		h := dt
		last := false
		if t+h*1.01 >= s.endTime {
			h = s.endTime - t
			last = true
		}

		next, errEst, err := s.attempt(eq, t, x, h)
		if err != nil {
			return s.fail(step, t, h, err)
		}

		est := s.errorNorm(errEst, x, next)
		proposed, accepted := s.controller.AdjustStep(est, h)
		if !positive(proposed) {
			return s.fail(step, t, h, fmt.Errorf("%w: controller proposed dt=%g", dynamo.ErrNonConvergence, float64(proposed)))
		}

		if !accepted {
			s.stats.Rejected++
			streak++
			log.Debug("step rejected", "step", step, "t", float64(t), "dt", float64(h), "err", float64(est))
			if streak > s.maxRejections {
				return s.fail(step, t, h, fmt.Errorf("%w: %d consecutive rejections", dynamo.ErrNonConvergence, streak))
			}
			if s.minDt > 0 && proposed < s.minDt {
				switch {
				case last && h <= s.minDt:
					// The landing step is already under the floor.
					dt = proposed
					continue
				case h <= s.minDt:
					return s.fail(step, t, h, dynamo.ErrStepTooSmall)
				}
				proposed = s.minDt
			}
			dt = s.clampStep(proposed)
			continue
		}

		if !next.IsValid() {
			return s.fail(step, t, h, dynamo.ErrInvalidState)
		}
		streak = 0

		tNext := t + h
		if last {
			tNext = s.endTime
		}
		stop, err := s.accept(eq, exact, step, t, x, tNext, next)
		if err != nil {
			return s.fail(step, tNext, h, err)
		}
		t, x = tNext, next
		dt = s.clampStep(proposed)
		step++
		if stop {
			break
		}
	}
	return nil
}

// attempt takes one tentative step and returns its local error vector.
// Steppers without an embedded estimate are checked by step doubling:
// the two half steps are kept and their difference to the full step,
// divided by 2^p - 1, is the error of the kept solution.
func (s *Solver[T]) attempt(eq dynamo.Equation[T], t T, x dynamo.State[T], h T) (dynamo.State[T], dynamo.State[T], error) {
	if ee, ok := s.stepper.(dynamo.ErrorEstimator[T]); ok {
		return ee.StepWithError(eq, t, x, h)
	}

	full, err := s.stepper.Step(eq, t, x, h)
	if err != nil {
		return nil, nil, err
	}
	half := h / 2
	mid, err := s.stepper.Step(eq, t, x, half)
	if err != nil {
		return nil, nil, err
	}
	fine, err := s.stepper.Step(eq, t+half, mid, half)
	if err != nil {
		return nil, nil, err
	}

	order := 4
	if o, ok := s.stepper.(dynamo.Orderer); ok {
		order = o.Order()
	}
	scale := T(1 / (math.Pow(2, float64(order)) - 1))
	for i := range s.errBuf {
		s.errBuf[i] = (fine[i] - full[i]) * scale
	}
	return fine, s.errBuf, nil
}

func (s *Solver[T]) errorNorm(errEst, x, next dynamo.State[T]) T {
	if n, ok := s.controller.(dynamo.ErrorNormer[T]); ok {
		return n.ErrorNorm(errEst, x, next)
	}
	return errEst.MaxAbs()
}

func (s *Solver[T]) clampStep(dt T) T {
	if s.maxDt > 0 && dt > s.maxDt {
		dt = s.maxDt
	}
	if s.minDt > 0 && dt < s.minDt {
		dt = s.minDt
	}
	return dt
}
