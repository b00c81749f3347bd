package control

import (
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

const (
	DefaultSafety   = 0.9
	DefaultMinScale = 0.2
	DefaultMaxScale = 5.0
)

// Tolerance is the absolute/relative tolerance pair shared by controllers.
type Tolerance[T dynamo.Scalar] struct {
	Atol T
	Rtol T
}

func (tol Tolerance[T]) validate() error {
	if tol.Atol < 0 || tol.Rtol < 0 || (tol.Atol == 0 && tol.Rtol == 0) {
		return fmt.Errorf("%w: tolerances atol=%g rtol=%g", dynamo.ErrConfiguration, float64(tol.Atol), float64(tol.Rtol))
	}
	return nil
}

// ErrorNorm is max_i |e_i| / (Atol + Rtol·max(|x_i|, |next_i|)).
func (tol Tolerance[T]) ErrorNorm(errEst, x, next dynamo.State[T]) T {
	var m T
	for i, e := range errEst {
		mag := dynamo.Abs(x[i])
		if a := dynamo.Abs(next[i]); a > mag {
			mag = a
		}
		r := dynamo.Abs(e) / (tol.Atol + tol.Rtol*mag)
		if r > m || r != r {
			m = r
		}
	}
	return m
}

// scaling holds the bounds every controller applies to its step factor.
type scaling struct {
	Safety   float64
	MinScale float64
	MaxScale float64
}

func defaultScaling() scaling {
	return scaling{Safety: DefaultSafety, MinScale: DefaultMinScale, MaxScale: DefaultMaxScale}
}

func (s scaling) validate() error {
	if s.Safety <= 0 || s.Safety > 1 || s.MinScale <= 0 || s.MinScale >= 1 || s.MaxScale <= 1 {
		return fmt.Errorf("%w: safety=%g min=%g max=%g", dynamo.ErrConfiguration, s.Safety, s.MinScale, s.MaxScale)
	}
	return nil
}

// clamp bounds f to [MinScale, MaxScale]. NaN maps to MinScale.
func (s scaling) clamp(f float64) float64 {
	if !(f >= s.MinScale) {
		return s.MinScale
	}
	return math.Min(f, s.MaxScale)
}
