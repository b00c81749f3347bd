package control

import (
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// PI is a proportional-integral step-size controller (Gustafsson).
//
// On acceptance the factor is Safety·est^(-Alpha)·prev^(Beta), where prev
// is the estimate of the previous accepted step. A rejected step is
// retried with the elementary factor, and the step following a rejection
// may not grow. Factors are clamped to [MinScale, MaxScale].
type PI[T dynamo.Scalar] struct {
	Tolerance[T]
	scaling
	Alpha float64
	Beta  float64
	Order int

	prevErr  float64
	rejected bool
}

// NewPI uses Alpha = 0.7/(order+1) and Beta = 0.4/(order+1).
func NewPI[T dynamo.Scalar](atol, rtol T, order int) (*PI[T], error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: order %d", dynamo.ErrConfiguration, order)
	}
	k := float64(order + 1)
	c := &PI[T]{
		Tolerance: Tolerance[T]{Atol: atol, Rtol: rtol},
		scaling:   defaultScaling(),
		Alpha:     0.7 / k,
		Beta:      0.4 / k,
		Order:     order,
		prevErr:   1,
	}
	if err := c.Tolerance.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WithScaling overrides the safety factor and the factor bounds.
func (c *PI[T]) WithScaling(safety, minScale, maxScale float64) (*PI[T], error) {
	c.scaling = scaling{Safety: safety, MinScale: minScale, MaxScale: maxScale}
	if err := c.scaling.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *PI[T]) AdjustStep(est, dt T) (T, bool) {
	e := float64(est)

	if !(e <= 1) {
		f := c.MinScale
		if e > 0 && !math.IsInf(e, 1) {
			f = c.clamp(c.Safety * math.Pow(e, -1/float64(c.Order+1)))
		}
		c.rejected = true
		return dt * T(math.Min(f, 1)), false
	}

	var f float64
	if e == 0 {
		f = c.MaxScale
	} else {
		f = c.clamp(c.Safety * math.Pow(e, -c.Alpha) * math.Pow(c.prevErr, c.Beta))
	}
	if c.rejected {
		f = math.Min(f, 1)
		c.rejected = false
	}
	c.prevErr = math.Max(e, 1e-4)
	return dt * T(f), true
}

// Reset clears the error memory.
func (c *PI[T]) Reset() {
	c.prevErr = 1
	c.rejected = false
}

// GetParams returns the tunable gains.
func (c *PI[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha":  c.Alpha,
		"beta":   c.Beta,
		"safety": c.Safety,
	}
}

// SetParam adjusts a gain.
func (c *PI[T]) SetParam(name string, value float64) error {
	switch name {
	case "alpha":
		c.Alpha = value
	case "beta":
		c.Beta = value
	case "safety":
		c.Safety = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
