package control

import (
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// Standard is the elementary step-size controller.
//
// A step is accepted iff the estimate is at most 1. The next step is
// dt·Safety·est^(-1/(Order+1)), clamped to [MinScale, MaxScale]; after a
// rejection the factor is additionally capped at 1.
type Standard[T dynamo.Scalar] struct {
	Tolerance[T]
	scaling
	Order int
}

// NewStandard builds a controller for a method of the given order.
func NewStandard[T dynamo.Scalar](atol, rtol T, order int) (*Standard[T], error) {
	c := &Standard[T]{
		Tolerance: Tolerance[T]{Atol: atol, Rtol: rtol},
		scaling:   defaultScaling(),
		Order:     order,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WithScaling overrides the safety factor and the factor bounds.
func (c *Standard[T]) WithScaling(safety, minScale, maxScale float64) (*Standard[T], error) {
	c.scaling = scaling{Safety: safety, MinScale: minScale, MaxScale: maxScale}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Standard[T]) Validate() error {
	if c.Order < 1 {
		return fmt.Errorf("%w: order %d", dynamo.ErrConfiguration, c.Order)
	}
	if err := c.Tolerance.validate(); err != nil {
		return err
	}
	return c.scaling.validate()
}

func (c *Standard[T]) AdjustStep(est, dt T) (T, bool) {
	e := float64(est)
	accepted := e <= 1

	var f float64
	if e == 0 {
		f = c.MaxScale
	} else {
		f = c.Safety * math.Pow(e, -1/float64(c.Order+1))
	}
	f = c.clamp(f)
	if !accepted {
		f = math.Min(f, 1)
	}
	return dt * T(f), accepted
}
