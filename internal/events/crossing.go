// Package events detects sign changes of user conditions along a
// trajectory and localizes them inside the step where they occur.
package events

import (
	"strings"

	"github.com/san-kum/odekit/internal/dynamo"
)

// Direction selects which sign changes count as an event.
type Direction int

const (
	Either Direction = iota
	Rising
	Falling
)

func (d Direction) String() string {
	switch d {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return "either"
	}
}

// ParseDirection maps "rising", "falling" and anything else to Either.
func ParseDirection(s string) Direction {
	switch strings.ToLower(s) {
	case "rising", "up":
		return Rising
	case "falling", "down":
		return Falling
	default:
		return Either
	}
}

const maxBisections = 100

// Crossing fires when G(t, x) changes sign between two consecutive
// accepted samples. The first sample only primes the detector. The
// reported time is a linear estimate until Localize refines it against
// dense output.
type Crossing[T dynamo.Scalar] struct {
	Name string
	G    func(t T, x dynamo.State[T]) T
	Dir  Direction
	Tol  T

	terminal bool

	primed       bool
	prevT, prevG T
	loT, hiT     T
	loG          T
	pending      bool

	eventT   T
	hasEvent bool
	count    int
}

type Option[T dynamo.Scalar] func(*Crossing[T])

// Terminal makes the detector stop the integration when it fires.
func Terminal[T dynamo.Scalar]() Option[T] {
	return func(c *Crossing[T]) { c.terminal = true }
}

// WithTolerance sets the bracket width at which localization stops.
func WithTolerance[T dynamo.Scalar](tol T) Option[T] {
	return func(c *Crossing[T]) { c.Tol = tol }
}

func WithName[T dynamo.Scalar](name string) Option[T] {
	return func(c *Crossing[T]) { c.Name = name }
}

func NewCrossing[T dynamo.Scalar](g func(t T, x dynamo.State[T]) T, dir Direction, opts ...Option[T]) *Crossing[T] {
	c := &Crossing[T]{G: g, Dir: dir, Tol: 1e-10, Name: "crossing"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold fires when x[component] crosses level.
func Threshold[T dynamo.Scalar](component int, level T, dir Direction, opts ...Option[T]) *Crossing[T] {
	g := func(_ T, x dynamo.State[T]) T {
		if component < 0 || component >= len(x) {
			return 0
		}
		return x[component] - level
	}
	return NewCrossing(g, dir, opts...)
}

func (c *Crossing[T]) crossed(g0, g1 T) bool {
	switch c.Dir {
	case Rising:
		return g0 < 0 && g1 >= 0
	case Falling:
		return g0 > 0 && g1 <= 0
	default:
		return (g0 < 0 && g1 >= 0) || (g0 > 0 && g1 <= 0)
	}
}

func (c *Crossing[T]) Detect(t T, x dynamo.State[T]) bool {
	g := c.G(t, x)
	if !c.primed {
		c.prevT, c.prevG, c.primed = t, g, true
		return false
	}

	hit := c.crossed(c.prevG, g)
	if hit {
		c.loT, c.hiT, c.loG = c.prevT, t, c.prevG
		c.eventT = c.prevT
		if g != c.prevG {
			c.eventT = c.prevT + (t-c.prevT)*(-c.prevG)/(g-c.prevG)
		}
		c.hasEvent = true
		c.pending = true
		c.count++
	}
	c.prevT, c.prevG = t, g
	return hit
}

// Localize bisects the last detected bracket on the interpolant d.
func (c *Crossing[T]) Localize(d dynamo.DenseOutput[T]) error {
	if !c.pending {
		return nil
	}
	c.pending = false

	lo, hi, glo := c.loT, c.hiT, c.loG
	for i := 0; i < maxBisections && hi-lo > c.Tol; i++ {
		mid := lo + (hi-lo)/2
		x, err := d.Evaluate(mid)
		if err != nil {
			return err
		}
		gm := c.G(mid, x)
		if gm == 0 {
			lo, hi = mid, mid
			break
		}
		if (gm < 0) == (glo < 0) {
			lo, glo = mid, gm
		} else {
			hi = mid
		}
	}
	c.eventT = lo + (hi-lo)/2
	return nil
}

func (c *Crossing[T]) EventTime() (T, bool) {
	return c.eventT, c.hasEvent
}

func (c *Crossing[T]) Terminal() bool { return c.terminal }

// Count is the number of crossings detected since the last Reset.
func (c *Crossing[T]) Count() int { return c.count }

func (c *Crossing[T]) Reset() {
	c.primed = false
	c.pending = false
	c.hasEvent = false
	c.count = 0
	var zero T
	c.eventT = zero
}
