// Package dense builds continuous interpolants inside accepted steps.
package dense

import (
	"github.com/san-kum/odekit/internal/dynamo"
)

// Hermite is the cubic Hermite interpolant through (t0, x0, f0) and
// (t1, x1, f1), where f is the derivative at each end. It reproduces
// cubic polynomials exactly and carries the O(h⁴) error of the data it
// was built from.
type Hermite[T dynamo.Scalar] struct {
	t0, t1 T
	x0, x1 dynamo.State[T]
	f0, f1 dynamo.State[T]
}

// NewHermite copies the endpoint data.
func NewHermite[T dynamo.Scalar](t0 T, x0, f0 dynamo.State[T], t1 T, x1, f1 dynamo.State[T]) (*Hermite[T], error) {
	n := len(x0)
	for what, s := range map[string]dynamo.State[T]{"x1": x1, "f0": f0, "f1": f1} {
		if err := dynamo.CheckDim(what, n, len(s)); err != nil {
			return nil, err
		}
	}
	h := &Hermite[T]{}
	h.reset(n)
	h.set(t0, x0, f0, t1, x1, f1)
	return h, nil
}

func (h *Hermite[T]) reset(n int) {
	h.x0 = make(dynamo.State[T], n)
	h.x1 = make(dynamo.State[T], n)
	h.f0 = make(dynamo.State[T], n)
	h.f1 = make(dynamo.State[T], n)
}

func (h *Hermite[T]) set(t0 T, x0, f0 dynamo.State[T], t1 T, x1, f1 dynamo.State[T]) {
	h.t0, h.t1 = t0, t1
	copy(h.x0, x0)
	copy(h.x1, x1)
	copy(h.f0, f0)
	copy(h.f1, f1)
}

func (h *Hermite[T]) ValidRange() (T, T) { return h.t0, h.t1 }

func (h *Hermite[T]) Evaluate(t T) (dynamo.State[T], error) {
	out := make(dynamo.State[T], len(h.x0))
	if err := h.EvaluateInto(t, out); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateInto writes the interpolated state into dst.
func (h *Hermite[T]) EvaluateInto(t T, dst dynamo.State[T]) error {
	lo, hi := h.t0, h.t1
	if lo > hi {
		lo, hi = hi, lo
	}
	if t < lo || t > hi || t != t {
		return &dynamo.RangeError{T: float64(t), Start: float64(h.t0), End: float64(h.t1)}
	}
	if err := dynamo.CheckDim("dense output", len(h.x0), len(dst)); err != nil {
		return err
	}

	dt := h.t1 - h.t0
	if dt == 0 {
		copy(dst, h.x0)
		return nil
	}
	s := (t - h.t0) / dt
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	for i := range dst {
		dst[i] = h00*h.x0[i] + h10*dt*h.f0[i] + h01*h.x1[i] + h11*dt*h.f1[i]
	}
	return nil
}
