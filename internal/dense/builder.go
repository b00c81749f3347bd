package dense

import "github.com/san-kum/odekit/internal/dynamo"

// HermiteBuilder rebuilds one Hermite interpolant per accepted step.
//
// When a step starts where the previous one ended, the end derivative is
// reused, so steady integration costs one extra evaluation per step.
// The interpolant returned by Build is overwritten by the next Build.
type HermiteBuilder[T dynamo.Scalar] struct {
	h      Hermite[T]
	fStart dynamo.State[T]
	fEnd   dynamo.State[T]
	lastT  T
	lastX  dynamo.State[T]
	primed bool
	evals  int
}

func NewHermiteBuilder[T dynamo.Scalar](dim int) (*HermiteBuilder[T], error) {
	if dim <= 0 {
		return nil, &dynamo.DimensionError{What: "dense output", Want: 1, Got: dim}
	}
	b := &HermiteBuilder[T]{
		fStart: make(dynamo.State[T], dim),
		fEnd:   make(dynamo.State[T], dim),
		lastX:  make(dynamo.State[T], dim),
	}
	b.h.reset(dim)
	return b, nil
}

func (b *HermiteBuilder[T]) Build(eq dynamo.Equation[T], t0 T, x0 dynamo.State[T], t1 T, x1 dynamo.State[T]) (dynamo.DenseOutput[T], error) {
	n := len(b.fStart)
	if err := dynamo.CheckDim("equation", n, eq.Dimension()); err != nil {
		return nil, err
	}
	if err := dynamo.CheckDim("x0", n, len(x0)); err != nil {
		return nil, err
	}
	if err := dynamo.CheckDim("x1", n, len(x1)); err != nil {
		return nil, err
	}

	if b.primed && b.lastT == t0 && equal(b.lastX, x0) {
		b.fStart, b.fEnd = b.fEnd, b.fStart
	} else {
		eq.Evaluate(t0, x0, b.fStart)
		b.evals++
	}
	eq.Evaluate(t1, x1, b.fEnd)
	b.evals++

	b.h.set(t0, x0, b.fStart, t1, x1, b.fEnd)
	b.lastT = t1
	copy(b.lastX, x1)
	b.primed = true
	return &b.h, nil
}

// Evaluations reports how many right-hand side calls Build has made.
func (b *HermiteBuilder[T]) Evaluations() int { return b.evals }

// Reset forgets the cached end derivative.
func (b *HermiteBuilder[T]) Reset() {
	b.primed = false
	b.evals = 0
}

func equal[T dynamo.Scalar](a, b dynamo.State[T]) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
