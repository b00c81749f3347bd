package metrics

import (
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// Stability is the fraction of points whose components all stay within
// threshold. Non-finite components always count as violations.
type Stability[T dynamo.Scalar] struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability[T dynamo.Scalar](threshold float64) *Stability[T] {
	return &Stability[T]{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability[T]) Name() string {
	return s.name
}

func (s *Stability[T]) OnStep(_ T, x dynamo.State[T]) {
	s.samples++
	for _, val := range x {
		v := math.Abs(float64(val))
		if !(v <= s.threshold) {
			s.violations++
			break
		}
	}
}

func (s *Stability[T]) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability[T]) Reset() {
	s.violations = 0
	s.samples = 0
}
