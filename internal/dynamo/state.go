package dynamo

import "math"

// State is a fixed-length state vector.
type State[T Scalar] []T

// NewState returns a zeroed state of dimension n.
func NewState[T Scalar](n int) State[T] {
	return make(State[T], n)
}

// StateOf converts float64 values into a State of T.
func StateOf[T Scalar](vals ...float64) State[T] {
	s := make(State[T], len(vals))
	for i, v := range vals {
		s[i] = T(v)
	}
	return s
}

func (s State[T]) Clone() State[T] {
	if s == nil {
		return nil
	}
	c := make(State[T], len(s))
	copy(c, s)
	return c
}

func (s State[T]) Dim() int { return len(s) }

func (s State[T]) IsValid() bool {
	for _, v := range s {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (s State[T]) Norm() T {
	var sum T
	for _, v := range s {
		sum += v * v
	}
	return T(math.Sqrt(float64(sum)))
}

// MaxAbs is the infinity norm.
func (s State[T]) MaxAbs() T {
	var m T
	for _, v := range s {
		if a := Abs(v); a > m {
			m = a
		}
	}
	return m
}

// Sub returns s - other. Both must have the same length.
func (s State[T]) Sub(other State[T]) State[T] {
	result := make(State[T], len(s))
	for i := range s {
		result[i] = s[i] - other[i]
	}
	return result
}

// Float64 widens s for reporting and storage.
func (s State[T]) Float64() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
