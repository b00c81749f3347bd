package dynamo

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Scalar is the floating-point type a trajectory is computed in.
type Scalar interface {
	constraints.Float
}

// maxFinite reports the largest finite magnitude T can hold.
func maxFinite[T Scalar]() float64 {
	probe := T(math.MaxFloat32)
	probe *= 2
	if math.IsInf(float64(probe), 0) {
		return math.MaxFloat32
	}
	return math.MaxFloat64
}

// FromFloat64 converts v to T. A finite v outside the range of T is an
// ErrLiteralConversion rather than a silent infinity.
func FromFloat64[T Scalar](v float64) (T, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxFinite[T]() {
		return 0, fmt.Errorf("%w: %g", ErrLiteralConversion, v)
	}
	return T(v), nil
}

// Ratio returns num/den evaluated in T. Both integers must be exactly
// representable in T; otherwise the constant would already be rounded
// before the division and ErrLiteralConversion is returned.
func Ratio[T Scalar](num, den int64) (T, error) {
	if den == 0 {
		return 0, fmt.Errorf("%w: %d/0", ErrLiteralConversion, num)
	}
	n, err := exactInt[T](num)
	if err != nil {
		return 0, err
	}
	d, err := exactInt[T](den)
	if err != nil {
		return 0, err
	}
	return n / d, nil
}

func exactInt[T Scalar](v int64) (T, error) {
	out := T(v)
	back := float64(out)
	if back < math.MinInt64 || back >= math.MaxInt64 || int64(back) != v {
		return 0, fmt.Errorf("%w: integer %d not exact", ErrLiteralConversion, v)
	}
	return out, nil
}

// Abs is math.Abs for any Scalar.
func Abs[T Scalar](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
