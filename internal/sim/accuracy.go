package sim

import (
	"fmt"

	"github.com/san-kum/odekit/internal/dynamo"
)

type errorConfig struct {
	components []int
}

// ErrorOption configures MaxAbsoluteError.
type ErrorOption func(*errorConfig)

// TrackComponent restricts the comparison to component i. Repeat it to
// track several components. Without it every component is compared.
func TrackComponent(i int) ErrorOption {
	return func(c *errorConfig) { c.components = append(c.components, i) }
}

// MaxAbsoluteError returns max over samples of the infinity norm of
// states[k] - ref[k]. Nil reference entries are skipped. The two slices
// must be index aligned.
func MaxAbsoluteError[T dynamo.Scalar](states, ref []dynamo.State[T], opts ...ErrorOption) (T, error) {
	if len(states) != len(ref) {
		return 0, &dynamo.LengthError{Want: len(states), Got: len(ref)}
	}
	var cfg errorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var worst T
	for k, x := range states {
		r := ref[k]
		if r == nil {
			continue
		}
		if err := dynamo.CheckDim(fmt.Sprintf("reference sample %d", k), len(x), len(r)); err != nil {
			return 0, err
		}

		if len(cfg.components) == 0 {
			for i := range x {
				if d := dynamo.Abs(x[i] - r[i]); d > worst {
					worst = d
				}
			}
			continue
		}
		for _, i := range cfg.components {
			if i < 0 || i >= len(x) {
				return 0, fmt.Errorf("%w: component %d of %d", dynamo.ErrDimensionMismatch, i, len(x))
			}
			if d := dynamo.Abs(x[i] - r[i]); d > worst {
				worst = d
			}
		}
	}
	return worst, nil
}
