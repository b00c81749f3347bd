// Package metrics provides observers that summarize a trajectory while
// it is being integrated.
package metrics

import "github.com/san-kum/odekit/internal/dynamo"

// Metric is an observer that reduces the accepted points to one number.
type Metric[T dynamo.Scalar] interface {
	dynamo.Observer[T]
	Name() string
	Value() float64
	Reset()
}

// Collect returns the current value of every metric keyed by name.
func Collect[T dynamo.Scalar](ms ...Metric[T]) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
