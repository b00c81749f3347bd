package sim

import (
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/logging"
)

const (
	DefaultMaxRejections = 50
	DefaultMaxSteps      = 1_000_000
)

type Option[T dynamo.Scalar] func(*Solver[T])

// WithController switches the solver to adaptive stepping.
func WithController[T dynamo.Scalar](c dynamo.StepSizeController[T]) Option[T] {
	return func(s *Solver[T]) { s.controller = c }
}

// WithDenseOutput rebuilds an interpolant after every accepted step.
func WithDenseOutput[T dynamo.Scalar](b dynamo.DenseBuilder[T]) Option[T] {
	return func(s *Solver[T]) { s.dense = b }
}

func WithEventDetector[T dynamo.Scalar](d dynamo.EventDetector[T]) Option[T] {
	return func(s *Solver[T]) { s.detectors = append(s.detectors, d) }
}

func WithObserver[T dynamo.Scalar](o dynamo.Observer[T]) Option[T] {
	return func(s *Solver[T]) { s.observers = append(s.observers, o) }
}

func WithLogger[T dynamo.Scalar](l logging.Logger) Option[T] {
	return func(s *Solver[T]) { s.logger = l }
}

// WithMaxRejections bounds the number of consecutive rejected attempts.
func WithMaxRejections[T dynamo.Scalar](n int) Option[T] {
	return func(s *Solver[T]) { s.maxRejections = n }
}

// WithMaxSteps bounds the accepted steps of an integration. A fixed-step
// solver needing more steps is rejected by New.
func WithMaxSteps[T dynamo.Scalar](n int) Option[T] {
	return func(s *Solver[T]) { s.maxSteps = n }
}

// WithStepBounds clamps adaptive step sizes. Zero disables a bound.
func WithStepBounds[T dynamo.Scalar](minDt, maxDt T) Option[T] {
	return func(s *Solver[T]) {
		s.minDt = minDt
		s.maxDt = maxDt
	}
}
