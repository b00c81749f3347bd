package sim

import "github.com/san-kum/odekit/internal/dynamo"

// Trajectory is a sequence of samples. Times[i] is the time of States[i].
type Trajectory[T dynamo.Scalar] struct {
	Times  []T
	States []dynamo.State[T]
}

func newTrajectory[T dynamo.Scalar](capacity int) Trajectory[T] {
	return Trajectory[T]{
		Times:  make([]T, 0, capacity),
		States: make([]dynamo.State[T], 0, capacity),
	}
}

func (tr *Trajectory[T]) append(t T, x dynamo.State[T]) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x)
}

func (tr Trajectory[T]) Len() int { return len(tr.Times) }

// Float64 widens the trajectory. Nil states stay nil.
func (tr Trajectory[T]) Float64() ([]float64, [][]float64) {
	times := make([]float64, len(tr.Times))
	for i, t := range tr.Times {
		times[i] = float64(t)
	}
	states := make([][]float64, len(tr.States))
	for i, s := range tr.States {
		if s != nil {
			states[i] = s.Float64()
		}
	}
	return times, states
}

// EventRecord is produced when a detector fires on an accepted step.
type EventRecord[T dynamo.Scalar] struct {
	Detector int
	Step     int
	Detected bool
	Time     T
	HasTime  bool
	Terminal bool
}

// Stats counts the work done by the last integration.
type Stats struct {
	Steps        int
	Rejected     int
	Evaluations  int
	LastStepSize float64
	MinStepSize  float64
	MaxStepSize  float64
}

func (s *Stats) observeStep(dt float64) {
	s.Steps++
	s.LastStepSize = dt
	if s.Steps == 1 || dt < s.MinStepSize {
		s.MinStepSize = dt
	}
	if dt > s.MaxStepSize {
		s.MaxStepSize = dt
	}
}

// countingEquation counts right-hand side evaluations made by a stepper.
type countingEquation[T dynamo.Scalar] struct {
	dynamo.Equation[T]
	n *int
}

func (c countingEquation[T]) Evaluate(t T, x, dx dynamo.State[T]) {
	*c.n++
	c.Equation.Evaluate(t, x, dx)
}
