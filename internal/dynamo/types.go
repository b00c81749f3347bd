package dynamo

// Equation is the right-hand side of dX/dt = f(t, X).
//
// Evaluate writes f(t, x) into dx. It must be a pure function of (t, x):
// multi-stage methods call it at perturbed states within one step.
// len(x) == len(dx) == Dimension().
type Equation[T Scalar] interface {
	Evaluate(t T, x State[T], dx State[T])
	Dimension() int
}

// ExactSolver is implemented by equations with a closed-form solution.
// ok is false when no closed form exists at t; that is not an error.
type ExactSolver[T Scalar] interface {
	ExactSolution(t T) (x State[T], ok bool)
}

// Hamiltonian is implemented by conservative equations.
type Hamiltonian[T Scalar] interface {
	Energy(x State[T]) T
}

// Configurable exposes named equation parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Stepper advances x across [t, t+dt] under eq and returns a new state.
// Implementations may keep scratch buffers between calls, so a Stepper
// serves one integration at a time.
type Stepper[T Scalar] interface {
	Step(eq Equation[T], t T, x State[T], dt T) (State[T], error)
}

// Orderer reports the order of accuracy of a method.
type Orderer interface {
	Order() int
}

// ErrorEstimator is a Stepper with an embedded local error estimate.
// errEst holds one entry per state component and is owned by the stepper.
type ErrorEstimator[T Scalar] interface {
	Stepper[T]
	StepWithError(eq Equation[T], t T, x State[T], dt T) (next State[T], errEst State[T], err error)
}

// StepSizeController decides whether an attempted step is accepted and
// which step size to try next. Implementations must bound their scaling
// from both sides: next is never zero and never grows without limit.
type StepSizeController[T Scalar] interface {
	AdjustStep(errorEstimate T, currentDt T) (next T, accepted bool)
}

// ErrorNormer reduces a local error vector to the scalar a controller
// consumes. Controllers that carry tolerances implement it.
type ErrorNormer[T Scalar] interface {
	ErrorNorm(errEst, x, next State[T]) T
}

// DenseOutput interpolates the solution inside one completed step.
// Evaluate outside ValidRange returns an error wrapping ErrOutOfRange.
type DenseOutput[T Scalar] interface {
	Evaluate(t T) (State[T], error)
	ValidRange() (start, end T)
}

// DenseBuilder rebuilds a DenseOutput for each accepted step. The
// returned value is only valid until the next Build.
type DenseBuilder[T Scalar] interface {
	Build(eq Equation[T], t0 T, x0 State[T], t1 T, x1 State[T]) (DenseOutput[T], error)
}

// EventDetector is evaluated after each accepted step. Detect returns
// true on the step where the condition is crossed; EventTime reports the
// crossing, with ok false when nothing has been detected.
type EventDetector[T Scalar] interface {
	Detect(t T, x State[T]) bool
	EventTime() (t T, ok bool)
}

// Localizer refines a detected event time against the dense output of
// the step that produced it.
type Localizer[T Scalar] interface {
	Localize(d DenseOutput[T]) error
}

// Terminator is implemented by detectors that end the integration.
type Terminator interface {
	Terminal() bool
}

// Observer receives the initial point and every accepted point.
type Observer[T Scalar] interface {
	OnStep(t T, x State[T])
}
