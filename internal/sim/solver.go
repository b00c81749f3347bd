// Package sim drives a Stepper across a time span and records the
// resulting trajectory.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/logging"
)

// Solver integrates one equation from t=0 to the configured end time.
//
// Without a controller it takes exactly NumSteps() fixed steps. With a
// controller every attempt is error-checked and rejected attempts are
// retried with a smaller step. A Solver and its Stepper serve one
// integration at a time. Each Integrate resets the attached controller,
// dense builder and detectors; observers keep their state.
type Solver[T dynamo.Scalar] struct {
	stepSize T
	endTime  T
	numSteps int
	initial  dynamo.State[T]
	stepper  dynamo.Stepper[T]

	controller dynamo.StepSizeController[T]
	dense      dynamo.DenseBuilder[T]
	detectors  []dynamo.EventDetector[T]
	observers  []dynamo.Observer[T]
	logger     logging.Logger

	maxRejections int
	maxSteps      int
	minDt, maxDt  T

	traj      Trajectory[T]
	reference Trajectory[T]
	hasRef    bool
	events    []EventRecord[T]
	stats     Stats
	current   dynamo.DenseOutput[T]
	errBuf    dynamo.State[T]
}

// New validates the configuration. The nominal step count
// floor(endTime/stepSize) sizes the trajectory; it bounds the loop only
// in fixed-step mode.
func New[T dynamo.Scalar](stepSize, endTime T, x0 dynamo.State[T], stepper dynamo.Stepper[T], opts ...Option[T]) (*Solver[T], error) {
	if !positive(stepSize) {
		return nil, fmt.Errorf("%w: step size must be positive, got %g", dynamo.ErrConfiguration, float64(stepSize))
	}
	if !positive(endTime) {
		return nil, fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrConfiguration, float64(endTime))
	}
	if len(x0) == 0 {
		return nil, fmt.Errorf("%w: empty initial state", dynamo.ErrConfiguration)
	}
	if stepper == nil {
		return nil, fmt.Errorf("%w: nil stepper", dynamo.ErrConfiguration)
	}

	s := &Solver[T]{
		stepSize:      stepSize,
		endTime:       endTime,
		initial:       x0.Clone(),
		stepper:       stepper,
		logger:        logging.NoOp(),
		maxRejections: DefaultMaxRejections,
		maxSteps:      DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NoOp()
	}

	if s.maxRejections < 0 || s.maxSteps <= 0 {
		return nil, fmt.Errorf("%w: max rejections %d, max steps %d", dynamo.ErrConfiguration, s.maxRejections, s.maxSteps)
	}
	if s.minDt < 0 || s.maxDt < 0 || (s.maxDt > 0 && s.minDt > s.maxDt) {
		return nil, fmt.Errorf("%w: step bounds [%g, %g]", dynamo.ErrConfiguration, float64(s.minDt), float64(s.maxDt))
	}

	// Adaptive runs only use the count for sizing, so it saturates there.
	n := stepCount(stepSize, endTime)
	if s.controller == nil && n > float64(s.maxSteps) {
		return nil, fmt.Errorf("%w: dt=%g over %g needs %.3g steps, limit %d",
			dynamo.ErrConfiguration, float64(stepSize), float64(endTime), n, s.maxSteps)
	}
	s.numSteps = int(math.Min(n, float64(s.maxSteps)))
	return s, nil
}

func positive[T dynamo.Scalar](v T) bool {
	f := float64(v)
	return f > 0 && !math.IsInf(f, 0)
}

// stepCount is floor(end/dt). A quotient within a few ulps of T below an
// integer is taken as that integer, so 2.0/0.01 is 200.
func stepCount[T dynamo.Scalar](dt, end T) float64 {
	n := float64(end) / float64(dt)
	if r := math.Round(n); math.Abs(n-r) <= 8*epsilon[T]()*r {
		return r
	}
	return math.Floor(n)
}

// epsilon is the machine epsilon of T.
func epsilon[T dynamo.Scalar]() float64 {
	probe := 1 + 1e-10
	if float64(T(probe)) == 1 {
		return 0x1p-23
	}
	return 0x1p-52
}

func (s *Solver[T]) AddObserver(o dynamo.Observer[T]) { s.observers = append(s.observers, o) }

func (s *Solver[T]) AddEventDetector(d dynamo.EventDetector[T]) {
	s.detectors = append(s.detectors, d)
}

func (s *Solver[T]) NumSteps() int  { return s.numSteps }
func (s *Solver[T]) StepSize() T    { return s.stepSize }
func (s *Solver[T]) EndTime() T     { return s.endTime }
func (s *Solver[T]) Adaptive() bool { return s.controller != nil }

// Integrate runs the integration to completion.
func (s *Solver[T]) Integrate(eq dynamo.Equation[T]) error {
	return s.IntegrateContext(context.Background(), eq)
}

// IntegrateContext is Integrate with cancellation checked between steps.
// On error the samples accepted so far remain readable.
func (s *Solver[T]) IntegrateContext(ctx context.Context, eq dynamo.Equation[T]) error {
	dim := eq.Dimension()
	if err := dynamo.CheckDim("initial state", dim, len(s.initial)); err != nil {
		return err
	}
	s.reset(dim)

	exact, _ := eq.(dynamo.ExactSolver[T])
	counted := countingEquation[T]{Equation: eq, n: &s.stats.Evaluations}

	var t T
	x := s.initial.Clone()
	s.record(t, x, exact)
	for _, o := range s.observers {
		o.OnStep(t, x)
	}
	for _, d := range s.detectors {
		d.Detect(t, x)
	}

	log := s.logger.With("dim", dim, "adaptive", s.Adaptive())
	log.Info("integration started", "dt", float64(s.stepSize), "end", float64(s.endTime), "steps", s.numSteps)

	var err error
	if s.controller == nil {
		err = s.runFixed(ctx, counted, exact, x)
	} else {
		err = s.runAdaptive(ctx, counted, exact, x, log)
	}
	if err != nil {
		log.Warn("integration failed", "err", err, "samples", s.traj.Len())
		return err
	}

	log.Info("integration finished",
		"steps", s.stats.Steps,
		"rejected", s.stats.Rejected,
		"evaluations", s.stats.Evaluations,
		"events", len(s.events))
	return nil
}

// adaptiveCapacity bounds the preallocated samples of an adaptive run.
const adaptiveCapacity = 1024

type resetter interface {
	Reset()
}

func (s *Solver[T]) reset(dim int) {
	capacity := s.numSteps + 1
	if s.controller != nil {
		capacity = min(capacity, adaptiveCapacity)
	}
	s.traj = newTrajectory[T](capacity)
	s.reference = newTrajectory[T](capacity)
	s.hasRef = false
	s.events = nil
	s.stats = Stats{}
	s.current = nil
	s.errBuf = make(dynamo.State[T], dim)

	if r, ok := s.controller.(resetter); ok {
		r.Reset()
	}
	if r, ok := s.dense.(resetter); ok {
		r.Reset()
	}
	for _, d := range s.detectors {
		if r, ok := d.(resetter); ok {
			r.Reset()
		}
	}
}

func (s *Solver[T]) runFixed(ctx context.Context, eq dynamo.Equation[T], exact dynamo.ExactSolver[T], x dynamo.State[T]) error {
	var t T
	dt := s.stepSize
	for i := 0; i < s.numSteps; i++ {
		if err := ctx.Err(); err != nil {
			return s.fail(i, t, dt, err)
		}

		next, err := s.stepper.Step(eq, t, x, dt)
		if err != nil {
			return s.fail(i, t, dt, err)
		}
		if !next.IsValid() {
			return s.fail(i, t, dt, dynamo.ErrInvalidState)
		}

		tNext := t + dt
		stop, err := s.accept(eq, exact, i, t, x, tNext, next)
		if err != nil {
			return s.fail(i, tNext, dt, err)
		}
		t, x = tNext, next
		if stop {
			break
		}
	}
	return nil
}

// accept records an accepted step and runs the per-step extensions in
// order: dense output, observers, event detectors.
func (s *Solver[T]) accept(eq dynamo.Equation[T], exact dynamo.ExactSolver[T], step int, t0 T, x0 dynamo.State[T], t1 T, x1 dynamo.State[T]) (bool, error) {
	s.record(t1, x1, exact)
	s.stats.observeStep(float64(t1 - t0))

	if s.dense != nil {
		d, err := s.dense.Build(eq, t0, x0, t1, x1)
		if err != nil {
			return false, err
		}
		s.current = d
	}

	for _, o := range s.observers {
		o.OnStep(t1, x1)
	}

	stop := false
	for i, d := range s.detectors {
		if !d.Detect(t1, x1) {
			continue
		}
		if loc, ok := d.(dynamo.Localizer[T]); ok && s.current != nil {
			if err := loc.Localize(s.current); err != nil {
				return false, err
			}
		}
		rec := EventRecord[T]{Detector: i, Step: step, Detected: true}
		rec.Time, rec.HasTime = d.EventTime()
		if term, ok := d.(dynamo.Terminator); ok && term.Terminal() {
			rec.Terminal = true
			stop = true
		}
		s.events = append(s.events, rec)
		s.logger.Debug("event detected", "detector", i, "t", float64(rec.Time), "terminal", rec.Terminal)
	}
	return stop, nil
}

func (s *Solver[T]) record(t T, x dynamo.State[T], exact dynamo.ExactSolver[T]) {
	s.traj.append(t, x)

	var ref dynamo.State[T]
	if exact != nil {
		if r, ok := exact.ExactSolution(t); ok {
			ref = r
			s.hasRef = true
		}
	}
	s.reference.append(t, ref)
}

func (s *Solver[T]) fail(step int, t, dt T, err error) error {
	return &dynamo.SimulationError{Step: step, Time: float64(t), Dt: float64(dt), Wrapped: err}
}

// Times returns the sample times. The slice is owned by the solver.
func (s *Solver[T]) Times() []T { return s.traj.Times }

// States returns the sampled states. The slice is owned by the solver.
func (s *Solver[T]) States() []dynamo.State[T] { return s.traj.States }

func (s *Solver[T]) Trajectory() Trajectory[T] { return s.traj }

// ReferenceStates returns the closed-form states aligned with Times.
// Entries are nil where the equation has no closed form; ok is false
// when no entry has one.
func (s *Solver[T]) ReferenceStates() ([]dynamo.State[T], bool) {
	if !s.hasRef {
		return nil, false
	}
	return s.reference.States, true
}

func (s *Solver[T]) Events() []EventRecord[T] { return s.events }

func (s *Solver[T]) Stats() Stats { return s.stats }

// Dense returns the interpolant of the last accepted step, or nil.
func (s *Solver[T]) Dense() dynamo.DenseOutput[T] { return s.current }

// MaxAbsoluteError compares the trajectory with the reference trajectory.
// ok is false when the equation supplied no closed form.
func (s *Solver[T]) MaxAbsoluteError(opts ...ErrorOption) (T, bool, error) {
	ref, ok := s.ReferenceStates()
	if !ok {
		return 0, false, nil
	}
	e, err := MaxAbsoluteError(s.traj.States, ref, opts...)
	return e, true, err
}
