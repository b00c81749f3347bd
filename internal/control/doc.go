// Package control provides step-size controllers for adaptive integration.
//
// Controllers implement [dynamo.StepSizeController] and
// [dynamo.ErrorNormer]. The solver reduces a step's local error vector
// with ErrorNorm, which scales each component by Atol + Rtol·|x|, so an
// estimate of 1 sits exactly on the tolerance:
//
//   - [Standard]: elementary (integral) controller
//   - [PI]: proportional-integral controller with error memory
//
// # Usage
//
//	ctrl, _ := control.NewStandard[float64](1e-8, 1e-6, 5)
//	s, _ := sim.New(0.01, 10, x0, dopri, sim.WithController[float64](ctrl))
//
// Both controllers accept a step iff the estimate is at most 1 and clamp
// the step factor to [MinScale, MaxScale].
package control
