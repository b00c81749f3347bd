// Package dynamo defines the numerical core shared by every odekit package.
//
// The package holds the contracts a solver composes and nothing that
// depends on a concrete method:
//
//   - [Scalar]: float32 or float64, chosen per trajectory
//   - [State]: fixed-length state vector
//   - [Equation]: right-hand side dX/dt = f(t, X)
//   - [Stepper]: one numerical method advancing a state by dt
//   - [StepSizeController]: accepts or rejects a step and picks the next dt
//   - [DenseOutput]: continuous interpolant inside the last accepted step
//   - [EventDetector]: condition checked after each accepted step
//
// Optional capabilities ([ExactSolver], [Hamiltonian], [ErrorEstimator],
// [ErrorNormer], [Localizer], [Terminator]) are discovered by type
// assertion, so a fixed-step integration needs only an Equation and a
// Stepper.
//
// # Example
//
//	eq := physics.NewHarmonicOscillator[float64](2 * math.Pi)
//	rk4, _ := integrators.NewRK4[float64](eq.Dimension())
//	s, _ := sim.New(0.01, 2.0, dynamo.State[float64]{1, 0}, rk4)
//	err := s.Integrate(eq)
//
// # Thread Safety
//
// Steppers own scratch buffers and are NOT safe for concurrent use. Run
// independent integrations with their own Solver and Stepper, as
// sim.Sweep does.
package dynamo
