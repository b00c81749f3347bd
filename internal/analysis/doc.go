// Package analysis studies how integrators behave on an equation:
//
//   - [Convergence]: global error over successive halvings of the step,
//     with the observed order from a least-squares fit
//   - [LocalError]: one-step error against a closed form, O(dt^(p+1))
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [LyapunovSpectrum]: one separation exponent per perturbed component
//
// # Order check
//
//	res, err := analysis.Convergence(ctx, eq, build, 0.1, 5)
//	if err == nil && math.Abs(res.Order-4) < 0.2 {
//	    // behaves like a fourth-order method
//	}
package analysis
