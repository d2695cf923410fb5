package solve

import (
	"log/slog"
	"math"
)

// NewtonRaphson iterates x_next = x - f(x)/f'(x) starting at x0.
//
// Iteration stops when the step |x_next - x| or the residual |f(x)| falls
// below tol; either criterion is enough. If |f'(x)| < 1e-14 the run aborts
// with a *DerivativeError (matching ErrZeroDerivative) holding the partial
// history. Divergence and oscillation are not detected: the solver simply
// exhausts maxIter and returns the last iterate with Converged=false.
func NewtonRaphson(f, fPrime Func, x0, tol float64, maxIter int) (*Result[NewtonStep], error) {
	if err := checkParams(tol, maxIter); err != nil {
		return nil, err
	}

	history := make([]NewtonStep, 0, min(maxIter, 32))
	x := x0
	for k := 1; k <= maxIter; k++ {
		fx := f(x)
		fpx := fPrime(x)
		if math.Abs(fpx) < derivativeEpsilon {
			slog.Debug("newton aborted on flat derivative", "k", k, "x", x, "fpx", fpx)
			return nil, &DerivativeError{X: x, FPrimeX: fpx, Partial: history}
		}

		next := x - fx/fpx
		errEst := math.Abs(next - x)

		history = append(history, NewtonStep{K: k, X: x, FX: fx, FPrimeX: fpx, XNext: next, Err: errEst})
		slog.Debug("newton step", "k", k, "x", x, "fx", fx, "fpx", fpx, "x_next", next, "error", errEst)

		if errEst < tol || math.Abs(fx) < tol {
			return &Result[NewtonStep]{Root: next, Iterations: k, History: history, Converged: true}, nil
		}
		x = next
	}

	return &Result[NewtonStep]{Root: x, Iterations: maxIter, History: history, Converged: false}, nil
}
