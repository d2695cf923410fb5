package solve

import (
	"log/slog"
	"math"
)

// RegulaFalsi finds a root of f in [a, b] by false position.
//
// The new point c = a - f(a)(b-a)/(f(b)-f(a)) is the root of the secant
// through (a, f(a)) and (b, f(b)); if that denominator is below 1e-14 the
// midpoint is used instead.
// Iteration stops when |f(c)| < tol or |c - c_prev| < tol; on the first
// iteration, which has no previous c, the error is |b-a|. The endpoint with
// the same sign as f(c) is replaced, exactly as in Bisect.
//
// No Illinois-style correction is applied: on a convex or concave bracket
// one endpoint can stay fixed for many iterations and convergence becomes
// slow and linear. The iteration count is not bounded in advance.
func RegulaFalsi(f Func, a, b, tol float64, maxIter int) (*Result[BracketStep], error) {
	if err := checkParams(tol, maxIter); err != nil {
		return nil, err
	}
	if a > b {
		a, b = b, a
	}
	if fa, fb := f(a), f(b); !(fa*fb < 0) {
		return nil, &BracketError{A: a, B: b, FA: fa, FB: fb}
	}

	history := make([]BracketStep, 0, min(maxIter, 64))
	var c, cPrev float64
	for k := 1; k <= maxIter; k++ {
		// endpoint values are recomputed every iteration
		fa, fb := f(a), f(b)

		denom := fb - fa
		if math.Abs(denom) < denominatorEpsilon {
			c = (a + b) / 2
		} else {
			c = a - fa*(b-a)/denom
		}
		fc := f(c)

		errEst := math.Abs(b - a)
		if k > 1 {
			errEst = math.Abs(c - cPrev)
		}

		history = append(history, BracketStep{K: k, A: a, B: b, C: c, FC: fc, Err: errEst})
		slog.Debug("regula falsi step", "k", k, "a", a, "b", b, "c", c, "fc", fc, "error", errEst)

		if math.Abs(fc) < tol || errEst < tol {
			return &Result[BracketStep]{Root: c, Iterations: k, History: history, Converged: true}, nil
		}

		if fa*fc < 0 {
			b = c
		} else {
			a = c
		}
		cPrev = c
	}

	return &Result[BracketStep]{Root: c, Iterations: maxIter, History: history, Converged: false}, nil
}
