package solve

import (
	"log/slog"
	"math"
)

// Bisect finds a root of f in [a, b] by repeated halving.
//
// f(a) and f(b) must have strictly opposite signs. Each iteration evaluates
// the midpoint c and stops when |f(c)| < tol or the half-width (b-a)/2 drops
// below tol. The bracket halves every iteration, so at most
// ceil(log2((b-a)/tol)) iterations are needed whatever the shape of f.
func Bisect(f Func, a, b, tol float64, maxIter int) (*Result[BracketStep], error) {
	if err := checkParams(tol, maxIter); err != nil {
		return nil, err
	}
	if a > b {
		a, b = b, a
	}
	fa, fb := f(a), f(b)
	if !(fa*fb < 0) {
		return nil, &BracketError{A: a, B: b, FA: fa, FB: fb}
	}

	history := make([]BracketStep, 0, min(maxIter, 64))
	for k := 1; k <= maxIter; k++ {
		c := (a + b) / 2
		fc := f(c)
		half := (b - a) / 2

		step := BracketStep{K: k, A: a, B: b, C: c, FC: fc, Err: half}
		history = append(history, step)
		slog.Debug("bisection step", "k", k, "a", a, "b", b, "c", c, "fc", fc, "half_width", half)

		if math.Abs(fc) < tol || half < tol {
			return &Result[BracketStep]{Root: c, Iterations: k, History: history, Converged: true}, nil
		}

		if fa*fc < 0 {
			b = c
		} else {
			a, fa = c, fc
		}
	}

	return &Result[BracketStep]{
		Root:       (a + b) / 2,
		Iterations: maxIter,
		History:    history,
		Converged:  false,
	}, nil
}
