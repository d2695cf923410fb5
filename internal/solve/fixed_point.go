package solve

import (
	"log/slog"
	"math"
)

// Aitken applies the Δ² extrapolation to three consecutive iterates:
//
//	x̂ = x0 - (x1-x0)² / (x2 - 2x1 + x0)
//
// When the denominator magnitude is below 1e-14 it returns x2 unchanged and
// false.
func Aitken(x0, x1, x2 float64) (float64, bool) {
	denom := x2 - 2*x1 + x0
	if math.Abs(denom) < denominatorEpsilon {
		return x2, false
	}
	d := x1 - x0
	return x0 - d*d/denom, true
}

// FixedPoint iterates x <- g(x) from x0 until |x_next - x| < tol.
//
// With useAitken the iterates fed to g are collected three at a time. When
// the buffer holds three values the Aitken extrapolation of that triple
// replaces the next iterate and the buffer starts over, so acceleration is
// applied once every three steps. If the triple is degenerate (Aitken
// returns false) the step falls back to the plain g(x) update; the record
// still carries AitkenX equal to the third iterate. The third iterate is not
// substituted as the next value there: it equals the current x, so the step
// error would read zero and report convergence that never happened.
//
// Convergence requires |g'| < 1 near the fixed point. Acceleration improves
// the rate, not the existence, of convergence: on a divergent or oscillating
// sequence the extrapolated values are meaningless.
func FixedPoint(g Func, x0, tol float64, maxIter int, useAitken bool) (*Result[FixedPointStep], error) {
	if err := checkParams(tol, maxIter); err != nil {
		return nil, err
	}

	history := make([]FixedPointStep, 0, min(maxIter, 64))
	buf := make([]float64, 0, 3)
	x := x0
	for k := 1; k <= maxIter; k++ {
		gx := g(x)
		step := FixedPointStep{K: k, X: x, GX: gx, Next: gx}

		if useAitken {
			buf = append(buf, x)
			if len(buf) == 3 {
				xa, ok := Aitken(buf[0], buf[1], buf[2])
				step.AitkenX = &xa
				step.Accelerated = ok
				if ok {
					step.Next = xa
				}
				buf = buf[:0]
			}
		}
		step.Err = math.Abs(step.Next - x)

		history = append(history, step)
		slog.Debug("fixed point step", "k", k, "x", x, "gx", gx, "next", step.Next,
			"accelerated", step.Accelerated, "error", step.Err)

		if step.Err < tol {
			return &Result[FixedPointStep]{Root: step.Next, Iterations: k, History: history, Converged: true}, nil
		}
		x = step.Next
	}

	return &Result[FixedPointStep]{Root: x, Iterations: maxIter, History: history, Converged: false}, nil
}
