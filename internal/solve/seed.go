package solve

import "math"

// SelectFixedPointSeed picks a starting point for FixedPoint on the bracket
// [a, b] of f. It checks the sign change of f, verifies that g is finite at
// both endpoints and at the midpoint, and returns the endpoint with the
// smaller |f| (b on ties).
func SelectFixedPointSeed(f, g Func, a, b float64) (float64, error) {
	fa, fb := f(a), f(b)
	if fa*fb > 0 {
		return math.NaN(), &BracketError{A: a, B: b, FA: fa, FB: fb}
	}

	for _, x := range []float64{a, (a + b) / 2, b} {
		if gx := g(x); math.IsNaN(gx) || math.IsInf(gx, 0) {
			return math.NaN(), ErrNonFinite
		}
	}

	if math.Abs(fa) < math.Abs(fb) {
		return a, nil
	}
	return b, nil
}
