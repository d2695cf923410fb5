package solve

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is; the typed errors below wrap
// them with the values that triggered the failure.
var (
	// ErrInvalidBracket is returned when f(a) and f(b) do not have strictly opposite signs.
	ErrInvalidBracket = errors.New("solve: f(a) and f(b) must have opposite signs")

	// ErrZeroDerivative is returned when |f'(x)| drops below 1e-14 during Newton-Raphson.
	ErrZeroDerivative = errors.New("solve: derivative too close to zero")

	// ErrInvalidTolerance is returned when tol is not a finite positive number.
	ErrInvalidTolerance = errors.New("solve: tolerance must be positive")

	// ErrInvalidMaxIter is returned when the iteration budget is below 1.
	ErrInvalidMaxIter = errors.New("solve: max iterations must be at least 1")

	// ErrInvalidRange is returned by Scan when xMin >= xMax.
	ErrInvalidRange = errors.New("solve: scan range requires xMin < xMax")

	// ErrInvalidStep is returned by Scan when the step is not positive.
	ErrInvalidStep = errors.New("solve: scan step must be positive")

	// ErrNonFinite is returned when a helper meets a NaN or Inf function value.
	ErrNonFinite = errors.New("solve: function value is not finite")
)

// BracketError reports the endpoint values of a rejected bracket
type BracketError struct {
	A, B   float64
	FA, FB float64
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("%v: f(%g)=%g, f(%g)=%g", ErrInvalidBracket, e.A, e.FA, e.B, e.FB)
}

func (e *BracketError) Unwrap() error { return ErrInvalidBracket }

// DerivativeError reports where Newton-Raphson met a vanishing derivative.
// Partial holds the iterations completed before the failure, for diagnostics
// only; the root estimate is invalid.
type DerivativeError struct {
	X       float64
	FPrimeX float64
	Partial []NewtonStep
}

func (e *DerivativeError) Error() string {
	return fmt.Sprintf("%v: f'(%g)=%g after %d iterations", ErrZeroDerivative, e.X, e.FPrimeX, len(e.Partial))
}

func (e *DerivativeError) Unwrap() error { return ErrZeroDerivative }
