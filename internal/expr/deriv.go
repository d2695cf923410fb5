package expr

import (
	"gonum.org/v1/gonum/diff/fd"

	"github.com/cwbudde/rootlab/internal/solve"
)

// Derivative returns a central-difference approximation of f'
func Derivative(f solve.Func) solve.Func {
	settings := &fd.Settings{Formula: fd.Central}
	return func(x float64) float64 {
		return fd.Derivative(f, x, settings)
	}
}

// SecondDerivative returns a central-difference approximation of f''
func SecondDerivative(f solve.Func) solve.Func {
	settings := &fd.Settings{Formula: fd.Central2nd}
	return func(x float64) float64 {
		return fd.Derivative(f, x, settings)
	}
}

// DerivativeOf parses src as f'. An empty src falls back to the
// finite-difference derivative of f.
func DerivativeOf(f solve.Func, src string) (solve.Func, error) {
	if src == "" {
		return Derivative(f), nil
	}
	e, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return e.Func(), nil
}
