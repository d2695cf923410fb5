package runner

import (
	"github.com/cwbudde/rootlab/internal/expr"
	"github.com/cwbudde/rootlab/internal/solve"
)

// Diagnose evaluates the Newton-Fourier conditions of cfg on [A, B].
// f'' is the finite-difference derivative of f' when Deriv is given,
// otherwise the second central difference of f.
func Diagnose(cfg RunConfig, samples int) (solve.FourierReport, error) {
	e, err := expr.Parse(cfg.Func)
	if err != nil {
		return solve.FourierReport{}, err
	}
	f := e.Func()

	fp, err := expr.DerivativeOf(f, cfg.Deriv)
	if err != nil {
		return solve.FourierReport{}, err
	}

	fpp := expr.SecondDerivative(f)
	if cfg.Deriv != "" {
		fpp = expr.Derivative(fp)
	}

	return solve.CheckFourierConditions(fp, fpp, cfg.A, cfg.B, samples), nil
}
