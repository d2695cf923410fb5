package main

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/runner"
)

// problemFlags are the flags shared by every command that runs a solver
type problemFlags struct {
	method  string
	fn      string
	deriv   string
	g       string
	a, b    float64
	x0      float64
	tol     float64
	maxIter int
	aitken  bool
}

func (p *problemFlags) register(cmd *cobra.Command, defaultMethod string) {
	fs := cmd.Flags()
	fs.StringVarP(&p.method, "method", "m", defaultMethod, "Method: bisection, regula-falsi, newton, fixed-point")
	fs.StringVarP(&p.fn, "func", "f", "", "f(x), e.g. \"x^3 - x - 1\"; ^ and ** are right-associative, 1e-3 notation accepted")
	fs.StringVar(&p.deriv, "deriv", "", "f'(x) for Newton; finite differences when empty")
	fs.StringVar(&p.g, "g", "", "g(x) for fixed-point iteration")
	fs.Float64Var(&p.a, "a", 0, "Left end of the bracket")
	fs.Float64Var(&p.b, "b", 0, "Right end of the bracket")
	fs.Float64Var(&p.x0, "x0", 0, "Initial guess for Newton and fixed point")
	fs.Float64Var(&p.tol, "tol", 0, "Tolerance (default from config, 1e-6)")
	fs.IntVar(&p.maxIter, "max-iter", 0, "Iteration budget (default from config, 100)")
	fs.BoolVar(&p.aitken, "aitken", false, "Apply Aitken acceleration to fixed-point iteration")
}

// runConfig builds a validated RunConfig with config-file defaults applied
func (p *problemFlags) runConfig() (runner.RunConfig, error) {
	method, err := runner.ParseMethod(p.method)
	if err != nil {
		return runner.RunConfig{}, err
	}
	rc := runner.RunConfig{
		Method:  method,
		Func:    p.fn,
		Deriv:   p.deriv,
		G:       p.g,
		A:       p.a,
		B:       p.b,
		X0:      p.x0,
		Tol:     p.tol,
		MaxIter: p.maxIter,
		Aitken:  p.aitken,
	}
	rc.ApplyDefaults(cfg.Solver.Tol, cfg.Solver.MaxIter)
	return rc, rc.Validate()
}
