// Package runner compiles a textual problem description into callables,
// dispatches it to the matching solver and collects timing and diagnostics.
package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/rootlab/internal/expr"
	"github.com/cwbudde/rootlab/internal/solve"
)

const (
	DefaultTol     = 1e-6
	DefaultMaxIter = 100
)

// ErrUnknownMethod is returned for a method name that maps to no solver
var ErrUnknownMethod = errors.New("runner: unknown method")

var methodAliases = map[string]solve.Method{
	"bisection":      solve.MethodBisection,
	"bisect":         solve.MethodBisection,
	"regula-falsi":   solve.MethodRegulaFalsi,
	"regula_falsi":   solve.MethodRegulaFalsi,
	"falsi":          solve.MethodRegulaFalsi,
	"newton":         solve.MethodNewton,
	"newton-raphson": solve.MethodNewton,
	"nr":             solve.MethodNewton,
	"fixed-point":    solve.MethodFixedPoint,
	"fixed_point":    solve.MethodFixedPoint,
	"fixed":          solve.MethodFixedPoint,
}

// ParseMethod resolves a method name or one of its aliases
func ParseMethod(name string) (solve.Method, error) {
	m, ok := methodAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	return m, nil
}

// RunConfig describes one solver run
type RunConfig struct {
	Method  solve.Method `json:"method" toml:"method" yaml:"method"`
	Func    string       `json:"func,omitempty" toml:"func" yaml:"func"`
	Deriv   string       `json:"deriv,omitempty" toml:"deriv" yaml:"deriv"`
	G       string       `json:"g,omitempty" toml:"g" yaml:"g"`
	A       float64      `json:"a,omitempty" toml:"a" yaml:"a"`
	B       float64      `json:"b,omitempty" toml:"b" yaml:"b"`
	X0      float64      `json:"x0,omitempty" toml:"x0" yaml:"x0"`
	Tol     float64      `json:"tol" toml:"tol" yaml:"tol"`
	MaxIter int          `json:"maxIter" toml:"max_iter" yaml:"max_iter"`
	Aitken  bool         `json:"aitken,omitempty" toml:"aitken" yaml:"aitken"`
}

// ApplyDefaults fills a zero Tol or MaxIter
func (c *RunConfig) ApplyDefaults(tol float64, maxIter int) {
	if c.Tol == 0 {
		c.Tol = tol
	}
	if c.MaxIter == 0 {
		c.MaxIter = maxIter
	}
}

// Validate checks that the method is known and that the formulas it needs are present
func (c *RunConfig) Validate() error {
	m, err := ParseMethod(string(c.Method))
	if err != nil {
		return err
	}
	c.Method = m

	switch m {
	case solve.MethodFixedPoint:
		if c.G == "" {
			return fmt.Errorf("runner: %s requires g", m)
		}
	default:
		if c.Func == "" {
			return fmt.Errorf("runner: %s requires func", m)
		}
	}
	return nil
}

// Problem holds the compiled callables of a RunConfig.
// Fields the method does not need are nil.
type Problem struct {
	F      solve.Func
	FPrime solve.Func
	G      solve.Func
}

// Compile parses the formulas of c. Newton without an explicit derivative
// uses a central finite difference of f.
func (c *RunConfig) Compile() (*Problem, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := &Problem{}
	if c.Func != "" {
		e, err := expr.Parse(c.Func)
		if err != nil {
			return nil, err
		}
		p.F = e.Func()
	}
	if c.Method == solve.MethodNewton {
		fp, err := expr.DerivativeOf(p.F, c.Deriv)
		if err != nil {
			return nil, err
		}
		p.FPrime = fp
	}
	if c.G != "" {
		e, err := expr.Parse(c.G)
		if err != nil {
			return nil, err
		}
		p.G = e.Func()
	}
	return p, nil
}
