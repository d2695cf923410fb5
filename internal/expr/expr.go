// Package expr turns user formulas in the variable x into solve.Func
// callables and supplies finite-difference derivatives for them.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/cwbudde/rootlab/internal/solve"
)

// Variable is the only free variable a formula may reference
const Variable = "x"

var (
	// ErrEmpty is returned for a blank formula.
	ErrEmpty = errors.New("expr: empty expression")

	// ErrUnknownVariable is returned when a formula references a name other than x, pi or e.
	ErrUnknownVariable = errors.New("expr: unknown variable")
)

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

var functions = map[string]govaluate.ExpressionFunction{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"exp":   unary(math.Exp),
	"log":   unary(math.Log),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"sqrt":  unary(math.Sqrt),
	"cbrt":  unary(math.Cbrt),
	"abs":   unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

// Expr is a parsed formula f(x). It is safe for concurrent use.
type Expr struct {
	src    string
	parsed *govaluate.EvaluableExpression
}

// Parse compiles src. Both ^ and ** denote exponentiation; a power binds
// tighter than a leading sign and groups from the right, so -x^2 is -(x^2),
// x^2^3 is x^(2^3) and 2^-1 is 0.5. Numbers may use scientific notation
// (1e-3, 2.5E4).
func Parse(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmpty
	}

	normalized, err := rewrite(src)
	if err != nil {
		return nil, fmt.Errorf("expr: parse %q: %w", src, err)
	}

	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(normalized, functions)
	if err != nil {
		return nil, fmt.Errorf("expr: parse %q: %w", src, err)
	}

	for _, tok := range parsed.Tokens() {
		if tok.Kind != govaluate.VARIABLE {
			continue
		}
		name, _ := tok.Value.(string)
		if _, ok := constants[name]; ok || name == Variable {
			continue
		}
		return nil, fmt.Errorf("%w %q in %q", ErrUnknownVariable, name, src)
	}

	return &Expr{src: src, parsed: parsed}, nil
}

// MustParse is like Parse but panics on error
func MustParse(src string) *Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) String() string { return e.src }

// Eval evaluates the formula at x
func (e *Expr) Eval(x float64) (float64, error) {
	params := make(map[string]interface{}, len(constants)+1)
	for k, v := range constants {
		params[k] = v
	}
	params[Variable] = x

	v, err := e.parsed.Evaluate(params)
	if err != nil {
		return math.NaN(), fmt.Errorf("expr: evaluate %q at x=%g: %w", e.src, x, err)
	}

	switch t := v.(type) {
	case float64:
		return t, nil
	case bool:
		return math.NaN(), fmt.Errorf("expr: %q is a comparison, not a number", e.src)
	default:
		f := toFloat(t)
		if math.IsNaN(f) {
			return f, fmt.Errorf("expr: %q did not yield a number: %T", e.src, v)
		}
		return f, nil
	}
}

// Func adapts the formula to solve.Func. Evaluation errors become NaN,
// which the solvers and the scanner treat as a non-finite value.
func (e *Expr) Func() solve.Func {
	return func(x float64) float64 {
		v, err := e.Eval(x)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
