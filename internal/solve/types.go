package solve

import "math"

// Func is a scalar function of one real variable. Implementations must be
// pure: the solvers may evaluate the same point several times.
type Func func(x float64) float64

// Method identifies a solver
type Method string

const (
	MethodBisection   Method = "bisection"
	MethodRegulaFalsi Method = "regula-falsi"
	MethodNewton      Method = "newton"
	MethodFixedPoint  Method = "fixed-point"
)

// derivativeEpsilon is the |f'(x)| floor below which Newton's method aborts.
// It is independent of the caller's tolerance.
const derivativeEpsilon = 1e-14

// denominatorEpsilon guards the Aitken and secant denominators.
const denominatorEpsilon = 1e-14

// Step is one recorded loop iteration of any solver
type Step interface {
	// Index is the 1-based iteration counter
	Index() int
	// ErrorEstimate is the non-negative quantity compared against the tolerance
	ErrorEstimate() float64
	// Estimate is the root estimate produced by this iteration
	Estimate() float64
	// Columns names the values returned by Values, in order
	Columns() []string
	// Values returns the method-specific fields of the step
	Values() []float64
}

// BracketStep records one bisection or regula falsi iteration.
// A and B are the bracket at the start of the iteration.
type BracketStep struct {
	K   int     `json:"k"`
	A   float64 `json:"a"`
	B   float64 `json:"b"`
	C   float64 `json:"c"`
	FC  float64 `json:"fc"`
	Err float64 `json:"error"`
}

func (s BracketStep) Index() int             { return s.K }
func (s BracketStep) ErrorEstimate() float64 { return s.Err }
func (s BracketStep) Estimate() float64      { return s.C }
func (s BracketStep) Columns() []string      { return []string{"a", "b", "c", "f(c)", "error"} }
func (s BracketStep) Values() []float64      { return []float64{s.A, s.B, s.C, s.FC, s.Err} }

// Width returns b-a for the bracket recorded at the start of the iteration
func (s BracketStep) Width() float64 { return s.B - s.A }

// NewtonStep records one Newton-Raphson iteration
type NewtonStep struct {
	K       int     `json:"k"`
	X       float64 `json:"x"`
	FX      float64 `json:"fx"`
	FPrimeX float64 `json:"fpx"`
	XNext   float64 `json:"xNext"`
	Err     float64 `json:"error"`
}

func (s NewtonStep) Index() int             { return s.K }
func (s NewtonStep) ErrorEstimate() float64 { return s.Err }
func (s NewtonStep) Estimate() float64      { return s.XNext }
func (s NewtonStep) Columns() []string      { return []string{"x", "f(x)", "f'(x)", "x_next", "error"} }
func (s NewtonStep) Values() []float64 {
	return []float64{s.X, s.FX, s.FPrimeX, s.XNext, s.Err}
}

// FixedPointStep records one fixed-point iteration.
// AitkenX is set on the steps where an Aitken extrapolation was attempted;
// Accelerated reports whether the extrapolated value was actually used.
type FixedPointStep struct {
	K           int      `json:"k"`
	X           float64  `json:"x"`
	GX          float64  `json:"gx"`
	AitkenX     *float64 `json:"aitkenX,omitempty"`
	Accelerated bool     `json:"accelerated,omitempty"`
	Next        float64  `json:"next"`
	Err         float64  `json:"error"`
}

func (s FixedPointStep) Index() int             { return s.K }
func (s FixedPointStep) ErrorEstimate() float64 { return s.Err }
func (s FixedPointStep) Estimate() float64      { return s.Next }
func (s FixedPointStep) Columns() []string      { return []string{"x", "g(x)", "x_aitken", "error"} }

// Values reports NaN in the x_aitken column when no extrapolation was attempted.
func (s FixedPointStep) Values() []float64 {
	aitken := math.NaN()
	if s.AitkenX != nil {
		aitken = *s.AitkenX
	}
	return []float64{s.X, s.GX, aitken, s.Err}
}

// Result is the value returned by every solver.
// Converged=false with Iterations equal to the iteration budget means the
// tolerance was never met; Root then holds the last estimate.
type Result[S Step] struct {
	Root       float64 `json:"root"`
	Iterations int     `json:"iterations"`
	History    []S     `json:"history"`
	Converged  bool    `json:"converged"`
}

// Steps returns the history as a slice of the Step interface
func (r *Result[S]) Steps() []Step {
	steps := make([]Step, len(r.History))
	for i, s := range r.History {
		steps[i] = s
	}
	return steps
}

// Last returns the final recorded step and false if the history is empty
func (r *Result[S]) Last() (S, bool) {
	var zero S
	if len(r.History) == 0 {
		return zero, false
	}
	return r.History[len(r.History)-1], true
}

// Bracket is an interval [A, B] over which f changes sign
type Bracket struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Midpoint returns (A+B)/2
func (b Bracket) Midpoint() float64 { return (b.A + b.B) / 2 }

func checkParams(tol float64, maxIter int) error {
	if !(tol > 0) || math.IsInf(tol, 0) {
		return ErrInvalidTolerance
	}
	if maxIter < 1 {
		return ErrInvalidMaxIter
	}
	return nil
}
