package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/rootlab/internal/solve"
)

// Outcome is the result of a run together with its timing.
// Steps is omitted from JSON; the history is exported through the trace files.
type Outcome struct {
	Method     solve.Method  `json:"method"`
	Root       float64       `json:"root"`
	Iterations int           `json:"iterations"`
	Converged  bool          `json:"converged"`
	Steps      []solve.Step  `json:"-"`
	Elapsed    time.Duration `json:"elapsed"`

	// Stagnation is set for regula falsi runs where one endpoint stayed fixed
	Stagnation *Stagnation `json:"stagnation,omitempty"`
}

// Run compiles cfg and runs the selected solver.
//
// The solvers themselves do not observe ctx. Instead the compiled callables
// return NaN once ctx is done, which lets the solver drain its remaining
// iterations cheaply; the partial result is then discarded and ctx.Err()
// returned.
func Run(ctx context.Context, cfg RunConfig) (*Outcome, error) {
	p, err := cfg.Compile()
	if err != nil {
		return nil, err
	}
	return RunProblem(ctx, cfg, p)
}

// RunProblem runs cfg with already compiled callables
func RunProblem(ctx context.Context, cfg RunConfig, p *Problem) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, fp, g := guard(ctx, p.F), guard(ctx, p.FPrime), guard(ctx, p.G)

	logger := slog.With("method", cfg.Method)
	logger.Debug("run started", "tol", cfg.Tol, "max_iter", cfg.MaxIter)

	start := time.Now()
	out := &Outcome{Method: cfg.Method}

	switch cfg.Method {
	case solve.MethodBisection:
		res, err := solve.Bisect(f, cfg.A, cfg.B, cfg.Tol, cfg.MaxIter)
		if err != nil {
			return nil, err
		}
		fill(out, res)
	case solve.MethodRegulaFalsi:
		res, err := solve.RegulaFalsi(f, cfg.A, cfg.B, cfg.Tol, cfg.MaxIter)
		if err != nil {
			return nil, err
		}
		fill(out, res)
		out.Stagnation = DetectStagnation(res.History, DefaultStagnationConfig())
	case solve.MethodNewton:
		res, err := solve.NewtonRaphson(f, fp, cfg.X0, cfg.Tol, cfg.MaxIter)
		if err != nil {
			return nil, err
		}
		fill(out, res)
	case solve.MethodFixedPoint:
		res, err := solve.FixedPoint(g, cfg.X0, cfg.Tol, cfg.MaxIter, cfg.Aitken)
		if err != nil {
			return nil, err
		}
		fill(out, res)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.Method)
	}
	out.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("run finished",
		"root", out.Root,
		"iterations", out.Iterations,
		"converged", out.Converged,
		"elapsed", out.Elapsed,
	)
	return out, nil
}

func fill[S solve.Step](out *Outcome, res *solve.Result[S]) {
	out.Root = res.Root
	out.Iterations = res.Iterations
	out.Converged = res.Converged
	out.Steps = res.Steps()
}

func guard(ctx context.Context, f solve.Func) solve.Func {
	if f == nil {
		return nil
	}
	return func(x float64) float64 {
		if ctx.Err() != nil {
			return math.NaN()
		}
		return f(x)
	}
}
