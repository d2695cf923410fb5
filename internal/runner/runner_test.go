package runner

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rootlab/internal/solve"
)

func TestParseMethod(t *testing.T) {
	tests := map[string]solve.Method{
		"bisection":   solve.MethodBisection,
		" Bisect ":    solve.MethodBisection,
		"falsi":       solve.MethodRegulaFalsi,
		"NR":          solve.MethodNewton,
		"fixed_point": solve.MethodFixedPoint,
	}
	for in, want := range tests {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMethod("secant")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestRunConfig_Validate(t *testing.T) {
	cfg := RunConfig{Method: "fixed", Func: "x"}
	assert.Error(t, cfg.Validate(), "fixed point without g")

	cfg = RunConfig{Method: "newton", G: "cos(x)"}
	assert.Error(t, cfg.Validate(), "newton without func")

	cfg = RunConfig{Method: "bisect", Func: "x"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, solve.MethodBisection, cfg.Method)
}

func TestRunConfig_ApplyDefaults(t *testing.T) {
	cfg := RunConfig{MaxIter: 7}
	cfg.ApplyDefaults(DefaultTol, DefaultMaxIter)

	assert.Equal(t, DefaultTol, cfg.Tol)
	assert.Equal(t, 7, cfg.MaxIter)
}

func TestRun_AllMethods(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
		want float64
	}{
		{"bisection", RunConfig{Method: "bisection", Func: "x^2 - 2", A: 1, B: 2}, math.Sqrt2},
		{"regula falsi", RunConfig{Method: "regula-falsi", Func: "x^2 - 2", A: 1, B: 2}, math.Sqrt2},
		{"newton exact derivative", RunConfig{Method: "newton", Func: "x^3 - x - 1", Deriv: "3*x^2 - 1", X0: 1}, 1.324717957244746},
		{"newton numeric derivative", RunConfig{Method: "newton", Func: "x^3 - x - 1", X0: 1}, 1.324717957244746},
		{"fixed point", RunConfig{Method: "fixed-point", G: "cos(x)", X0: 0.5}, 0.7390851332151607},
		{"fixed point aitken", RunConfig{Method: "fixed-point", G: "cos(x)", X0: 0.5, Aitken: true}, 0.7390851332151607},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults(DefaultTol, DefaultMaxIter)

			out, err := Run(context.Background(), cfg)
			require.NoError(t, err)

			assert.True(t, out.Converged)
			assert.InDelta(t, tt.want, out.Root, 1e-5)
			assert.Len(t, out.Steps, out.Iterations)
			assert.GreaterOrEqual(t, out.Elapsed.Nanoseconds(), int64(0))
		})
	}
}

func TestRun_PropagatesSolverErrors(t *testing.T) {
	_, err := Run(context.Background(), RunConfig{Method: "bisection", Func: "x^2 + 1", A: -1, B: 1, Tol: 1e-6, MaxIter: 10})
	assert.ErrorIs(t, err, solve.ErrInvalidBracket)

	_, err = Run(context.Background(), RunConfig{Method: "newton", Func: "x^2 + 1", Deriv: "2*x", X0: 0, Tol: 1e-6, MaxIter: 10})
	assert.ErrorIs(t, err, solve.ErrZeroDerivative)

	_, err = Run(context.Background(), RunConfig{Method: "secant", Func: "x", Tol: 1e-6, MaxIter: 10})
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, RunConfig{Method: "bisection", Func: "x^2 - 2", A: 1, B: 2, Tol: 1e-6, MaxIter: 100})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_RegulaFalsiReportsStagnation(t *testing.T) {
	out, err := Run(context.Background(), RunConfig{Method: "regula-falsi", Func: "x^2 - 2", A: 1, B: 2, Tol: 1e-6, MaxIter: 100})
	require.NoError(t, err)

	require.NotNil(t, out.Stagnation)
	assert.Equal(t, "b", out.Stagnation.Side)
	assert.Equal(t, 2.0, out.Stagnation.Value)
	assert.Equal(t, out.Iterations, out.Stagnation.Count)
}

func TestCompare(t *testing.T) {
	c, err := Compare(context.Background(), RunConfig{G: "cos(x)", X0: 0.5, Tol: 1e-6, MaxIter: 100})
	require.NoError(t, err)

	assert.Equal(t, solve.MethodFixedPoint, c.Plain.Method)
	assert.Greater(t, c.Saved(), 0)
	assert.InDelta(t, c.Plain.Root, c.Accelerated.Root, 1e-5)
}

func TestDiagnose(t *testing.T) {
	r, err := Diagnose(RunConfig{Func: "x^2 - 2", Deriv: "2*x", A: 1, B: 2}, 20)
	require.NoError(t, err)
	assert.True(t, r.Monotonic())
	assert.InDelta(t, 2.0, r.FSecondMax, 1e-4)

	r, err = Diagnose(RunConfig{Func: "x^3", A: -1, B: 1}, 21)
	require.NoError(t, err)
	assert.False(t, r.ConcavityConstant)
}

func TestRunBatch(t *testing.T) {
	problems := []NamedConfig{
		{Name: "sqrt2", RunConfig: RunConfig{Method: "bisection", Func: "x^2 - 2", A: 1, B: 2, Tol: 1e-8, MaxIter: 100}},
		{Name: "bad", RunConfig: RunConfig{Method: "bisection", Func: "x^2 + 1", A: -1, B: 1, Tol: 1e-8, MaxIter: 100}},
		{Name: "dottie", RunConfig: RunConfig{Method: "fixed-point", G: "cos(x)", X0: 1, Tol: 1e-8, MaxIter: 200, Aitken: true}},
	}

	results := RunBatch(context.Background(), problems, 2)
	require.Len(t, results, 3)

	assert.Equal(t, "sqrt2", results[0].Name)
	require.NoError(t, results[0].Err)
	assert.InDelta(t, math.Sqrt2, results[0].Outcome.Root, 1e-8)

	assert.ErrorIs(t, results[1].Err, solve.ErrInvalidBracket)
	assert.Nil(t, results[1].Outcome)

	require.NoError(t, results[2].Err)
	assert.True(t, results[2].Outcome.Converged)
}
