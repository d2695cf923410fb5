package solve_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rootlab/internal/solve"
)

func cubic(x float64) float64      { return x*x*x - x - 1 }
func cubicPrime(x float64) float64 { return 3*x*x - 1 }

func TestNewtonRaphson_Cubic(t *testing.T) {
	res, err := solve.NewtonRaphson(cubic, cubicPrime, 1, 1e-6, 100)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.InDelta(t, 1.324717957244746, res.Root, 1e-6)
	assert.Less(t, res.Iterations, 10)
}

func TestNewtonRaphson_StepRecords(t *testing.T) {
	res, err := solve.NewtonRaphson(cubic, cubicPrime, 1, 1e-6, 100)
	require.NoError(t, err)

	first := res.History[0]
	assert.Equal(t, 1, first.K)
	assert.Equal(t, 1.0, first.X)
	assert.Equal(t, -1.0, first.FX)
	assert.Equal(t, 2.0, first.FPrimeX)
	assert.Equal(t, 1.5, first.XNext)
	assert.Equal(t, 0.5, first.Err)

	for k := 1; k < len(res.History); k++ {
		assert.Equal(t, res.History[k-1].XNext, res.History[k].X)
	}
}

func TestNewtonRaphson_ZeroDerivative(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	fp := func(x float64) float64 { return 2 * x }

	res, err := solve.NewtonRaphson(f, fp, 0, 1e-6, 50)
	assert.Nil(t, res)
	require.ErrorIs(t, err, solve.ErrZeroDerivative)

	var de *solve.DerivativeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 0.0, de.X)
	assert.Empty(t, de.Partial)
}

func TestNewtonRaphson_ZeroDerivativeKeepsPartialHistory(t *testing.T) {
	// derivative vanishes from the second call on
	calls := 0
	fp := func(x float64) float64 {
		calls++
		if calls > 1 {
			return 0
		}
		return 2 * x
	}
	f := func(x float64) float64 { return x*x - 4 }

	_, err := solve.NewtonRaphson(f, fp, 1, 1e-12, 50)
	var de *solve.DerivativeError
	require.ErrorAs(t, err, &de)
	assert.Len(t, de.Partial, 1)
	assert.Equal(t, 2.5, de.X)
}

func TestNewtonRaphson_ResidualCriterion(t *testing.T) {
	// Already at the root: |f(x0)| < tol triggers even though a step is taken
	res, err := solve.NewtonRaphson(square2, func(x float64) float64 { return 2 * x }, math.Sqrt2, 1e-6, 10)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
}

func TestNewtonRaphson_OscillationExhausts(t *testing.T) {
	// x³-2x+2 from 0 cycles between 0 and 1
	f := func(x float64) float64 { return x*x*x - 2*x + 2 }
	fp := func(x float64) float64 { return 3*x*x - 2 }

	res, err := solve.NewtonRaphson(f, fp, 0, 1e-8, 10)
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, 10, res.Iterations)
	assert.Len(t, res.History, 10)
	assert.Equal(t, 0.0, res.Root)
}

func TestNewtonRaphson_Exhaustion(t *testing.T) {
	res, err := solve.NewtonRaphson(cubic, cubicPrime, 1, 1e-12, 1)
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1.5, res.Root)
}

func TestNewtonRaphson_Deterministic(t *testing.T) {
	r1, _ := solve.NewtonRaphson(cubic, cubicPrime, 1, 1e-6, 100)
	r2, _ := solve.NewtonRaphson(cubic, cubicPrime, 1, 1e-6, 100)
	assert.Equal(t, r1, r2)
}
