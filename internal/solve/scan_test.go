package solve_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rootlab/internal/solve"
)

func TestScan_Sine(t *testing.T) {
	res, err := solve.Scan(math.Sin, -1, 7, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []solve.Bracket{{A: 3, B: 3.5}, {A: 6, B: 6.5}}, res.Brackets)
	assert.Equal(t, []float64{0}, res.ExactRoots)
	assert.Zero(t, res.Skipped)
}

func TestScan_BracketsFeedBisection(t *testing.T) {
	f := func(x float64) float64 { return (x - 1) * (x + 2) * (x - 3.3) }

	res, err := solve.Scan(f, -5, 5, 0.25)
	require.NoError(t, err)
	require.Len(t, res.Brackets, 1)
	require.Equal(t, []float64{-2, 1}, res.ExactRoots)

	r, err := solve.Bisect(f, res.Brackets[0].A, res.Brackets[0].B, 1e-10, 100)
	require.NoError(t, err)
	assert.InDelta(t, 3.3, r.Root, 1e-9)
}

func TestScan_PoleIsNotABracket(t *testing.T) {
	f := func(x float64) float64 { return 1 / x }

	res, err := solve.Scan(f, -1, 1, 0.5)
	require.NoError(t, err)

	assert.Empty(t, res.Brackets)
	assert.Equal(t, 1, res.Skipped)
}

func TestScan_InvalidArguments(t *testing.T) {
	_, err := solve.Scan(math.Sin, 1, 1, 0.1)
	assert.ErrorIs(t, err, solve.ErrInvalidRange)

	_, err = solve.Scan(math.Sin, 0, 1, 0)
	assert.ErrorIs(t, err, solve.ErrInvalidStep)

	_, err = solve.Scan(math.Sin, 0, 1, math.Inf(1))
	assert.ErrorIs(t, err, solve.ErrInvalidStep)
}

func TestBracket_Midpoint(t *testing.T) {
	assert.Equal(t, 1.5, solve.Bracket{A: 1, B: 2}.Midpoint())
}
