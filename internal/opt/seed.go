package opt

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/rootlab/internal/solve"
)

// Seed is a starting point found by SeedSearch
type Seed struct {
	X        float64 `json:"x"`
	Residual float64 `json:"residual"` // |f(X)|
}

// SeedSearch minimises f(x)² over [lo, hi] and returns the best point.
// Points where f is not finite are given the largest finite cost. The
// result is only a starting guess: a small residual does not prove that a
// root exists nearby.
func SeedSearch(o Optimizer, f solve.Func, lo, hi float64) (Seed, error) {
	if !(lo < hi) {
		return Seed{}, solve.ErrInvalidRange
	}

	objective := func(p []float64) float64 {
		v := f(p[0])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.MaxFloat64
		}
		return v * v
	}

	pos, cost, err := o.Minimize(objective, lo, hi, 1)
	if err != nil {
		return Seed{}, err
	}
	if len(pos) != 1 {
		return Seed{}, fmt.Errorf("opt: expected a 1-dimensional position, got %d", len(pos))
	}

	x := math.Min(math.Max(pos[0], lo), hi)
	seed := Seed{X: x, Residual: math.Abs(f(x))}
	slog.Debug("seed search finished", "x", seed.X, "residual", seed.Residual, "cost", cost)
	return seed, nil
}
