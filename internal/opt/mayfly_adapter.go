package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MinPopulation is the smallest population mayfly accepts
const MinPopulation = 20

// Mayfly runs the mayfly swarm optimiser with a fixed seed, so repeated
// searches over the same objective return the same position.
type Mayfly struct {
	MaxIters int
	PopSize  int
	Seed     int64
}

// NewMayfly returns a Mayfly optimiser; popSize is raised to MinPopulation if needed
func NewMayfly(maxIters, popSize int, seed int64) *Mayfly {
	return &Mayfly{
		MaxIters: maxIters,
		PopSize:  max(popSize, MinPopulation),
		Seed:     seed,
	}
}

func (m *Mayfly) Minimize(objective func([]float64) float64, lower, upper float64, dim int) ([]float64, float64, error) {
	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = objective
	config.ProblemSize = dim
	config.MaxIterations = m.MaxIters
	config.NPop = m.PopSize
	config.LowerBound = lower
	config.UpperBound = upper
	config.Rand = rand.New(rand.NewSource(m.Seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, 0, fmt.Errorf("opt: mayfly: %w", err)
	}
	return result.GlobalBest.Position, result.GlobalBest.Cost, nil
}
