package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwbudde/rootlab/internal/solve"
)

// Comparison holds a plain and an Aitken-accelerated fixed-point run on the same input
type Comparison struct {
	Plain       *Outcome `json:"plain"`
	Accelerated *Outcome `json:"accelerated"`
}

// Saved is the number of iterations acceleration saved; negative if it cost iterations
func (c *Comparison) Saved() int {
	return c.Plain.Iterations - c.Accelerated.Iterations
}

// Compare runs cfg as a fixed-point problem twice, without and with Aitken
// acceleration.
func Compare(ctx context.Context, cfg RunConfig) (*Comparison, error) {
	cfg.Method = solve.MethodFixedPoint
	p, err := cfg.Compile()
	if err != nil {
		return nil, err
	}

	plainCfg, accelCfg := cfg, cfg
	plainCfg.Aitken, accelCfg.Aitken = false, true

	plain, err := RunProblem(ctx, plainCfg, p)
	if err != nil {
		return nil, fmt.Errorf("plain run: %w", err)
	}
	accel, err := RunProblem(ctx, accelCfg, p)
	if err != nil {
		return nil, fmt.Errorf("accelerated run: %w", err)
	}

	c := &Comparison{Plain: plain, Accelerated: accel}
	slog.Info("comparison finished",
		"plain_iterations", plain.Iterations,
		"aitken_iterations", accel.Iterations,
		"saved", c.Saved(),
	)
	return c, nil
}
