package runner

import (
	"context"
	"log/slog"
	"sync"
)

// BatchResult pairs a problem with its outcome or error
type BatchResult struct {
	Name    string    `json:"name"`
	Config  RunConfig `json:"config"`
	Outcome *Outcome  `json:"outcome,omitempty"`
	Err     error     `json:"-"`
}

// NamedConfig is a RunConfig with a label
type NamedConfig struct {
	Name string
	RunConfig
}

// RunBatch runs every problem with at most workers concurrent solves.
// Results are returned in input order.
func RunBatch(ctx context.Context, problems []NamedConfig, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]BatchResult, len(problems))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, p := range problems {
		wg.Add(1)
		go func(i int, p NamedConfig) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = BatchResult{Name: p.Name, Config: p.RunConfig, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			out, err := Run(ctx, p.RunConfig)
			if err != nil {
				slog.Warn("batch problem failed", "name", p.Name, "error", err)
			}
			results[i] = BatchResult{Name: p.Name, Config: p.RunConfig, Outcome: out, Err: err}
		}(i, p)
	}

	wg.Wait()
	return results
}
