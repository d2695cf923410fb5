package runner

import (
	"log/slog"

	"github.com/cwbudde/rootlab/internal/solve"
)

// StagnationConfig controls detection of a fixed regula falsi endpoint
type StagnationConfig struct {
	Enabled bool

	// Patience is the number of consecutive iterations an endpoint must
	// stay unchanged before it is reported
	Patience int
}

// DefaultStagnationConfig reports an endpoint fixed for 5 iterations
func DefaultStagnationConfig() StagnationConfig {
	return StagnationConfig{Enabled: true, Patience: 5}
}

// Stagnation describes an endpoint that did not move
type Stagnation struct {
	Side  string  `json:"side"` // "a" or "b"
	Value float64 `json:"value"`
	Since int     `json:"since"` // first iteration at which the endpoint had this value
	Count int     `json:"count"` // longest run of iterations with the endpoint fixed
}

// StagnationTracker watches successive brackets and counts how long each
// endpoint has stayed fixed. It only observes; the solver is not altered.
type StagnationTracker struct {
	config         StagnationConfig
	prev           *solve.BracketStep
	fixedA, fixedB int
	sinceA, sinceB int
	worst          *Stagnation
	warned         bool
}

// NewStagnationTracker creates a tracker with the given config
func NewStagnationTracker(config StagnationConfig) *StagnationTracker {
	return &StagnationTracker{config: config}
}

// Update records the next step and returns true once an endpoint has been
// fixed for at least Patience consecutive iterations
func (t *StagnationTracker) Update(s solve.BracketStep) bool {
	if !t.config.Enabled {
		return false
	}

	if t.prev == nil {
		t.fixedA, t.fixedB = 1, 1
		t.sinceA, t.sinceB = s.K, s.K
	} else {
		if s.A == t.prev.A {
			t.fixedA++
		} else {
			t.fixedA, t.sinceA = 1, s.K
		}
		if s.B == t.prev.B {
			t.fixedB++
		} else {
			t.fixedB, t.sinceB = 1, s.K
		}
	}
	t.prev = &s

	t.observe("a", s.A, t.sinceA, t.fixedA)
	t.observe("b", s.B, t.sinceB, t.fixedB)

	if t.worst != nil && t.worst.Count >= t.config.Patience {
		if !t.warned {
			slog.Warn("regula falsi endpoint is stagnating",
				"side", t.worst.Side,
				"value", t.worst.Value,
				"iterations", t.worst.Count,
			)
			t.warned = true
		}
		return true
	}
	return false
}

func (t *StagnationTracker) observe(side string, value float64, since, count int) {
	if t.worst == nil || count > t.worst.Count {
		t.worst = &Stagnation{Side: side, Value: value, Since: since, Count: count}
	}
}

// Worst returns the longest fixed-endpoint run seen so far, or nil
func (t *StagnationTracker) Worst() *Stagnation {
	return t.worst
}

// Reset clears the tracker's state
func (t *StagnationTracker) Reset() {
	*t = StagnationTracker{config: t.config}
}

// DetectStagnation replays history through a tracker and returns the
// longest fixed-endpoint run if it reached the patience threshold
func DetectStagnation(history []solve.BracketStep, config StagnationConfig) *Stagnation {
	t := NewStagnationTracker(config)
	stagnant := false
	for _, s := range history {
		if t.Update(s) {
			stagnant = true
		}
	}
	if !stagnant {
		return nil
	}
	return t.Worst()
}
