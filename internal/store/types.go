package store

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/rootlab/internal/runner"
)

// RunRecord is the persisted summary of one solver run.
// The per-iteration history lives next to it in trace.jsonl.
type RunRecord struct {
	ID         string           `json:"id"`
	Config     runner.RunConfig `json:"config"`
	Root       Float            `json:"root"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`

	// Error holds the precondition failure of a run that produced no result
	Error string `json:"error,omitempty"`

	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
}

// RunInfo is the listing view of a RunRecord
type RunInfo struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	Expression string    `json:"expression"`
	Root       Float     `json:"root"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Failed     bool      `json:"failed"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRunRecord builds a record from a finished run. Exactly one of out and
// runErr is expected to be non-nil.
func NewRunRecord(id string, cfg runner.RunConfig, out *runner.Outcome, runErr error) *RunRecord {
	rec := &RunRecord{
		ID:        id,
		Config:    cfg,
		Timestamp: time.Now(),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if out != nil {
		rec.Root = Float(out.Root)
		rec.Iterations = out.Iterations
		rec.Converged = out.Converged
		rec.Elapsed = out.Elapsed
	}
	return rec
}

// ToInfo converts a record to its listing view
func (r *RunRecord) ToInfo() RunInfo {
	e := r.Config.Func
	if e == "" {
		e = r.Config.G
	}
	return RunInfo{
		ID:         r.ID,
		Method:     string(r.Config.Method),
		Expression: e,
		Root:       r.Root,
		Iterations: r.Iterations,
		Converged:  r.Converged,
		Failed:     r.Error != "",
		Timestamp:  r.Timestamp,
	}
}

// Validate checks that the record is internally consistent
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Config.Method == "" {
		return &ValidationError{Field: "Config.Method", Reason: "cannot be empty"}
	}
	if !(r.Config.Tol > 0) {
		return &ValidationError{Field: "Config.Tol", Reason: "must be positive"}
	}
	if r.Config.MaxIter < 1 {
		return &ValidationError{Field: "Config.MaxIter", Reason: "must be at least 1"}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.Iterations > r.Config.MaxIter {
		return &ValidationError{
			Field:  "Iterations",
			Reason: fmt.Sprintf("exceeds the iteration budget of %d", r.Config.MaxIter),
		}
	}
	if r.Error != "" && (r.Iterations != 0 || r.Converged) {
		return &ValidationError{Field: "Error", Reason: "a failed run cannot carry a result"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError represents an invalid record
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// Reproduces checks that out repeats the stored result exactly. The
// solvers are deterministic, so any difference points at a changed
// function definition or solver.
func (r *RunRecord) Reproduces(out *runner.Outcome) error {
	if r.Iterations != out.Iterations {
		return &MismatchError{Field: "Iterations", Expected: fmt.Sprint(r.Iterations), Actual: fmt.Sprint(out.Iterations)}
	}
	if r.Converged != out.Converged {
		return &MismatchError{Field: "Converged", Expected: fmt.Sprint(r.Converged), Actual: fmt.Sprint(out.Converged)}
	}
	stored, got := float64(r.Root), out.Root
	if stored != got && !(math.IsNaN(stored) && math.IsNaN(got)) {
		return &MismatchError{Field: "Root", Expected: fmt.Sprint(stored), Actual: fmt.Sprint(got)}
	}
	return nil
}

// MismatchError reports a field that differs between a stored run and its rerun
type MismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return "mismatch: " + e.Field + " (expected " + e.Expected + ", got " + e.Actual + ")"
}
