package store

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
)

func TestRunRecord_JSONRoundTrip(t *testing.T) {
	rec := createTestRecord("json-1")

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back RunRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if back.ID != rec.ID || back.Root != rec.Root || back.Config != rec.Config {
		t.Errorf("Round trip mismatch: %+v vs %+v", back, rec)
	}
}

func TestRunRecord_NonFiniteRoot(t *testing.T) {
	rec := createTestRecord("nan-root")
	rec.Root = Float(math.NaN())
	rec.Converged = false

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal with NaN root failed: %v", err)
	}
	if !strings.Contains(string(data), `"root":null`) {
		t.Errorf("Expected null root, got %s", data)
	}

	var back RunRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(float64(back.Root)) {
		t.Errorf("Expected NaN after decoding null, got %v", back.Root)
	}
}

func TestRunRecord_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunRecord)
		field  string
	}{
		{"empty id", func(r *RunRecord) { r.ID = "" }, "ID"},
		{"no method", func(r *RunRecord) { r.Config.Method = "" }, "Config.Method"},
		{"zero tol", func(r *RunRecord) { r.Config.Tol = 0 }, "Config.Tol"},
		{"zero budget", func(r *RunRecord) { r.Config.MaxIter = 0 }, "Config.MaxIter"},
		{"negative iterations", func(r *RunRecord) { r.Iterations = -1 }, "Iterations"},
		{"over budget", func(r *RunRecord) { r.Iterations = 101 }, "Iterations"},
		{"failed with result", func(r *RunRecord) { r.Error = "boom" }, "Error"},
		{"zero timestamp", func(r *RunRecord) { r.Timestamp = time.Time{} }, "Timestamp"},
	}

	if err := createTestRecord("ok").Validate(); err != nil {
		t.Fatalf("Valid record rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := createTestRecord("v")
			tt.mutate(rec)

			var verr *ValidationError
			if err := rec.Validate(); !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestNewRunRecord(t *testing.T) {
	cfg := runner.RunConfig{Method: solve.MethodFixedPoint, G: "cos(x)", X0: 0.5, Tol: 1e-6, MaxIter: 100}
	out := &runner.Outcome{Method: solve.MethodFixedPoint, Root: 0.739, Iterations: 34, Converged: true}

	rec := NewRunRecord("new-1", cfg, out, nil)
	if rec.Iterations != 34 || !rec.Converged || float64(rec.Root) != 0.739 {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("Record from outcome should validate: %v", err)
	}

	failed := NewRunRecord("new-2", cfg, nil, solve.ErrInvalidBracket)
	if failed.Error == "" || failed.Iterations != 0 {
		t.Errorf("Unexpected failed record: %+v", failed)
	}
	if err := failed.Validate(); err != nil {
		t.Errorf("Failed record should validate: %v", err)
	}
}

func TestRunRecord_ToInfo(t *testing.T) {
	info := createTestRecord("info-1").ToInfo()
	if info.Method != "bisection" || info.Expression != "x^2 - 2" || info.Failed {
		t.Errorf("Unexpected info: %+v", info)
	}

	fp := createTestRecord("info-2")
	fp.Config = runner.RunConfig{Method: solve.MethodFixedPoint, G: "cos(x)", Tol: 1e-6, MaxIter: 10}
	if got := fp.ToInfo().Expression; got != "cos(x)" {
		t.Errorf("Expected g as expression, got %q", got)
	}
}

func TestRunRecord_Reproduces(t *testing.T) {
	rec := createTestRecord("rep")

	same := &runner.Outcome{Root: float64(rec.Root), Iterations: rec.Iterations, Converged: true}
	if err := rec.Reproduces(same); err != nil {
		t.Errorf("Expected identical outcome to reproduce, got %v", err)
	}

	moved := &runner.Outcome{Root: float64(rec.Root) + 1e-12, Iterations: rec.Iterations, Converged: true}
	var merr *MismatchError
	if err := rec.Reproduces(moved); !errors.As(err, &merr) || merr.Field != "Root" {
		t.Errorf("Expected Root mismatch, got %v", err)
	}

	fewer := &runner.Outcome{Root: float64(rec.Root), Iterations: 3, Converged: true}
	if err := rec.Reproduces(fewer); !errors.As(err, &merr) || merr.Field != "Iterations" {
		t.Errorf("Expected Iterations mismatch, got %v", err)
	}
}
