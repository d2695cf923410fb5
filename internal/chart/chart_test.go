package chart

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/rootlab/internal/solve"
)

func TestFunctionPlotWritesPNG(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	res, err := solve.Bisect(f, 1, 2, 1e-4, 100)
	if err != nil {
		t.Fatal(err)
	}

	iterates := make([]float64, len(res.History))
	for i, s := range res.History {
		iterates[i] = s.C
	}

	path := filepath.Join(t.TempDir(), "f.png")
	err = FunctionPlot(path, []Series{{Name: "x^2 - 2", F: f}}, FunctionOptions{
		Title:    "bisection",
		XMin:     0,
		XMax:     3,
		Brackets: []solve.Bracket{{A: 1, B: 2}},
		Iterates: iterates,
	})
	if err != nil {
		t.Fatalf("FunctionPlot failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Plot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Plot file is empty")
	}
}

func TestFunctionPlotSplitsAtPoles(t *testing.T) {
	segs := sample(func(x float64) float64 { return 1 / x }, -1, 1, 5)
	// x = 0 is a grid point: two segments of two points each
	if len(segs) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segs))
	}
	for i, s := range segs {
		if len(s) != 2 {
			t.Errorf("Segment %d: expected 2 points, got %d", i, len(s))
		}
	}
}

func TestFunctionPlotErrors(t *testing.T) {
	dir := t.TempDir()

	err := FunctionPlot(filepath.Join(dir, "a.png"), []Series{{Name: "sin", F: math.Sin}}, FunctionOptions{XMin: 1, XMax: 1})
	if !errors.Is(err, solve.ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}

	nan := func(float64) float64 { return math.NaN() }
	err = FunctionPlot(filepath.Join(dir, "b.png"), []Series{{Name: "nan", F: nan}}, FunctionOptions{XMin: 0, XMax: 1})
	if !errors.Is(err, ErrNothingToPlot) {
		t.Errorf("Expected ErrNothingToPlot, got %v", err)
	}
}

func TestErrorPlotWritesSVG(t *testing.T) {
	plain, err := solve.FixedPoint(math.Cos, 0.5, 1e-8, 100, false)
	if err != nil {
		t.Fatal(err)
	}
	accel, err := solve.FixedPoint(math.Cos, 0.5, 1e-8, 100, true)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "errors.svg")
	err = ErrorPlot(path, "fixed point", map[string][]solve.Step{
		"plain":  plain.Steps(),
		"aitken": accel.Steps(),
	})
	if err != nil {
		t.Fatalf("ErrorPlot failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Plot file missing: %v", err)
	}
}

func TestErrorPlotNothingToDraw(t *testing.T) {
	err := ErrorPlot(filepath.Join(t.TempDir(), "e.png"), "empty", map[string][]solve.Step{})
	if !errors.Is(err, ErrNothingToPlot) {
		t.Errorf("Expected ErrNothingToPlot, got %v", err)
	}
}
