package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/cwbudde/rootlab/internal/solve"
)

func bisectSteps(t *testing.T) []solve.Step {
	t.Helper()
	res, err := solve.Bisect(func(x float64) float64 { return x*x - 2 }, 1, 2, 1e-4, 100)
	if err != nil {
		t.Fatal(err)
	}
	return res.Steps()
}

func TestTraceWriter_WriteAndRead(t *testing.T) {
	dir := t.TempDir()
	steps := bisectSteps(t)

	if err := SaveTrace(dir, "run-trace", steps); err != nil {
		t.Fatalf("SaveTrace failed: %v", err)
	}

	entries, err := LoadTrace(dir, "run-trace")
	if err != nil {
		t.Fatalf("LoadTrace failed: %v", err)
	}
	if len(entries) != len(steps) {
		t.Fatalf("Expected %d entries, got %d", len(steps), len(entries))
	}

	for i, e := range entries {
		if e.Iteration != i+1 {
			t.Errorf("Entry %d: expected iteration %d, got %d", i, i+1, e.Iteration)
		}
		if float64(e.Estimate) != steps[i].Estimate() {
			t.Errorf("Entry %d: estimate mismatch", i)
		}
	}

	var first solve.BracketStep
	if err := json.Unmarshal(entries[0].Step, &first); err != nil {
		t.Fatalf("Step payload not decodable: %v", err)
	}
	if first.A != 1 || first.B != 2 || first.C != 1.5 {
		t.Errorf("Unexpected first step: %+v", first)
	}
}

func TestTraceWriter_Append(t *testing.T) {
	dir := t.TempDir()
	steps := bisectSteps(t)

	tw, err := NewTraceWriter(dir, "run-append", false)
	if err != nil {
		t.Fatal(err)
	}
	tw.WriteSteps(steps[:2])
	tw.Close()

	tw, err = NewTraceWriter(dir, "run-append", true)
	if err != nil {
		t.Fatal(err)
	}
	tw.WriteSteps(steps[2:4])
	tw.Close()

	entries, err := LoadTrace(dir, "run-append")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected 4 entries after append, got %d", len(entries))
	}

	// truncate mode replaces the file
	if err := SaveTrace(dir, "run-append", steps[:1]); err != nil {
		t.Fatal(err)
	}
	entries, _ = LoadTrace(dir, "run-append")
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry after rewrite, got %d", len(entries))
	}
}

func TestTraceWriter_Flush(t *testing.T) {
	dir := t.TempDir()
	tw, err := NewTraceWriter(dir, "run-flush", false)
	if err != nil {
		t.Fatal(err)
	}
	defer tw.Close()

	tw.Write(TraceEntry{Iteration: 1, Estimate: 1.5, Error: 0.5})

	info, _ := os.Stat(tw.Path())
	if info.Size() != 0 {
		t.Errorf("Expected buffered write, file size %d", info.Size())
	}
	if err := tw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	info, _ = os.Stat(tw.Path())
	if info.Size() == 0 {
		t.Error("Expected data on disk after flush")
	}
}

func TestTraceReader_ReadIteratively(t *testing.T) {
	dir := t.TempDir()
	if err := SaveTrace(dir, "run-iter", bisectSteps(t)[:3]); err != nil {
		t.Fatal(err)
	}

	tr, err := NewTraceReader(dir, "run-iter")
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	count := 0
	for {
		_, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("Expected 3 entries, got %d", count)
	}
}

func TestTraceReader_NotFound(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTraceEntry_NonFiniteValues(t *testing.T) {
	step := solve.NewtonStep{K: 1, X: 1, FX: math.NaN(), FPrimeX: 1, XNext: math.NaN(), Err: math.NaN()}
	entry := NewTraceEntry(step)

	if entry.Step != nil {
		t.Errorf("Expected step payload to be dropped, got %s", entry.Step)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Entry with NaN values must encode: %v", err)
	}

	var back TraceEntry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(float64(back.Error)) {
		t.Errorf("Expected NaN error after decoding, got %v", back.Error)
	}
}

func TestTraceWriter_ConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	tw, err := NewTraceWriter(dir, "run-concurrent", false)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := tw.Write(TraceEntry{Iteration: i, Estimate: Float(i)}); err != nil {
				t.Error(fmt.Errorf("write %d: %w", i, err))
			}
		}(i)
	}
	wg.Wait()
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadTrace(dir, "run-concurrent")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 50 {
		t.Errorf("Expected 50 entries, got %d", len(entries))
	}
}
