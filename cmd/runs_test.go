package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/config"
	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
	"github.com/cwbudde/rootlab/internal/store"
)

func testCommand(t *testing.T, dataDir string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	originalCfg, originalDir := cfg, runsDataDir
	cfg = config.Default()
	runsDataDir = dataDir
	t.Cleanup(func() { cfg, runsDataDir = originalCfg, originalDir })

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func saveTestRun(t *testing.T, st *store.FSStore, id string, age time.Duration) *store.RunRecord {
	t.Helper()

	rc := runner.RunConfig{Method: solve.MethodBisection, Func: "x^2 - 2", A: 1, B: 2, Tol: 1e-6, MaxIter: 100}
	out, err := runner.Run(context.Background(), rc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rec := store.NewRunRecord(id, rc, out, nil)
	rec.Timestamp = time.Now().Add(-age)
	if err := st.SaveRun(rec); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}
	if err := store.SaveTrace(st.BaseDir(), id, out.Steps); err != nil {
		t.Fatalf("Failed to save trace: %v", err)
	}
	return rec
}

func TestSelectRunsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{ID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{ID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 0, 7)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}
	ids := map[string]bool{toDelete[0].ID: true, toDelete[1].ID: true}
	if !ids["run1"] || !ids["run4"] {
		t.Error("Expected run1 and run4 to be selected for deletion")
	}
}

func TestSelectRunsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{ID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{ID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 2, 0)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}
	// oldest first
	if toDelete[0].ID != "run4" || toDelete[1].ID != "run1" {
		t.Errorf("Expected run4 and run1, got %s and %s", toDelete[0].ID, toDelete[1].ID)
	}
}

func TestSelectRunsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{ID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{ID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "run4", Timestamp: now.AddDate(0, 0, -30)},
		{ID: "run5", Timestamp: now.AddDate(0, 0, -2)},
	}

	toDelete := selectRunsForDeletion(infos, 2, 7)

	// run4 and run1 by age, run2 by count; no duplicates
	if len(toDelete) != 3 {
		t.Errorf("Expected 3 runs to delete, got %d", len(toDelete))
	}
}

func TestGetDirSize(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte("Hello, World!")
	if err := os.WriteFile(filepath.Join(tmpDir, "test.txt"), content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	size, err := getDirSize(tmpDir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}
	if size < int64(len(content)) {
		t.Errorf("Expected size >= %d, got %d", len(content), size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		if result := formatBytes(tt.bytes); result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, result, tt.expected)
		}
	}
}

func TestRunsListCommand_NoRuns(t *testing.T) {
	cmd, buf := testCommand(t, t.TempDir())

	if err := runListRuns(cmd, nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No runs found") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRunsListCommand_WithRuns(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	saveTestRun(t, st, "test-run-id", 0)

	cmd, buf := testCommand(t, tmpDir)
	if err := runListRuns(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "test-run-id") || !strings.Contains(output, "converged") {
		t.Errorf("run missing from listing: %q", output)
	}
	if !strings.Contains(output, "Total runs: 1") {
		t.Errorf("total missing from listing: %q", output)
	}
}

func TestRunsShowCommand(t *testing.T) {
	tmpDir := t.TempDir()
	st, _ := store.NewFSStore(tmpDir)
	rec := saveTestRun(t, st, "show-me", 0)

	cmd, buf := testCommand(t, tmpDir)
	if err := runShowRun(cmd, []string{"show-me"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// one header plus one line per iteration after the title and summary
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != rec.Iterations+3 {
		t.Errorf("Expected %d lines, got %d", rec.Iterations+3, len(lines))
	}
}

func TestRunsRerunCommand(t *testing.T) {
	tmpDir := t.TempDir()
	st, _ := store.NewFSStore(tmpDir)
	saveTestRun(t, st, "rerun-me", 0)

	cmd, _ := testCommand(t, tmpDir)
	if err := runRerun(cmd, []string{"rerun-me"}); err != nil {
		t.Errorf("stored run should reproduce, got %v", err)
	}

	if err := runRerun(cmd, []string{"missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunsRerunCommand_Mismatch(t *testing.T) {
	tmpDir := t.TempDir()
	st, _ := store.NewFSStore(tmpDir)
	rec := saveTestRun(t, st, "tampered", 0)

	rec.Iterations++
	if err := st.SaveRun(rec); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	cmd, _ := testCommand(t, tmpDir)
	var mismatch *store.MismatchError
	if err := runRerun(cmd, []string{"tampered"}); !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if mismatch.Field != "Iterations" {
		t.Errorf("expected Iterations mismatch, got %s", mismatch.Field)
	}
}

func TestRunsCleanCommand_NoFlags(t *testing.T) {
	cmd, _ := testCommand(t, t.TempDir())

	keepLast = 0
	olderThanDays = 0

	if err := runCleanRuns(cmd, nil); err == nil {
		t.Error("Expected error when no flags specified")
	}
}

func TestRunsCleanCommand_WithForce(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	saveTestRun(t, st, "old-run", 30*24*time.Hour)
	saveTestRun(t, st, "new-run", 0)

	cmd, _ := testCommand(t, tmpDir)

	keepLast = 0
	olderThanDays = 7
	forceClean = true
	defer func() { olderThanDays, forceClean = 0, false }()

	if err := runCleanRuns(cmd, nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if _, err := st.LoadRun("old-run"); !errors.Is(err, store.ErrNotFound) {
		t.Error("Expected old run to be deleted")
	}
	if _, err := st.LoadRun("new-run"); err != nil {
		t.Errorf("Expected new run to be kept, got %v", err)
	}
}

func TestRunsCleanCommand_Aborted(t *testing.T) {
	tmpDir := t.TempDir()
	st, _ := store.NewFSStore(tmpDir)
	saveTestRun(t, st, "old-run", 30*24*time.Hour)

	cmd, buf := testCommand(t, tmpDir)
	cmd.SetIn(strings.NewReader("n\n"))

	olderThanDays = 7
	defer func() { olderThanDays = 0 }()

	if err := runCleanRuns(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Aborted.") {
		t.Errorf("expected abort message, got %q", buf.String())
	}
	if _, err := st.LoadRun("old-run"); err != nil {
		t.Error("aborted clean should keep the run")
	}
}
