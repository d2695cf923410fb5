package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// FSStore implements Store on the filesystem. Each run lives in
// <baseDir>/runs/<id>/ with run.json and trace.jsonl.
//
// Writes go to a temp file that is renamed into place, so readers never
// see a partial record.
type FSStore struct {
	baseDir string
}

// NewFSStore creates the base directory if needed
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the root directory of the store
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

func runDir(baseDir, id string) string {
	return filepath.Join(baseDir, "runs", id)
}

func (fs *FSStore) recordPath(id string) string {
	return filepath.Join(runDir(fs.baseDir, id), "run.json")
}

func (fs *FSStore) SaveRun(rec *RunRecord) error {
	if rec == nil {
		return errors.New("run record cannot be nil")
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(runDir(fs.baseDir, rec.ID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	final := fs.recordPath(rec.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp run file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename run file: %w", err)
	}

	slog.Debug("run saved", "run_id", rec.ID, "path", final)
	return nil
}

func (fs *FSStore) LoadRun(id string) (*RunRecord, error) {
	if id == "" {
		return nil, errors.New("run id cannot be empty")
	}

	data, err := os.ReadFile(fs.recordPath(id))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize run: %w", err)
	}
	return &rec, nil
}

// ListRuns returns runs ordered by timestamp, newest first. Unreadable
// records are logged and skipped.
func (fs *FSStore) ListRuns() ([]RunInfo, error) {
	entries, err := os.ReadDir(filepath.Join(fs.baseDir, "runs"))
	if os.IsNotExist(err) {
		return []RunInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := make([]RunInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := fs.LoadRun(entry.Name())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Warn("skipping unreadable run", "run_id", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, rec.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})
	return infos, nil
}

func (fs *FSStore) DeleteRun(id string) error {
	if id == "" {
		return errors.New("run id cannot be empty")
	}

	dir := runDir(fs.baseDir, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("run deleted", "run_id", id)
	return nil
}
