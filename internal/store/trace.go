package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cwbudde/rootlab/internal/solve"
)

// TraceEntry is one line of trace.jsonl
type TraceEntry struct {
	Iteration int   `json:"iteration"`
	Estimate  Float `json:"estimate"`
	Error     Float `json:"error"`

	// Step is the method-specific record; omitted if it could not be encoded
	Step json.RawMessage `json:"step,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewTraceEntry converts a solver step
func NewTraceEntry(s solve.Step) TraceEntry {
	raw, err := json.Marshal(s)
	if err != nil {
		raw = nil
	}
	return TraceEntry{
		Iteration: s.Index(),
		Estimate:  Float(s.Estimate()),
		Error:     Float(s.ErrorEstimate()),
		Step:      raw,
		Timestamp: time.Now(),
	}
}

func tracePath(baseDir, id string) string {
	return filepath.Join(runDir(baseDir, id), "trace.jsonl")
}

// TraceWriter appends entries to a run's trace.jsonl through a buffer.
// It is safe for concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewTraceWriter opens <baseDir>/runs/<id>/trace.jsonl, truncating it
// unless append is true
func NewTraceWriter(baseDir, id string, append bool) (*TraceWriter, error) {
	if err := os.MkdirAll(runDir(baseDir, id), 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	path := tracePath(baseDir, id)
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	return &TraceWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write buffers one entry
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal trace entry: %w", err)
	}
	if _, err := tw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}
	return tw.writer.WriteByte('\n')
}

// WriteSteps writes one entry per step
func (tw *TraceWriter) WriteSteps(steps []solve.Step) error {
	for _, s := range steps {
		if err := tw.Write(NewTraceEntry(s)); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered entries and syncs the file
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace writer: %w", err)
	}
	return tw.file.Sync()
}

// Close flushes and closes the file
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		tw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	return tw.file.Close()
}

// Path returns the trace file path
func (tw *TraceWriter) Path() string {
	return tw.path
}

// SaveTrace replaces the trace of id with steps
func SaveTrace(baseDir, id string, steps []solve.Step) error {
	tw, err := NewTraceWriter(baseDir, id, false)
	if err != nil {
		return err
	}
	if err := tw.WriteSteps(steps); err != nil {
		tw.Close()
		return err
	}
	return tw.Close()
}

// TraceReader reads entries from a run's trace.jsonl
type TraceReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewTraceReader opens the trace of id; a missing file matches ErrNotFound
func NewTraceReader(baseDir, id string) (*TraceReader, error) {
	file, err := os.Open(tracePath(baseDir, id))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &TraceReader{file: file, scanner: scanner}, nil
}

// Read returns the next entry or io.EOF
func (tr *TraceReader) Read() (*TraceEntry, error) {
	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan trace line: %w", err)
		}
		return nil, io.EOF
	}

	var entry TraceEntry
	if err := json.Unmarshal(tr.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace entry: %w", err)
	}
	return &entry, nil
}

// ReadAll reads every remaining entry
func (tr *TraceReader) ReadAll() ([]TraceEntry, error) {
	var entries []TraceEntry
	for {
		entry, err := tr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
}

// Close closes the underlying file
func (tr *TraceReader) Close() error {
	return tr.file.Close()
}

// LoadTrace reads the complete trace of id
func LoadTrace(baseDir, id string) ([]TraceEntry, error) {
	tr, err := NewTraceReader(baseDir, id)
	if err != nil {
		return nil, err
	}
	defer tr.Close()
	return tr.ReadAll()
}
