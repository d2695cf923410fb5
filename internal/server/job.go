package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
	"github.com/cwbudde/rootlab/internal/store"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Terminal reports whether the state is final
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobFinished = errors.New("job already finished")
)

// Job is one solver run submitted over HTTP.
// Completed covers both converged and exhausted runs; Failed means the
// solver rejected its input.
type Job struct {
	ID         string             `json:"id"`
	State      JobState           `json:"state"`
	Config     runner.RunConfig   `json:"config"`
	Root       store.Float        `json:"root"`
	Iterations int                `json:"iterations"`
	Converged  bool               `json:"converged"`
	Stagnation *runner.Stagnation `json:"stagnation,omitempty"`
	Elapsed    time.Duration      `json:"elapsed"`
	StartTime  time.Time          `json:"startTime"`
	EndTime    *time.Time         `json:"endTime,omitempty"`
	Error      string             `json:"error,omitempty"`

	// steps is set once when the job reaches a terminal state
	steps []solve.Step
}

// Steps returns the recorded history; for a failed Newton run this is the
// partial history before the derivative vanished
func (j *Job) Steps() []solve.Step {
	return j.steps
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	cancels     map[string]context.CancelFunc
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		cancels:     make(map[string]context.CancelFunc),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob registers a pending job and returns a snapshot of it
func (jm *JobManager) CreateJob(config runner.RunConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		Root:      store.Float(0),
		StartTime: time.Now(),
	}
	jm.jobs[job.ID] = job

	snapshot := *job
	return &snapshot
}

// GetJob returns a snapshot of the job
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// ListJobs returns snapshots of all jobs, newest first
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].StartTime.After(jobs[k].StartTime)
	})
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return ErrJobNotFound
	}
	updateFn(job)
	return nil
}

// GetRunningJobs returns all jobs currently in the running state
func (jm *JobManager) GetRunningJobs() []*Job {
	var running []*Job
	for _, job := range jm.ListJobs() {
		if job.State == StateRunning {
			running = append(running, job)
		}
	}
	return running
}

func (jm *JobManager) setCancel(id string, cancel context.CancelFunc) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.cancels[id] = cancel
}

func (jm *JobManager) clearCancel(id string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	delete(jm.cancels, id)
}

// Cancel requests cancellation of a pending or running job
func (jm *JobManager) Cancel(id string) error {
	jm.mu.Lock()
	job, exists := jm.jobs[id]
	if !exists {
		jm.mu.Unlock()
		return ErrJobNotFound
	}
	if job.State.Terminal() {
		jm.mu.Unlock()
		return ErrJobFinished
	}
	cancel := jm.cancels[id]
	jm.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}
