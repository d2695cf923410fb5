package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cwbudde/rootlab/internal/solve"
	"github.com/cwbudde/rootlab/internal/store"
)

const (
	EventStep  = "step"
	EventState = "state"
)

// Event is what stream subscribers receive: one "step" event per recorded
// iteration, and "state" events for lifecycle changes. The last event of
// a stream is always the terminal state event.
type Event struct {
	JobID string   `json:"jobId"`
	Type  string   `json:"type"`
	State JobState `json:"state"`

	Iteration int           `json:"iteration,omitempty"`
	Estimate  *store.Float  `json:"estimate,omitempty"`
	ErrorEst  *store.Float  `json:"errorEstimate,omitempty"`
	Columns   []string      `json:"columns,omitempty"`
	Values    []store.Float `json:"values,omitempty"`

	Root       *store.Float `json:"root,omitempty"`
	Iterations int          `json:"iterations,omitempty"`
	Converged  bool         `json:"converged,omitempty"`
	Error      string       `json:"error,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

func stepEvent(jobID string, s solve.Step) Event {
	est, e := store.Float(s.Estimate()), store.Float(s.ErrorEstimate())
	return Event{
		JobID:     jobID,
		Type:      EventStep,
		State:     StateRunning,
		Iteration: s.Index(),
		Estimate:  &est,
		ErrorEst:  &e,
		Columns:   s.Columns(),
		Values:    store.Floats(s.Values()),
		Timestamp: time.Now(),
	}
}

func stateEvent(job *Job) Event {
	ev := Event{
		JobID:     job.ID,
		Type:      EventState,
		State:     job.State,
		Error:     job.Error,
		Timestamp: time.Now(),
	}
	if job.State == StateCompleted {
		root := job.Root
		ev.Root = &root
		ev.Iterations = job.Iterations
		ev.Converged = job.Converged
	}
	return ev
}

// replay returns the full event sequence of a finished job
func replay(job *Job) []Event {
	events := make([]Event, 0, len(job.steps)+1)
	for _, s := range job.steps {
		events = append(events, stepEvent(job.ID, s))
	}
	return append(events, stateEvent(job))
}

// EventBroadcaster fans out job state changes to stream handlers
type EventBroadcaster struct {
	mu        sync.Mutex
	clients   map[string]map[chan Event]bool
	lastEvent map[string]Event
}

// NewEventBroadcaster creates a new event broadcaster
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients:   make(map[string]map[chan Event]bool),
		lastEvent: make(map[string]Event),
	}
}

// Subscribe adds a client for a job. The last event, if any, is delivered immediately.
func (eb *EventBroadcaster) Subscribe(jobID string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 10)
	if eb.clients[jobID] == nil {
		eb.clients[jobID] = make(map[chan Event]bool)
	}
	eb.clients[jobID][ch] = true

	if last, ok := eb.lastEvent[jobID]; ok {
		ch <- last
	}

	slog.Debug("stream client subscribed", "job_id", jobID, "clients", len(eb.clients[jobID]))
	return ch
}

// Unsubscribe removes and closes a client channel
func (eb *EventBroadcaster) Unsubscribe(jobID string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	clients, ok := eb.clients[jobID]
	if !ok || !clients[ch] {
		return
	}
	delete(clients, ch)
	close(ch)
	if len(clients) == 0 {
		delete(eb.clients, jobID)
	}
}

// Broadcast sends an event to every subscriber of its job. Slow clients
// miss events rather than block the worker.
func (eb *EventBroadcaster) Broadcast(event Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.lastEvent[event.JobID] = event
	for ch := range eb.clients[event.JobID] {
		select {
		case ch <- event:
		default:
			slog.Warn("stream channel full, dropping event", "job_id", event.JobID, "type", event.Type)
		}
	}
}

// followJob emits the current state, waits until the job is terminal, then
// emits its step history and the terminal state. ping is called on idle
// intervals to keep the connection alive.
func (s *Server) followJob(ctx context.Context, jobID string, emit func(Event) error, ping func() error) error {
	ch := s.jobs.broadcaster.Subscribe(jobID)
	defer s.jobs.broadcaster.Unsubscribe(jobID, ch)

	job, ok := s.jobs.GetJob(jobID)
	if !ok {
		return ErrJobNotFound
	}
	if !job.State.Terminal() {
		if err := emit(stateEvent(job)); err != nil {
			return err
		}
	}

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	for {
		job, ok := s.jobs.GetJob(jobID)
		if !ok {
			return ErrJobNotFound
		}
		if job.State.Terminal() {
			for _, ev := range replay(job) {
				if err := emit(ev); err != nil {
					return err
				}
			}
			return nil
		}

		select {
		case <-ctx.Done():
			slog.Debug("stream client disconnected", "job_id", jobID)
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
		case <-pingTicker.C:
			if ping != nil {
				if err := ping(); err != nil {
					return err
				}
			}
		}
	}
}

// handleRunStream handles GET /api/v1/runs/:id/stream (server-sent events)
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobs.GetJob(jobID); !exists {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emit := func(ev Event) error {
		if err := writeSSEEvent(w, ev); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}
	ping := func() error {
		if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := s.followJob(r.Context(), jobID, emit, ping); err != nil && r.Context().Err() == nil {
		slog.Error("stream failed", "job_id", jobID, "error", err)
	}
}

// writeSSEEvent writes an event in SSE format
func writeSSEEvent(w http.ResponseWriter, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
