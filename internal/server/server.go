package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
)

// Options configures a Server. Zero values fall back to runner defaults.
type Options struct {
	Addr         string
	Store        RunStore
	Tol          float64
	MaxIter      int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	jobs   *JobManager
	opts   Options
	server *http.Server

	// runs are bound to baseCtx so Shutdown stops them
	baseCtx context.Context
	stop    context.CancelFunc

	pingInterval time.Duration
}

// NewServer creates a new HTTP server
func NewServer(opts Options) *Server {
	if opts.Tol <= 0 {
		opts.Tol = runner.DefaultTol
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = runner.DefaultMaxIter
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Server{
		jobs:         NewJobManager(),
		opts:         opts,
		baseCtx:      ctx,
		stop:         stop,
		pingInterval: 30 * time.Second,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)

	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunsWithID)
	mux.HandleFunc("/api/v1/history", s.handleHistory)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	slog.Info("starting HTTP server", "addr", s.opts.Addr)
	return s.server.ListenAndServe()
}

// Shutdown cancels running jobs and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server", "running", len(s.jobs.GetRunningJobs()))
	s.stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleRuns handles /api/v1/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.jobs.ListJobs())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunsWithID handles /api/v1/runs/:id/*
func (s *Server) handleRunsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "run ID required")
		return
	}

	jobID := parts[0]
	sub := ""
	if len(parts) > 1 {
		sub = parts[1]
	}

	switch sub {
	case "", "status":
		s.handleGetRun(w, r, jobID)
	case "stream":
		s.handleRunStream(w, r, jobID)
	case "ws":
		s.handleRunWebSocket(w, r, jobID)
	case "trace.csv":
		s.handleTraceCSV(w, r, jobID)
	case "cancel":
		s.handleCancelRun(w, r, jobID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleCreateRun handles POST /api/v1/runs
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var cfg runner.RunConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	cfg.ApplyDefaults(s.opts.Tol, s.opts.MaxIter)
	if _, err := cfg.Compile(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := s.jobs.CreateJob(cfg)

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.jobs.setCancel(job.ID, cancel)
	go func() {
		defer cancel()
		defer s.jobs.clearCancel(job.ID)
		runJob(ctx, s.jobs, s.opts.Store, job.ID)
	}()

	writeJSON(w, http.StatusCreated, job)
}

// handleGetRun handles GET /api/v1/runs/:id
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobs.GetJob(jobID)
	if !exists {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelRun handles POST /api/v1/runs/:id/cancel
func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch err := s.jobs.Cancel(jobID); {
	case errors.Is(err, ErrJobNotFound):
		writeError(w, http.StatusNotFound, "run not found")
	case errors.Is(err, ErrJobFinished):
		writeError(w, http.StatusConflict, err.Error())
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

// handleTraceCSV handles GET /api/v1/runs/:id/trace.csv
func (s *Server) handleTraceCSV(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobs.GetJob(jobID)
	if !exists {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if !job.State.Terminal() {
		writeError(w, http.StatusConflict, "run still in progress")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", jobID+".csv"))
	if err := render.WriteCSV(w, job.Steps()); err != nil {
		slog.Error("failed to write trace", "job_id", jobID, "error", err)
	}
}

// handleHistory handles GET /api/v1/history, the persisted runs
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "no run store configured")
		return
	}

	runs, err := s.opts.Store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
