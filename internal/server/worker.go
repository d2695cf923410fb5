package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
	"github.com/cwbudde/rootlab/internal/store"
)

// RunStore is the persistence the worker needs: records plus a directory
// for trace files
type RunStore interface {
	store.Store
	BaseDir() string
}

// runJob executes a job and persists it through st when st is not nil
func runJob(ctx context.Context, jm *JobManager, st RunStore, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}
	broadcastState(jm, jobID)

	logger := slog.With("job_id", jobID, "method", job.Config.Method)
	logger.Info("starting run")

	out, err := runner.Run(ctx, job.Config)

	switch {
	case ctx.Err() != nil:
		markJobCancelled(jm, jobID)
		return ctx.Err()

	case err != nil:
		var partial []solve.Step
		var derr *solve.DerivativeError
		if errors.As(err, &derr) {
			for _, s := range derr.Partial {
				partial = append(partial, s)
			}
		}
		markJobFailed(jm, jobID, err, partial)
		persist(st, jm, jobID, nil, err)
		return err
	}

	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Root = store.Float(out.Root)
		j.Iterations = out.Iterations
		j.Converged = out.Converged
		j.Stagnation = out.Stagnation
		j.Elapsed = out.Elapsed
		j.EndTime = &endTime
		j.steps = out.Steps
	})
	logger.Info("run completed",
		"root", out.Root,
		"iterations", out.Iterations,
		"converged", out.Converged,
		"elapsed", out.Elapsed,
	)

	persist(st, jm, jobID, out, nil)
	broadcastState(jm, jobID)
	return nil
}

func persist(st RunStore, jm *JobManager, jobID string, out *runner.Outcome, runErr error) {
	if st == nil {
		return
	}
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	rec := store.NewRunRecord(jobID, job.Config, out, runErr)
	if err := st.SaveRun(rec); err != nil {
		slog.Warn("failed to persist run", "job_id", jobID, "error", err)
		return
	}
	if err := store.SaveTrace(st.BaseDir(), jobID, job.steps); err != nil {
		slog.Warn("failed to persist trace", "job_id", jobID, "error", err)
	}
}

func broadcastState(jm *JobManager, jobID string) {
	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(stateEvent(job))
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error, partial []solve.Step) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
		j.steps = partial
	})
	slog.Warn("run failed", "job_id", jobID, "error", err)
	broadcastState(jm, jobID)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("run cancelled", "job_id", jobID)
	broadcastState(jm, jobID)
}
