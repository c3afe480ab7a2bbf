package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
	"github.com/campuskit/campuskit-backend/internal/platform/envutil"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/types"
)

// Worker polls job_run for runnable work and executes registered pipelines.
// Multiple workers can run against the same database; the claim query's row
// lock keeps them from double-executing a run.
type Worker struct {
	log      *logger.Logger
	jobs     repos.JobRunRepo
	registry *runtime.Registry

	pollInterval time.Duration
	staleRunning time.Duration
	retryDelay   time.Duration
	jobTimeout   time.Duration
	maxAttempts  int

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(baseLog *logger.Logger, jobsRepo repos.JobRunRepo, registry *runtime.Registry) *Worker {
	return &Worker{
		log:          baseLog.With("component", "JobWorker"),
		jobs:         jobsRepo,
		registry:     registry,
		pollInterval: envutil.Duration("JOB_POLL_INTERVAL", 2*time.Second),
		staleRunning: envutil.Duration("JOB_STALE_RUNNING", 5*time.Minute),
		retryDelay:   envutil.Duration("JOB_RETRY_DELAY", 30*time.Second),
		jobTimeout:   envutil.Duration("JOB_TIMEOUT", 10*time.Minute),
		maxAttempts:  envutil.Int("JOB_MAX_ATTEMPTS", 3),
	}
}

func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.loop(ctx)
	w.log.Info("job worker started",
		"poll_interval", w.pollInterval,
		"job_types", w.registry.Types(),
	)
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.done != nil {
		<-w.done
	}
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain all runnable work before sleeping again.
			for {
				claimed, err := w.claimAndRun(ctx)
				if err != nil {
					w.log.Error("job claim failed", "error", err)
					break
				}
				if !claimed {
					break
				}
			}
		}
	}
}

func (w *Worker) claimAndRun(ctx context.Context) (bool, error) {
	run, err := w.jobs.ClaimNextRunnable(ctx, w.registry.Types(), w.staleRunning, w.maxAttempts, w.retryDelay)
	if err != nil {
		return false, err
	}
	if run == nil {
		return false, nil
	}
	w.execute(ctx, run)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, run *types.JobRun) {
	handler, ok := w.registry.Get(run.JobType)
	if !ok {
		w.finalize(ctx, run, fmt.Errorf("no handler registered for job type %q", run.JobType))
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	hbStop := make(chan struct{})
	go w.heartbeatLoop(jobCtx, run, hbStop)

	err := w.runSafely(handler, runtime.NewContext(jobCtx, w.log, run, w.jobs))
	close(hbStop)

	if err != nil {
		w.finalize(ctx, run, err)
		return
	}
	w.log.Info("job finished", "job_id", run.ID, "job_type", run.JobType, "attempts", run.Attempts)
}

func (w *Worker) runSafely(handler runtime.Handler, rc *runtime.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return handler(rc)
}

// finalize requeues a failed run while attempts remain, otherwise marks it
// failed for good. The retry delay is enforced by the claim query, not here.
func (w *Worker) finalize(ctx context.Context, run *types.JobRun, jobErr error) {
	now := time.Now()
	status := types.JobQueued
	if run.Attempts >= w.maxAttempts {
		status = types.JobFailed
	}
	fields := map[string]interface{}{
		"status":        status,
		"error":         jobErr.Error(),
		"last_error_at": now,
	}
	if err := w.jobs.UpdateFields(ctx, nil, run.ID, fields); err != nil {
		w.log.Error("failed to record job failure", "job_id", run.ID, "error", err)
	}
	w.log.Warn("job failed",
		"job_id", run.ID,
		"job_type", run.JobType,
		"attempts", run.Attempts,
		"terminal", status == types.JobFailed,
		"error", jobErr,
	)
}

func (w *Worker) heartbeatLoop(ctx context.Context, run *types.JobRun, stop <-chan struct{}) {
	interval := w.staleRunning / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := w.jobs.Heartbeat(ctx, nil, run.ID); err != nil {
				w.log.Warn("job heartbeat failed", "job_id", run.ID, "error", err)
			}
		}
	}
}
