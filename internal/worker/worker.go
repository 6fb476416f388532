package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type JobHandler func(ctx context.Context) error

// Job is a recurring unit of background work. A failed run is logged and the
// job waits for its next tick; runs are never retried.
type Job struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Timeout    time.Duration
	Handler    JobHandler
}

type Worker struct {
	jobs    []Job
	log     zerolog.Logger
	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

var ErrAlreadyStarted = errors.New("worker already started")

func NewWorker(log zerolog.Logger) *Worker {
	return &Worker{log: log.With().Str("component", "worker").Logger()}
}

func (w *Worker) Register(job Job) error {
	if job.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	if job.Handler == nil {
		return fmt.Errorf("job %s: handler is required", job.Name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.jobs = append(w.jobs, job)
	return nil
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.started = true

	ctx, w.cancel = context.WithCancel(ctx)
	w.log.Info().Int("jobs", len(w.jobs)).Msg("starting worker")

	for _, job := range w.jobs {
		w.wg.Add(1)
		go w.jobLoop(ctx, job)
	}
	return nil
}

// Stop cancels every job loop and waits for in-flight runs to return.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel == nil {
		return
	}

	w.log.Info().Msg("stopping worker")
	cancel()
	w.wg.Wait()
	w.log.Info().Msg("worker stopped")
}

func (w *Worker) jobLoop(ctx context.Context, job Job) {
	defer w.wg.Done()

	if job.RunOnStart {
		w.executeJob(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.executeJob(ctx, job)
		}
	}
}

func (w *Worker) executeJob(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Str("job", job.Name).Interface("panic", r).Msg("job panicked")
		}
	}()

	start := time.Now()
	if err := job.Handler(ctx); err != nil {
		w.log.Error().Err(err).Str("job", job.Name).Msg("job failed")
		return
	}
	w.log.Debug().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("job completed")
}
