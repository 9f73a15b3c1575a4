package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig holds configuration for the Runner.
type RunnerConfig struct {
	// WorkerCount determines how many jobs run concurrently.
	WorkerCount int

	// QueueSize bounds how many jobs may wait.
	QueueSize int

	// JobTimeout bounds a single job. Zero means no deadline.
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   256,
		JobTimeout:  10 * time.Second,
	}
}

// Runner owns a Queue and the WorkerPool draining it.
type Runner struct {
	queue  *Queue
	pool   *WorkerPool
	logger *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRunner creates a Runner. Call Start before submitting work.
func NewRunner(cfg RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "job_runner"))
	queue := NewQueue(cfg.QueueSize, logger)
	return &Runner{
		queue:  queue,
		pool:   NewWorkerPool(queue, cfg.WorkerCount, cfg.JobTimeout, logger),
		logger: logger,
	}
}

// SetErrorHandler registers a callback for failed jobs.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Start launches the workers. Calling it again has no effect.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		r.pool.Start()
		r.logger.Info("job runner started", slog.Int("workers", r.pool.workerCount))
	})
}

// Submit queues a job without blocking.
func (r *Runner) Submit(job Job) error {
	return r.queue.Enqueue(job)
}

// Stop stops accepting jobs and waits for queued ones to finish, or for ctx
// to end, whichever comes first.
func (r *Runner) Stop(ctx context.Context) error {
	r.stopOnce.Do(r.queue.Close)

	done := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("job runner stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job runner did not drain before shutdown deadline: %w", ctx.Err())
	}
}
