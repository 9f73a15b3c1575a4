package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/phrazzld/rota-api/internal/redact"
)

// WorkerPool runs jobs from a Queue on a fixed number of goroutines.
// Workers exit once the queue is closed and drained.
type WorkerPool struct {
	queue       *Queue
	workerCount int
	jobTimeout  time.Duration
	logger      *slog.Logger
	onError     func(job Job, err error)

	wg sync.WaitGroup
}

// NewWorkerPool creates a pool. A non-positive workerCount means one worker,
// and a non-positive jobTimeout means no per-job deadline.
func NewWorkerPool(queue *Queue, workerCount int, jobTimeout time.Duration, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	if workerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", workerCount),
			slog.Int("default_count", 1))
		workerCount = 1
	}
	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		jobTimeout:  jobTimeout,
		logger:      logger,
	}
}

// SetErrorHandler registers a callback for failed jobs. Failures are logged
// either way.
func (p *WorkerPool) SetErrorHandler(handler func(job Job, err error)) {
	p.onError = handler
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Wait blocks until every worker has exited.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for job := range p.queue.Jobs() {
		p.run(job, id)
	}
	p.logger.Debug("job queue closed, stopping worker", slog.Int("worker_id", id))
}

func (p *WorkerPool) run(job Job, workerID int) {
	log := p.logger.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()),
		slog.Int("worker_id", workerID))

	ctx := context.Background()
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	err := p.execute(ctx, job)
	if err == nil {
		log.Debug("job completed")
		return
	}

	log.Error("job execution failed", redact.Attr(err))
	if p.onError != nil {
		p.onError(job, err)
	}
}

// execute runs job, turning a panic into an error so one bad job cannot
// take a worker down.
func (p *WorkerPool) execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return job.Execute(ctx)
}
