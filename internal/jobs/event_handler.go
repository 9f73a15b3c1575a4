package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/rota-api/internal/events"
	"github.com/phrazzld/rota-api/internal/platform/logger"
)

// Submitter accepts jobs for background execution. *Runner implements it.
type Submitter interface {
	Submit(job Job) error
}

// AsyncEventHandler hands each event to a delegate handler on the job
// runner instead of the emitting goroutine.
type AsyncEventHandler struct {
	runner   Submitter
	delegate events.EventHandler
	logger   *slog.Logger
}

var _ events.EventHandler = (*AsyncEventHandler)(nil)

// NewAsyncEventHandler wraps delegate so it runs on runner.
func NewAsyncEventHandler(runner Submitter, delegate events.EventHandler, logger *slog.Logger) *AsyncEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncEventHandler{
		runner:   runner,
		delegate: delegate,
		logger:   logger.With(slog.String("component", "async_event_handler")),
	}
}

// HandleEvent implements events.EventHandler. It returns once the event is
// queued; delivery errors are reported by the runner.
func (h *AsyncEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	// Keep request-scoped values such as the logger, drop the request's cancellation.
	detached := context.WithoutCancel(ctx)
	log := logger.FromContextOrDefault(ctx, h.logger)

	job := NewJob(TypeEventDelivery, func(jobCtx context.Context) error {
		runCtx, cancel := mergeDeadline(detached, jobCtx)
		defer cancel()
		return h.delegate.HandleEvent(runCtx, event)
	})

	if err := h.runner.Submit(job); err != nil {
		log.Warn("dropping event, job queue rejected it",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to queue event %s: %w", event.ID, err)
	}
	return nil
}

// mergeDeadline returns base bounded by the deadline of limit, if any.
func mergeDeadline(base, limit context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := limit.Deadline(); ok {
		return context.WithDeadline(base, deadline)
	}
	return context.WithCancel(base)
}
