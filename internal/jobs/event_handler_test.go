package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/rota-api/internal/events"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deliveryState is what the delegate saw of its context while it ran.
type deliveryState struct {
	err         error
	hasDeadline bool
	logger      *slog.Logger
}

type recordingHandler struct {
	got   chan *events.Event
	state chan deliveryState
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	_, hasDeadline := ctx.Deadline()
	h.state <- deliveryState{err: ctx.Err(), hasDeadline: hasDeadline, logger: logger.FromContext(ctx)}
	h.got <- event
	return nil
}

func TestAsyncEventHandler_DeliversOnRunner(t *testing.T) {
	r := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 4, JobTimeout: time.Second}, nil)
	r.Start()
	defer func() { _ = r.Stop(context.Background()) }()

	delegate := &recordingHandler{got: make(chan *events.Event, 1), state: make(chan deliveryState, 1)}
	h := NewAsyncEventHandler(r, delegate, nil)

	ev, err := events.NewEvent(events.TypeConflictRaised, map[string]string{"employee": "Bruno"})
	require.NoError(t, err)

	log, _ := logger.NewTestLogger()
	reqCtx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	require.NoError(t, h.HandleEvent(reqCtx, ev))
	cancel()

	select {
	case got := <-delegate.got:
		assert.Equal(t, ev.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	state := <-delegate.state
	assert.NoError(t, state.err, "request cancellation does not reach delivery")
	assert.Same(t, log, state.logger)
	assert.True(t, state.hasDeadline)
}

type rejectingSubmitter struct{}

func (rejectingSubmitter) Submit(Job) error { return ErrQueueFull }

func TestAsyncEventHandler_QueueFull(t *testing.T) {
	h := NewAsyncEventHandler(rejectingSubmitter{}, &recordingHandler{}, nil)
	ev, err := events.NewEvent(events.TypeTaskCreated, struct{}{})
	require.NoError(t, err)

	err = h.HandleEvent(context.Background(), ev)
	assert.True(t, errors.Is(err, ErrQueueFull))
}
