package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent(TypeTaskCreated, map[string]string{"key": "value"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEvent(TypeTaskCreated, map[string]string{"key": "value"})
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		successHandler := &MockEventHandler{}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		event, err := NewEvent(TypeConflictRaised, map[string]string{"key": "value"})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		require.Error(t, err)
		assert.Equal(t, "handler error", err.Error())
		assert.Equal(t, 1, failingHandler.HandledCount)
		assert.Equal(t, 1, successHandler.HandledCount, "later handlers still receive the event")
	})
}

func TestEmit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("nil emitter is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { Emit(ctx, nil, logger, TypeTaskCreated, 1) })
	})

	t.Run("delivers payload", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var got *Event
		emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, e *Event) error {
			got = e
			return nil
		}))

		Emit(ctx, emitter, logger, TypeConflictResolved, map[string]int{"employee_id": 2})
		require.NotNil(t, got)
		assert.Equal(t, TypeConflictResolved, got.Type)
		assert.JSONEq(t, `{"employee_id":2}`, string(got.Payload))
	})

	t.Run("handler failure is swallowed", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		emitter.RegisterHandler(&MockEventHandler{HandlerError: errors.New("redis down")})
		assert.NotPanics(t, func() { Emit(ctx, emitter, logger, TypeTaskCreated, 1) })
	})
}
