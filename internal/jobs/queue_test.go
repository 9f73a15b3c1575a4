package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context) error { return nil }

func TestQueue_EnqueueFullAndClosed(t *testing.T) {
	q := NewQueue(2, nil)

	require.NoError(t, q.Enqueue(NewJob("test", noop)))
	require.NoError(t, q.Enqueue(NewJob("test", noop)))
	assert.ErrorIs(t, q.Enqueue(NewJob("test", noop)), ErrQueueFull)

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Enqueue(NewJob("test", noop)), ErrQueueClosed)

	var drained int
	for range q.Jobs() {
		drained++
	}
	assert.Equal(t, 2, drained)
}

func TestNewJob(t *testing.T) {
	called := false
	j := NewJob(TypeEventDelivery, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.Equal(t, TypeEventDelivery, j.Type())
	assert.NotEqual(t, NewJob("x", noop).ID(), j.ID())
	require.NoError(t, j.Execute(context.Background()))
	assert.True(t, called)
}
