package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/phrazzld/rota-api/internal/events"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	channel  string
	messages [][]byte
	err      error
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message any) *goredis.IntCmd {
	f.channel = channel
	if b, ok := message.([]byte); ok {
		f.messages = append(f.messages, b)
	}
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	return goredis.NewIntResult(1, nil)
}

func TestPublisher_HandleEvent(t *testing.T) {
	client := &fakeClient{}
	pub, err := NewPublisher(client, "rota.events", nil)
	require.NoError(t, err)

	event, err := events.NewEvent(events.TypeConflictRaised, map[string]any{"employee_id": 2, "date": "2025-09-08"})
	require.NoError(t, err)

	require.NoError(t, pub.HandleEvent(context.Background(), event))
	assert.Equal(t, "rota.events", client.channel)
	require.Len(t, client.messages, 1)

	var got events.Event
	require.NoError(t, json.Unmarshal(client.messages[0], &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, events.TypeConflictRaised, got.Type)
	assert.JSONEq(t, `{"employee_id":2,"date":"2025-09-08"}`, string(got.Payload))
}

func TestPublisher_PublishError(t *testing.T) {
	boom := errors.New("connection refused")
	pub, err := NewPublisher(&fakeClient{err: boom}, "rota.events", nil)
	require.NoError(t, err)

	event, err := events.NewEvent(events.TypeTaskCreated, 1)
	require.NoError(t, err)

	err = pub.HandleEvent(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rota.events")
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher(nil, "rota.events", nil)
	assert.Error(t, err)

	_, err = NewPublisher(&fakeClient{}, "", nil)
	assert.Error(t, err)
}
