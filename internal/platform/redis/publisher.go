// Package redis publishes scheduling events to a Redis pub/sub channel so
// other processes (notifiers, dashboards) can follow conflicts as they happen.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/rota-api/internal/config"
	"github.com/phrazzld/rota-api/internal/events"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	goredis "github.com/redis/go-redis/v9"
)

// publishTimeout bounds a single PUBLISH so a slow Redis cannot hold up the
// request that emitted the event.
const publishTimeout = 2 * time.Second

// PubSubClient is the subset of *goredis.Client the publisher needs.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// Publisher forwards events to a Redis channel. It implements events.EventHandler.
type Publisher struct {
	client  PubSubClient
	channel string
	logger  *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// NewPublisher creates a Publisher for channel.
func NewPublisher(client PubSubClient, channel string, logger *slog.Logger) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if channel == "" {
		return nil, errors.New("redis channel cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:  client,
		channel: channel,
		logger:  logger.With(slog.String("component", "redis_publisher")),
	}, nil
}

// HandleEvent implements events.EventHandler by publishing the JSON-encoded event.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	receivers, err := p.client.Publish(ctx, p.channel, body).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event %s to %s: %w", event.ID, p.channel, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("published event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("receivers", receivers))
	return nil
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
