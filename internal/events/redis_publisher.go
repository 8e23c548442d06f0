package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultEventChannel is the Redis pub/sub channel events are mirrored to.
const DefaultEventChannel = "techdesk:events"

// RedisPublisher mirrors every dispatched event onto a Redis channel so
// out-of-process consumers (dashboards, integrations) can follow along.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher creates a publisher for the given channel. An empty
// channel name falls back to DefaultEventChannel.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// RegisterHandlers subscribes the publisher to every event type.
func (p *RedisPublisher) RegisterHandlers(dispatcher Dispatcher) {
	if p == nil || dispatcher == nil {
		return
	}
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.handle)
	}
}

func (p *RedisPublisher) handle(ctx context.Context, event Event) error {
	if p.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event", zap.Error(err), zap.String("event_type", string(event.Type)))
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Warn("publish event to redis", zap.Error(err), zap.String("event_type", string(event.Type)))
		return err
	}
	return nil
}
