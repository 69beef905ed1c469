package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
)

// DefaultRedisChannel carries bare block events for other processes.
const DefaultRedisChannel = "chainpulse:new-block"

// RedisSink publishes events on a redis pub/sub channel.
type RedisSink struct {
	client  RedisPublisher
	channel string
}

func NewRedisSink(client RedisPublisher, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string {
	return "redis"
}

func (s *RedisSink) Publish(ctx context.Context, event model.BlockEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.channel, err)
	}
	return nil
}
