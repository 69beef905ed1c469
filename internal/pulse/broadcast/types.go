package broadcast

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Sink receives every broadcast event.
	Sink interface {
		Name() string
		Publish(ctx context.Context, event model.BlockEvent) error
	}
	Metrics interface {
		Observe(sink string, network model.Network, err error, started time.Time)
	}
	HubMetrics interface {
		SetClients(n int)
		ObserveDropped()
	}
	// RedisPublisher is the part of a redis client used by the pub/sub sink.
	RedisPublisher interface {
		Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	}
)
