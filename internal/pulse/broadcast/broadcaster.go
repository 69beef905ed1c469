// Package broadcast fans block events out to live subscribers and secondary sinks.
package broadcast

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"go.uber.org/zap"
)

// Broadcaster hands each event to every sink in order. It never reports back to producers.
type Broadcaster struct {
	sinks   []Sink
	metrics Metrics
	logger  *zap.Logger
}

func NewBroadcaster(metrics Metrics, logger *zap.Logger, sinks ...Sink) *Broadcaster {
	return &Broadcaster{
		sinks:   sinks,
		metrics: metrics,
		logger:  logger.Named("broadcaster"),
	}
}

func (b *Broadcaster) Broadcast(ctx context.Context, event model.BlockEvent) {
	for _, sink := range b.sinks {
		started := time.Now()
		err := sink.Publish(ctx, event)
		b.metrics.Observe(sink.Name(), event.Network, err, started)
		if err != nil {
			b.logger.Warn("event not delivered to sink",
				zap.String("sink", sink.Name()),
				zap.Stringer("network", event.Network),
				zap.Uint64("height", event.Height),
				zap.Error(err),
			)
		}
	}
}
