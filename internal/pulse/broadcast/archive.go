package broadcast

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/batcher"
	"go.uber.org/zap"
)

const (
	archiveBatchSize     = 500
	archiveFlushInterval = 5 * time.Second
	archiveFlushRate     = 10
)

// ArchiveSink buffers events and writes them to the analytics store in batches.
// Publish never waits: when the buffer is full the event is not archived.
type ArchiveSink struct {
	batcher *batcher.Batcher[model.BlockEvent]
}

func NewArchiveSink(write func(context.Context, []model.BlockEvent) error, logger *zap.Logger) *ArchiveSink {
	return &ArchiveSink{
		batcher: batcher.New(logger.Named("archive"), write, batcher.Options{
			Size:             archiveBatchSize,
			Interval:         archiveFlushInterval,
			FlushesPerSecond: archiveFlushRate,
		}),
	}
}

func (s *ArchiveSink) Name() string {
	return "archive"
}

func (s *ArchiveSink) Publish(_ context.Context, event model.BlockEvent) error {
	return s.batcher.TryAdd(event)
}

func (s *ArchiveSink) Start(ctx context.Context) {
	s.batcher.Start(ctx)
}

// Stop writes out what is buffered.
func (s *ArchiveSink) Stop() {
	s.batcher.Stop()
}
