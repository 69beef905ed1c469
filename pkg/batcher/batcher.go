// Package batcher groups items pushed from many goroutines into bulk writes.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

var (
	// ErrFull is returned by TryAdd when the queue has no free slot.
	ErrFull = errors.New("batcher queue full")
	// ErrStopped is returned once Stop was called.
	ErrStopped = errors.New("batcher stopped")
)

// Options control when a batch is flushed.
type Options struct {
	// Size flushes the buffer as soon as it holds this many items.
	Size int
	// Interval flushes a non-empty buffer periodically.
	Interval time.Duration
	// FlushesPerSecond caps the flush rate. Zero means unlimited.
	FlushesPerSecond int
	// FlushTimeout bounds the final flush performed after the run context is done.
	FlushTimeout time.Duration
}

// Batcher buffers items and hands them to flush by size or interval.
type Batcher[T any] struct {
	flush  func(context.Context, []T) error
	items  chan T
	opts   Options
	rl     ratelimit.Limiter
	logger *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// New constructs a Batcher. The queue holds twice the batch size.
func New[T any](logger *zap.Logger, flush func(context.Context, []T) error, opts Options) *Batcher[T] {
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = 5 * time.Second
	}

	rl := ratelimit.NewUnlimited()
	if opts.FlushesPerSecond > 0 {
		rl = ratelimit.New(opts.FlushesPerSecond)
	}

	return &Batcher[T]{
		logger: logger,
		flush:  flush,
		items:  make(chan T, opts.Size*2),
		opts:   opts,
		rl:     rl,
		stop:   make(chan struct{}),
	}
}

// Start begins the background flushing loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop flushes whatever is queued and waits for the loop to exit.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
	})
	b.wg.Wait()
}

// Add queues an item, waiting for a free slot or ctx.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case b.items <- item:
		return nil
	}
}

// TryAdd queues an item without waiting.
func (b *Batcher[T]) TryAdd(item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case b.items <- item:
		return nil
	default:
		return ErrFull
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.opts.Interval)
	defer ticker.Stop()

	buf := make([]T, 0, b.opts.Size)

	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}

		b.rl.Take()
		if err := b.flush(ctx, buf); err != nil {
			b.logger.Error("batch not flushed", zap.Int("size", len(buf)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(buf)))
		}
		buf = buf[:0]
	}

	// drain moves everything still queued into the final batches.
	drain := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.opts.FlushTimeout)
		defer cancel()

		for {
			select {
			case item := <-b.items:
				buf = append(buf, item)
				if len(buf) >= b.opts.Size {
					flush(ctx)
				}
			default:
				flush(ctx)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return

		case <-b.stop:
			drain()
			return

		case item := <-b.items:
			buf = append(buf, item)
			if len(buf) >= b.opts.Size {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}
