package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
)

const insertBlockEventsQuery = `
INSERT INTO block_events (
	network,
	height,
	hash,
	timestamp,
	tx_count,
	size,
	miner,
	fees,
	difficulty
) VALUES`

// InsertBlockEvents appends the events as they were broadcast. Repeated events for a height are kept.
func (r *Repository) InsertBlockEvents(ctx context.Context, events []model.BlockEvent) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_block_events", firstNetwork(events), err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertBlockEventsQuery)
	if err != nil {
		return fmt.Errorf("prepare block events batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = batch.Abort()
		}
	}()

	for _, ev := range events {
		if err = batch.Append(
			string(ev.Network),
			ev.Height,
			ev.Hash,
			time.UnixMilli(ev.Timestamp).UTC(),
			ev.TxCount,
			ev.Size,
			ev.Miner,
			ev.Fees,
			ev.Difficulty,
		); err != nil {
			return fmt.Errorf("append block event %s/%d: %w", ev.Network, ev.Height, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert block events: %w", err)
	}
	return nil
}

// firstNetwork labels a batch by its first event. Batches can mix networks.
func firstNetwork(events []model.BlockEvent) model.Network {
	if len(events) == 0 {
		return ""
	}
	return events[0].Network
}
