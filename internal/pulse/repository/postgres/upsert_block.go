package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
)

// Re-observing a block only refreshes hash, tx_count and size.
const upsertBlockQuery = `
INSERT INTO blocks (network, height, hash, timestamp, tx_count, size)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (network, height) DO UPDATE
SET hash = EXCLUDED.hash,
	tx_count = EXCLUDED.tx_count,
	size = EXCLUDED.size,
	updated_at = now()`

// UpsertBlock inserts the block or updates the mutable columns of the existing row.
func (r *Repository) UpsertBlock(ctx context.Context, block model.Block) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_block", block.Network, err, start)
	}()
	return upsertBlock(ctx, r.db, block)
}

func upsertBlock(ctx context.Context, e execer, block model.Block) error {
	height, err := safe.Int64(block.Height)
	if err != nil {
		return fmt.Errorf("block height: %w", err)
	}
	size, err := safe.Int64(block.Size)
	if err != nil {
		return fmt.Errorf("block size: %w", err)
	}

	if _, err := e.Exec(ctx, upsertBlockQuery,
		string(block.Network),
		height,
		block.Hash,
		block.Timestamp,
		int64(block.TxCount),
		size,
	); err != nil {
		return fmt.Errorf("upsert block %d: %w", block.Height, err)
	}
	return nil
}
