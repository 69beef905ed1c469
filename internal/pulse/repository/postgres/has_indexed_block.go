package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
)

const hasIndexedBlockQuery = `
SELECT
	EXISTS (SELECT 1 FROM blocks WHERE network = $1 AND height = $2),
	EXISTS (SELECT 1 FROM transactions WHERE network = $1 AND block_height = $2)`

// HasIndexedBlock reports whether the block row exists and whether any transfer row references it.
func (r *Repository) HasIndexedBlock(ctx context.Context, network model.Network, height uint64) (blockExists, hasTransfers bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("has_indexed_block", network, err, start)
	}()

	h, err := safe.Int64(height)
	if err != nil {
		return false, false, err
	}
	if err = r.db.QueryRow(ctx, hasIndexedBlockQuery, string(network), h).Scan(&blockExists, &hasTransfers); err != nil {
		return false, false, fmt.Errorf("query indexed block %d: %w", height, err)
	}
	return blockExists, hasTransfers, nil
}
