package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
)

const findLastIndexedHeightQuery = `
SELECT max(height)
FROM blocks
WHERE network = $1`

// FindLastIndexedHeight returns the highest stored height for network. ok is false when nothing is stored yet.
func (r *Repository) FindLastIndexedHeight(ctx context.Context, network model.Network) (height uint64, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("find_last_indexed_height", network, err, start)
	}()

	var last *int64
	if err = r.db.QueryRow(ctx, findLastIndexedHeightQuery, string(network)).Scan(&last); err != nil {
		return 0, false, fmt.Errorf("query last indexed height: %w", err)
	}
	if last == nil {
		return 0, false, nil
	}

	height, err = safe.Uint64(*last)
	if err != nil {
		return 0, false, fmt.Errorf("last indexed height: %w", err)
	}
	return height, true, nil
}
