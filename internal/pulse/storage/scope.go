// Package storage defines the persistence contract shared by the indexer and the push feeds.
package storage

import (
	"context"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
)

// BlockScope groups the writes of one block. Either every write is committed or none is.
// Rollback after Commit is a no-op, so callers may always defer it.
type BlockScope interface {
	UpsertBlock(ctx context.Context, block model.Block) error
	InsertTransfersIgnoringDuplicates(ctx context.Context, txs []model.Transaction) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
