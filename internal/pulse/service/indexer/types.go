package indexer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/storage"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Normalizer interface {
		Normalize(ctx context.Context, raw *chain.Block) (model.IndexedBlock, error)
	}
	Store interface {
		HasIndexedBlock(ctx context.Context, network model.Network, height uint64) (blockExists, hasTransfers bool, err error)
		BeginBlockScope(ctx context.Context) (storage.BlockScope, error)
	}
	BlockScope interface {
		UpsertBlock(ctx context.Context, block model.Block) error
		InsertTransfersIgnoringDuplicates(ctx context.Context, txs []model.Transaction) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}
	Broadcaster interface {
		Broadcast(ctx context.Context, event model.BlockEvent)
	}
	Metrics interface {
		Observe(network model.Network, outcome string, transfers int, err error, started time.Time)
	}
)
