package ethereum

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/storage"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Caller is the JSON-RPC surface of go-ethereum's rpc.Client used by the adapter.
	Caller interface {
		CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	}
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
	TransferResolver interface {
		Transfer(ctx context.Context, ref string) (json.RawMessage, error)
	}
	BlockSource interface {
		Block(ctx context.Context, height uint64) (*chain.Block, error)
	}
	BlockNormalizer interface {
		Normalize(ctx context.Context, raw *chain.Block) (model.IndexedBlock, error)
	}
	ScopeBeginner interface {
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
)
