package bitcoin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RPCClient is the subset of the btcd rpcclient used by the adapter.
	RPCClient interface {
		GetBlockCount() (int64, error)
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		GetBlockVerboseTx(blockHash *chainhash.Hash) (*btcjson.GetBlockVerboseTxResult, error)
		GetRawTransactionVerbose(txHash *chainhash.Hash) (*btcjson.TxRawResult, error)
	}
	// RPCMetrics records metrics for RPC calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
	// Enricher fetches richer transfer payloads for a block from a third-party source.
	Enricher interface {
		Name() string
		Transfers(ctx context.Context, block *chain.Block) ([]json.RawMessage, error)
	}
	// TransferResolver resolves a bare transaction id into a full payload.
	TransferResolver interface {
		Transfer(ctx context.Context, ref string) (json.RawMessage, error)
	}
	BlockStore interface {
		UpsertBlock(ctx context.Context, block model.Block) error
	}
	Broadcaster interface {
		Broadcast(ctx context.Context, event model.BlockEvent)
	}
)
