// Package bitcoin adapts a bitcoind-compatible node and third-party explorers to the common chain schema.
package bitcoin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/chainpulse-backend/internal/clock"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
	"go.uber.org/zap"
)

// Adapter reads blocks and transactions from a bitcoin node with bounded retries.
type Adapter struct {
	client  RPCClient
	metrics RPCMetrics
	retry   chain.RetryPolicy
	logger  *zap.Logger
}

var _ chain.Adapter = (*Adapter)(nil)

// NewAdapter constructs an instrumented bitcoin node adapter.
func NewAdapter(client RPCClient, metrics RPCMetrics, retry chain.RetryPolicy, logger *zap.Logger) *Adapter {
	return &Adapter{
		client:  client,
		metrics: metrics,
		retry:   retry,
		logger:  logger.Named("btcAdapter"),
	}
}

// Network implements chain.Adapter.
func (a *Adapter) Network() model.Network {
	return model.BTC
}

// Height returns the current chain head height.
func (a *Adapter) Height(ctx context.Context) (uint64, error) {
	count, err := chain.Retry(ctx, a.retry, func(ctx context.Context) (int64, error) {
		return observe(ctx, a, "get_block_count", a.client.GetBlockCount)
	}, a.notify("get_block_count"))
	if err != nil {
		return 0, fmt.Errorf("get block count: %w", err)
	}
	return safe.Uint64(count)
}

// Block returns the block at height with fully decoded transactions, or nil when the node has no such block.
func (a *Adapter) Block(ctx context.Context, height uint64) (*chain.Block, error) {
	h, err := safe.Int64(height)
	if err != nil {
		return nil, err
	}

	res, err := chain.Retry(ctx, a.retry, func(ctx context.Context) (*btcjson.GetBlockVerboseTxResult, error) {
		hash, err := observe(ctx, a, "get_block_hash", func() (*chainhash.Hash, error) {
			return a.client.GetBlockHash(h)
		})
		if err != nil {
			return nil, classify(err)
		}
		res, err := observe(ctx, a, "get_block_verbose_tx", func() (*btcjson.GetBlockVerboseTxResult, error) {
			return a.client.GetBlockVerboseTx(hash)
		})
		if err != nil {
			return nil, classify(err)
		}
		if res == nil {
			return nil, chain.ErrNotFound
		}
		return res, nil
	}, a.notify("get_block"))
	if errors.Is(err, chain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get block %d: %w", height, err)
	}

	return convertBlock(res)
}

// Transfer returns the verbose transaction for txid, or nil when the node does not know it.
func (a *Adapter) Transfer(ctx context.Context, ref string) (json.RawMessage, error) {
	txHash, err := chainhash.NewHashFromStr(ref)
	if err != nil {
		a.logger.Debug("malformed transaction id", zap.String("ref", ref), zap.Error(err))
		return nil, nil
	}

	res, err := chain.Retry(ctx, a.retry, func(ctx context.Context) (*btcjson.TxRawResult, error) {
		res, err := observe(ctx, a, "get_raw_transaction", func() (*btcjson.TxRawResult, error) {
			return a.client.GetRawTransactionVerbose(txHash)
		})
		if err != nil {
			return nil, classify(err)
		}
		if res == nil {
			return nil, chain.ErrNotFound
		}
		return res, nil
	}, a.notify("get_raw_transaction"))
	if errors.Is(err, chain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", ref, err)
	}

	return json.Marshal(res)
}

func (a *Adapter) notify(operation string) func(error, time.Duration) {
	return func(err error, next time.Duration) {
		a.logger.Warn("rpc call failed, retrying",
			zap.String("operation", operation),
			zap.Duration("next", next),
			zap.Error(err),
		)
	}
}

// observe runs a context-unaware rpcclient call so that the caller can stop waiting once ctx is done.
func observe[T any](ctx context.Context, a *Adapter, operation string, call func() (T, error)) (res T, err error) {
	started := time.Now()
	defer func() {
		a.metrics.Observe(operation, err, started)
	}()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := call()
		ch <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return res, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

// classify marks node answers that mean "no such item" as chain.ErrNotFound.
func classify(err error) error {
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case btcjson.ErrRPCInvalidParameter, btcjson.ErrRPCBlockNotFound:
			return fmt.Errorf("%s: %w", rpcErr.Message, chain.ErrNotFound)
		}
	}
	return err
}

func convertBlock(res *btcjson.GetBlockVerboseTxResult) (*chain.Block, error) {
	height, err := safe.Uint64(res.Height)
	if err != nil {
		return nil, fmt.Errorf("block height: %w", err)
	}
	size, err := safe.Uint64(res.Size)
	if err != nil {
		return nil, fmt.Errorf("block size: %w", err)
	}

	transfers := make([]json.RawMessage, 0, len(res.Tx))
	for i := range res.Tx {
		raw, err := json.Marshal(&res.Tx[i])
		if err != nil {
			return nil, fmt.Errorf("marshal tx %s: %w", res.Tx[i].Txid, err)
		}
		transfers = append(transfers, raw)
	}

	return &chain.Block{
		Network:    model.BTC,
		Height:     height,
		Hash:       res.Hash,
		Time:       clock.FromUnix(res.Time),
		Size:       size,
		Difficulty: res.Difficulty,
		Transfers:  transfers,
	}, nil
}
