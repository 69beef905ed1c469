// Package ethereum adapts an Ethereum JSON-RPC node to the common chain schema.
package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/chainpulse-backend/internal/clock"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"go.uber.org/zap"
)

const errCodeInvalidParams = -32602

// Adapter reads blocks and transactions over JSON-RPC with bounded retries.
// Payloads are kept as raw JSON so that unknown transaction types do not fail a whole block.
type Adapter struct {
	caller  Caller
	metrics RPCMetrics
	retry   chain.RetryPolicy
	logger  *zap.Logger
}

var _ chain.Adapter = (*Adapter)(nil)

// NewAdapter constructs an instrumented Ethereum adapter. caller is usually an *rpc.Client.
func NewAdapter(caller Caller, metrics RPCMetrics, retry chain.RetryPolicy, logger *zap.Logger) *Adapter {
	return &Adapter{
		caller:  caller,
		metrics: metrics,
		retry:   retry,
		logger:  logger.Named("ethAdapter"),
	}
}

func (a *Adapter) Network() model.Network {
	return model.ETH
}

// Height returns the latest block number.
func (a *Adapter) Height(ctx context.Context) (uint64, error) {
	n, err := chain.Retry(ctx, a.retry, func(ctx context.Context) (hexutil.Uint64, error) {
		var n hexutil.Uint64
		err := a.call(ctx, &n, "eth_blockNumber")
		return n, err
	}, a.notify("eth_blockNumber"))
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	return uint64(n), nil
}

type rpcBlock struct {
	Number       hexutil.Uint64    `json:"number"`
	Hash         string            `json:"hash"`
	Timestamp    hexutil.Uint64    `json:"timestamp"`
	Size         hexutil.Uint64    `json:"size"`
	Miner        string            `json:"miner"`
	Transactions []json.RawMessage `json:"transactions"`
}

// Block returns the block with full transaction objects, or nil when the node has no such block.
func (a *Adapter) Block(ctx context.Context, height uint64) (*chain.Block, error) {
	raw, err := chain.Retry(ctx, a.retry, func(ctx context.Context) (json.RawMessage, error) {
		return a.fetch(ctx, "eth_getBlockByNumber", hexutil.EncodeUint64(height), true)
	}, a.notify("eth_getBlockByNumber"))
	if errors.Is(err, chain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber %d: %w", height, err)
	}

	var b rpcBlock
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode block %d: %w", height, err)
	}
	return &chain.Block{
		Network:   model.ETH,
		Height:    uint64(b.Number),
		Hash:      b.Hash,
		Time:      clock.FromUnix(b.Timestamp),
		Size:      uint64(b.Size),
		Miner:     b.Miner,
		Transfers: b.Transactions,
	}, nil
}

// Transfer returns the transaction object for hash ref, or nil when the node does not know it.
func (a *Adapter) Transfer(ctx context.Context, ref string) (json.RawMessage, error) {
	raw, err := chain.Retry(ctx, a.retry, func(ctx context.Context) (json.RawMessage, error) {
		return a.fetch(ctx, "eth_getTransactionByHash", ref)
	}, a.notify("eth_getTransactionByHash"))
	if errors.Is(err, chain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eth_getTransactionByHash %s: %w", ref, err)
	}
	return raw, nil
}

// fetch returns the raw result, mapping a null result to chain.ErrNotFound.
func (a *Adapter) fetch(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	err := a.call(ctx, &raw, method, args...)
	switch {
	case errors.Is(err, rpc.ErrNoResult):
		return nil, chain.ErrNotFound
	case err != nil:
		return nil, err
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, chain.ErrNotFound
	}
	return raw, nil
}

func (a *Adapter) call(ctx context.Context, result interface{}, method string, args ...interface{}) (err error) {
	started := time.Now()
	defer func() {
		a.metrics.Observe(method, err, started)
	}()

	err = a.caller.CallContext(ctx, result, method, args...)
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == errCodeInvalidParams {
		return backoff.Permanent(err)
	}
	return err
}

func (a *Adapter) notify(method string) func(error, time.Duration) {
	return func(err error, next time.Duration) {
		a.logger.Warn("rpc call failed, retrying",
			zap.String("method", method),
			zap.Duration("next", next),
			zap.Error(err),
		)
	}
}
