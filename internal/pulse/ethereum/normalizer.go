package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const weiExponent = -18

type rpcTransaction struct {
	Hash     string       `json:"hash"`
	From     string       `json:"from"`
	To       *string      `json:"to"`
	Value    *hexutil.Big `json:"value"`
	Gas      *hexutil.Big `json:"gas"`
	GasPrice *hexutil.Big `json:"gasPrice"`
}

// Normalizer turns a raw Ethereum block into the common schema.
type Normalizer struct {
	resolver TransferResolver
	logger   *zap.Logger
}

func NewNormalizer(resolver TransferResolver, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		resolver: resolver,
		logger:   logger.Named("ethNormalizer"),
	}
}

// Normalize converts each transaction object of raw. TxCount is the number of transactions the node reported,
// including ones skipped as malformed.
func (n *Normalizer) Normalize(ctx context.Context, raw *chain.Block) (model.IndexedBlock, error) {
	txCount, err := safe.Uint32(len(raw.Transfers))
	if err != nil {
		return model.IndexedBlock{}, fmt.Errorf("tx count: %w", err)
	}

	txs := make([]model.Transaction, 0, len(raw.Transfers))
	for _, payload := range raw.Transfers {
		tx, ok := n.normalizeTransfer(ctx, raw, payload)
		if ok {
			txs = append(txs, tx)
		}
	}
	if err := ctx.Err(); err != nil {
		return model.IndexedBlock{}, err
	}

	return model.IndexedBlock{
		Block: model.Block{
			Network:   model.ETH,
			Height:    raw.Height,
			Hash:      raw.Hash,
			Timestamp: raw.Time,
			TxCount:   txCount,
			Size:      raw.Size,
		},
		Transactions: txs,
	}, nil
}

func (n *Normalizer) normalizeTransfer(ctx context.Context, raw *chain.Block, payload json.RawMessage) (model.Transaction, bool) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return model.Transaction{}, false
	}

	if payload[0] == '"' {
		var ref string
		if err := json.Unmarshal(payload, &ref); err != nil || ref == "" {
			return model.Transaction{}, false
		}
		resolved, err := n.resolver.Transfer(ctx, ref)
		if err != nil {
			n.logger.Warn("transfer not resolved", zap.String("hash", ref), zap.Error(err))
			return model.Transaction{}, false
		}
		if resolved == nil {
			return model.Transaction{}, false
		}
		payload = resolved
	}

	var tx rpcTransaction
	if err := json.Unmarshal(payload, &tx); err != nil {
		n.logger.Debug("malformed transfer skipped", zap.Uint64("height", raw.Height), zap.Error(err))
		return model.Transaction{}, false
	}
	if tx.Hash == "" {
		return model.Transaction{}, false
	}

	to := model.ZeroAddress
	if tx.To != nil && *tx.To != "" {
		to = *tx.To
	}

	return model.Transaction{
		Network:     model.ETH,
		TxHash:      tx.Hash,
		BlockHeight: raw.Height,
		FromAddress: tx.From,
		ToAddress:   to,
		Value:       weiToEther(bigOf(tx.Value)),
		Fee:         weiToEther(new(big.Int).Mul(bigOf(tx.GasPrice), bigOf(tx.Gas))),
		Timestamp:   raw.Time,
		RawMetadata: payload,
	}, true
}

func bigOf(v *hexutil.Big) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToInt()
}

func weiToEther(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, weiExponent).String()
}

// FormatBaseFee renders a base fee in wei as gwei with two decimals, e.g. "12.34 Gwei".
func FormatBaseFee(baseFee *big.Int) string {
	if baseFee == nil {
		return "N/A"
	}
	return decimal.NewFromBigInt(baseFee, -9).StringFixed(2) + " Gwei"
}
