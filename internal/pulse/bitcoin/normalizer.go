package bitcoin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const satoshiExponent = -8

// Normalizer turns a raw bitcoin block into the common schema.
type Normalizer struct {
	enrichers   []Enricher
	enrichRetry chain.RetryPolicy
	resolver    TransferResolver
	decoder     *ScriptDecoder
	logger      *zap.Logger
}

// NewNormalizer builds a Normalizer. Enrichers are tried in order and the first one that succeeds wins.
func NewNormalizer(
	resolver TransferResolver,
	decoder *ScriptDecoder,
	enrichRetry chain.RetryPolicy,
	logger *zap.Logger,
	enrichers ...Enricher,
) *Normalizer {
	return &Normalizer{
		enrichers:   enrichers,
		enrichRetry: enrichRetry,
		resolver:    resolver,
		decoder:     decoder,
		logger:      logger.Named("btcNormalizer"),
	}
}

// Normalize converts every well-formed transfer of raw. Malformed or unresolvable transfers are skipped.
func (n *Normalizer) Normalize(ctx context.Context, raw *chain.Block) (model.IndexedBlock, error) {
	payloads, inSatoshi := n.transfers(ctx, raw)
	if err := ctx.Err(); err != nil {
		return model.IndexedBlock{}, err
	}

	txs := make([]model.Transaction, 0, len(payloads))
	for _, payload := range payloads {
		tx, ok := n.normalizeTransfer(ctx, raw, payload, inSatoshi)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	if err := ctx.Err(); err != nil {
		return model.IndexedBlock{}, err
	}

	txCount, err := safe.Uint32(len(txs))
	if err != nil {
		return model.IndexedBlock{}, fmt.Errorf("tx count: %w", err)
	}

	return model.IndexedBlock{
		Block: model.Block{
			Network:   model.BTC,
			Height:    raw.Height,
			Hash:      raw.Hash,
			Timestamp: raw.Time,
			TxCount:   txCount,
			Size:      raw.Size,
		},
		Transactions: txs,
	}, nil
}

// transfers returns the enriched payloads when any source answers, otherwise the node payloads.
// The flag reports whether output values are denominated in satoshi.
func (n *Normalizer) transfers(ctx context.Context, raw *chain.Block) ([]json.RawMessage, bool) {
	for _, e := range n.enrichers {
		if ctx.Err() != nil {
			break
		}
		payloads, err := chain.Retry(ctx, n.enrichRetry, func(ctx context.Context) ([]json.RawMessage, error) {
			return e.Transfers(ctx, raw)
		}, nil)
		if err == nil {
			return payloads, true
		}
		n.logger.Warn("enrichment failed",
			zap.String("source", e.Name()),
			zap.Uint64("height", raw.Height),
			zap.Error(err),
		)
	}
	if len(n.enrichers) > 0 {
		n.logger.Warn("falling back to node transfers", zap.Uint64("height", raw.Height))
	}
	return raw.Transfers, false
}

func (n *Normalizer) normalizeTransfer(ctx context.Context, raw *chain.Block, payload json.RawMessage, inSatoshi bool) (model.Transaction, bool) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return model.Transaction{}, false
	}

	var ref string
	if payload[0] == '"' {
		if err := json.Unmarshal(payload, &ref); err != nil || ref == "" {
			return model.Transaction{}, false
		}
		resolved, err := n.resolver.Transfer(ctx, ref)
		if err != nil {
			n.logger.Warn("transfer not resolved", zap.String("txid", ref), zap.Error(err))
			return model.Transaction{}, false
		}
		if resolved == nil {
			return model.Transaction{}, false
		}
		payload = resolved
		inSatoshi = false
	}

	var p transferPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		n.logger.Debug("malformed transfer skipped", zap.Uint64("height", raw.Height), zap.Error(err))
		return model.Transaction{}, false
	}
	txHash := p.id()
	if txHash == "" {
		txHash = ref
	}
	if txHash == "" {
		return model.Transaction{}, false
	}

	return model.Transaction{
		Network:     model.BTC,
		TxHash:      txHash,
		BlockHeight: raw.Height,
		FromAddress: n.fromAddress(p),
		ToAddress:   n.toAddress(p),
		Value:       totalValue(p.outputs(), inSatoshi),
		Fee:         "0",
		Timestamp:   raw.Time,
		RawMetadata: payload,
	}, true
}

func (n *Normalizer) fromAddress(p transferPayload) string {
	inputs := p.inputs()
	if len(inputs) == 0 {
		return model.MultipleInputsAddress
	}
	first := inputs[0]
	if first.coinbase() {
		return model.CoinbaseAddress
	}
	if prev := first.prevout(); prev != nil {
		if addr := prev.address(n.decoder); addr != "" {
			return addr
		}
	}
	return model.MultipleInputsAddress
}

func (n *Normalizer) toAddress(p transferPayload) string {
	outputs := p.outputs()
	if len(outputs) == 0 {
		return model.UnknownAddress
	}
	if addr := outputs[0].address(n.decoder); addr != "" {
		return addr
	}
	return model.UnknownAddress
}

func totalValue(outputs []outputPayload, inSatoshi bool) string {
	sum := decimal.Zero
	for _, o := range outputs {
		sum = sum.Add(o.value())
	}
	if inSatoshi {
		sum = sum.Shift(satoshiExponent)
	}
	return sum.String()
}
