package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/chainpulse-backend/internal/clock"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
	"go.uber.org/zap"
)

// DefaultFeedTransferLimit caps the transfers indexed per pushed header.
const DefaultFeedTransferLimit = 10

var subscribeNewHeads = []byte(`{"jsonrpc":"2.0","id":1,"method":"eth_subscribe","params":["newHeads"]}`)

// FeedHandler handles newHeads notifications: it fetches the full block, stores it with
// the first transfers and broadcasts it. When the block cannot be fetched a degraded
// event built from the header alone is broadcast instead.
type FeedHandler struct {
	source        BlockSource
	normalizer    BlockNormalizer
	store         ScopeBeginner
	broadcaster   Broadcaster
	transferLimit int
	logger        *zap.Logger
}

func NewFeedHandler(
	source BlockSource,
	normalizer BlockNormalizer,
	store ScopeBeginner,
	broadcaster Broadcaster,
	transferLimit int,
	logger *zap.Logger,
) *FeedHandler {
	if transferLimit <= 0 {
		transferLimit = DefaultFeedTransferLimit
	}
	return &FeedHandler{
		source:        source,
		normalizer:    normalizer,
		store:         store,
		broadcaster:   broadcaster,
		transferLimit: transferLimit,
		logger:        logger.Named("ethFeed"),
	}
}

func (h *FeedHandler) Network() model.Network {
	return model.ETH
}

func (h *FeedHandler) Subscribe() []byte {
	return subscribeNewHeads
}

type subscriptionMessage struct {
	Method string `json:"method"`
	Params *struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params"`
}

type header struct {
	Number    hexutil.Uint64 `json:"number"`
	Hash      string         `json:"hash"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
	Miner     string         `json:"miner"`
	BaseFee   *hexutil.Big   `json:"baseFeePerGas"`
}

// Handle processes one subscription message. Subscription confirmations and other messages are ignored.
func (h *FeedHandler) Handle(ctx context.Context, message []byte) error {
	var msg subscriptionMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return fmt.Errorf("decode feed message: %w", err)
	}
	if msg.Method != "eth_subscription" || msg.Params == nil || len(msg.Params.Result) == 0 {
		return nil
	}

	var head header
	if err := json.Unmarshal(msg.Params.Result, &head); err != nil {
		return fmt.Errorf("decode header: %w", err)
	}
	height := uint64(head.Number)
	logger := h.logger.With(zap.Uint64("height", height), zap.String("hash", head.Hash))
	logger.Info("received header")

	event := model.BlockEvent{
		Network:   model.ETH,
		Height:    height,
		Hash:      head.Hash,
		Timestamp: clock.FromUnix(head.Timestamp).UnixMilli(),
		Miner:     head.Miner,
		Fees:      FormatBaseFee(bigOrNil(head.BaseFee)),
	}

	raw, err := h.source.Block(ctx, height)
	if err == nil && raw == nil {
		err = errors.New("block not available")
	}
	if err != nil {
		logger.Warn("full block fetch failed, broadcasting header only", zap.Error(err))
		h.broadcaster.Broadcast(ctx, event)
		return nil
	}

	limited := *raw
	if len(limited.Transfers) > h.transferLimit {
		limited.Transfers = limited.Transfers[:h.transferLimit]
	}
	indexed, err := h.normalizer.Normalize(ctx, &limited)
	if err != nil {
		return fmt.Errorf("normalize block %d: %w", height, err)
	}
	txCount, err := safe.Uint32(len(raw.Transfers))
	if err != nil {
		return fmt.Errorf("tx count: %w", err)
	}
	indexed.Block.TxCount = txCount

	if err := h.persist(ctx, indexed); err != nil {
		return fmt.Errorf("persist block %d: %w", height, err)
	}

	event.TxCount = indexed.Block.TxCount
	event.Size = indexed.Block.Size
	h.broadcaster.Broadcast(ctx, event)
	return nil
}

func (h *FeedHandler) persist(ctx context.Context, indexed model.IndexedBlock) (err error) {
	scope, err := h.store.BeginBlockScope(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := scope.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
	}()

	if err := scope.UpsertBlock(ctx, indexed.Block); err != nil {
		return err
	}
	if err := scope.InsertTransfersIgnoringDuplicates(ctx, indexed.Transactions); err != nil {
		return err
	}
	return scope.Commit(ctx)
}

func bigOrNil(v *hexutil.Big) *big.Int {
	if v == nil {
		return nil
	}
	return v.ToInt()
}
