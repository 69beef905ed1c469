package bitcoin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goodnatureofminers/chainpulse-backend/internal/clock"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"go.uber.org/zap"
)

var wantBlocks = []byte(`{"action":"want-blocks"}`)

// FeedHandler handles the mempool.space block stream.
type FeedHandler struct {
	store       BlockStore
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewFeedHandler constructs a handler that records announced blocks and broadcasts them.
func NewFeedHandler(store BlockStore, broadcaster Broadcaster, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		store:       store,
		broadcaster: broadcaster,
		logger:      logger.Named("btcFeed"),
	}
}

func (h *FeedHandler) Network() model.Network {
	return model.BTC
}

// Subscribe returns the request that asks the feed for new blocks.
func (h *FeedHandler) Subscribe() []byte {
	return wantBlocks
}

type feedMessage struct {
	Block *struct {
		Height     uint64  `json:"height"`
		ID         string  `json:"id"`
		Timestamp  int64   `json:"timestamp"`
		TxCount    uint32  `json:"tx_count"`
		Size       uint64  `json:"size"`
		Difficulty float64 `json:"difficulty"`
	} `json:"block"`
}

// Handle upserts the announced block header and broadcasts it. Messages without a block are ignored.
func (h *FeedHandler) Handle(ctx context.Context, message []byte) error {
	var msg feedMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return fmt.Errorf("decode feed message: %w", err)
	}
	if msg.Block == nil {
		return nil
	}

	b := msg.Block
	h.logger.Info("received block", zap.Uint64("height", b.Height), zap.String("hash", b.ID))

	block := model.Block{
		Network:   model.BTC,
		Height:    b.Height,
		Hash:      b.ID,
		Timestamp: clock.FromUnix(b.Timestamp),
		TxCount:   b.TxCount,
		Size:      b.Size,
	}
	if err := h.store.UpsertBlock(ctx, block); err != nil {
		return fmt.Errorf("upsert block %d: %w", b.Height, err)
	}

	event := model.NewBlockEvent(block)
	difficulty := b.Difficulty
	event.Difficulty = &difficulty
	h.broadcaster.Broadcast(ctx, event)
	return nil
}
