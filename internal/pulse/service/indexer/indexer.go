// Package indexer turns fetched blocks into committed rows and live events.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"go.uber.org/zap"
)

// Outcome reports what Index did with a block.
type Outcome int

const (
	// Committed means the block and its transfers were written and broadcast.
	Committed Outcome = iota + 1
	// Skipped means the block was already indexed with transfers.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ErrUnsupportedNetwork is returned for blocks of a network without a normalizer.
var ErrUnsupportedNetwork = errors.New("no normalizer for network")

type Service struct {
	normalizers map[model.Network]Normalizer
	store       Store
	broadcaster Broadcaster
	metrics     Metrics
	logger      *zap.Logger
}

func NewService(
	normalizers map[model.Network]Normalizer,
	store Store,
	broadcaster Broadcaster,
	metrics Metrics,
	logger *zap.Logger,
) (*Service, error) {
	if len(normalizers) == 0 {
		return nil, errors.New("at least one normalizer is required")
	}
	if metrics == nil {
		return nil, errors.New("indexer metrics is required")
	}
	return &Service{
		normalizers: normalizers,
		store:       store,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger.Named("indexer"),
	}, nil
}

// Index stores one block with its transfers in a single scope and broadcasts it once committed.
// A block that already has a row and at least one transfer row is skipped without normalizing.
func (s *Service) Index(ctx context.Context, raw *chain.Block) (outcome Outcome, err error) {
	if raw == nil {
		return 0, errors.New("nil block")
	}
	started := time.Now()
	transfers := 0
	defer func() {
		label := outcome.String()
		if err != nil {
			label = "failed"
		}
		s.metrics.Observe(raw.Network, label, transfers, err, started)
	}()

	normalizer, ok := s.normalizers[raw.Network]
	if !ok {
		return 0, fmt.Errorf("%w %s", ErrUnsupportedNetwork, raw.Network)
	}
	logger := s.logger.With(zap.Stringer("network", raw.Network), zap.Uint64("height", raw.Height))

	blockExists, hasTransfers, err := s.store.HasIndexedBlock(ctx, raw.Network, raw.Height)
	if err != nil {
		return 0, fmt.Errorf("check indexed block: %w", err)
	}
	if blockExists && hasTransfers {
		logger.Debug("block already indexed")
		return Skipped, nil
	}

	indexed, err := normalizer.Normalize(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("normalize block: %w", err)
	}
	transfers = len(indexed.Transactions)

	if err = s.commit(ctx, indexed); err != nil {
		return 0, fmt.Errorf("commit block %s/%d: %w", raw.Network, raw.Height, err)
	}
	logger.Info("block indexed", zap.Int("transfers", transfers), zap.Uint32("tx_count", indexed.Block.TxCount))

	s.broadcaster.Broadcast(ctx, model.NewBlockEvent(indexed.Block))
	return Committed, nil
}

func (s *Service) commit(ctx context.Context, indexed model.IndexedBlock) (err error) {
	scope, err := s.store.BeginBlockScope(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := scope.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
	}()

	if err = scope.UpsertBlock(ctx, indexed.Block); err != nil {
		return err
	}
	if err = scope.InsertTransfersIgnoringDuplicates(ctx, indexed.Transactions); err != nil {
		return err
	}
	return scope.Commit(ctx)
}
