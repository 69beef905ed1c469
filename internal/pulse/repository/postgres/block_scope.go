package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/storage"
	"github.com/jackc/pgx/v5"
)

// ErrScopeClosed is returned by writes on a scope that was already committed or rolled back.
var ErrScopeClosed = errors.New("block scope closed")

type blockScope struct {
	tx      pgx.Tx
	metrics Metrics
	network model.Network
	closed  bool
}

// BeginBlockScope opens a transaction holding the writes of one block.
func (r *Repository) BeginBlockScope(ctx context.Context) (_ storage.BlockScope, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("begin_block_scope", "", err, start)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin block scope: %w", err)
	}
	return &blockScope{tx: tx, metrics: r.metrics}, nil
}

func (s *blockScope) UpsertBlock(ctx context.Context, block model.Block) (err error) {
	start := time.Now()
	s.network = block.Network
	defer func() {
		s.metrics.Observe("scope_upsert_block", block.Network, err, start)
	}()

	if s.closed {
		return ErrScopeClosed
	}
	return upsertBlock(ctx, s.tx, block)
}

func (s *blockScope) InsertTransfersIgnoringDuplicates(ctx context.Context, txs []model.Transaction) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("scope_insert_transfers", s.network, err, start)
	}()

	if s.closed {
		return ErrScopeClosed
	}
	return insertTransfers(ctx, s.tx, txs)
}

func (s *blockScope) Commit(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("scope_commit", s.network, err, start)
	}()

	if s.closed {
		return ErrScopeClosed
	}
	s.closed = true
	if err = s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit block scope: %w", err)
	}
	return nil
}

// Rollback discards uncommitted writes. It is a no-op once the scope is closed.
func (s *blockScope) Rollback(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback block scope: %w", err)
	}
	return nil
}
