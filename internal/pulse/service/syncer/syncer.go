// Package syncer catches the store up with a chain head on a fixed schedule.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/service/indexer"
	"go.uber.org/zap"
)

// ErrSyncInFlight is returned by TrySync while another pass of the same engine runs.
var ErrSyncInFlight = errors.New("sync already in flight")

const (
	stateIdle int32 = iota
	stateSyncing
)

// Pass summarizes one catch-up pass over [From, To].
type Pass struct {
	From    uint64
	To      uint64
	Indexed int
	Skipped int
	Absent  int
}

type Service struct {
	source   Source
	store    HeightStore
	indexer  Indexer
	metrics  Metrics
	window   uint64
	interval time.Duration
	network  model.Network
	logger   *zap.Logger

	state atomic.Int32
}

func NewService(
	source Source,
	store HeightStore,
	idx Indexer,
	metrics Metrics,
	window uint64,
	interval time.Duration,
	logger *zap.Logger,
) (*Service, error) {
	if interval <= 0 {
		return nil, errors.New("sync interval must be positive")
	}
	if metrics == nil {
		return nil, errors.New("syncer metrics is required")
	}
	network := source.Network()
	return &Service{
		source:   source,
		store:    store,
		indexer:  idx,
		metrics:  metrics,
		window:   window,
		interval: interval,
		network:  network,
		logger:   logger.Named("syncer").With(zap.Stringer("network", network)),
	}, nil
}

// Run triggers a pass immediately and then on every tick until ctx is done.
// A tick that lands while a pass is still running is dropped.
func (s *Service) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	trigger := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.trigger(ctx)
		}()
	}

	s.logger.Info("sync engine started", zap.Duration("interval", s.interval), zap.Uint64("window", s.window))
	trigger()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			trigger()
		}
	}
}

func (s *Service) trigger(ctx context.Context) {
	pass, err := s.TrySync(ctx)
	switch {
	case errors.Is(err, ErrSyncInFlight):
		s.logger.Debug("previous pass still running")
	case err != nil && ctx.Err() != nil:
		s.logger.Debug("pass interrupted by shutdown", zap.Error(err))
	case err != nil:
		s.logger.Warn("sync pass aborted", zap.Error(err))
	case pass.To >= pass.From && pass.Indexed+pass.Skipped+pass.Absent > 0:
		s.logger.Info("sync pass finished",
			zap.Uint64("from", pass.From),
			zap.Uint64("to", pass.To),
			zap.Int("indexed", pass.Indexed),
			zap.Int("skipped", pass.Skipped),
			zap.Int("absent", pass.Absent),
		)
	}
}

// TrySync runs one catch-up pass unless one is already running.
// Heights are indexed in ascending order. The first failure ends the pass; heights below it stay committed.
func (s *Service) TrySync(ctx context.Context) (pass Pass, err error) {
	if !s.state.CompareAndSwap(stateIdle, stateSyncing) {
		s.metrics.ObserveBusy()
		return Pass{}, ErrSyncInFlight
	}
	defer s.state.Store(stateIdle)

	started := time.Now()
	defer func() {
		s.metrics.ObservePass(err, pass.Indexed, started)
	}()

	head, err := s.source.Height(ctx)
	if err != nil {
		return Pass{}, fmt.Errorf("chain head: %w", err)
	}
	last, ok, err := s.store.FindLastIndexedHeight(ctx, s.network)
	if err != nil {
		return Pass{}, fmt.Errorf("last indexed height: %w", err)
	}

	pass = Pass{From: s.start(head, last, ok), To: head}
	for h := pass.From; h <= head; h++ {
		if err = ctx.Err(); err != nil {
			return pass, err
		}

		raw, err := s.source.Block(ctx, h)
		if err != nil {
			return pass, fmt.Errorf("fetch block %d: %w", h, err)
		}
		if raw == nil {
			s.logger.Info("block not available, skipping", zap.Uint64("height", h))
			pass.Absent++
			continue
		}

		outcome, err := s.indexer.Index(ctx, raw)
		if err != nil {
			return pass, fmt.Errorf("index block %d: %w", h, err)
		}
		if outcome == indexer.Skipped {
			pass.Skipped++
		} else {
			pass.Indexed++
		}
	}
	return pass, nil
}

// start is head-window on an empty store and the height after the last stored one otherwise.
func (s *Service) start(head, last uint64, ok bool) uint64 {
	if ok {
		return last + 1
	}
	if head < s.window {
		return 0
	}
	return head - s.window
}
