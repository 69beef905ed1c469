package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/metrics"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/broadcast"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/repository/clickhouse"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/repository/postgres"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/service/indexer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// producer is a long running loop owned by the process context.
type producer interface {
	Run(ctx context.Context) error
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	repo, err := postgres.NewRepository(ctx, cfg.PostgresDSN, metrics.NewPostgresRepository())
	if err != nil {
		return fmt.Errorf("init postgres repository: %w", err)
	}
	defer repo.Close()

	checks := healthChecks{"postgres": repo.Ping}

	hub := broadcast.NewHub(metrics.NewHub(), cfg.MaxClients, logger)
	sinks := []broadcast.Sink{hub}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("failed to close redis client", zap.Error(err))
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		sinks = append(sinks, broadcast.NewRedisSink(rdb, cfg.RedisChannel))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var archive *broadcast.ArchiveSink
	if cfg.ClickhouseDSN != "" {
		ch, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init clickhouse repository: %w", err)
		}
		defer func() {
			if err := ch.Close(); err != nil {
				logger.Warn("failed to close clickhouse connection", zap.Error(err))
			}
		}()
		archive = broadcast.NewArchiveSink(ch.InsertBlockEvents, logger)
		// The archive outlives the producers so their last events are written on Stop.
		archive.Start(context.WithoutCancel(ctx))
		defer archive.Stop()
		sinks = append(sinks, archive)
		checks["clickhouse"] = ch.Ping
	}

	broadcaster := broadcast.NewBroadcaster(metrics.NewBroadcaster(), logger, sinks...)

	chains := newChainSet(cfg, repo, broadcaster, logger)
	defer chains.Close()

	var producers []producer
	if cfg.BTCIndexer || cfg.BTCFeed {
		if err := chains.addBitcoin(); err != nil {
			return err
		}
	}
	if cfg.ETHIndexer || cfg.ETHFeed {
		if err := chains.addEthereum(ctx); err != nil {
			return err
		}
	}

	if len(chains.normalizers) > 0 {
		idx, err := indexer.NewService(chains.normalizers, repo, broadcaster, metrics.NewIndexer(), logger)
		if err != nil {
			return fmt.Errorf("init indexer: %w", err)
		}
		syncers, err := chains.syncers(idx)
		if err != nil {
			return err
		}
		producers = append(producers, syncers...)
	}
	feeds, err := chains.feeds()
	if err != nil {
		return err
	}
	producers = append(producers, feeds...)

	if len(producers) == 0 {
		logger.Warn("no indexer or feed enabled, serving subscribers only")
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, p := range producers {
		g.Go(func() error {
			if err := p.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		return serveHTTP(gCtx, cfg.HTTPAddr, newRouter(hub, checks, logger), hub, logger)
	})

	logger.Info("chainpulse started",
		zap.Stringers("networks", chains.networks()),
		zap.Int("producers", len(producers)),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("archive", archive != nil),
	)
	return g.Wait()
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, hub *broadcast.Hub, logger *zap.Logger) error {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
		hub.Close()
	}()

	logger.Info("starting http server", zap.String("addr", addr))
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}
