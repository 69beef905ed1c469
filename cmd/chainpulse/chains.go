package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/chainpulse-backend/internal/metrics"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/bitcoin"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/broadcast"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/ethereum"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/repository/postgres"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/service/feed"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/service/indexer"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/service/syncer"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const (
	readAttempts     = 4
	readInitialDelay = 500 * time.Millisecond
	readCallTimeout  = 15 * time.Second

	enrichAttempts = 3
	enrichDelay    = 2 * time.Second
)

type feedSetup struct {
	url     string
	handler feed.Handler
}

type syncSetup struct {
	source   syncer.Source
	window   uint64
	interval time.Duration
}

// chainSet collects the per-chain pieces enabled by the configuration.
type chainSet struct {
	cfg         config
	repo        *postgres.Repository
	broadcaster *broadcast.Broadcaster
	logger      *zap.Logger

	normalizers map[model.Network]indexer.Normalizer
	sync        []syncSetup
	feed        []feedSetup
	closers     []func()
}

func newChainSet(cfg config, repo *postgres.Repository, broadcaster *broadcast.Broadcaster, logger *zap.Logger) *chainSet {
	return &chainSet{
		cfg:         cfg,
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
		normalizers: make(map[model.Network]indexer.Normalizer),
	}
}

func (s *chainSet) addBitcoin() error {
	client, err := newBTCRPCClient(s.cfg.BTCRPCURL, s.cfg.BTCRPCUser, s.cfg.BTCRPCPassword)
	if err != nil {
		return fmt.Errorf("init btc rpc client: %w", err)
	}
	s.closers = append(s.closers, func() {
		client.Shutdown()
		client.WaitForShutdown()
	})

	logger := s.logger.With(zap.Stringer("network", model.BTC))
	adapter := bitcoin.NewAdapter(
		client,
		metrics.NewRPCClient(model.BTC),
		chain.ExponentialRetry(readAttempts, readInitialDelay, readCallTimeout),
		logger,
	)

	if s.cfg.BTCIndexer {
		decoder, err := bitcoin.NewScriptDecoder(s.cfg.BTCNetwork)
		if err != nil {
			return err
		}
		s.normalizers[model.BTC] = bitcoin.NewNormalizer(
			adapter,
			decoder,
			bitcoin.EnrichmentRetry(enrichAttempts, enrichDelay),
			logger,
			s.enrichers()...,
		)
		s.sync = append(s.sync, syncSetup{source: adapter, window: s.cfg.BTCWindow, interval: s.cfg.BTCInterval})
	}
	if s.cfg.BTCFeed {
		s.feed = append(s.feed, feedSetup{
			url:     s.cfg.BTCFeedURL,
			handler: bitcoin.NewFeedHandler(s.repo, s.broadcaster, logger),
		})
	}
	return nil
}

// enrichers lists the configured explorers in preference order. They share one limiter.
func (s *chainSet) enrichers() []bitcoin.Enricher {
	httpClient := &http.Client{Timeout: readCallTimeout}
	limiter := ratelimit.NewUnlimited()
	if s.cfg.BTCEnrichRPS > 0 {
		limiter = ratelimit.New(s.cfg.BTCEnrichRPS)
	}

	var out []bitcoin.Enricher
	if s.cfg.BTCBlockchainInfo != "" {
		out = append(out, bitcoin.NewBlockchainInfo(s.cfg.BTCBlockchainInfo, httpClient, limiter))
	}
	if s.cfg.BTCEsplora != "" {
		out = append(out, bitcoin.NewEsplora(s.cfg.BTCEsplora, httpClient, limiter))
	}
	return out
}

func (s *chainSet) addEthereum(ctx context.Context) error {
	client, err := rpc.DialContext(ctx, s.cfg.ETHRPCURL)
	if err != nil {
		return fmt.Errorf("dial eth rpc: %w", err)
	}
	s.closers = append(s.closers, client.Close)

	logger := s.logger.With(zap.Stringer("network", model.ETH))
	adapter := ethereum.NewAdapter(
		client,
		metrics.NewRPCClient(model.ETH),
		chain.ExponentialRetry(readAttempts, readInitialDelay, readCallTimeout),
		logger,
	)
	normalizer := ethereum.NewNormalizer(adapter, logger)

	if s.cfg.ETHIndexer {
		s.normalizers[model.ETH] = normalizer
		s.sync = append(s.sync, syncSetup{source: adapter, window: s.cfg.ETHWindow, interval: s.cfg.ETHInterval})
	}
	if s.cfg.ETHFeed {
		s.feed = append(s.feed, feedSetup{
			url:     s.cfg.ETHFeedURL,
			handler: ethereum.NewFeedHandler(adapter, normalizer, s.repo, s.broadcaster, s.cfg.ETHFeedTransfers, logger),
		})
	}
	return nil
}

func (s *chainSet) syncers(idx *indexer.Service) ([]producer, error) {
	out := make([]producer, 0, len(s.sync))
	for _, setup := range s.sync {
		network := setup.source.Network()
		svc, err := syncer.NewService(
			setup.source,
			s.repo,
			idx,
			metrics.NewSyncer(network),
			setup.window,
			setup.interval,
			s.logger,
		)
		if err != nil {
			return nil, fmt.Errorf("init %s syncer: %w", network, err)
		}
		out = append(out, svc)
	}
	return out, nil
}

func (s *chainSet) feeds() ([]producer, error) {
	out := make([]producer, 0, len(s.feed))
	for _, setup := range s.feed {
		network := setup.handler.Network()
		l, err := feed.NewListener(setup.url, setup.handler, metrics.NewFeed(network), s.cfg.ReconnectDelay, s.logger)
		if err != nil {
			return nil, fmt.Errorf("init %s feed: %w", network, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// networks lists every chain with at least one producer, in a stable order.
func (s *chainSet) networks() []model.Network {
	seen := make(map[model.Network]bool)
	for _, setup := range s.sync {
		seen[setup.source.Network()] = true
	}
	for _, setup := range s.feed {
		seen[setup.handler.Network()] = true
	}
	var out []model.Network
	for _, n := range []model.Network{model.BTC, model.ETH} {
		if seen[n] {
			out = append(out, n)
		}
	}
	return out
}

func (s *chainSet) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func newBTCRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   parsed.Scheme == "http",
	}, nil)
}
