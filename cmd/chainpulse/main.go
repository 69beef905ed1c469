package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	LogLevel       string `long:"log-level" env:"CHAINPULSE_LOG_LEVEL" description:"log level" default:"info"`
	LogDevelopment bool   `long:"log-development" env:"CHAINPULSE_LOG_DEVELOPMENT" description:"human readable development logs"`

	HTTPAddr    string `long:"http-addr" env:"CHAINPULSE_HTTP_ADDR" description:"address serving /ws, /metrics and /healthz" default:":8080"`
	MaxClients  int    `long:"max-clients" env:"CHAINPULSE_MAX_CLIENTS" description:"websocket subscriber limit" default:"10000"`
	PostgresDSN string `long:"postgres-dsn" env:"CHAINPULSE_POSTGRES_DSN" description:"Postgres DSN" required:"true"`

	RedisAddr     string `long:"redis-addr" env:"CHAINPULSE_REDIS_ADDR" description:"redis address, empty disables the pub/sub sink"`
	RedisChannel  string `long:"redis-channel" env:"CHAINPULSE_REDIS_CHANNEL" description:"redis channel for block events" default:"chainpulse:new-block"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"CHAINPULSE_CLICKHOUSE_DSN" description:"ClickHouse DSN, empty disables the event archive"`

	BTCIndexer        bool          `long:"btc-indexer" env:"CHAINPULSE_ENABLE_BTC_INDEXER" description:"run the bitcoin catch-up sync"`
	BTCFeed           bool          `long:"btc-feed" env:"CHAINPULSE_ENABLE_BTC_FEED" description:"run the bitcoin push feed"`
	BTCNetwork        string        `long:"btc-network" env:"CHAINPULSE_BTC_NETWORK" description:"bitcoin network for address decoding" default:"mainnet"`
	BTCRPCURL         string        `long:"btc-rpc-url" env:"CHAINPULSE_BTC_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	BTCRPCUser        string        `long:"btc-rpc-user" env:"CHAINPULSE_BTC_RPC_USER" description:"Bitcoin RPC username"`
	BTCRPCPassword    string        `long:"btc-rpc-password" env:"CHAINPULSE_BTC_RPC_PASSWORD" description:"Bitcoin RPC password"`
	BTCFeedURL        string        `long:"btc-feed-url" env:"CHAINPULSE_BTC_FEED_URL" description:"mempool.space websocket" default:"wss://mempool.space/api/v1/ws"`
	BTCBlockchainInfo string        `long:"btc-blockchain-info-url" env:"CHAINPULSE_BTC_BLOCKCHAIN_INFO_URL" description:"blockchain.info base URL, empty disables" default:"https://blockchain.info"`
	BTCEsplora        string        `long:"btc-esplora-url" env:"CHAINPULSE_BTC_ESPLORA_URL" description:"esplora API base URL, empty disables" default:"https://mempool.space/api"`
	BTCEnrichRPS      int           `long:"btc-enrich-rps" env:"CHAINPULSE_BTC_ENRICH_RPS" description:"enrichment requests per second, 0 is unlimited" default:"5"`
	BTCInterval       time.Duration `long:"btc-interval" env:"CHAINPULSE_BTC_INTERVAL" description:"bitcoin sync period" default:"10m"`
	BTCWindow         uint64        `long:"btc-window" env:"CHAINPULSE_BTC_WINDOW" description:"bitcoin backfill window" default:"5"`

	ETHIndexer       bool          `long:"eth-indexer" env:"CHAINPULSE_ENABLE_ETH_INDEXER" description:"run the ethereum catch-up sync"`
	ETHFeed          bool          `long:"eth-feed" env:"CHAINPULSE_ENABLE_ETH_FEED" description:"run the ethereum push feed"`
	ETHRPCURL        string        `long:"eth-rpc-url" env:"CHAINPULSE_ETH_RPC_URL" description:"Ethereum JSON-RPC URL" default:"http://127.0.0.1:8545"`
	ETHFeedURL       string        `long:"eth-feed-url" env:"CHAINPULSE_ETH_FEED_URL" description:"Ethereum websocket endpoint" default:"ws://127.0.0.1:8546"`
	ETHFeedTransfers int           `long:"eth-feed-transfers" env:"CHAINPULSE_ETH_FEED_TRANSFERS" description:"transfers indexed per pushed header" default:"10"`
	ETHInterval      time.Duration `long:"eth-interval" env:"CHAINPULSE_ETH_INTERVAL" description:"ethereum sync period" default:"12s"`
	ETHWindow        uint64        `long:"eth-window" env:"CHAINPULSE_ETH_WINDOW" description:"ethereum backfill window" default:"10"`

	ReconnectDelay time.Duration `long:"reconnect-delay" env:"CHAINPULSE_RECONNECT_DELAY" description:"pause before a push feed reconnects" default:"5s"`
}

func main() {
	cfg := config{}

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		// go-flags has already printed the error.
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("chainpulse failed", zap.Error(err))
	}
}

func newLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl
	return zc.Build()
}
