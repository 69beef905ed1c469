package syncer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/service/indexer"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Source interface {
		Network() model.Network
		Height(ctx context.Context) (uint64, error)
		Block(ctx context.Context, height uint64) (*chain.Block, error)
	}
	HeightStore interface {
		FindLastIndexedHeight(ctx context.Context, network model.Network) (height uint64, ok bool, err error)
	}
	Indexer interface {
		Index(ctx context.Context, raw *chain.Block) (indexer.Outcome, error)
	}
	Metrics interface {
		ObservePass(err error, indexed int, started time.Time)
		ObserveBusy()
	}
)
