package feed

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Handler speaks one chain's push protocol over an established stream.
	Handler interface {
		Network() model.Network
		Subscribe() []byte
		Handle(ctx context.Context, message []byte) error
	}
	Metrics interface {
		ObserveConnect(err error)
		ObserveMessage(err error, started time.Time)
	}
)
