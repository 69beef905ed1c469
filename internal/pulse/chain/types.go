// Package chain defines the capability surface shared by chain adapters.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
)

// ErrNotFound reports that the chain has no such block or transfer. It is never retried.
var ErrNotFound = errors.New("not found")

// Block is a block as reported by an adapter, before normalization.
// Transfers are kept as untrusted JSON payloads so that each one can be skipped on its own.
type Block struct {
	Network    model.Network
	Height     uint64
	Hash       string
	Time       time.Time
	Size       uint64
	Miner      string
	Difficulty float64
	Transfers  []json.RawMessage
}

// Adapter is the uniform read surface over a chain node.
// Block and Transfer return (nil, nil) when the chain has no such item.
type Adapter interface {
	Network() model.Network
	Height(ctx context.Context) (uint64, error)
	Block(ctx context.Context, height uint64) (*Block, error)
	Transfer(ctx context.Context, ref string) (json.RawMessage, error)
}
