package model

import (
	"encoding/json"
	"time"
)

// Address sentinels used when a transfer endpoint cannot be expressed as a single address.
const (
	CoinbaseAddress       = "Coinbase (New BTC)"
	MultipleInputsAddress = "Multiple Inputs"
	UnknownAddress        = "unknown"
	ZeroAddress           = "0x0000000000000000000000000000000000000000"
)

// Block is one row per (network, height).
type Block struct {
	Network   Network
	Height    uint64
	Hash      string
	Timestamp time.Time
	TxCount   uint32
	Size      uint64
}

// Transaction is one normalized transfer. Value and Fee are exact decimal strings.
type Transaction struct {
	Network     Network
	TxHash      string
	BlockHeight uint64
	FromAddress string
	ToAddress   string
	Value       string
	Fee         string
	Timestamp   time.Time
	RawMetadata json.RawMessage
}

// IndexedBlock groups a block with the transfers normalized from it.
type IndexedBlock struct {
	Block        Block
	Transactions []Transaction
}
