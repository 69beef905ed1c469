package model

// BlockEvent is the normalized block event pushed to subscribers.
type BlockEvent struct {
	Network    Network  `json:"network"`
	Height     uint64   `json:"height"`
	Hash       string   `json:"hash"`
	Timestamp  int64    `json:"timestamp"`
	TxCount    uint32   `json:"txCount"`
	Size       uint64   `json:"size"`
	Miner      string   `json:"miner,omitempty"`
	Fees       string   `json:"fees,omitempty"`
	Difficulty *float64 `json:"difficulty,omitempty"`
}

// NewBlockEvent builds the event for a persisted block.
func NewBlockEvent(b Block) BlockEvent {
	return BlockEvent{
		Network:   b.Network,
		Height:    b.Height,
		Hash:      b.Hash,
		Timestamp: b.Timestamp.UnixMilli(),
		TxCount:   b.TxCount,
		Size:      b.Size,
	}
}
