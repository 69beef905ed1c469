package bitcoin

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// transferPayload accepts the transaction shapes of bitcoind (vin/vout, BTC values),
// blockchain.info (inputs/out, satoshi values) and esplora (vin/vout, satoshi values).
type transferPayload struct {
	TxID   string          `json:"txid"`
	Hash   string          `json:"hash"`
	Vin    []inputPayload  `json:"vin"`
	Inputs []inputPayload  `json:"inputs"`
	Vout   []outputPayload `json:"vout"`
	Out    []outputPayload `json:"out"`
}

type inputPayload struct {
	Coinbase   string         `json:"coinbase"`
	IsCoinbase bool           `json:"is_coinbase"`
	Prevout    *outputPayload `json:"prevout"`
	PrevOut    *outputPayload `json:"prev_out"`
}

type outputPayload struct {
	Value               json.Number     `json:"value"`
	Addr                string          `json:"addr"`
	Script              string          `json:"script"`
	ScriptPubKeyAddress string          `json:"scriptpubkey_address"`
	ScriptPubKey        json.RawMessage `json:"scriptPubKey"`
}

type scriptPubKey struct {
	Address   string   `json:"address"`
	Addresses []string `json:"addresses"`
	Hex       string   `json:"hex"`
}

func (p transferPayload) id() string {
	if p.TxID != "" {
		return p.TxID
	}
	return p.Hash
}

func (p transferPayload) inputs() []inputPayload {
	if len(p.Vin) > 0 {
		return p.Vin
	}
	return p.Inputs
}

func (p transferPayload) outputs() []outputPayload {
	if len(p.Vout) > 0 {
		return p.Vout
	}
	return p.Out
}

func (in inputPayload) prevout() *outputPayload {
	if in.Prevout != nil {
		return in.Prevout
	}
	return in.PrevOut
}

func (in inputPayload) coinbase() bool {
	if in.Coinbase != "" || in.IsCoinbase {
		return true
	}
	prev := in.prevout()
	return prev != nil && prev.Value != "" && prev.value().IsZero()
}

func (o outputPayload) value() decimal.Decimal {
	if o.Value == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(o.Value.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}

func (o outputPayload) address(d *ScriptDecoder) string {
	if o.ScriptPubKeyAddress != "" {
		return o.ScriptPubKeyAddress
	}
	if addr := o.scriptPubKeyAddress(d); addr != "" {
		return addr
	}
	if o.Addr != "" {
		return o.Addr
	}
	return d.Address(o.Script)
}

// scriptPubKeyAddress handles both the bitcoind object form and the esplora hex string form,
// which share a key up to letter case.
func (o outputPayload) scriptPubKeyAddress(d *ScriptDecoder) string {
	raw := bytes.TrimSpace(o.ScriptPubKey)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '{':
		var spk scriptPubKey
		if err := json.Unmarshal(raw, &spk); err != nil {
			return ""
		}
		if spk.Address != "" {
			return spk.Address
		}
		if len(spk.Addresses) > 0 {
			return spk.Addresses[0]
		}
		return d.Address(spk.Hex)
	case '"':
		var scriptHex string
		if err := json.Unmarshal(raw, &scriptHex); err != nil {
			return ""
		}
		return d.Address(scriptHex)
	}
	return ""
}
