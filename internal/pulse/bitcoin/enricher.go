package bitcoin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/chain"
	"go.uber.org/ratelimit"
)

const esploraPageSize = 25

// EnrichmentRetry is the retry policy for enrichers. Attempts carry no deadline of their own:
// a paged walk may take many requests, each bounded by the http.Client timeout.
func EnrichmentRetry(attempts uint, delay time.Duration) chain.RetryPolicy {
	return chain.FixedRetry(attempts, delay, 0)
}

// BlockchainInfo enriches blocks from the blockchain.info raw block endpoint.
// Its transactions carry resolved input addresses and satoshi values.
type BlockchainInfo struct {
	baseURL string
	client  *http.Client
	limiter ratelimit.Limiter
}

// NewBlockchainInfo constructs the blockchain.info enricher, e.g. for https://blockchain.info.
func NewBlockchainInfo(baseURL string, client *http.Client, limiter ratelimit.Limiter) *BlockchainInfo {
	return &BlockchainInfo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: limiter,
	}
}

func (e *BlockchainInfo) Name() string {
	return "blockchain.info"
}

// Transfers returns the block's transactions as reported by blockchain.info.
func (e *BlockchainInfo) Transfers(ctx context.Context, block *chain.Block) ([]json.RawMessage, error) {
	var res struct {
		Tx []json.RawMessage `json:"tx"`
	}
	url := fmt.Sprintf("%s/rawblock/%s?format=json", e.baseURL, block.Hash)
	if err := getJSON(ctx, e.client, e.limiter, url, &res); err != nil {
		return nil, err
	}
	if res.Tx == nil {
		return nil, errors.New("rawblock response has no tx field")
	}
	return res.Tx, nil
}

// Esplora enriches blocks from an esplora-compatible API such as https://mempool.space/api.
// Transactions are paged, esploraPageSize per request, with prevouts included.
type Esplora struct {
	baseURL string
	client  *http.Client
	limiter ratelimit.Limiter
}

// NewEsplora constructs the esplora enricher.
func NewEsplora(baseURL string, client *http.Client, limiter ratelimit.Limiter) *Esplora {
	return &Esplora{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: limiter,
	}
}

func (e *Esplora) Name() string {
	return "esplora"
}

// Transfers pages through the block's transactions until a short page or the node-reported count is reached.
func (e *Esplora) Transfers(ctx context.Context, block *chain.Block) ([]json.RawMessage, error) {
	expected := len(block.Transfers)
	all := make([]json.RawMessage, 0, expected)
	for start := 0; ; start += esploraPageSize {
		var page []json.RawMessage
		url := fmt.Sprintf("%s/block/%s/txs/%d", e.baseURL, block.Hash, start)
		if err := getJSON(ctx, e.client, e.limiter, url, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < esploraPageSize || (expected > 0 && len(all) >= expected) {
			break
		}
	}
	if len(all) == 0 {
		return nil, errors.New("esplora returned no transactions")
	}
	return all, nil
}

func getJSON(ctx context.Context, client *http.Client, limiter ratelimit.Limiter, url string, v any) error {
	limiter.Take()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", url, chain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: unexpected status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
