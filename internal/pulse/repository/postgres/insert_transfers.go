package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/goodnatureofminers/chainpulse-backend/pkg/safe"
)

// Values travel as text so that the decimal strings reach NUMERIC columns unchanged.
const insertTransfersQuery = `
INSERT INTO transactions (
	network,
	tx_hash,
	block_height,
	from_address,
	to_address,
	value,
	fee,
	timestamp,
	raw_metadata
)
SELECT
	t.network,
	t.tx_hash,
	t.block_height,
	t.from_address,
	t.to_address,
	t.value::numeric,
	t.fee::numeric,
	t.ts,
	NULLIF(t.raw, '')::jsonb
FROM unnest(
	$1::text[],
	$2::text[],
	$3::bigint[],
	$4::text[],
	$5::text[],
	$6::text[],
	$7::text[],
	$8::timestamptz[],
	$9::text[]
) AS t(network, tx_hash, block_height, from_address, to_address, value, fee, ts, raw)
ON CONFLICT (tx_hash) DO NOTHING`

type transferColumns struct {
	networks  []string
	hashes    []string
	heights   []int64
	froms     []string
	tos       []string
	values    []string
	fees      []string
	times     []time.Time
	metadatas []string
}

func newTransferColumns(txs []model.Transaction) (transferColumns, error) {
	c := transferColumns{
		networks:  make([]string, 0, len(txs)),
		hashes:    make([]string, 0, len(txs)),
		heights:   make([]int64, 0, len(txs)),
		froms:     make([]string, 0, len(txs)),
		tos:       make([]string, 0, len(txs)),
		values:    make([]string, 0, len(txs)),
		fees:      make([]string, 0, len(txs)),
		times:     make([]time.Time, 0, len(txs)),
		metadatas: make([]string, 0, len(txs)),
	}
	for _, tx := range txs {
		height, err := safe.Int64(tx.BlockHeight)
		if err != nil {
			return transferColumns{}, fmt.Errorf("transfer %s height: %w", tx.TxHash, err)
		}
		c.networks = append(c.networks, string(tx.Network))
		c.hashes = append(c.hashes, tx.TxHash)
		c.heights = append(c.heights, height)
		c.froms = append(c.froms, tx.FromAddress)
		c.tos = append(c.tos, tx.ToAddress)
		c.values = append(c.values, orZero(tx.Value))
		c.fees = append(c.fees, orZero(tx.Fee))
		c.times = append(c.times, tx.Timestamp)
		c.metadatas = append(c.metadatas, string(tx.RawMetadata))
	}
	return c, nil
}

func (c transferColumns) args() []any {
	return []any{c.networks, c.hashes, c.heights, c.froms, c.tos, c.values, c.fees, c.times, c.metadatas}
}

func orZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}

// insertTransfers writes all transfers in one statement. Rows whose tx_hash is already stored are skipped.
func insertTransfers(ctx context.Context, e execer, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	cols, err := newTransferColumns(txs)
	if err != nil {
		return err
	}
	if _, err := e.Exec(ctx, insertTransfersQuery, cols.args()...); err != nil {
		return fmt.Errorf("insert %d transfers: %w", len(txs), err)
	}
	return nil
}
