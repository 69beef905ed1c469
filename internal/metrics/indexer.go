package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indexBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "blocks_total",
		Help:      "Count of blocks handed to the indexer by outcome.",
	}, []string{"network", "outcome"})

	indexDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "index_duration_seconds",
		Help:      "Duration of indexing one block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "outcome"})

	indexTransfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "transfers_total",
		Help:      "Count of normalized transfers written.",
	}, []string{"network"})
)

type Indexer struct{}

func NewIndexer() *Indexer {
	return &Indexer{}
}

// Observe records one Index call. Transfers only count for committed blocks.
func (m Indexer) Observe(network model.Network, outcome string, transfers int, err error, started time.Time) {
	n := orUnknown(string(network))
	indexBlocksTotal.WithLabelValues(n, outcome).Inc()
	indexDuration.WithLabelValues(n, outcome).Observe(time.Since(started).Seconds())
	if err == nil && transfers > 0 {
		indexTransfers.WithLabelValues(n).Add(float64(transfers))
	}
}
