package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncPassTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "pass_total",
		Help:      "Count of catch-up passes.",
	}, []string{"network", "status"})

	syncPassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "pass_duration_seconds",
		Help:      "Duration of catch-up passes.",
		Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"network", "status"})

	syncPassBlocks = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "pass_indexed_blocks",
		Help:      "Number of blocks committed per pass.",
		Buckets:   prometheus.LinearBuckets(0, 1, 12),
	}, []string{"network"})

	syncBusyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "busy_total",
		Help:      "Count of triggers dropped because a pass was running.",
	}, []string{"network"})
)

// Syncer tracks one chain's sync engine.
type Syncer struct {
	network string
}

func NewSyncer(network model.Network) *Syncer {
	return &Syncer{network: orUnknown(string(network))}
}

// ObservePass records a finished or aborted pass.
func (m Syncer) ObservePass(err error, indexed int, started time.Time) {
	s := status(err)
	syncPassTotal.WithLabelValues(m.network, s).Inc()
	syncPassDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
	syncPassBlocks.WithLabelValues(m.network).Observe(float64(indexed))
}

func (m Syncer) ObserveBusy() {
	syncBusyTotal.WithLabelValues(m.network).Inc()
}
