package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operations_total",
		Help:      "Count of repository operations.",
	}, []string{"store", "operation", "network", "status"})
	repositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of repository operations.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"store", "operation", "network", "status"})
)

// Repository tracks operations of one store.
type Repository struct {
	store string
}

// NewPostgresRepository tracks the block and transfer store.
func NewPostgresRepository() *Repository {
	return &Repository{store: "postgres"}
}

// NewClickhouseRepository tracks the event archive.
func NewClickhouseRepository() *Repository {
	return &Repository{store: "clickhouse"}
}

// Observe records duration and status of a repository operation.
func (m Repository) Observe(operation string, network model.Network, err error, started time.Time) {
	s := status(err)
	n := orUnknown(string(network))
	repositoryRequestsTotal.WithLabelValues(m.store, operation, n, s).Inc()
	repositoryRequestDuration.WithLabelValues(m.store, operation, n, s).Observe(time.Since(started).Seconds())
}
