package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedConnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "connects_total",
		Help:      "Count of push feed dial attempts.",
	}, []string{"network", "status"})

	feedMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "messages_total",
		Help:      "Count of handled push feed messages.",
	}, []string{"network", "status"})

	feedMessageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "message_duration_seconds",
		Help:      "Duration of handling one push feed message.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})
)

// Feed tracks one chain's push listener.
type Feed struct {
	network string
}

func NewFeed(network model.Network) *Feed {
	return &Feed{network: orUnknown(string(network))}
}

func (m Feed) ObserveConnect(err error) {
	feedConnectsTotal.WithLabelValues(m.network, status(err)).Inc()
}

func (m Feed) ObserveMessage(err error, started time.Time) {
	s := status(err)
	feedMessagesTotal.WithLabelValues(m.network, s).Inc()
	feedMessageDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
}
