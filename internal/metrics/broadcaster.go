package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	broadcastTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "broadcaster",
		Name:      "events_total",
		Help:      "Count of events handed to each sink.",
	}, []string{"sink", "network", "status"})

	broadcastDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "broadcaster",
		Name:      "publish_duration_seconds",
		Help:      "Duration of publishing one event to a sink.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"sink", "network", "status"})

	hubClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "clients",
		Help:      "Connected websocket subscribers.",
	})

	hubDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "dropped_clients_total",
		Help:      "Count of subscribers disconnected for falling behind.",
	})
)

type Broadcaster struct{}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (m Broadcaster) Observe(sink string, network model.Network, err error, started time.Time) {
	s := status(err)
	n := orUnknown(string(network))
	broadcastTotal.WithLabelValues(sink, n, s).Inc()
	broadcastDuration.WithLabelValues(sink, n, s).Observe(time.Since(started).Seconds())
}

type Hub struct{}

func NewHub() *Hub {
	return &Hub{}
}

func (m Hub) SetClients(n int) {
	hubClients.Set(float64(n))
}

func (m Hub) ObserveDropped() {
	hubDroppedTotal.Inc()
}
