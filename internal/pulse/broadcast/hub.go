package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/goodnatureofminers/chainpulse-backend/internal/pulse/model"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// NewBlockEvent tags block events in the subscriber envelope.
	NewBlockEvent = "new-block"

	// DefaultMaxClients bounds concurrent subscribers.
	DefaultMaxClients = 10000

	clientBufferSize = 64
)

var errHubFull = errors.New("subscriber limit reached")

type envelope struct {
	Event string           `json:"event"`
	Data  model.BlockEvent `json:"data"`
}

// Hub delivers events to the websocket subscribers connected at publish time.
// Delivery is at-most-once: a subscriber whose buffer is full is disconnected.
type Hub struct {
	mu         sync.Mutex
	clients    map[*client]struct{}
	closed     bool
	maxClients int

	upgrader websocket.Upgrader
	metrics  HubMetrics
	logger   *zap.Logger
}

func NewHub(metrics HubMetrics, maxClients int, logger *zap.Logger) *Hub {
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		maxClients: maxClients,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer in front of the router.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		metrics: metrics,
		logger:  logger.Named("hub"),
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Publish queues the event for every connected subscriber without waiting on any of them.
func (h *Hub) Publish(_ context.Context, event model.BlockEvent) error {
	payload, err := json.Marshal(envelope{Event: NewBlockEvent, Data: event})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("subscriber too slow, disconnecting", zap.String("client", c.id))
			h.removeLocked(c)
			h.metrics.ObserveDropped()
		}
	}
	return nil
}

// ServeHTTP upgrades the request and keeps the subscriber until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, h.logger)
	if err := h.register(c); err != nil {
		h.logger.Warn("subscriber rejected", zap.Error(err))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
		_ = conn.Close()
		return
	}
	h.logger.Info("subscriber connected", zap.String("client", c.id), zap.String("remote", r.RemoteAddr))

	go c.writePump()
	c.readPump()

	h.unregister(c)
	h.logger.Info("subscriber disconnected", zap.String("client", c.id))
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errors.New("hub closed")
	}
	if len(h.clients) >= h.maxClients {
		return errHubFull
	}
	h.clients[c] = struct{}{}
	h.metrics.SetClients(len(h.clients))
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.SetClients(len(h.clients))
}
