// Package feed keeps a push subscription to a chain alive and dispatches its messages.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goodnatureofminers/chainpulse-backend/internal/clock"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultReconnectDelay is the pause between a lost stream and the next dial.
const DefaultReconnectDelay = 5 * time.Second

const (
	handshakeTimeout = 15 * time.Second
	writeWait        = 10 * time.Second
	// DefaultIdleTimeout is how long a stream may stay silent, pongs included, before it is dropped.
	DefaultIdleTimeout = 60 * time.Second
)

type Listener struct {
	url            string
	handler        Handler
	metrics        Metrics
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	idleTimeout    time.Duration
	sleep          func(context.Context, time.Duration) error
	logger         *zap.Logger

	handlers sync.WaitGroup
}

func NewListener(url string, handler Handler, metrics Metrics, reconnectDelay time.Duration, logger *zap.Logger) (*Listener, error) {
	if url == "" {
		return nil, errors.New("feed url is required")
	}
	if metrics == nil {
		return nil, errors.New("feed metrics is required")
	}
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	return &Listener{
		url:            url,
		handler:        handler,
		metrics:        metrics,
		dialer:         &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		reconnectDelay: reconnectDelay,
		idleTimeout:    DefaultIdleTimeout,
		sleep:          clock.SleepWithContext,
		logger:         logger.Named("feed").With(zap.Stringer("network", handler.Network())),
	}, nil
}

// Run keeps the stream open until ctx is done, reconnecting after every failure.
// In-flight message handlers are awaited before Run returns.
func (l *Listener) Run(ctx context.Context) error {
	defer l.handlers.Wait()

	for {
		err := l.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Warn("feed stream lost, reconnecting", zap.Error(err), zap.Duration("delay", l.reconnectDelay))
		if err := l.sleep(ctx, l.reconnectDelay); err != nil {
			return err
		}
	}
}

func (l *Listener) session(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	l.metrics.ObserveConnect(err)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.Close()

	// Unblocks ReadMessage on shutdown.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	if err := conn.WriteMessage(websocket.TextMessage, l.handler.Subscribe()); err != nil {
		return fmt.Errorf("send subscription: %w", err)
	}
	l.logger.Info("feed connected and subscribed", zap.String("url", l.url))

	_ = conn.SetReadDeadline(time.Now().Add(l.idleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(l.idleTimeout))
	})
	pinging := make(chan struct{})
	defer close(pinging)
	go l.ping(conn, pinging)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read feed: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(l.idleTimeout))

		l.handlers.Add(1)
		go func() {
			defer l.handlers.Done()
			l.handle(ctx, message)
		}()
	}
}

// ping keeps pongs flowing so that a silent but healthy stream is not dropped.
func (l *Listener) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(l.idleTimeout * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (l *Listener) handle(ctx context.Context, message []byte) {
	started := time.Now()
	err := l.handler.Handle(ctx, message)
	l.metrics.ObserveMessage(err, started)
	if err != nil {
		l.logger.Error("feed message not handled", zap.Error(err))
	}
}
