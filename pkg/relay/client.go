package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler answers one capability request. Implementations must always return
// a response; the bridge synthesizes a timeout only when nothing arrives.
type Handler interface {
	Handle(ctx context.Context, req *Request) *Response
}

// Client is the executor side of the relay channel: it dials the bridge,
// serves requests until the connection drops, and redials on a fixed
// interval. A fresh connection replaces the old one; nothing queued before a
// disconnect is replayed.
type Client struct {
	url               string
	handler           Handler
	logger            *zap.Logger
	reconnectInterval time.Duration
	dialer            *websocket.Dialer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithReconnectInterval sets the delay between dial attempts.
func WithReconnectInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.reconnectInterval = d }
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a relay client that will dial url and hand every inbound
// request to handler.
func NewClient(url string, handler Handler, opts ...ClientOption) *Client {
	c := &Client{
		url:               url,
		handler:           handler,
		logger:            zap.NewNop(),
		reconnectInterval: 5 * time.Second,
		dialer:            websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and serves until ctx is cancelled, reconnecting after every
// disconnect.
func (c *Client) Run(ctx context.Context) error {
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.logger.Warn("bridge dial failed, retrying",
				zap.String("url", c.url),
				zap.Duration("retry_in", c.reconnectInterval),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.reconnectInterval):
				continue
			}
		}

		c.logger.Info("connected to bridge", zap.String("url", c.url))
		c.serve(ctx, conn)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectInterval):
		}
	}
}

func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// Close the socket when ctx is cancelled so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	var writeMu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Info("bridge connection lost", zap.Error(err))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			c.logger.Warn("malformed relay request", zap.Error(err))
			continue
		}

		// Requests are independent; serve them concurrently so one slow
		// generation does not block the channel.
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp := c.handler.Handle(ctx, &req)
			data, err := json.Marshal(resp)
			if err != nil {
				c.logger.Error("failed to encode relay response",
					zap.String("correlation_id", req.CorrelationID),
					zap.Error(err))
				return
			}

			writeMu.Lock()
			err = conn.WriteMessage(websocket.TextMessage, data)
			writeMu.Unlock()
			if err != nil {
				c.logger.Warn("failed to send relay response",
					zap.String("correlation_id", req.CorrelationID),
					zap.Error(err))
			}
		}()
	}
}
