package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nanobridge-dev/nanobridge/internal/metrics"
	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

// Hub owns the bridge side of the relay channel: the single current executor
// connection and the table of outstanding calls. At most one connection is
// current at a time; a newly attached executor replaces the previous one.
type Hub struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	upgrader websocket.Upgrader

	connMu sync.Mutex
	conn   *websocket.Conn
	gen    uint64

	pendingMu sync.Mutex
	pending   map[string]chan *Response
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) HubOption {
	return func(h *Hub) { h.timeout = d }
}

// WithLogger sets the hub logger.
func WithLogger(l *zap.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// WithMetrics sets the hub collectors.
func WithMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates a relay hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:  zap.NewNop(),
		timeout: 30 * time.Second,
		upgrader: websocket.Upgrader{
			// Executors connect from extension/web-app origins; the HTTP
			// layer's API key middleware is the access control, not Origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pending: make(map[string]chan *Response),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleConnect upgrades an HTTP request into the current executor
// connection. Any previously attached executor is closed and replaced.
func (h *Hub) HandleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("relay upgrade failed", zap.Error(err))
		return
	}

	h.connMu.Lock()
	if h.conn != nil {
		h.conn.Close()
	}
	h.conn = conn
	h.gen++
	gen := h.gen
	h.connMu.Unlock()

	h.metrics.SetRelayConnected(true)
	h.logger.Info("executor connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.readLoop(conn, gen)
}

func (h *Hub) readLoop(conn *websocket.Conn, gen uint64) {
	defer func() {
		conn.Close()

		h.connMu.Lock()
		if h.gen == gen {
			// Still the current connection: mark the channel down. Outstanding
			// calls are left in place; each resolves through its own deadline.
			h.conn = nil
			h.metrics.SetRelayConnected(false)
			h.logger.Info("executor disconnected")
		}
		h.connMu.Unlock()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("relay read failed", zap.Error(err))
			}
			return
		}

		var resp Response
		if err := json.Unmarshal(message, &resp); err != nil {
			h.logger.Warn("malformed relay response", zap.Error(err))
			continue
		}

		h.deliver(&resp)
	}
}

func (h *Hub) deliver(resp *Response) {
	h.pendingMu.Lock()
	ch, ok := h.pending[resp.CorrelationID]
	if ok {
		delete(h.pending, resp.CorrelationID)
	}
	h.pendingMu.Unlock()

	if !ok {
		// Late arrival for a call that already timed out.
		h.logger.Debug("dropping unmatched relay response",
			zap.String("correlation_id", resp.CorrelationID))
		return
	}

	h.metrics.CallFinished()
	ch <- resp
}

// Connected reports whether an executor is currently attached.
func (h *Hub) Connected() bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.conn != nil
}

// PendingCount returns the number of calls awaiting a response.
func (h *Hub) PendingCount() int {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	return len(h.pending)
}

// Call performs one tagged round trip: it allocates a fresh correlation id,
// sends the request envelope, and waits for the matching response or the
// deadline, whichever comes first. Transport-level failures (no executor,
// deadline elapsed) are returned as errors; a response whose Success field is
// false is returned as a response, not an error.
func (h *Hub) Call(ctx context.Context, action string, parameters any) (*Response, error) {
	h.connMu.Lock()
	conn := h.conn
	h.connMu.Unlock()

	if conn == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotConnected, "executor not connected", nil)
	}

	params, err := json.Marshal(parameters)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeRelaySend, "failed to encode parameters", err)
	}

	id := uuid.NewString()
	req := Request{
		CorrelationID: id,
		Action:        action,
		Parameters:    params,
	}

	ch := make(chan *Response, 1)
	h.pendingMu.Lock()
	h.pending[id] = ch
	h.pendingMu.Unlock()
	h.metrics.CallStarted()

	removed := false
	defer func() {
		if removed {
			return
		}
		// The call ended without a delivered response (timeout or send
		// failure): release the id so a late arrival is dropped, not
		// mis-delivered.
		h.pendingMu.Lock()
		if _, ok := h.pending[id]; ok {
			delete(h.pending, id)
			h.metrics.CallFinished()
		}
		h.pendingMu.Unlock()
	}()

	if err := h.send(conn, &req); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeRelaySend, "failed to send request to executor", err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	select {
	case resp := <-ch:
		removed = true
		return resp, nil
	case <-ctx.Done():
		return nil, apperrors.New(apperrors.ErrCodeTimeout, "request timeout", ctx.Err())
	}
}

func (h *Hub) send(conn *websocket.Conn, req *Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	// gorilla connections allow one concurrent writer
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.conn != conn {
		return apperrors.New(apperrors.ErrCodeNotConnected, "executor connection replaced", nil)
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears down the current connection, if any.
func (h *Hub) Close() {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
}
