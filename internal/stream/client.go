package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/audiospy/sonifier/internal/metrics"
)

// Client owns one WebSocket connection to the sonification server.
type Client interface {
	// Connect starts the connection supervisor. Dial failures do not
	// surface here; they drive the state machine into Reconnecting.
	Connect(ctx context.Context) error

	// Close tears down the connection, cancels any pending reconnect
	// timer, and transitions to Disconnected.
	Close() error

	// Send marshals and transmits a structured message if and only if the
	// connection is currently open; otherwise it returns ErrNotConnected.
	Send(v any) error

	// Frames returns the channel of parsed inbound frames, in strict
	// arrival order.
	Frames() <-chan Frame

	// States returns a channel of state transitions. Delivery is best
	// effort: transitions are dropped if the subscriber falls behind.
	States() <-chan State

	// State returns the current connection state.
	State() State

	// Stats returns lifetime counters.
	Stats() Stats
}

// client implements the Client interface.
type client struct {
	cfg    Config
	logger *slog.Logger

	frames chan Frame
	states chan State
	done   chan struct{}

	cancel context.CancelFunc

	// Write serialization
	writeMu sync.Mutex

	mu      sync.RWMutex
	state   State
	conn    *websocket.Conn
	started bool
	closed  bool

	framesDelivered atomic.Int64
	parseErrors     atomic.Int64
	reconnects      atomic.Int64
}

// NewClient creates a new stream client. It does not dial until Connect.
func NewClient(cfg Config, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &client{
		cfg:    cfg,
		logger: logger,
		state:  StateDisconnected,
		frames: make(chan Frame, cfg.BufferSize),
		states: make(chan State, cfg.StateBufferSize),
		done:   make(chan struct{}),
	}
}

// Connect starts the supervisor goroutine.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.started = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go c.supervise(ctx)
	return nil
}

// Close shuts the client down. Safe to call more than once.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	// Stops the supervisor, including a pending reconnect wait.
	close(c.done)
	if c.cancel != nil {
		c.cancel()
	}

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}

	c.setState(StateDisconnected)
	return nil
}

// Send transmits a structured message on the open connection.
func (c *client) Send(v any) error {
	c.mu.RLock()
	conn := c.conn
	state := c.state
	c.mu.RUnlock()

	if state != StateConnected || conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Frames returns the inbound frame channel.
func (c *client) Frames() <-chan Frame {
	return c.frames
}

// States returns the state transition channel.
func (c *client) States() <-chan State {
	return c.states
}

// State returns the current state.
func (c *client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Stats returns lifetime counters.
func (c *client) Stats() Stats {
	return Stats{
		FramesDelivered: c.framesDelivered.Load(),
		ParseErrors:     c.parseErrors.Load(),
		Reconnects:      c.reconnects.Load(),
	}
}

// supervise drives the connect/read/reconnect cycle. It exits only on
// Close or context cancellation; transport failures are non-fatal by
// design and feed the Reconnecting state instead.
func (c *client) supervise(ctx context.Context) {
	for {
		c.setState(StateConnecting)

		conn, err := c.dial(ctx)
		if err == nil {
			session := uuid.NewString()
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			c.setState(StateConnected)
			c.logger.Info("stream connected", "url", c.cfg.URL, "session", session)

			c.readLoop(conn)

			c.mu.Lock()
			c.conn = nil
			c.mu.Unlock()
		} else {
			c.logger.Warn("stream dial failed", "url", c.cfg.URL, "error", err)
		}

		select {
		case <-c.done:
			return
		case <-ctx.Done():
			c.Close()
			return
		default:
		}

		c.setState(StateReconnecting)
		c.reconnects.Add(1)
		metrics.Reconnects.Inc()

		select {
		case <-c.done:
			return
		case <-ctx.Done():
			c.Close()
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// dial opens one WebSocket connection.
func (c *client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}

	// Server sends ping, we respond with pong.
	conn.SetPingHandler(func(data string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(time.Second),
		)
	})

	return conn, nil
}

// readLoop reads frames until the connection breaks. A frame that fails
// to parse is dropped and counted; it never tears down the connection or
// blocks subsequent frames.
func (c *client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn("stream read error", "error", err)
			}
			conn.Close()
			return
		}

		frame, err := parseFrame(data, receivedAt)
		if err != nil {
			c.parseErrors.Add(1)
			metrics.ParseErrors.Inc()
			c.logger.Warn("dropping unparseable frame", "error", err)
			continue
		}

		// Blocking send preserves arrival order; frames are never
		// reordered or deduplicated here.
		select {
		case c.frames <- frame:
			c.framesDelivered.Add(1)
			metrics.FramesReceived.Inc()
		case <-c.done:
			conn.Close()
			return
		}
	}
}

// setState records a transition and notifies subscribers.
func (c *client) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	c.logger.Debug("stream state", "state", s)

	select {
	case c.states <- s:
	default:
	}
}
