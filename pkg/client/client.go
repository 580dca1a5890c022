package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/padctl/padctl/pkg/protocol"
)

// DefaultPath is the websocket endpoint path on the desktop daemon.
const DefaultPath = "/ws"

type dialFunc func(url string, timeout time.Duration) (*websocket.Conn, error)

// Client connects a touch device to a padctl daemon and keeps the
// connection alive. Safe for concurrent use.
type Client struct {
	cfg    *Config
	logger *slog.Logger

	state atomic.Int32

	mu            sync.Mutex
	conn          *websocket.Conn
	url           string
	sessionID     string
	attempts      int
	wantReconnect bool
	connCtx       context.Context
	connCancel    context.CancelFunc
	authWait      chan *protocol.AuthResponse

	writeMu sync.Mutex

	inbound chan *protocol.Envelope
	dropped atomic.Uint64

	dial dialFunc
}

// New creates a Client with the given config. A nil config uses
// DefaultConfig.
func New(cfg *Config, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.InboundBuffer <= 0 {
		cfg = cfg.Clone()
		cfg.InboundBuffer = DefaultConfig().InboundBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg.Clone(),
		logger:  logger.With("component", "client"),
		inbound: make(chan *protocol.Envelope, cfg.InboundBuffer),
		dial:    defaultDial,
	}
}

func defaultDial(url string, timeout time.Duration) (*websocket.Conn, error) {
	d := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := d.Dial(url, nil)
	return conn, err
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	old := State(c.state.Swap(int32(s)))
	if old != s {
		c.logger.Debug("state change", "from", old.String(), "to", s.String())
	}
}

// SessionID returns the session id from the last successful
// authentication, or "" when unauthenticated.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Messages returns the inbound message channel. When the channel is
// full the oldest undelivered message is dropped to make room.
func (c *Client) Messages() <-chan *protocol.Envelope {
	return c.inbound
}

// Dropped reports how many inbound messages were discarded because the
// receiver fell behind.
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Connect starts a connection to the daemon at address:port. It is
// valid only from the Disconnected or Failed states. The dial runs in
// the background; observe progress through State or WaitFor.
func (c *Client) Connect(address string, port int) error {
	switch c.State() {
	case StateDisconnected, StateFailed:
	default:
		return ErrConnectInProgress
	}

	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.url = fmt.Sprintf("ws://%s:%d%s", address, port, DefaultPath)
	c.attempts = 0
	c.wantReconnect = true
	c.connCtx = ctx
	c.connCancel = cancel
	c.mu.Unlock()

	c.setState(StateConnecting)
	c.logger.Info("connecting", "url", c.url)
	go c.dialAndRun(ctx)
	return nil
}

// Disconnect tears the connection down and stops any pending retry.
// The client ends in the Disconnected state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.wantReconnect = false
	c.sessionID = ""
	cancel := c.connCancel
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	c.setState(StateDisconnected)
	c.logger.Info("disconnected")
}

// WaitFor blocks until the client reaches the given state or the
// context is done.
func (c *Client) WaitFor(ctx context.Context, s State) error {
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	for {
		if c.State() == s {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// Send encodes and writes one message on the live connection, stamping
// the current session id on the envelope.
func (c *Client) Send(payload protocol.Payload) error {
	if c.State() != StateConnected {
		return ErrNotConnected
	}
	c.mu.Lock()
	conn := c.conn
	sid := c.sessionID
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := protocol.Encode(sid, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Authenticate sends an AUTH_REQUEST and waits for the matching
// AUTH_RESPONSE. On success the returned session id is remembered and
// stamped on subsequent sends. A refusal is returned as a non-nil
// response with Success false, not as an error.
func (c *Client) Authenticate(ctx context.Context, pin, deviceID, deviceName string) (*protocol.AuthResponse, error) {
	ch := make(chan *protocol.AuthResponse, 1)
	c.mu.Lock()
	c.authWait = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.authWait = nil
		c.mu.Unlock()
	}()

	err := c.Send(&protocol.AuthRequest{
		PIN:        pin,
		DeviceID:   deviceID,
		DeviceName: deviceName,
	})
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.cfg.AuthTimeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		if resp.Success {
			c.mu.Lock()
			c.sessionID = resp.SessionID
			c.mu.Unlock()
			c.logger.Info("authenticated", "session_id", resp.SessionID)
		} else {
			c.logger.Warn("authentication refused", "reason", resp.Reason)
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrAuthTimeout
	}
}

func (c *Client) dialAndRun(ctx context.Context) {
	c.mu.Lock()
	url := c.url
	c.mu.Unlock()

	conn, err := c.dial(url, c.cfg.DialTimeout)
	if err != nil {
		c.logger.Warn("dial failed", "url", url, "error", err)
		c.onSocketClosed(ctx)
		return
	}
	if ctx.Err() != nil {
		_ = conn.Close()
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.attempts = 0
	c.mu.Unlock()

	c.setState(StateConnected)
	c.logger.Info("connected", "url", url)

	go c.readLoop(ctx, conn)
	go c.heartbeatLoop(ctx, conn)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("connection lost", "error", err)
			}
			break
		}
		env, derr := protocol.Decode(data)
		if derr != nil {
			c.logger.Warn("bad message from server", "error", derr)
			continue
		}
		c.route(env)
	}

	_ = conn.Close()
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.sessionID = ""
	}
	c.mu.Unlock()
	c.onSocketClosed(ctx)
}

func (c *Client) route(env *protocol.Envelope) {
	switch p := env.Data.(type) {
	case *protocol.AuthResponse:
		c.mu.Lock()
		ch := c.authWait
		c.mu.Unlock()
		if ch != nil {
			select {
			case ch <- p:
				return
			default:
			}
		}
	case *protocol.Heartbeat:
		c.logger.Debug("heartbeat echo")
		return
	}
	c.deliver(env)
}

// deliver pushes onto the inbound channel, dropping the oldest queued
// message when the buffer is full.
func (c *Client) deliver(env *protocol.Envelope) {
	for {
		select {
		case c.inbound <- env:
			return
		default:
		}
		select {
		case <-c.inbound:
			c.dropped.Add(1)
		default:
		}
	}
}

func (c *Client) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			live := c.conn == conn
			c.mu.Unlock()
			if !live {
				return
			}
			if err := c.Send(&protocol.Heartbeat{}); err != nil {
				c.logger.Debug("heartbeat send failed", "error", err)
				return
			}
		}
	}
}

// onSocketClosed runs the retry decision after a dial failure or a
// connection loss. ctx belongs to the logical connection started by
// Connect; Disconnect cancels it.
func (c *Client) onSocketClosed(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	if !c.wantReconnect {
		c.mu.Unlock()
		c.setState(StateDisconnected)
		return
	}
	c.attempts++
	attempt := c.attempts
	max := c.cfg.MaxRetryAttempts
	c.mu.Unlock()

	if attempt > max {
		c.mu.Lock()
		c.wantReconnect = false
		c.mu.Unlock()
		c.setState(StateFailed)
		c.logger.Error("giving up", "attempts", max)
		return
	}

	c.setState(StateReconnecting)
	delay := c.retryDelay(attempt)
	c.logger.Info("reconnecting", "attempt", attempt, "delay", delay)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)
		c.dialAndRun(ctx)
	}()
}

// retryDelay returns the linear backoff delay for the given attempt
// number, starting at 1.
func (c *Client) retryDelay(attempt int) time.Duration {
	return c.cfg.BaseRetryDelay * time.Duration(attempt)
}
