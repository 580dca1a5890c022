package server

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/padctl/padctl/pkg/protocol"
)

// Peer is one controlling connection. All of its messages are handled
// sequentially on its receive goroutine; only send and close are safe
// to call from elsewhere.
type Peer struct {
	id     string
	conn   *websocket.Conn
	cfg    *PeerConfig
	logger *slog.Logger

	// authenticated is a one-way transition; sessionID is set once,
	// under mu, when the authority accepts the peer's PIN.
	authenticated atomic.Bool
	mu            sync.Mutex
	sessionID     string
	deviceName    string

	lastActivity atomic.Int64

	writeMu sync.Mutex
	closed  atomic.Bool
}

func newPeer(id string, conn *websocket.Conn, cfg *PeerConfig, logger *slog.Logger) *Peer {
	p := &Peer{
		id:     id,
		conn:   conn,
		cfg:    cfg,
		logger: logger.With("component", "peer", "peer_id", id),
	}
	p.touch()
	return p
}

// ID returns the peer identifier (remote address).
func (p *Peer) ID() string { return p.id }

// Authenticated reports whether the peer holds a live session.
func (p *Peer) Authenticated() bool { return p.authenticated.Load() }

// SessionID returns the peer's session id, or "" before auth.
func (p *Peer) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

// DeviceName returns the self-reported device name from the auth
// request, or "" before auth.
func (p *Peer) DeviceName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deviceName
}

func (p *Peer) grantSession(sessionID, deviceName string) {
	p.mu.Lock()
	p.sessionID = sessionID
	p.deviceName = deviceName
	p.mu.Unlock()
	p.authenticated.Store(true)
}

// touch records activity for the idle sweep.
func (p *Peer) touch() {
	p.lastActivity.Store(time.Now().UnixNano())
}

// idleFor returns the time since the peer's last message.
func (p *Peer) idleFor() time.Duration {
	return time.Since(time.Unix(0, p.lastActivity.Load()))
}

// send encodes and writes one message, stamping the peer's session id.
func (p *Peer) send(payload protocol.Payload) error {
	if p.closed.Load() {
		return ErrPeerClosed
	}
	data, err := protocol.Encode(p.SessionID(), payload)
	if err != nil {
		return NewPeerError(p.id, "encode", err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return NewPeerError(p.id, "write", err)
	}
	return nil
}

// sendError reports a protocol violation back to the peer. Errors are
// advisory; the connection stays open.
func (p *Peer) sendError(code, message string) {
	if err := p.send(protocol.NewError(code, message)); err != nil {
		p.logger.Debug("error reply failed", "code", code, "error", err)
	}
}

// close sends a close frame with the given reason and tears the
// connection down. Safe to call more than once.
func (p *Peer) close(reason string) {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.writeMu.Lock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(time.Second))
	p.writeMu.Unlock()
	_ = p.conn.Close()
	p.logger.Info("peer closed", "reason", reason)
}
