package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/padctl/padctl/internal/metrics"
	"github.com/padctl/padctl/pkg/input"
	"github.com/padctl/padctl/pkg/protocol"
)

// Registry accepts controlling peers and routes their messages. It
// implements http.Handler for the websocket endpoint.
type Registry struct {
	cfg       *Config
	logger    *slog.Logger
	authority *SessionAuthority
	synth     *input.Synthesizer
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	upgrader  websocket.Upgrader

	// peers maps peer id -> *Peer. Iteration (sweep, shutdown) must not
	// block accept and dispatch, hence sync.Map rather than a mutex map.
	peers     sync.Map
	peerCount atomic.Int32

	// inputQueue serializes injection on one worker goroutine.
	inputQueue chan func()

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRegistry creates a Registry. A nil config uses DefaultConfig,
// which has no PIN; set one before exposing the handler.
func NewRegistry(cfg *Config, synth *input.Synthesizer, m *metrics.Metrics, logger *slog.Logger) *Registry {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.Clone()
	}
	cfg.fillDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.Nop()
	}

	r := &Registry{
		cfg:       cfg,
		logger:    logger.With("component", "registry"),
		authority: NewSessionAuthority(cfg.PIN),
		synth:     synth,
		metrics:   m,
		tracer:    otel.Tracer("github.com/padctl/padctl/pkg/server"),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			CheckOrigin:      cfg.CheckOrigin,
		},
		inputQueue: make(chan func(), cfg.InputQueue),
		done:       make(chan struct{}),
	}

	r.wg.Add(2)
	go r.injectionWorker()
	go r.sweepLoop()
	return r
}

// Authority exposes the session authority, mainly for tests and the
// status endpoint.
func (r *Registry) Authority() *SessionAuthority { return r.authority }

// PeerCount returns the number of connected peers.
func (r *Registry) PeerCount() int { return int(r.peerCount.Load()) }

// ServeHTTP upgrades the request and runs the peer until it closes.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	select {
	case <-r.done:
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	// Refuse over-limit peers before the upgrade so the client sees a
	// clean HTTP error instead of a dying websocket.
	if int(r.peerCount.Load()) >= r.cfg.MaxPeers {
		r.logger.Warn("peer refused", "remote", req.RemoteAddr, "reason", ErrMaxPeersReached)
		http.Error(w, ErrMaxPeersReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("upgrade failed", "remote", req.RemoteAddr, "error", err)
		return
	}

	peer := newPeer(req.RemoteAddr, conn, r.cfg.Peer, r.logger)
	if int(r.peerCount.Add(1)) > r.cfg.MaxPeers {
		// Lost the race with another accept.
		r.peerCount.Add(-1)
		peer.close("server full")
		return
	}
	r.peers.Store(peer.id, peer)
	r.metrics.ActivePeers.Inc()
	r.logger.Info("peer connected", "peer_id", peer.id)

	r.readLoop(peer)
	r.removePeer(peer, "connection closed")
}

// readLoop processes one peer's messages sequentially, in arrival
// order, until the connection dies.
func (r *Registry) readLoop(p *Peer) {
	p.conn.SetReadLimit(p.cfg.MaxMessageSize)

	for {
		_ = p.conn.SetReadDeadline(time.Now().Add(p.cfg.ReadTimeout))
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				p.logger.Warn("read failed", "error", err)
			}
			return
		}
		p.touch()
		r.dispatch(p, data)
	}
}

// dispatch decodes and handles a single raw message.
func (r *Registry) dispatch(p *Peer, data []byte) {
	start := time.Now()

	env, err := protocol.Decode(data)
	if err != nil {
		code := protocol.CodeForError(err)
		r.metrics.ProtocolErrors.WithLabelValues(code).Inc()
		p.logger.Warn("bad message", "code", code, "error", err)
		p.sendError(code, err.Error())
		return
	}

	_, span := r.tracer.Start(context.Background(), "dispatch",
		trace.WithAttributes(
			attribute.String("message.type", string(env.Type)),
			attribute.String("peer.id", p.id),
		))
	defer span.End()

	r.metrics.MessagesTotal.WithLabelValues(string(env.Type)).Inc()

	switch env.Type {
	case protocol.TypeAuthRequest:
		r.handleAuth(p, env.Data.(*protocol.AuthRequest))
	case protocol.TypeHeartbeat:
		r.handleHeartbeat(p, env)
	default:
		r.handleSessionMessage(p, env)
	}

	r.metrics.DispatchDuration.WithLabelValues(string(env.Type)).
		Observe(time.Since(start).Seconds())
}

func (r *Registry) handleAuth(p *Peer, req *protocol.AuthRequest) {
	if p.Authenticated() {
		// Re-auth on a live connection: release the old session and
		// issue a fresh one, same as the first time.
		r.authority.Release(p.SessionID())
		p.authenticated.Store(false)
	}

	sessionID, err := r.authority.Authenticate(req.PIN, req.DeviceID)
	if err != nil {
		r.metrics.AuthFailures.Inc()
		p.logger.Warn("auth refused", "device_id", req.DeviceID)
		p.sendError(protocol.CodeInvalidPIN, "invalid PIN")
		_ = p.send(&protocol.AuthResponse{Success: false, Reason: "invalid PIN"})
		return
	}

	p.grantSession(sessionID, req.DeviceName)
	p.logger.Info("peer authenticated",
		"device_id", req.DeviceID,
		"device_name", req.DeviceName,
		"session_id", sessionID)
	_ = p.send(&protocol.AuthResponse{Success: true, SessionID: sessionID})
}

func (r *Registry) handleHeartbeat(p *Peer, env *protocol.Envelope) {
	if !p.Authenticated() {
		p.sendError(protocol.CodeAuthRequired, "authenticate first")
		return
	}
	if env.SessionID != p.SessionID() {
		p.sendError(protocol.CodeInvalidSession, "session mismatch")
		return
	}
	_ = p.send(&protocol.Heartbeat{})
}

// handleSessionMessage guards and routes everything that requires a
// live session.
func (r *Registry) handleSessionMessage(p *Peer, env *protocol.Envelope) {
	if !p.Authenticated() {
		p.sendError(protocol.CodeAuthRequired, "authenticate first")
		return
	}
	if env.SessionID != p.SessionID() {
		p.sendError(protocol.CodeInvalidSession, "session mismatch")
		return
	}

	switch payload := env.Data.(type) {
	case *protocol.MouseMove:
		r.enqueueInput(p, "move", func() error {
			return r.synth.Move(payload.DeltaX, payload.DeltaY)
		})
	case *protocol.MouseClick:
		r.enqueueInput(p, "click", func() error {
			return r.synth.Click(input.ButtonFromName(payload.Button), payload.Action)
		})
	case *protocol.MouseScroll:
		r.enqueueInput(p, "scroll", func() error {
			return r.synth.Scroll(payload.Delta, payload.Horizontal)
		})
	case *protocol.KeyEvent:
		r.enqueueInput(p, "key", func() error {
			return r.synth.KeyEvent(payload.Key, payload.Action, payload.Modifiers)
		})
	case *protocol.TextInput:
		r.enqueueInput(p, "text", func() error {
			return r.synth.TypeText(payload.Text)
		})
	case *protocol.GestureEvent:
		r.enqueueGesture(p, payload)
	case *protocol.ConfigUpdate:
		r.synth.UpdateConfig(payload.Sensitivity, payload.ScrollSpeed)
	case *protocol.StatusUpdate:
		p.logger.Info("peer status", "status", payload.Status, "message", payload.Message)
	default:
		r.metrics.ProtocolErrors.WithLabelValues(protocol.CodeUnsupported).Inc()
		p.sendError(protocol.CodeUnsupported,
			fmt.Sprintf("unexpected %s from client", env.Type))
	}
}

func (r *Registry) enqueueGesture(p *Peer, g *protocol.GestureEvent) {
	switch g.Gesture {
	case protocol.GesturePinch:
		r.enqueueInput(p, "pinch", func() error { return r.synth.Pinch(g.Scale) })
	case protocol.GestureRotate:
		r.enqueueInput(p, "rotate", func() error { return r.synth.Rotate(g.Rotation) })
	case protocol.GestureSwipe:
		r.enqueueInput(p, "swipe", func() error { return r.synth.Swipe(g.VelocityX, g.VelocityY) })
	}
}

// enqueueInput hands an injection job to the worker. A full queue drops
// the command; input is lossy by nature and blocking the receive loop
// would stall heartbeats.
func (r *Registry) enqueueInput(p *Peer, kind string, job func() error) {
	wrapped := func() {
		if err := job(); err != nil {
			p.logger.Warn("injection failed", "kind", kind, "error", err)
			return
		}
		r.metrics.InjectedEvents.WithLabelValues(kind).Inc()
	}
	select {
	case r.inputQueue <- wrapped:
	default:
		r.metrics.DroppedInput.Inc()
		p.logger.Warn("input queue full, dropping", "kind", kind)
	}
}

func (r *Registry) injectionWorker() {
	defer r.wg.Done()
	for {
		select {
		case job := <-r.inputQueue:
			job()
		case <-r.done:
			// Drain what was already queued.
			for {
				select {
				case job := <-r.inputQueue:
					job()
				default:
					return
				}
			}
		}
	}
}

// sweepLoop periodically closes peers that have gone quiet.
func (r *Registry) sweepLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.done:
			return
		}
	}
}

func (r *Registry) sweep() {
	idleTimeout := r.cfg.Peer.IdleTimeout
	r.peers.Range(func(_, v any) bool {
		p := v.(*Peer)
		if idle := p.idleFor(); idle > idleTimeout {
			p.logger.Info("sweeping idle peer", "idle", idle)
			p.close("idle timeout")
			// removePeer runs when its readLoop unblocks; closing the
			// conn is enough to get there.
		}
		return true
	})
}

func (r *Registry) removePeer(p *Peer, reason string) {
	if _, loaded := r.peers.LoadAndDelete(p.id); !loaded {
		return
	}
	r.peerCount.Add(-1)
	r.metrics.ActivePeers.Dec()
	if sid := p.SessionID(); sid != "" {
		r.authority.Release(sid)
	}
	p.close(reason)
	if r.synth != nil {
		// Sub-pixel leftovers must not bleed into the next session.
		r.synth.ResetAccumulators()
	}
	r.logger.Info("peer removed", "peer_id", p.id, "reason", reason)
}

// Shutdown notifies peers, closes every connection and stops the
// background loops. It waits for the injection worker to drain or for
// the context to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.peers.Range(func(_, v any) bool {
			p := v.(*Peer)
			_ = p.send(&protocol.StatusUpdate{Status: "shutdown", Message: "server stopping"})
			return true
		})
		close(r.done)
		r.peers.Range(func(_, v any) bool {
			r.removePeer(v.(*Peer), "server shutdown")
			return true
		})
	})

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
