package server

import (
	"net/http"
	"time"

	"github.com/padctl/padctl/pkg/protocol"
)

// PeerConfig holds per-connection settings.
type PeerConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the
	// peer. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// IdleTimeout is the inactivity span after which the sweep loop
	// closes a peer. Default: 5 minutes.
	IdleTimeout time.Duration

	// MaxMessageSize is the inbound websocket read limit.
	// Default: protocol.MaxMessageSize.
	MaxMessageSize int64
}

// DefaultPeerConfig returns a PeerConfig with sensible defaults.
func DefaultPeerConfig() *PeerConfig {
	return &PeerConfig{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    5 * time.Minute,
		MaxMessageSize: protocol.MaxMessageSize,
	}
}

// Clone returns a copy of the PeerConfig.
func (c *PeerConfig) Clone() *PeerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Config holds registry-wide settings.
type Config struct {
	// PIN is the shared secret peers must present. Required.
	PIN string

	// MaxPeers is the maximum number of concurrent peers; connections
	// past the limit are refused at accept.
	// Default: protocol.MaxClients.
	MaxPeers int

	// SweepInterval is the period of the idle-peer sweep.
	// Default: 1 minute.
	SweepInterval time.Duration

	// InputQueue is the capacity of the injection worker's queue.
	// Default: 256.
	InputQueue int

	// HandshakeTimeout is the maximum time for the websocket upgrade.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// ReadBufferSize is the websocket read buffer size. Default: 1024.
	ReadBufferSize int

	// WriteBufferSize is the websocket write buffer size. Default: 1024.
	WriteBufferSize int

	// CheckOrigin validates the request origin.
	// Default: allows all origins; pairing happens on a trusted LAN.
	CheckOrigin func(r *http.Request) bool

	// Peer is the per-connection configuration.
	// Default: DefaultPeerConfig().
	Peer *PeerConfig
}

// DefaultConfig returns a Config with sensible defaults. The PIN is
// left empty and must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		MaxPeers:         protocol.MaxClients,
		SweepInterval:    time.Minute,
		InputQueue:       256,
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		Peer:             DefaultPeerConfig(),
	}
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Peer = c.Peer.Clone()
	return &clone
}

// WithPIN sets the shared secret and returns the config.
func (c *Config) WithPIN(pin string) *Config {
	c.PIN = pin
	return c
}

// WithMaxPeers sets the concurrent-peer limit and returns the config.
func (c *Config) WithMaxPeers(n int) *Config {
	c.MaxPeers = n
	return c
}

// WithSweepInterval sets the sweep period and returns the config.
func (c *Config) WithSweepInterval(d time.Duration) *Config {
	c.SweepInterval = d
	return c
}

// fillDefaults replaces zero values with the documented defaults.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.MaxPeers == 0 {
		c.MaxPeers = def.MaxPeers
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = def.SweepInterval
	}
	if c.InputQueue == 0 {
		c.InputQueue = def.InputQueue
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = def.WriteBufferSize
	}
	if c.Peer == nil {
		c.Peer = def.Peer
	}
}
