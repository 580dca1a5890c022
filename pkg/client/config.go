package client

import "time"

// Config holds client connection settings.
type Config struct {
	// DialTimeout bounds one connection attempt.
	// Default: 10 seconds.
	DialTimeout time.Duration

	// WriteTimeout bounds one outbound message write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between HEARTBEAT sends while
	// connected. Default: 30 seconds.
	HeartbeatInterval time.Duration

	// BaseRetryDelay is the linear backoff unit: attempt k is scheduled
	// after BaseRetryDelay * k. Default: 2 seconds.
	BaseRetryDelay time.Duration

	// MaxRetryAttempts is the number of reconnection attempts before the
	// client transitions to Failed. Default: 10.
	MaxRetryAttempts int

	// AuthTimeout bounds the wait for an AUTH_RESPONSE.
	// Default: 10 seconds.
	AuthTimeout time.Duration

	// InboundBuffer is the capacity of the inbound message channel.
	// When full, the oldest undelivered message is dropped.
	// Default: 64.
	InboundBuffer int
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		DialTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		BaseRetryDelay:    2 * time.Second,
		MaxRetryAttempts:  10,
		AuthTimeout:       10 * time.Second,
		InboundBuffer:     64,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
