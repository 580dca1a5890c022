package protocol

// Protocol limits. These bound resource use per message and per client;
// the registry enforces the connection-level limits, the codec enforces
// the message-level ones.
const (
	// MaxMessageSize is the ceiling for one encoded envelope in bytes.
	// Oversized messages are rejected before any payload decoding.
	MaxMessageSize = 1024

	// DocumentedMessageRate is the documented per-client message rate
	// (messages per second). It is not enforced on the hot path: mouse
	// moves are processed as fast as they arrive.
	DocumentedMessageRate = 60

	// MaxClients is the default cap on concurrent controlling peers.
	MaxClients = 5
)
