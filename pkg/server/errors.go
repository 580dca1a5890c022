package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry and peer operations.
var (
	// ErrMaxPeersReached is returned when a connection is refused at
	// accept because the peer limit is already met.
	ErrMaxPeersReached = errors.New("server: max peers reached")

	// ErrPeerClosed is returned when an operation is attempted on a
	// closed peer.
	ErrPeerClosed = errors.New("server: peer closed")

	// ErrInvalidPIN is returned by the authority for a wrong PIN.
	ErrInvalidPIN = errors.New("server: invalid pin")

	// ErrInvalidSession is returned when a message carries a session id
	// that does not belong to the sending peer.
	ErrInvalidSession = errors.New("server: invalid session")

	// ErrAuthRequired is returned when an unauthenticated peer sends
	// anything other than an auth request.
	ErrAuthRequired = errors.New("server: authentication required")

	// ErrRegistryClosed is returned when the registry has shut down.
	ErrRegistryClosed = errors.New("server: registry closed")
)

// PeerError wraps an error with peer context for debugging.
type PeerError struct {
	PeerID string
	Op     string
	Err    error
}

// Error returns the error message with peer context.
func (e *PeerError) Error() string {
	if e.PeerID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: peer %s: %s: %v", e.PeerID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *PeerError) Unwrap() error {
	return e.Err
}

// NewPeerError creates a new PeerError.
func NewPeerError(peerID, op string, err error) *PeerError {
	return &PeerError{PeerID: peerID, Op: op, Err: err}
}
