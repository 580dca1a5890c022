package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"
)

// SessionAuthority checks PINs and owns the set of live session ids.
// The PIN itself is never stored; comparisons run against a digest in
// constant time so response timing leaks nothing about the secret.
type SessionAuthority struct {
	pinDigest [sha256.Size]byte

	mu   sync.Mutex
	live map[string]string // session id -> device id
}

// NewSessionAuthority creates an authority for the given PIN.
func NewSessionAuthority(pin string) *SessionAuthority {
	return &SessionAuthority{
		pinDigest: sha256.Sum256([]byte(pin)),
		live:      make(map[string]string),
	}
}

// Authenticate validates the presented PIN and, on success, issues a
// session id unique among live sessions.
func (a *SessionAuthority) Authenticate(pin, deviceID string) (string, error) {
	digest := sha256.Sum256([]byte(pin))
	if subtle.ConstantTimeCompare(digest[:], a.pinDigest[:]) != 1 {
		return "", ErrInvalidPIN
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	id := uuid.NewString()
	for _, taken := a.live[id]; taken; _, taken = a.live[id] {
		id = uuid.NewString()
	}
	a.live[id] = deviceID
	return id, nil
}

// Validate reports whether the session id belongs to a live session.
func (a *SessionAuthority) Validate(sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.live[sessionID]
	return ok
}

// Release removes a session id from the live set. Releasing an unknown
// id is a no-op.
func (a *SessionAuthority) Release(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.live, sessionID)
}

// LiveSessions returns the number of live sessions.
func (a *SessionAuthority) LiveSessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}
