package client

import "errors"

var (
	// ErrNotConnected is returned when a send is attempted while the
	// client is not in the Connected state.
	ErrNotConnected = errors.New("client: not connected")

	// ErrConnectInProgress is returned when Connect is called while a
	// connection attempt or live connection already exists.
	ErrConnectInProgress = errors.New("client: connect already in progress")

	// ErrAuthTimeout is returned when no AUTH_RESPONSE arrives within
	// the auth timeout.
	ErrAuthTimeout = errors.New("client: authentication timed out")
)
