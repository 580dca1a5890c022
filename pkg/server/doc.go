// Package server implements the desktop side of the padctl protocol.
//
// A Registry accepts websocket connections from controlling peers,
// enforces the concurrent-peer limit at accept time, and runs one
// sequential receive loop per peer. Messages on one connection are
// processed in arrival order; peers are independent of each other.
//
// Authentication is a one-way transition: a peer starts
// unauthenticated, may only send AUTH_REQUEST, and once the
// SessionAuthority accepts its PIN it holds a session id for the rest
// of the connection. Input messages are decoded on the peer's receive
// goroutine and executed on a single injection worker so a blocking OS
// call never stalls the sockets.
package server
