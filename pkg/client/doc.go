// Package client implements the controlling peer's connection to a
// padctl desktop.
//
// A Client owns the socket lifecycle: dialing, the heartbeat sender,
// and reconnection with linear backoff. State transitions are driven
// only by Connect, Disconnect, socket callbacks and the reconnect
// scheduler. The client is the single retry authority; there is no
// second, outer retry loop layered on top of it.
//
// Authentication sits above the state machine: once the socket is
// Connected the caller runs Authenticate, and the session id from a
// successful response is stamped on every subsequent send.
package client
