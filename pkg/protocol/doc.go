// Package protocol implements the padctl wire protocol.
//
// Every message travels inside a JSON envelope:
//
//	{ "type": "...", "timestamp": 1700000000000, "sessionId": "...", "data": { ... } }
//
// The envelope type tag selects the payload schema. Payloads are decoded
// exactly once, into the concrete type registered for the tag; envelopes
// carrying an unknown tag are rejected at decode time rather than at
// point of use. Encoded messages are capped at MaxMessageSize bytes.
//
// The package is stateless and side-effect free: it only translates
// between bytes and typed values, and reports malformed input through
// the error taxonomy in errors.go.
package protocol
