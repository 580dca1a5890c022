package protocol

import "errors"

// Decode/encode errors. Registry code maps these onto wire error codes
// before replying to the offending peer.
var (
	// ErrInvalidJSON is returned when a message is not valid JSON.
	ErrInvalidJSON = errors.New("protocol: invalid json")

	// ErrInvalidMessage is returned when an envelope or payload does not
	// match the schema for its type.
	ErrInvalidMessage = errors.New("protocol: invalid message")

	// ErrUnsupportedType is returned for envelopes carrying a tag that
	// has no registered payload schema.
	ErrUnsupportedType = errors.New("protocol: unsupported message type")

	// ErrPayloadTooLarge is returned when an encoded message exceeds
	// MaxMessageSize.
	ErrPayloadTooLarge = errors.New("protocol: payload too large")
)

// Wire error codes carried in ErrorPayload.Code.
const (
	CodeInvalidPIN       = "INVALID_PIN"
	CodeInvalidSession   = "INVALID_SESSION"
	CodeRateLimit        = "RATE_LIMIT"
	CodeServerError      = "SERVER_ERROR"
	CodeUnsupported      = "UNSUPPORTED_MESSAGE"
	CodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeInvalidMessage   = "INVALID_MESSAGE"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
)

// ErrorPayload is the ERROR envelope body.
//
// Fatal is part of the wire contract for forward compatibility, but no
// current sender sets it true; receivers must not rely on it to decide
// whether to close the connection.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

func (*ErrorPayload) MessageType() MessageType { return TypeError }

// Error implements the error interface.
func (p *ErrorPayload) Error() string {
	return p.Code + ": " + p.Message
}

// NewError creates a non-fatal ERROR payload.
func NewError(code, message string) *ErrorPayload {
	return &ErrorPayload{Code: code, Message: message}
}

// CodeForError maps a decode error onto its wire error code.
func CodeForError(err error) string {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return CodePayloadTooLarge
	case errors.Is(err, ErrInvalidJSON):
		return CodeInvalidJSON
	case errors.Is(err, ErrUnsupportedType):
		return CodeUnsupported
	case errors.Is(err, ErrInvalidMessage):
		return CodeInvalidMessage
	default:
		return CodeServerError
	}
}
