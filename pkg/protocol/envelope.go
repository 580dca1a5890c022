package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType tags an envelope and selects its payload schema.
type MessageType string

const (
	TypeAuthRequest  MessageType = "AUTH_REQUEST"
	TypeAuthResponse MessageType = "AUTH_RESPONSE"
	TypeMouseMove    MessageType = "MOUSE_MOVE"
	TypeMouseClick   MessageType = "MOUSE_CLICK"
	TypeMouseScroll  MessageType = "MOUSE_SCROLL"
	TypeKeyEvent     MessageType = "KEY_EVENT"
	TypeTextInput    MessageType = "TEXT_INPUT"
	TypeGestureEvent MessageType = "GESTURE_EVENT"
	TypeHeartbeat    MessageType = "HEARTBEAT"
	TypeError        MessageType = "ERROR"
	TypeStatusUpdate MessageType = "STATUS_UPDATE"
	TypeConfigUpdate MessageType = "CONFIG_UPDATE"
)

// Valid reports whether mt is a recognized message type.
func (mt MessageType) Valid() bool {
	_, ok := payloadFactories[mt]
	return ok
}

// String returns the wire tag.
func (mt MessageType) String() string { return string(mt) }

// Payload is implemented by every typed envelope payload.
type Payload interface {
	// MessageType returns the envelope tag this payload belongs to.
	MessageType() MessageType
}

// Envelope is the outer wire structure carried over the WebSocket.
// Data holds the decoded payload for the envelope's type.
type Envelope struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      Payload     `json:"data,omitempty"`
}

// payloadFactories maps each tag to a constructor for its payload type.
// Decoding consults this registry exactly once per message; an envelope
// whose tag is absent here is rejected with ErrUnsupportedType.
var payloadFactories = map[MessageType]func() Payload{
	TypeAuthRequest:  func() Payload { return &AuthRequest{} },
	TypeAuthResponse: func() Payload { return &AuthResponse{} },
	TypeMouseMove:    func() Payload { return &MouseMove{} },
	TypeMouseClick:   func() Payload { return &MouseClick{} },
	TypeMouseScroll:  func() Payload { return &MouseScroll{} },
	TypeKeyEvent:     func() Payload { return &KeyEvent{} },
	TypeTextInput:    func() Payload { return &TextInput{} },
	TypeGestureEvent: func() Payload { return &GestureEvent{} },
	TypeHeartbeat:    func() Payload { return &Heartbeat{} },
	TypeError:        func() Payload { return &ErrorPayload{} },
	TypeStatusUpdate: func() Payload { return &StatusUpdate{} },
	TypeConfigUpdate: func() Payload { return &ConfigUpdate{} },
}

// rawEnvelope is the intermediate shape used during decode. Data stays
// raw until the tag has been validated.
type rawEnvelope struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"timestamp"`
	SessionID *string         `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

// Encode serializes an envelope for the given payload, stamping the
// current time. The session id may be empty for pre-auth traffic.
func Encode(sessionID string, payload Payload) ([]byte, error) {
	return EncodeAt(sessionID, payload, time.Now())
}

// EncodeAt is Encode with an explicit timestamp.
func EncodeAt(sessionID string, payload Payload, at time.Time) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrInvalidMessage)
	}
	mt := payload.MessageType()
	if !mt.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, mt)
	}

	env := struct {
		Type      MessageType `json:"type"`
		Timestamp int64       `json:"timestamp"`
		SessionID string      `json:"sessionId,omitempty"`
		Data      Payload     `json:"data"`
	}{
		Type:      mt,
		Timestamp: at.UnixMilli(),
		SessionID: sessionID,
		Data:      payload,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if len(data) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}
	return data, nil
}

// Decode parses and validates a wire message. The payload is decoded
// once, against the schema registered for the envelope's tag.
//
// Errors are reported through the package taxonomy: ErrPayloadTooLarge
// for oversized input (checked before any parsing), ErrInvalidJSON for
// unparseable bytes, ErrUnsupportedType for unknown tags, and
// ErrInvalidMessage for payloads that do not match their schema.
func Decode(data []byte) (*Envelope, error) {
	if len(data) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if raw.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}

	factory, ok := payloadFactories[raw.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, raw.Type)
	}

	payload := factory()
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, payload); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %v", ErrInvalidMessage, raw.Type, err)
		}
	}
	if v, ok := payload.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %v", ErrInvalidMessage, raw.Type, err)
		}
	}

	env := &Envelope{
		Type:      raw.Type,
		Timestamp: raw.Timestamp,
		Data:      payload,
	}
	if raw.SessionID != nil {
		env.SessionID = *raw.SessionID
	}
	return env, nil
}
