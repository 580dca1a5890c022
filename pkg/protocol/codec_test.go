package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		payload   Payload
	}{
		{
			name:    "auth_request",
			payload: &AuthRequest{PIN: "1234", DeviceID: "dev-1", DeviceName: "Pixel"},
		},
		{
			name:      "auth_response_success",
			sessionID: "s-1",
			payload:   &AuthResponse{Success: true, SessionID: "s-1"},
		},
		{
			name:    "auth_response_failure",
			payload: &AuthResponse{Success: false, Reason: "invalid PIN"},
		},
		{
			name:      "mouse_move",
			sessionID: "s-1",
			payload:   &MouseMove{DeltaX: 10.5, DeltaY: -5.25, Sensitivity: 1.5},
		},
		{
			name:      "mouse_click",
			sessionID: "s-1",
			payload:   &MouseClick{Button: ButtonRight, Action: ClickActionDouble},
		},
		{
			name:      "mouse_scroll",
			sessionID: "s-1",
			payload:   &MouseScroll{Delta: 3, Horizontal: true},
		},
		{
			name:      "key_event",
			sessionID: "s-1",
			payload:   &KeyEvent{Key: "a", Action: KeyActionPress, Modifiers: []string{"ctrl", "shift"}},
		},
		{
			name:      "text_input",
			sessionID: "s-1",
			payload:   &TextInput{Text: "hello\nworld"},
		},
		{
			name:      "gesture_pinch",
			sessionID: "s-1",
			payload:   &GestureEvent{Gesture: GesturePinch, Scale: 1.15},
		},
		{
			name:      "gesture_swipe",
			sessionID: "s-1",
			payload:   &GestureEvent{Gesture: GestureSwipe, VelocityX: -820, VelocityY: 40},
		},
		{
			name:      "heartbeat",
			sessionID: "s-1",
			payload:   &Heartbeat{},
		},
		{
			name:    "error",
			payload: &ErrorPayload{Code: CodeInvalidPIN, Message: "invalid PIN"},
		},
		{
			name:    "status_update",
			payload: &StatusUpdate{Status: "shutting_down", Message: "server stopping"},
		},
		{
			name:      "config_update",
			sessionID: "s-1",
			payload:   &ConfigUpdate{Sensitivity: 2.5, ScrollSpeed: 0.5},
		},
	}

	at := time.UnixMilli(1700000000123)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := EncodeAt(tc.sessionID, tc.payload, at)
			if err != nil {
				t.Fatalf("EncodeAt() error = %v", err)
			}

			env, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if env.Type != tc.payload.MessageType() {
				t.Errorf("Type = %v, want %v", env.Type, tc.payload.MessageType())
			}
			if env.Timestamp != at.UnixMilli() {
				t.Errorf("Timestamp = %d, want %d", env.Timestamp, at.UnixMilli())
			}
			if env.SessionID != tc.sessionID {
				t.Errorf("SessionID = %q, want %q", env.SessionID, tc.sessionID)
			}
			if !reflect.DeepEqual(env.Data, tc.payload) {
				t.Errorf("Data = %+v, want %+v", env.Data, tc.payload)
			}
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	data := []byte(`{"type":"SELF_DESTRUCT","timestamp":1,"data":{}}`)
	_, err := Decode(data)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Decode() error = %v, want ErrUnsupportedType", err)
	}
	if CodeForError(err) != CodeUnsupported {
		t.Errorf("CodeForError() = %q, want %q", CodeForError(err), CodeUnsupported)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("Decode() error = %v, want ErrInvalidJSON", err)
	}
	if CodeForError(err) != CodeInvalidJSON {
		t.Errorf("CodeForError() = %q, want %q", CodeForError(err), CodeInvalidJSON)
	}
}

func TestDecodeMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"timestamp":1,"data":{}}`))
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("Decode() error = %v, want ErrInvalidMessage", err)
	}
}

func TestDecodeOversized(t *testing.T) {
	big := `{"type":"TEXT_INPUT","timestamp":1,"data":{"text":"` +
		strings.Repeat("x", MaxMessageSize) + `"}}`
	_, err := Decode([]byte(big))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("Decode() error = %v, want ErrPayloadTooLarge", err)
	}
	if CodeForError(err) != CodePayloadTooLarge {
		t.Errorf("CodeForError() = %q, want %q", CodeForError(err), CodePayloadTooLarge)
	}
}

func TestEncodeOversized(t *testing.T) {
	_, err := Encode("", &TextInput{Text: strings.Repeat("x", MaxMessageSize)})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("Encode() error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestDecodeNullSessionID(t *testing.T) {
	data := []byte(`{"type":"HEARTBEAT","timestamp":5,"sessionId":null,"data":null}`)
	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if env.SessionID != "" {
		t.Errorf("SessionID = %q, want empty", env.SessionID)
	}
	if _, ok := env.Data.(*Heartbeat); !ok {
		t.Errorf("Data = %T, want *Heartbeat", env.Data)
	}
}

func TestDecodePayloadValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"auth_without_pin", `{"type":"AUTH_REQUEST","timestamp":1,"data":{"deviceId":"d"}}`},
		{"auth_without_device", `{"type":"AUTH_REQUEST","timestamp":1,"data":{"pin":"1234"}}`},
		{"click_bad_button", `{"type":"MOUSE_CLICK","timestamp":1,"data":{"button":"side","action":"click"}}`},
		{"click_bad_action", `{"type":"MOUSE_CLICK","timestamp":1,"data":{"button":"left","action":"triple"}}`},
		{"key_bad_action", `{"type":"KEY_EVENT","timestamp":1,"data":{"key":"a","action":"hold"}}`},
		{"key_missing_key", `{"type":"KEY_EVENT","timestamp":1,"data":{"action":"press"}}`},
		{"gesture_unknown", `{"type":"GESTURE_EVENT","timestamp":1,"data":{"gesture":"wave"}}`},
		{"move_wrong_shape", `{"type":"MOUSE_MOVE","timestamp":1,"data":{"deltaX":"ten"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.raw))
			if !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("Decode() error = %v, want ErrInvalidMessage", err)
			}
		})
	}
}

func TestErrorPayloadFatalOnWire(t *testing.T) {
	// Fatal must round-trip even though no sender sets it today.
	data, err := Encode("", &ErrorPayload{Code: CodeServerError, Message: "boom", Fatal: true})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Contains(data, []byte(`"fatal":true`)) {
		t.Errorf("encoded error missing fatal flag: %s", data)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	ep := env.Data.(*ErrorPayload)
	if !ep.Fatal {
		t.Error("Fatal = false, want true")
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	data, err := EncodeAt("s-9", &MouseMove{DeltaX: 1, DeltaY: 2}, time.UnixMilli(42))
	if err != nil {
		t.Fatalf("EncodeAt() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"type", "timestamp", "sessionId", "data"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("encoded envelope missing %q: %s", key, data)
		}
	}
}
