package protocol

import "fmt"

// AuthRequest asks the desktop to open a session for a device.
type AuthRequest struct {
	PIN        string `json:"pin"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName,omitempty"`
}

func (*AuthRequest) MessageType() MessageType { return TypeAuthRequest }

func (p *AuthRequest) validate() error {
	if p.PIN == "" {
		return fmt.Errorf("missing pin")
	}
	if p.DeviceID == "" {
		return fmt.Errorf("missing deviceId")
	}
	return nil
}

// AuthResponse reports the outcome of an AuthRequest. SessionID is set
// only on success; Reason is a human-readable failure explanation that
// never identifies which part of the PIN was wrong.
type AuthResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (*AuthResponse) MessageType() MessageType { return TypeAuthResponse }

// MouseMove is a relative pointer movement in trackpad units.
// Sensitivity is the sender's configured multiplier at emission time;
// the desktop applies its own runtime sensitivity when translating.
type MouseMove struct {
	DeltaX      float64 `json:"deltaX"`
	DeltaY      float64 `json:"deltaY"`
	Sensitivity float64 `json:"sensitivity,omitempty"`
}

func (*MouseMove) MessageType() MessageType { return TypeMouseMove }

// Mouse button and click action tags used by MouseClick.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"

	ClickActionClick  = "click"
	ClickActionDouble = "double_click"
	ClickActionDown   = "down"
	ClickActionUp     = "up"
)

// MouseClick requests a button action.
type MouseClick struct {
	Button string `json:"button"`
	Action string `json:"action"`
}

func (*MouseClick) MessageType() MessageType { return TypeMouseClick }

func (p *MouseClick) validate() error {
	switch p.Button {
	case ButtonLeft, ButtonRight, ButtonMiddle:
	default:
		return fmt.Errorf("unknown button %q", p.Button)
	}
	switch p.Action {
	case ClickActionClick, ClickActionDouble, ClickActionDown, ClickActionUp:
	default:
		return fmt.Errorf("unknown action %q", p.Action)
	}
	return nil
}

// MouseScroll requests a wheel movement. Horizontal selects the wheel
// channel the delta is routed to.
type MouseScroll struct {
	Delta      float64 `json:"delta"`
	Horizontal bool    `json:"horizontal,omitempty"`
}

func (*MouseScroll) MessageType() MessageType { return TypeMouseScroll }

// Key action tags used by KeyEvent.
const (
	KeyActionDown  = "down"
	KeyActionUp    = "up"
	KeyActionPress = "press"
)

// KeyEvent requests a keyboard action with optional modifiers.
// Modifier names are "ctrl", "alt", "shift" and "win".
type KeyEvent struct {
	Key       string   `json:"key"`
	Action    string   `json:"action"`
	Modifiers []string `json:"modifiers,omitempty"`
}

func (*KeyEvent) MessageType() MessageType { return TypeKeyEvent }

func (p *KeyEvent) validate() error {
	if p.Key == "" {
		return fmt.Errorf("missing key")
	}
	switch p.Action {
	case KeyActionDown, KeyActionUp, KeyActionPress:
	default:
		return fmt.Errorf("unknown action %q", p.Action)
	}
	return nil
}

// TextInput carries literal text to be typed on the desktop.
type TextInput struct {
	Text string `json:"text"`
}

func (*TextInput) MessageType() MessageType { return TypeTextInput }

// Gesture tags used by GestureEvent.
const (
	GesturePinch  = "pinch"
	GestureRotate = "rotate"
	GestureSwipe  = "swipe"
)

// GestureEvent carries a recognized complex gesture. Scale is the pinch
// scale factor (1.0 = no change), Rotation is in degrees, and the
// velocity fields describe a swipe in units per second.
type GestureEvent struct {
	Gesture   string  `json:"gesture"`
	Scale     float64 `json:"scale,omitempty"`
	Rotation  float64 `json:"rotation,omitempty"`
	VelocityX float64 `json:"velocityX,omitempty"`
	VelocityY float64 `json:"velocityY,omitempty"`
}

func (*GestureEvent) MessageType() MessageType { return TypeGestureEvent }

func (p *GestureEvent) validate() error {
	switch p.Gesture {
	case GesturePinch, GestureRotate, GestureSwipe:
		return nil
	default:
		return fmt.Errorf("unknown gesture %q", p.Gesture)
	}
}

// Heartbeat is the bidirectional liveness signal. The envelope timestamp
// carries the send time; the payload is intentionally empty.
type Heartbeat struct{}

func (*Heartbeat) MessageType() MessageType { return TypeHeartbeat }

// StatusUpdate is a server-to-client notice about connection state
// (for example an impending shutdown).
type StatusUpdate struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (*StatusUpdate) MessageType() MessageType { return TypeStatusUpdate }

// ConfigUpdate adjusts the desktop's runtime translation settings.
// Values outside [0.1, 5.0] are clamped by the receiver.
type ConfigUpdate struct {
	Sensitivity float64 `json:"sensitivity,omitempty"`
	ScrollSpeed float64 `json:"scrollSpeed,omitempty"`
}

func (*ConfigUpdate) MessageType() MessageType { return TypeConfigUpdate }
