package gesture

import "time"

// Kind identifies a semantic event.
type Kind uint8

const (
	KindMove Kind = iota
	KindClick
	KindScroll
	KindPinch
	KindRotate
	KindSwipe
)

// String returns the event kind name.
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "Move"
	case KindClick:
		return "Click"
	case KindScroll:
		return "Scroll"
	case KindPinch:
		return "Pinch"
	case KindRotate:
		return "Rotate"
	case KindSwipe:
		return "Swipe"
	default:
		return "Unknown"
	}
}

// Button names used on Click events.
const (
	ButtonLeft  = "left"
	ButtonRight = "right"
)

// Event is one recognized semantic input event. Only the fields relevant
// to Kind are populated.
type Event struct {
	Kind Kind

	// Move and Scroll deltas, already scaled.
	DX, DY float64

	// Click fields.
	Button string
	Double bool

	// Pinch scale factor (1.0 = unchanged) and rotation in degrees.
	Scale    float64
	Rotation float64

	// Swipe velocity in units per second.
	VelocityX, VelocityY float64
}

// Config holds recognizer thresholds.
type Config struct {
	// MoveThreshold is the minimum movement since the last accepted
	// sample before a Move event is emitted, in touch units.
	MoveThreshold float64

	// TapWindow is the maximum hold duration for a tap.
	TapWindow time.Duration

	// DoubleTapWindow is the maximum gap between two taps that pair
	// into a double click.
	DoubleTapWindow time.Duration

	// LongPressTimeout is the hold duration past which a motionless
	// press becomes a right click.
	LongPressTimeout time.Duration

	// ScrollSensitivity scales two-finger separation deltas.
	ScrollSensitivity float64

	// PinchThreshold is the minimum |scale - 1| per tick.
	PinchThreshold float64

	// RotateThreshold is the minimum rotation per tick, in degrees.
	RotateThreshold float64

	// SwipeMinVelocity is the minimum release speed for a fling, in
	// units per second.
	SwipeMinVelocity float64

	// SpeedBoostFactor couples instantaneous pointer speed to the move
	// sensitivity factor; MaxSpeedBoost clamps the result.
	SpeedBoostFactor float64
	MaxSpeedBoost    float64
}

// DefaultConfig returns the recognizer defaults.
func DefaultConfig() Config {
	return Config{
		MoveThreshold:     2.0,
		TapWindow:         200 * time.Millisecond,
		DoubleTapWindow:   300 * time.Millisecond,
		LongPressTimeout:  500 * time.Millisecond,
		ScrollSensitivity: 0.5,
		PinchThreshold:    0.1,
		RotateThreshold:   5.0,
		SwipeMinVelocity:  500,
		SpeedBoostFactor:  0.002,
		MaxSpeedBoost:     3.0,
	}
}
