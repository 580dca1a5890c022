package input

import (
	"fmt"
	"log/slog"
)

// Button identifies a pointer button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// String returns the lowercase button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// ButtonFromName maps a wire button name onto a Button. Unknown names
// fall back to the left button; the codec rejects them upstream.
func ButtonFromName(name string) Button {
	switch name {
	case "right":
		return ButtonRight
	case "middle":
		return ButtonMiddle
	default:
		return ButtonLeft
	}
}

// Key names a keyboard key in the injector's platform-neutral vocabulary.
type Key string

const (
	KeyCtrl      Key = "ctrl"
	KeyAlt       Key = "alt"
	KeyShift     Key = "shift"
	KeyWin       Key = "win"
	KeyEnter     Key = "enter"
	KeyTab       Key = "tab"
	KeyBackspace Key = "backspace"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
)

// Injector is the synthetic-input capability boundary. Implementations
// marshal these primitives into concrete OS events; nothing above this
// interface depends on OS struct layouts.
//
// Calls may block at the OS boundary, so callers must keep injection off
// connection I/O goroutines.
type Injector interface {
	// MoveRelative moves the pointer by whole pixels.
	MoveRelative(dx, dy int) error

	// Button presses (down=true) or releases a pointer button.
	Button(b Button, down bool) error

	// Wheel scrolls by wheel units (120 units per notch) on the
	// vertical or horizontal channel.
	Wheel(units int, horizontal bool) error

	// KeyDown and KeyUp press and release a named key.
	KeyDown(k Key) error
	KeyUp(k Key) error

	// Char injects one Unicode character as a key-down/key-up pair.
	Char(r rune) error
}

// InjectionError wraps a failed injector call. It is logged locally and
// never surfaced back to the controlling peer.
type InjectionError struct {
	Op  string
	Err error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("input: %s: %v", e.Op, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }

// LogInjector is an Injector that records primitives to a logger instead
// of the OS. Used when the daemon runs without a platform backend.
type LogInjector struct {
	logger *slog.Logger
}

// NewLogInjector creates a LogInjector.
func NewLogInjector(logger *slog.Logger) *LogInjector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogInjector{logger: logger.With("component", "injector")}
}

func (l *LogInjector) MoveRelative(dx, dy int) error {
	l.logger.Debug("move", "dx", dx, "dy", dy)
	return nil
}

func (l *LogInjector) Button(b Button, down bool) error {
	l.logger.Debug("button", "button", b.String(), "down", down)
	return nil
}

func (l *LogInjector) Wheel(units int, horizontal bool) error {
	l.logger.Debug("wheel", "units", units, "horizontal", horizontal)
	return nil
}

func (l *LogInjector) KeyDown(k Key) error {
	l.logger.Debug("key down", "key", string(k))
	return nil
}

func (l *LogInjector) KeyUp(k Key) error {
	l.logger.Debug("key up", "key", string(k))
	return nil
}

func (l *LogInjector) Char(r rune) error {
	l.logger.Debug("char", "rune", string(r))
	return nil
}
