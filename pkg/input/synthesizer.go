package input

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Timing and scaling constants for primitive emission.
const (
	// WheelNotch is the OS wheel unit per unit of scroll delta.
	WheelNotch = 120

	// clickGap separates button down and up for a single click.
	clickGap = 10 * time.Millisecond

	// doubleClickPause separates the two clicks of a double click.
	doubleClickPause = 50 * time.Millisecond

	// charDelay separates injected characters during text input.
	charDelay = 5 * time.Millisecond

	// pinchUnitsPerDeviation converts pinch scale deviation into wheel
	// units: a full 1.0 deviation maps to ten notches.
	pinchUnitsPerDeviation = 10 * WheelNotch

	// rotateDegreesPerNotch converts rotation into horizontal wheel
	// notches, matching the recognizer's 5-degree tick.
	rotateDegreesPerNotch = 5

	// SwipeVelocityThreshold is the minimum |velocity| for a swipe to be
	// proxied as history navigation.
	SwipeVelocityThreshold = 500
)

// Runtime setting bounds. Updates outside this range are clamped.
const (
	MinSetting = 0.1
	MaxSetting = 5.0
)

// Config holds the runtime translation settings shared by all commands
// handled by one Synthesizer.
type Config struct {
	Sensitivity float64
	ScrollSpeed float64
}

// DefaultConfig returns the neutral translation settings.
func DefaultConfig() Config {
	return Config{Sensitivity: 1.0, ScrollSpeed: 1.0}
}

// modifierOrder is the fixed press order for key-event modifiers.
// Release happens in the reverse order.
var modifierOrder = []Key{KeyCtrl, KeyAlt, KeyShift, KeyWin}

// Synthesizer converts semantic commands into ordered injector calls.
// It accepts decoded, type-checked commands only; raw envelopes never
// reach this type.
type Synthesizer struct {
	inj    Injector
	logger *slog.Logger

	// cfg is replaced wholesale on update so a config change is atomic
	// with respect to concurrent translations.
	cfg atomic.Pointer[Config]

	// mu serializes emission and guards the accumulators.
	mu   sync.Mutex
	accX float64
	accY float64

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewSynthesizer creates a Synthesizer emitting through inj.
func NewSynthesizer(inj Injector, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Synthesizer{
		inj:    inj,
		logger: logger.With("component", "synthesizer"),
		sleep:  time.Sleep,
	}
	cfg := DefaultConfig()
	s.cfg.Store(&cfg)
	return s
}

// Config returns the current runtime settings.
func (s *Synthesizer) Config() Config {
	return *s.cfg.Load()
}

// UpdateConfig atomically replaces the runtime settings, clamping both
// values into [MinSetting, MaxSetting]. The new settings apply to all
// subsequent commands.
func (s *Synthesizer) UpdateConfig(sensitivity, scrollSpeed float64) {
	cfg := Config{
		Sensitivity: clamp(sensitivity, MinSetting, MaxSetting),
		ScrollSpeed: clamp(scrollSpeed, MinSetting, MaxSetting),
	}
	s.cfg.Store(&cfg)
	s.logger.Info("runtime config updated",
		"sensitivity", cfg.Sensitivity,
		"scroll_speed", cfg.ScrollSpeed)
}

// Move translates a relative pointer delta. The scaled delta is added to
// per-axis accumulators; only the whole-pixel part is emitted and the
// fractional remainder carries over to the next call.
func (s *Synthesizer) Move(dx, dy float64) error {
	cfg := s.cfg.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accX += dx * cfg.Sensitivity
	s.accY += dy * cfg.Sensitivity

	ix := int(s.accX)
	iy := int(s.accY)
	if ix == 0 && iy == 0 {
		return nil
	}
	s.accX -= float64(ix)
	s.accY -= float64(iy)

	if err := s.inj.MoveRelative(ix, iy); err != nil {
		return &InjectionError{Op: "move", Err: err}
	}
	return nil
}

// Click performs a button action: "down", "up", "click" (down, short
// gap, up) or "double_click" (two clicks with a short pause).
func (s *Synthesizer) Click(button Button, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case "down":
		return s.button(button, true)
	case "up":
		return s.button(button, false)
	case "click":
		return s.singleClick(button)
	case "double_click":
		if err := s.singleClick(button); err != nil {
			return err
		}
		s.sleep(doubleClickPause)
		return s.singleClick(button)
	default:
		return &InjectionError{Op: "click", Err: errUnknownAction(action)}
	}
}

func (s *Synthesizer) singleClick(button Button) error {
	if err := s.button(button, true); err != nil {
		return err
	}
	s.sleep(clickGap)
	return s.button(button, false)
}

func (s *Synthesizer) button(b Button, down bool) error {
	if err := s.inj.Button(b, down); err != nil {
		return &InjectionError{Op: "button", Err: err}
	}
	return nil
}

// Scroll emits a wheel movement of delta scaled by the scroll speed and
// the wheel-notch constant, routed to the channel selected by horizontal.
func (s *Synthesizer) Scroll(delta float64, horizontal bool) error {
	cfg := s.cfg.Load()
	units := int(math.Round(delta * cfg.ScrollSpeed * WheelNotch))
	if units == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inj.Wheel(units, horizontal); err != nil {
		return &InjectionError{Op: "scroll", Err: err}
	}
	return nil
}

// KeyEvent presses the requested modifiers in fixed order (ctrl, alt,
// shift, win), performs the primary key action, then releases the
// modifiers in reverse order. Action is "down", "up" or "press".
func (s *Synthesizer) KeyEvent(key string, action string, modifiers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyEvent(Key(key), action, modifiers)
}

func (s *Synthesizer) keyEvent(key Key, action string, modifiers []string) error {
	mods := orderedModifiers(modifiers)

	for _, m := range mods {
		if err := s.inj.KeyDown(m); err != nil {
			return &InjectionError{Op: "modifier down", Err: err}
		}
	}

	var err error
	switch action {
	case "down":
		err = s.inj.KeyDown(key)
	case "up":
		err = s.inj.KeyUp(key)
	case "press":
		if err = s.inj.KeyDown(key); err == nil {
			s.sleep(clickGap)
			err = s.inj.KeyUp(key)
		}
	default:
		err = errUnknownAction(action)
	}

	// Modifiers are always released, even when the primary key failed,
	// so a failed injection cannot leave ctrl or alt stuck down.
	for i := len(mods) - 1; i >= 0; i-- {
		if upErr := s.inj.KeyUp(mods[i]); upErr != nil && err == nil {
			err = upErr
		}
	}

	if err != nil {
		return &InjectionError{Op: "key " + string(key), Err: err}
	}
	return nil
}

// orderedModifiers filters the requested modifier names into the fixed
// press order, dropping unknown names and duplicates.
func orderedModifiers(names []string) []Key {
	if len(names) == 0 {
		return nil
	}
	requested := make(map[Key]bool, len(names))
	for _, n := range names {
		requested[Key(n)] = true
	}
	var out []Key
	for _, m := range modifierOrder {
		if requested[m] {
			out = append(out, m)
		}
	}
	return out
}

// TypeText injects text character by character. Control characters map
// to their key equivalents; everything else goes through Unicode
// injection. A short delay separates characters.
func (s *Synthesizer) TypeText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runes := []rune(text)
	for i, r := range runes {
		var err error
		switch r {
		case '\n', '\r':
			err = s.pressKey(KeyEnter)
		case '\t':
			err = s.pressKey(KeyTab)
		case '\b':
			err = s.pressKey(KeyBackspace)
		default:
			err = s.inj.Char(r)
		}
		if err != nil {
			return &InjectionError{Op: "text", Err: err}
		}
		if i < len(runes)-1 {
			s.sleep(charDelay)
		}
	}
	return nil
}

func (s *Synthesizer) pressKey(k Key) error {
	if err := s.inj.KeyDown(k); err != nil {
		return err
	}
	return s.inj.KeyUp(k)
}

// Pinch proxies a pinch gesture as Ctrl+scroll sized by the deviation of
// the scale factor from 1.0.
func (s *Synthesizer) Pinch(scale float64) error {
	units := int(math.Round((scale - 1.0) * pinchUnitsPerDeviation))
	if units == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inj.KeyDown(KeyCtrl); err != nil {
		return &InjectionError{Op: "pinch", Err: err}
	}
	err := s.inj.Wheel(units, false)
	if upErr := s.inj.KeyUp(KeyCtrl); upErr != nil && err == nil {
		err = upErr
	}
	if err != nil {
		return &InjectionError{Op: "pinch", Err: err}
	}
	return nil
}

// Rotate proxies a rotation gesture as horizontal scroll sized by the
// rotation in degrees.
func (s *Synthesizer) Rotate(degrees float64) error {
	units := int(math.Round(degrees/rotateDegreesPerNotch)) * WheelNotch
	if units == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inj.Wheel(units, true); err != nil {
		return &InjectionError{Op: "rotate", Err: err}
	}
	return nil
}

// Swipe proxies a horizontal fling as Alt+Left / Alt+Right history
// navigation when the velocity magnitude clears the threshold.
func (s *Synthesizer) Swipe(velocityX, velocityY float64) error {
	if math.Abs(velocityX) < SwipeVelocityThreshold {
		return nil
	}

	key := KeyLeft
	if velocityX > 0 {
		key = KeyRight
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyEvent(key, "press", []string{string(KeyAlt)})
}

// ResetAccumulators clears the sub-pixel remainders. Called when a
// controlling session ends so leftovers never bleed into the next one.
func (s *Synthesizer) ResetAccumulators() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accX = 0
	s.accY = 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type errUnknownAction string

func (e errUnknownAction) Error() string { return "unknown action " + string(e) }
