package gesture

import (
	"log/slog"
	"math"
	"time"
)

// pointer tracks one active touch point.
type pointer struct {
	x, y       float64
	downAt     time.Time
	lastSample time.Time
	moved      bool

	// Instantaneous velocity from the last accepted sample, units/s.
	velX, velY float64
}

// Recognizer turns pointer samples into semantic events. It is not safe
// for concurrent use; feed it from the single touch-event goroutine.
type Recognizer struct {
	cfg    Config
	emit   func(Event)
	logger *slog.Logger

	pointers map[int]*pointer
	order    []int // pointer ids in down order, for two-finger pairing

	// complex is the shared "complex gesture in progress" flag. While
	// set, single-pointer moves and two-finger scrolls are suppressed.
	// It clears only when every pointer is released.
	complex bool

	// Two-finger baselines.
	sepValid       bool
	sepX, sepY     float64
	baseDist       float64
	baseAngle      float64
	twoDownBaseSet bool

	// lastTapAt pairs taps into double clicks. It survives pointer
	// release because the second tap necessarily starts after the
	// first one ended.
	lastTapAt time.Time
}

// NewRecognizer creates a Recognizer emitting through fn.
func NewRecognizer(cfg Config, fn func(Event), logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{
		cfg:      cfg,
		emit:     fn,
		logger:   logger.With("component", "gesture"),
		pointers: make(map[int]*pointer),
	}
}

// Down registers a new pointer at (x, y).
func (r *Recognizer) Down(id int, x, y float64, t time.Time) {
	if _, exists := r.pointers[id]; exists {
		return
	}
	r.pointers[id] = &pointer{x: x, y: y, downAt: t, lastSample: t}
	r.order = append(r.order, id)

	if len(r.pointers) == 2 {
		r.resetTwoFingerBaselines()
	} else {
		r.sepValid = false
		r.twoDownBaseSet = false
	}
}

// Move processes a pointer movement sample.
func (r *Recognizer) Move(id int, x, y float64, t time.Time) {
	p, ok := r.pointers[id]
	if !ok {
		return
	}

	switch len(r.pointers) {
	case 1:
		r.moveSingle(p, x, y, t)
	case 2:
		r.moveDouble(p, x, y, t)
	default:
		// Three or more pointers: track positions, emit nothing.
		p.x, p.y = x, y
		p.lastSample = t
		p.moved = true
	}
}

// moveSingle handles one-pointer movement: threshold check, velocity
// derived sensitivity, Move emission.
func (r *Recognizer) moveSingle(p *pointer, x, y float64, t time.Time) {
	dx := x - p.x
	dy := y - p.y
	dist := math.Hypot(dx, dy)
	if dist <= r.cfg.MoveThreshold {
		// Below threshold: leave the reference position alone so small
		// movements accumulate instead of being swallowed one by one.
		return
	}

	dt := t.Sub(p.lastSample).Seconds()
	speed := 0.0
	if dt > 0 {
		speed = dist / dt
	}
	p.velX, p.velY = 0, 0
	if dt > 0 {
		p.velX = dx / dt
		p.velY = dy / dt
	}

	p.x, p.y = x, y
	p.lastSample = t
	p.moved = true

	if r.complex {
		return
	}

	factor := 1.0 + speed*r.cfg.SpeedBoostFactor
	if factor > r.cfg.MaxSpeedBoost {
		factor = r.cfg.MaxSpeedBoost
	}
	r.emit(Event{Kind: KindMove, DX: dx * factor, DY: dy * factor})
}

// moveDouble handles two-pointer movement: pinch and rotation detectors
// run first; scroll-from-separation only while neither has claimed the
// frame.
func (r *Recognizer) moveDouble(p *pointer, x, y float64, t time.Time) {
	p.x, p.y = x, y
	p.lastSample = t
	p.moved = true

	a, b := r.twoPointers()
	if a == nil || b == nil {
		return
	}

	dist := math.Hypot(b.x-a.x, b.y-a.y)
	angle := math.Atan2(b.y-a.y, b.x-a.x) * 180 / math.Pi

	if !r.twoDownBaseSet {
		r.resetTwoFingerBaselines()
		return
	}

	// Pinch: per-tick scale deviation against the rolling baseline.
	if r.baseDist > 0 {
		scale := dist / r.baseDist
		if math.Abs(scale-1.0) > r.cfg.PinchThreshold {
			r.complex = true
			r.emit(Event{Kind: KindPinch, Scale: scale})
			r.baseDist = dist
		}
	}

	// Rotation: per-tick angle change against the rolling baseline.
	rot := angleDelta(angle, r.baseAngle)
	if math.Abs(rot) > r.cfg.RotateThreshold {
		r.complex = true
		r.emit(Event{Kind: KindRotate, Rotation: rot})
		r.baseAngle = angle
	}

	// Scroll from the change in separation between the two points.
	sepX := b.x - a.x
	sepY := b.y - a.y
	if r.sepValid && !r.complex {
		dx := sepX - r.sepX
		dy := sepY - r.sepY
		if dx != 0 || dy != 0 {
			r.emit(Event{
				Kind: KindScroll,
				DX:   dx * r.cfg.ScrollSensitivity,
				DY:   dy * r.cfg.ScrollSensitivity,
			})
		}
	}
	r.sepX, r.sepY = sepX, sepY
	r.sepValid = true
}

// Up releases a pointer and resolves taps, long presses and flings.
func (r *Recognizer) Up(id int, t time.Time) {
	p, ok := r.pointers[id]
	if !ok {
		return
	}

	if len(r.pointers) == 1 && !r.complex {
		r.resolveSingleRelease(p, t)
	}

	delete(r.pointers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.pointers) == 0 {
		r.resetTracking()
	} else {
		r.sepValid = false
		r.twoDownBaseSet = false
		if len(r.pointers) == 2 {
			r.resetTwoFingerBaselines()
		}
	}
}

// resolveSingleRelease emits the click or swipe implied by releasing the
// last pointer.
func (r *Recognizer) resolveSingleRelease(p *pointer, t time.Time) {
	held := t.Sub(p.downAt)

	if !p.moved {
		switch {
		case held >= r.cfg.LongPressTimeout:
			r.emit(Event{Kind: KindClick, Button: ButtonRight})
		case held <= r.cfg.TapWindow:
			if !r.lastTapAt.IsZero() && t.Sub(r.lastTapAt) <= r.cfg.DoubleTapWindow {
				r.emit(Event{Kind: KindClick, Button: ButtonLeft, Double: true})
				r.lastTapAt = time.Time{}
			} else {
				r.emit(Event{Kind: KindClick, Button: ButtonLeft})
				r.lastTapAt = t
			}
		}
		return
	}

	speed := math.Hypot(p.velX, p.velY)
	if speed >= r.cfg.SwipeMinVelocity {
		r.emit(Event{Kind: KindSwipe, VelocityX: p.velX, VelocityY: p.velY})
	}
}

// Cancel drops all pointer tracking and the complex-gesture flag
// unconditionally.
func (r *Recognizer) Cancel() {
	r.pointers = make(map[int]*pointer)
	r.order = r.order[:0]
	r.resetTracking()
}

// ActivePointers returns the number of tracked pointers.
func (r *Recognizer) ActivePointers() int { return len(r.pointers) }

// ComplexActive reports whether a pinch or rotation has claimed the
// current touch session.
func (r *Recognizer) ComplexActive() bool { return r.complex }

func (r *Recognizer) resetTracking() {
	r.complex = false
	r.sepValid = false
	r.twoDownBaseSet = false
	r.baseDist = 0
	r.baseAngle = 0
}

func (r *Recognizer) resetTwoFingerBaselines() {
	a, b := r.twoPointers()
	if a == nil || b == nil {
		return
	}
	r.baseDist = math.Hypot(b.x-a.x, b.y-a.y)
	r.baseAngle = math.Atan2(b.y-a.y, b.x-a.x) * 180 / math.Pi
	r.sepX = b.x - a.x
	r.sepY = b.y - a.y
	r.sepValid = true
	r.twoDownBaseSet = true
}

// twoPointers returns the two active pointers in down order.
func (r *Recognizer) twoPointers() (*pointer, *pointer) {
	if len(r.order) < 2 {
		return nil, nil
	}
	return r.pointers[r.order[0]], r.pointers[r.order[1]]
}

// angleDelta returns the signed difference a-b normalized to (-180, 180].
func angleDelta(a, b float64) float64 {
	d := a - b
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d
}
