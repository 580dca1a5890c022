package gesture

import (
	"log/slog"
	"math"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type collector struct {
	events []Event
}

func (c *collector) emit(e Event) { c.events = append(c.events, e) }

func (c *collector) ofKind(k Kind) []Event {
	var out []Event
	for _, e := range c.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func newTestRecognizer() (*Recognizer, *collector) {
	c := &collector{}
	r := NewRecognizer(DefaultConfig(), c.emit, testLogger())
	return r, c
}

var t0 = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func TestSinglePointerMove(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 100, 100, at(0))
	r.Move(1, 110, 95, at(10*time.Millisecond))

	moves := c.ofKind(KindMove)
	if len(moves) != 1 {
		t.Fatalf("got %d Move events, want 1", len(moves))
	}
	// Raw delta (10, -5) scaled by a velocity factor >= 1.
	m := moves[0]
	if m.DX < 10 || m.DY > -5 {
		t.Errorf("Move = (%v, %v), want signs and magnitudes scaled up from (10, -5)", m.DX, m.DY)
	}
	if m.DX/10 != m.DY/-5 {
		t.Errorf("axes scaled unevenly: DX/10 = %v, DY/-5 = %v", m.DX/10, m.DY/-5)
	}
}

func TestMoveBelowThresholdAccumulates(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 100, 100, at(0))
	// 1.5 units per sample is under the 2-unit threshold, but the
	// reference position stays put, so the third sample is 4.5 units
	// from it and fires.
	r.Move(1, 101.5, 100, at(10*time.Millisecond))
	r.Move(1, 103, 100, at(20*time.Millisecond))
	if len(c.ofKind(KindMove)) != 1 {
		t.Fatalf("got %d Move events, want 1 (accumulated past threshold)", len(c.ofKind(KindMove)))
	}
}

func TestVelocityBoostClamped(t *testing.T) {
	cfg := DefaultConfig()
	c := &collector{}
	r := NewRecognizer(cfg, c.emit, testLogger())

	r.Down(1, 0, 0, at(0))
	// An extreme jump in one millisecond must clamp at MaxSpeedBoost.
	r.Move(1, 5000, 0, at(time.Millisecond))

	moves := c.ofKind(KindMove)
	if len(moves) != 1 {
		t.Fatalf("got %d Move events, want 1", len(moves))
	}
	if got, want := moves[0].DX, 5000*cfg.MaxSpeedBoost; got != want {
		t.Errorf("DX = %v, want clamped %v", got, want)
	}
}

func TestTapEmitsLeftClick(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 50, 50, at(0))
	r.Up(1, at(100*time.Millisecond))

	clicks := c.ofKind(KindClick)
	if len(clicks) != 1 {
		t.Fatalf("got %d Click events, want 1", len(clicks))
	}
	if clicks[0].Button != ButtonLeft || clicks[0].Double {
		t.Errorf("Click = %+v, want single left", clicks[0])
	}
}

func TestDoubleTap(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 50, 50, at(0))
	r.Up(1, at(80*time.Millisecond))
	r.Down(1, 50, 50, at(200*time.Millisecond))
	r.Up(1, at(280*time.Millisecond))

	clicks := c.ofKind(KindClick)
	if len(clicks) != 2 {
		t.Fatalf("got %d Click events, want 2", len(clicks))
	}
	if clicks[0].Double {
		t.Error("first tap flagged double")
	}
	if !clicks[1].Double || clicks[1].Button != ButtonLeft {
		t.Errorf("second Click = %+v, want double left", clicks[1])
	}
}

func TestSlowSecondTapIsSingle(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 50, 50, at(0))
	r.Up(1, at(80*time.Millisecond))
	r.Down(1, 50, 50, at(600*time.Millisecond))
	r.Up(1, at(680*time.Millisecond))

	clicks := c.ofKind(KindClick)
	if len(clicks) != 2 {
		t.Fatalf("got %d Click events, want 2", len(clicks))
	}
	for i, click := range clicks {
		if click.Double {
			t.Errorf("click %d flagged double, want single", i)
		}
	}
}

func TestLongPressEmitsRightClick(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 50, 50, at(0))
	r.Up(1, at(700*time.Millisecond))

	clicks := c.ofKind(KindClick)
	if len(clicks) != 1 {
		t.Fatalf("got %d Click events, want 1", len(clicks))
	}
	if clicks[0].Button != ButtonRight {
		t.Errorf("Button = %q, want %q", clicks[0].Button, ButtonRight)
	}
}

func TestMovedPressEmitsNoClick(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 50, 50, at(0))
	r.Move(1, 80, 50, at(50*time.Millisecond))
	r.Up(1, at(100*time.Millisecond))

	if n := len(c.ofKind(KindClick)); n != 0 {
		t.Errorf("got %d Click events, want 0 after movement", n)
	}
}

func TestTwoFingerScrollFromSeparation(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Down(2, 200, 0, at(0))
	// Horizontal separation grows by 10: one Scroll(10*0.5, 0) and no
	// Move for either pointer.
	r.Move(2, 210, 0, at(10*time.Millisecond))

	scrolls := c.ofKind(KindScroll)
	if len(scrolls) != 1 {
		t.Fatalf("got %d Scroll events, want 1", len(scrolls))
	}
	if scrolls[0].DX != 5 || scrolls[0].DY != 0 {
		t.Errorf("Scroll = (%v, %v), want (5, 0)", scrolls[0].DX, scrolls[0].DY)
	}
	if n := len(c.ofKind(KindMove)); n != 0 {
		t.Errorf("got %d Move events during two-finger scroll, want 0", n)
	}
}

func TestScrollEveryTick(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Down(2, 200, 0, at(0))
	r.Move(2, 204, 0, at(10*time.Millisecond))
	r.Move(2, 208, 0, at(20*time.Millisecond))
	r.Move(2, 212, 0, at(30*time.Millisecond))

	if n := len(c.ofKind(KindScroll)); n != 3 {
		t.Errorf("got %d Scroll events, want 3 (one per tick)", n)
	}
}

func TestPinchThreshold(t *testing.T) {
	tests := []struct {
		name       string
		toX        float64
		wantPinch  int
		wantScale  float64
	}{
		{"above_threshold", 115, 1, 1.15},
		{"below_threshold", 102, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, c := newTestRecognizer()
			r.Down(1, 0, 0, at(0))
			r.Down(2, 100, 0, at(0))
			r.Move(2, tc.toX, 0, at(10*time.Millisecond))

			pinches := c.ofKind(KindPinch)
			if len(pinches) != tc.wantPinch {
				t.Fatalf("got %d Pinch events, want %d", len(pinches), tc.wantPinch)
			}
			if tc.wantPinch == 1 && math.Abs(pinches[0].Scale-tc.wantScale) > 1e-9 {
				t.Errorf("Scale = %v, want %v", pinches[0].Scale, tc.wantScale)
			}
		})
	}
}

func TestPinchSuppressesScroll(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Down(2, 100, 0, at(0))
	r.Move(2, 115, 0, at(10*time.Millisecond))
	if n := len(c.ofKind(KindScroll)); n != 0 {
		t.Errorf("got %d Scroll events during pinch, want 0", n)
	}

	// Once the complex flag is set it holds for the rest of the touch
	// session, including subtle follow-up movement.
	r.Move(2, 117, 0, at(20*time.Millisecond))
	if n := len(c.ofKind(KindScroll)); n != 0 {
		t.Errorf("got %d Scroll events after pinch claimed the session, want 0", n)
	}
	if !r.ComplexActive() {
		t.Error("complex flag cleared while pointers still down")
	}
}

func TestRotationDetection(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Down(2, 100, 0, at(0))
	// Rotate the second pointer ~11.3 degrees around the first while
	// keeping the distance almost unchanged.
	r.Move(2, 98, 20, at(10*time.Millisecond))

	rotations := c.ofKind(KindRotate)
	if len(rotations) != 1 {
		t.Fatalf("got %d Rotate events, want 1", len(rotations))
	}
	if rotations[0].Rotation <= 5 {
		t.Errorf("Rotation = %v, want > 5 degrees", rotations[0].Rotation)
	}
}

func TestSmallRotationIgnored(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Down(2, 100, 0, at(0))
	// ~2.3 degrees, below the 5-degree tick threshold.
	r.Move(2, 100, 4, at(10*time.Millisecond))

	if n := len(c.ofKind(KindRotate)); n != 0 {
		t.Errorf("got %d Rotate events, want 0", n)
	}
}

func TestSwipeOnFastRelease(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Move(1, 30, 0, at(10*time.Millisecond)) // 3000 units/s
	r.Up(1, at(15*time.Millisecond))

	swipes := c.ofKind(KindSwipe)
	if len(swipes) != 1 {
		t.Fatalf("got %d Swipe events, want 1", len(swipes))
	}
	if swipes[0].VelocityX < DefaultConfig().SwipeMinVelocity {
		t.Errorf("VelocityX = %v, want >= %v", swipes[0].VelocityX, DefaultConfig().SwipeMinVelocity)
	}
}

func TestSlowReleaseEmitsNoSwipe(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Move(1, 10, 0, at(100*time.Millisecond)) // 100 units/s
	r.Up(1, at(120*time.Millisecond))

	if n := len(c.ofKind(KindSwipe)); n != 0 {
		t.Errorf("got %d Swipe events, want 0", n)
	}
}

func TestCancelClearsAllState(t *testing.T) {
	r, c := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Down(2, 100, 0, at(0))
	r.Move(2, 120, 0, at(10*time.Millisecond)) // pinch sets the flag
	if !r.ComplexActive() {
		t.Fatal("expected complex gesture in progress")
	}

	r.Cancel()
	if r.ActivePointers() != 0 {
		t.Errorf("ActivePointers = %d, want 0", r.ActivePointers())
	}
	if r.ComplexActive() {
		t.Error("complex flag survived Cancel")
	}

	// A fresh touch session behaves like the first one.
	before := len(c.events)
	r.Down(1, 50, 50, at(time.Second))
	r.Up(1, at(time.Second+80*time.Millisecond))
	clicks := c.events[before:]
	if len(clicks) != 1 || clicks[0].Kind != KindClick || clicks[0].Button != ButtonLeft {
		t.Errorf("post-cancel events = %+v, want one left Click", clicks)
	}
}

func TestFinalUpClearsComplexFlag(t *testing.T) {
	r, _ := newTestRecognizer()

	r.Down(1, 0, 0, at(0))
	r.Down(2, 100, 0, at(0))
	r.Move(2, 120, 0, at(10*time.Millisecond))
	r.Up(2, at(20*time.Millisecond))
	if !r.ComplexActive() {
		t.Error("complex flag should persist while a pointer remains down")
	}
	r.Up(1, at(30*time.Millisecond))
	if r.ComplexActive() {
		t.Error("complex flag survived final release")
	}
}
