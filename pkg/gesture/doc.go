// Package gesture converts a raw multi-pointer touch stream into
// semantic input events.
//
// The Recognizer consumes pointer down/move/up/cancel samples and emits
// Move, Click, Scroll, Pinch, Rotate and Swipe events through a caller
// supplied callback. Detection is frame-local: once every pointer is
// released, no tracking state survives except the tap timestamp that
// implements double-tap pairing.
//
// Two-finger scroll is intentionally derived from the change in
// separation between the two touch points, not from their averaged
// translation. That matches the deployed protocol behavior.
package gesture
