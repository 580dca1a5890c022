// Package input translates validated remote-input commands into ordered
// OS input primitives.
//
// The Synthesizer is platform-independent: every primitive emission goes
// through the Injector capability, which a platform backend implements
// (SendInput on Windows, CGEvent on macOS, uinput on Linux). The package
// ships a logging backend for headless operation and a recording backend
// for tests.
//
// Pointer movement uses per-axis sub-pixel accumulators so fractional
// deltas are carried between calls instead of being truncated away.
package input
