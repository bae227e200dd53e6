// Package backend defines the front-ends that present emulator frames and
// collect player input.
package backend

import (
	"github.com/valerio/go-cashew/cashew"
	"github.com/valerio/go-cashew/cashew/cpu"
	"github.com/valerio/go-cashew/cashew/video"
)

// Backend represents a complete emulator platform (rendering + input).
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, image files, etc.)
// - Translating platform-specific input events to joypad buttons
// - Handling backend-specific features (snapshots, debug panels)
type Backend interface {
	// Init configures the backend. It is required before calling Update.
	Init(config Config) error

	// Update presents a completed frame and returns the input state to
	// apply before the next one.
	Update(frame *video.FrameBuffer) (Input, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// Config holds configuration for backends
type Config struct {
	Title     string
	ShowDebug bool // Backends may ignore unsupported features
	// Debug is optional and feeds the register panel.
	Debug DebugProvider
}

// DebugProvider exposes the emulator state shown by debug views.
type DebugProvider interface {
	Registers() cpu.Registers
	Read(address uint16) byte
}

// Input is what a backend collected during the last frame.
type Input struct {
	// Buttons holds every joypad button currently held down.
	Buttons cashew.Button
	// Quit asks the run loop to stop.
	Quit bool
	// Reset asks for a console reset.
	Reset bool
	// Snapshot asks for the current frame to be saved.
	Snapshot bool
}
