// Package timing paces interactive front-ends to the console's frame rate.
package timing

import (
	"time"

	"github.com/valerio/go-cashew/cashew/video"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// ClockFrequency is the single speed clock, in cycles per second.
const ClockFrequency = 4194304

// TargetFPS is the console's refresh rate, about 59.73 frames per second.
func TargetFPS() float64 {
	return float64(ClockFrequency) / float64(video.FrameCycles)
}

// FrameDuration returns the target duration of a single frame, divided by speed.
func FrameDuration(speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(time.Second) / (TargetFPS() * speed))
}
