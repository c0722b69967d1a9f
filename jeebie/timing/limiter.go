// Package timing paces frame presentation to real DMG speed.
package timing

import (
	"time"

	"github.com/valerio/jeebie-core/jeebie/video"
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

// CPUFrequency is the DMG clock in T-cycles per second.
const CPUFrequency = 4194304

// TargetFPS is the DMG refresh rate, about 59.73 Hz.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(video.FrameCycles)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}
