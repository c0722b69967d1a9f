package timing

import (
	"log/slog"
	"time"
)

// spinThreshold is the remaining wait below which the limiter busy-waits
// instead of sleeping.
const spinThreshold = 2 * time.Millisecond

// AdaptiveLimiter sleeps most of the frame and spins the rest, correcting
// drift every second.
type AdaptiveLimiter struct {
	frameTime time.Duration
	next      time.Time
	frames    int64
	now       func() time.Time
	sleep     func(time.Duration)
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		frameTime: FrameDuration(),
		next:      time.Now(),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	wait := a.next.Sub(now)

	switch {
	case wait > spinThreshold:
		a.sleep(wait - time.Millisecond)
		fallthrough
	case wait > 0:
		for a.now().Before(a.next) {
		}
	case wait < -5*time.Millisecond:
		// too far behind to catch up, start over from now
		a.next = now
	}

	a.next = a.next.Add(a.frameTime)
	a.frames++

	if a.frames%60 == 0 {
		drift := a.now().Sub(a.next)
		if drift.Abs() > 10*time.Millisecond {
			a.next = a.next.Add(drift / 10)
			slog.Debug("Frame timing drift correction", "drift_ms", drift.Milliseconds())
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.frames = 0
}
