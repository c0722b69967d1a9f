package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameDuration(t *testing.T) {
	assert.InDelta(t, 59.7275, TargetFPS(), 0.001)
	assert.InDelta(t, float64(16742706*time.Nanosecond), float64(FrameDuration()), float64(time.Microsecond))
}

// fakeClock advances only when slept on or polled.
type fakeClock struct {
	now    time.Time
	slept  []time.Duration
	polled int
}

func (c *fakeClock) Now() time.Time {
	c.polled++
	c.now = c.now.Add(100 * time.Microsecond)
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func TestAdaptiveLimiter(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	a := &AdaptiveLimiter{
		frameTime: 10 * time.Millisecond,
		next:      clock.now,
		now:       clock.Now,
		sleep:     clock.Sleep,
	}

	// first frame is due immediately
	a.WaitForNextFrame()
	assert.Empty(t, clock.slept)

	// the second waits out most of the frame asleep
	a.WaitForNextFrame()
	assert.Len(t, clock.slept, 1)
	assert.False(t, clock.now.Before(time.Unix(0, 0).Add(10*time.Millisecond)))

	// far behind schedule: no sleeping, schedule restarts from now
	clock.now = clock.now.Add(time.Second)
	a.WaitForNextFrame()
	assert.Len(t, clock.slept, 1)
	assert.True(t, a.next.After(clock.now))
}

func TestNoOpLimiter(t *testing.T) {
	l := NewNoOpLimiter()
	start := time.Now()
	for range 1000 {
		l.WaitForNextFrame()
	}
	l.Reset()
	assert.Less(t, time.Since(start), time.Second)
}
