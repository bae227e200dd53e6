package timing

import (
	"log/slog"
	"time"
)

const (
	// spinThreshold is the wait below which sleeping is too coarse.
	spinThreshold = 2 * time.Millisecond
	// maxLag drops the schedule instead of rushing frames to catch up.
	maxLag = 5 * time.Millisecond
)

// AdaptiveLimiter sleeps for most of the frame and spins for the rest.
// It resynchronises when the emulator falls behind instead of bursting.
type AdaptiveLimiter struct {
	frame time.Duration
	next  time.Time
	count int64
	late  int64

	now   func() time.Time
	sleep func(time.Duration)
}

// NewAdaptiveLimiter paces frames at speed times the console rate.
func NewAdaptiveLimiter(speed float64) *AdaptiveLimiter {
	a := &AdaptiveLimiter{
		frame: FrameDuration(speed),
		now:   time.Now,
		sleep: time.Sleep,
	}
	a.Reset()
	return a
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
	case wait < -maxLag:
		a.late++
		a.next = now
	}

	a.next = a.next.Add(a.frame)
	a.count++

	if a.count%600 == 0 && a.late > 0 {
		slog.Debug("Frame pacing fell behind", "frames", a.count, "late", a.late)
		a.late = 0
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.count = 0
	a.late = 0
}
