package interact

import "time"

// DefaultRedrawInterval is the minimum time between repaints while the
// pointer is being dragged.
const DefaultRedrawInterval = 20 * time.Millisecond

// Throttle coalesces repaint requests during fast pointer motion: a request
// passes only when at least Interval has elapsed since the last one that
// passed.
type Throttle struct {
	Interval time.Duration

	now  func() time.Time
	last time.Time
}

// NewThrottle returns a throttle reading time from now, or from the wall
// clock when now is nil.
func NewThrottle(interval time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{Interval: interval, now: now}
}

// Ready reports whether a repaint may happen now and, if so, starts a new
// interval.
func (t *Throttle) Ready() bool {
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return false
	}
	t.last = now
	return true
}

// Reset lets the next request through regardless of timing.
func (t *Throttle) Reset() { t.last = time.Time{} }
