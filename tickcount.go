package mtbb

import "time"

// A TickCount is a point in time on the monotonic clock.
type TickCount struct {
	t time.Time
}

// Now returns the current TickCount. Of two calls to Now, the later one
// never returns a smaller TickCount.
func Now() TickCount {
	return TickCount{t: time.Now()}
}

// Sub returns the interval t-u, which is negative if u is later than t.
func (t TickCount) Sub(u TickCount) Interval {
	return Interval(t.t.Sub(u.t))
}

// An Interval is the signed duration between two TickCounts.
type Interval time.Duration

// Seconds returns i as a fractional number of seconds.
func (i Interval) Seconds() float64 {
	return time.Duration(i).Seconds()
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i)
}

func (i Interval) String() string {
	return time.Duration(i).String()
}
