package utils

import "time"

// Timer measures elapsed wall-clock time between a start and stop event.
// [NewTimer] starts it immediately.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a started Timer.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop records the time elapsed since construction and returns it.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.startTime)
	return t.duration
}

// GetDuration returns the duration captured by the last Stop, or zero.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}

// Milliseconds returns the captured duration in fractional milliseconds,
// the unit used by duration histograms.
func (t *Timer) Milliseconds() float64 {
	return float64(t.duration) / float64(time.Millisecond)
}
