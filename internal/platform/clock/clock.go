package clock

import "time"

// Clock abstracts time so session timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports UTC wall time at millisecond precision, the resolution
// persisted session timestamps carry.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}
