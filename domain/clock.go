package domain

import "time"

// Clock abstracts wall-clock time so token lifetimes can be tested with a
// fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
