package utils

import "time"

// Clock abstracts wall-clock access so time-dependent logic (status
// derivation, reminder windows) can be driven by a fixed clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall-clock.
func SystemClock() Clock { return systemClock{} }
