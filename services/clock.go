package services

import (
	"math/rand"
	"time"
)

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

// Jitter returns a duration in [0, max).
type Jitter func(max time.Duration) time.Duration

func RandomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
