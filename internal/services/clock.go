package services

import "time"

// Clock abstracts the ambient system clock so that expiry comparisons and
// default start/end dates stay testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewSystemClock() Clock {
	return systemClock{}
}
