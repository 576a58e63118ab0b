package adapter

import "time"

// Clock is the time source of transaction deadlines, event identifiers and poll intervals
//
//go:generate mockgen -source=clock.go -destination=../mocks/clock.go -package=mocks -mock_names=Clock=MockClock
type Clock interface {
	// Now returns the current time in UTC
	Now() time.Time
	// After fires once d has elapsed
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func NewClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
