package clock

import "time"

// Clock supplies the current time to services so quota-year selection
// and approval timestamps stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall clock in UTC.
func System() Clock { return systemClock{} }

// Fixed is a clock pinned to a single instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// At returns a clock that always reports t.
func At(t time.Time) Clock { return Fixed{T: t} }
