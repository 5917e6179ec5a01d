// Package clock abstracts the wall clock so date-dependent domain logic
// stays deterministic under test. Domain code never reads time.Now directly.
package clock

import "time"

// Clock provides the current time and calendar-day comparisons.
type Clock interface {
	Now() time.Time
	// Today returns the start of the current calendar day in local time.
	Today() time.Time
	// SameDay reports whether a and b fall on the same calendar day.
	SameDay(a, b time.Time) bool
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) Today() time.Time {
	return StartOfDay(time.Now())
}

func (System) SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// Fixed always reports the given instant. Test use.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

func (f Fixed) Today() time.Time {
	return StartOfDay(f.T)
}

func (Fixed) SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
