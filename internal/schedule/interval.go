// Package schedule holds the availability engine: the time-of-day interval model,
// recurrence expansion, exception handling, conflict detection and the
// slot-vs-booking reconciler used by the open slot search.
//
// Everything in this package is pure and works in UTC.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a UTC wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// TimeOfDayOf extracts hour and minute from t after converting it to UTC.
func TimeOfDayOf(t time.Time) TimeOfDay {
	u := t.UTC()
	return TimeOfDay{Hour: u.Hour(), Minute: u.Minute()}
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Compare orders by hour first, then minute.
func (t TimeOfDay) Compare(o TimeOfDay) int {
	switch {
	case t.Hour != o.Hour:
		return cmpInt(t.Hour, o.Hour)
	default:
		return cmpInt(t.Minute, o.Minute)
	}
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Compare(o) < 0
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the absolute UTC instant of t on the calendar day of day.
func (t TimeOfDay) On(day time.Time) time.Time {
	d := DateOf(day)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}

// Interval is the half-open time-of-day range [Start, End).
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Valid reports whether the interval has positive length.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps is the one overlap predicate used across the engine:
// [a.Start, a.End) and [b.Start, b.End) overlap iff a.Start < b.End && b.Start < a.End.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Validity is the date range a rule is active in. Until is inclusive; nil means open-ended.
type Validity struct {
	From  time.Time
	Until *time.Time
}

func (v Validity) Contains(day time.Time) bool {
	d := DateOf(day)
	if d.Before(DateOf(v.From)) {
		return false
	}
	if v.Until != nil && d.After(DateOf(*v.Until)) {
		return false
	}
	return true
}

// DateOf truncates t to midnight of its UTC calendar day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// daysBetween counts whole UTC days from a to b.
func daysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
