package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownRecurrence = errors.New("unknown recurrence")

type Recurrence string

const (
	Weekly   Recurrence = "weekly"
	Biweekly Recurrence = "biweekly"
	Monthly  Recurrence = "monthly"
)

func ParseRecurrence(s string) (Recurrence, error) {
	r := Recurrence(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRecurrence, s)
	}
	return r, nil
}

func (r Recurrence) Valid() bool {
	switch r {
	case Weekly, Biweekly, Monthly:
		return true
	}
	return false
}

// Rule is one declared availability window of a doctor.
type Rule struct {
	ID         uuid.UUID
	DayOfWeek  time.Weekday
	Window     Interval
	Recurring  bool
	Recurrence Recurrence
	Validity   Validity
	Exceptions []Exception
}

// OccursOn reports whether the rule produces an occurrence on the UTC calendar day of day.
// A non-recurring rule occurs exactly once, on Validity.From.
func (r Rule) OccursOn(day time.Time) bool {
	d := DateOf(day)
	if !r.Recurring {
		return d.Equal(DateOf(r.Validity.From))
	}
	if !r.Validity.Contains(d) {
		return false
	}

	switch r.Recurrence {
	case Weekly:
		return d.Weekday() == r.DayOfWeek
	case Biweekly:
		if d.Weekday() != r.DayOfWeek {
			return false
		}
		first := firstWeekdayOnOrAfter(r.Validity.From, r.DayOfWeek)
		n := daysBetween(first, d)
		return n >= 0 && n%14 == 0
	case Monthly:
		// months without that day of month (e.g. the 31st) produce no occurrence
		return d.Day() == DateOf(r.Validity.From).Day()
	}
	return false
}

// Occurrences lists every day in [from, to] (inclusive, UTC days) the rule occurs on.
func (r Rule) Occurrences(from, to time.Time) []time.Time {
	var out []time.Time
	for d := DateOf(from); !d.After(DateOf(to)); d = d.AddDate(0, 0, 1) {
		if r.OccursOn(d) {
			out = append(out, d)
		}
	}
	return out
}

// WindowOn returns the window the rule offers on day after exceptions are applied.
// ok is false when the rule does not occur or an exception suppresses it.
func (r Rule) WindowOn(day time.Time) (Interval, bool) {
	if !r.OccursOn(day) {
		return Interval{}, false
	}
	return ApplyExceptions(day, r.Window, r.Exceptions)
}

func firstWeekdayOnOrAfter(t time.Time, wd time.Weekday) time.Time {
	d := DateOf(t)
	shift := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, shift)
}
