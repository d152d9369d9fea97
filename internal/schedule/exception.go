package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Exception cancels or reshapes a rule's occurrence on one date.
type Exception struct {
	ID        uuid.UUID
	Date      time.Time
	Cancelled bool
	Override  *Interval
}

// ApplyExceptions filters one occurrence through the rule's exceptions.
// A cancelling exception on day suppresses the occurrence (ok == false); an override
// replaces the window. Exceptions for other dates are ignored.
func ApplyExceptions(day time.Time, window Interval, exceptions []Exception) (Interval, bool) {
	for _, ex := range exceptions {
		if !SameDay(ex.Date, day) {
			continue
		}
		if ex.Cancelled {
			return Interval{}, false
		}
		if ex.Override != nil {
			window = *ex.Override
		}
	}
	return window, true
}
