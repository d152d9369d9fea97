package availability

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/schedule"
)

// Availability is one stored availability row of a doctor.
type Availability struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	DayOfWeek   time.Weekday
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	IsRecurring bool
	Recurrence  schedule.Recurrence // empty when not recurring
	ValidFrom   time.Time
	ValidUntil  *time.Time
	Exceptions  []Exception
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a Availability) Window() schedule.Interval {
	return schedule.Interval{
		Start: schedule.TimeOfDay{Hour: a.StartHour, Minute: a.StartMinute},
		End:   schedule.TimeOfDay{Hour: a.EndHour, Minute: a.EndMinute},
	}
}

// Rule converts the row into the engine's representation.
func (a Availability) Rule() schedule.Rule {
	exs := make([]schedule.Exception, 0, len(a.Exceptions))
	for _, e := range a.Exceptions {
		exs = append(exs, e.engine())
	}
	return schedule.Rule{
		ID:         a.ID,
		DayOfWeek:  a.DayOfWeek,
		Window:     a.Window(),
		Recurring:  a.IsRecurring,
		Recurrence: a.Recurrence,
		Validity:   schedule.Validity{From: a.ValidFrom, Until: a.ValidUntil},
		Exceptions: exs,
	}
}

// Exception cancels a row's occurrence on Date, or replaces its hours that day.
type Exception struct {
	ID             uuid.UUID
	AvailabilityID uuid.UUID
	Date           time.Time
	IsCancelled    bool
	Override       *schedule.Interval
	CreatedAt      time.Time
}

func (e Exception) engine() schedule.Exception {
	return schedule.Exception{
		ID:        e.ID,
		Date:      e.Date,
		Cancelled: e.IsCancelled,
		Override:  e.Override,
	}
}

// Input is the writable part of a row, shared by create and update.
type Input struct {
	DoctorID    uuid.UUID
	DayOfWeek   *int // required when IsRecurring
	Start       schedule.TimeOfDay
	End         schedule.TimeOfDay
	IsRecurring bool
	Recurrence  string
	ValidFrom   time.Time
	ValidUntil  *time.Time
}

type ExceptionInput struct {
	Date        time.Time
	IsCancelled bool
	Override    *schedule.Interval
}

// ConflictError reports the existing row a candidate window collides with.
type ConflictError struct {
	Existing Availability
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("availability conflicts with %s on %s (id %s)",
		e.Existing.Window(), e.Existing.ValidFrom.Format(time.DateOnly), e.Existing.ID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrAvailabilityConflict
}
