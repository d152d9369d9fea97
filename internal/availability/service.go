package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medbook/internal/metrics"
	redisclient "github.com/hackgods/medbook/internal/redis"
	"github.com/hackgods/medbook/internal/schedule"
	"github.com/hackgods/medbook/internal/validate"
)

var (
	ErrForbidden        = errors.New("availability belongs to another doctor")
	ErrAvailabilityBusy = errors.New("availability for that date is being changed, please retry")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
		now:    time.Now,
	}
}

// List returns the doctor's rows still valid on or after from. A zero from means today.
func (s *Service) List(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Availability, error) {
	if doctorID == uuid.Nil {
		return nil, validate.Field("doctor_id", "is required")
	}
	if from.IsZero() {
		from = s.now()
	}

	rows, err := s.repo.ListByDoctor(ctx, doctorID, schedule.DateOf(from))
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return rows, nil
}

// Create stores a new row. Non-recurring rows are checked against the doctor's
// other non-recurring rows on the same date while holding the date lock.
func (s *Service) Create(ctx context.Context, in Input) (*Availability, error) {
	row, err := buildRow(in)
	if err != nil {
		return nil, err
	}
	row.ID = uuid.New()

	exists, err := s.repo.DoctorExists(ctx, row.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if !exists {
		return nil, ErrDoctorNotFound
	}

	var created *Availability
	err = s.withDateLock(ctx, row, func(lockCtx context.Context) error {
		if err := s.checkConflict(lockCtx, row); err != nil {
			return err
		}
		created, err = s.repo.Create(lockCtx, row)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("availability_id", created.ID.String()).
		Str("doctor_id", created.DoctorID.String()).
		Msg("availability created")
	return created, nil
}

// Update replaces the writable fields of row id. The row itself never counts as a conflict.
func (s *Service) Update(ctx context.Context, doctorID, id uuid.UUID, in Input) (*Availability, error) {
	existing, err := s.owned(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}

	in.DoctorID = existing.DoctorID
	row, err := buildRow(in)
	if err != nil {
		return nil, err
	}
	row.ID = id

	var updated *Availability
	err = s.withDateLock(ctx, row, func(lockCtx context.Context) error {
		if err := s.checkConflict(lockCtx, row); err != nil {
			return err
		}
		updated, err = s.repo.Update(lockCtx, row)
		if err != nil {
			return err
		}
		return s.dropStrandedExceptions(lockCtx, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// dropStrandedExceptions deletes the exceptions of a that no longer fall on one
// of its occurrences, e.g. after the row moved to another weekday.
func (s *Service) dropStrandedExceptions(ctx context.Context, a *Availability) error {
	rule := a.Rule()
	kept := make([]Exception, 0, len(a.Exceptions))
	for _, ex := range a.Exceptions {
		if rule.OccursOn(ex.Date) {
			kept = append(kept, ex)
			continue
		}
		if err := s.repo.DeleteException(ctx, a.ID, ex.ID); err != nil && !errors.Is(err, ErrExceptionNotFound) {
			return fmt.Errorf("delete stranded exception: %w", err)
		}
		s.log.Debug().
			Str("availability_id", a.ID.String()).
			Str("exception_date", ex.Date.Format(time.DateOnly)).
			Msg("stranded exception removed")
	}
	a.Exceptions = kept
	return nil
}

func (s *Service) Delete(ctx context.Context, doctorID, id uuid.UUID) error {
	if _, err := s.owned(ctx, doctorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddException cancels one occurrence of a row or overrides its hours on that date.
func (s *Service) AddException(ctx context.Context, doctorID, availabilityID uuid.UUID, in ExceptionInput) (*Exception, error) {
	a, err := s.owned(ctx, doctorID, availabilityID)
	if err != nil {
		return nil, err
	}

	errs := validate.Errors{}
	if in.Date.IsZero() {
		errs.Add("date", "is required")
	} else if !a.Rule().OccursOn(in.Date) {
		errs.Add("date", "is not an occurrence of this availability")
	}
	if !in.IsCancelled {
		switch {
		case in.Override == nil:
			errs.Add("start_time", "is required unless the day is cancelled")
		case !in.Override.Valid():
			errs.Add("start_time", "must be before end_time")
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	ex := Exception{
		ID:             uuid.New(),
		AvailabilityID: a.ID,
		Date:           schedule.DateOf(in.Date),
		IsCancelled:    in.IsCancelled,
	}
	if !in.IsCancelled {
		ex.Override = in.Override
	}
	return s.repo.CreateException(ctx, ex)
}

func (s *Service) DeleteException(ctx context.Context, doctorID, availabilityID, exceptionID uuid.UUID) error {
	if _, err := s.owned(ctx, doctorID, availabilityID); err != nil {
		return err
	}
	return s.repo.DeleteException(ctx, availabilityID, exceptionID)
}

func (s *Service) owned(ctx context.Context, doctorID, id uuid.UUID) (*Availability, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load availability: %w", err)
	}
	if a.DoctorID != doctorID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *Service) withDateLock(ctx context.Context, row Availability, fn func(context.Context) error) error {
	err := s.locker.WithLock(ctx, redisclient.AvailabilityLockKey(row.DoctorID, row.ValidFrom), fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrAvailabilityBusy
	}
	return err
}

func (s *Service) checkConflict(ctx context.Context, row Availability) error {
	if row.IsRecurring {
		return nil
	}

	existing, err := s.repo.ListOneOffOn(ctx, row.DoctorID, row.ValidFrom)
	if err != nil {
		return fmt.Errorf("load availability for conflict check: %w", err)
	}

	rules := make([]schedule.Rule, len(existing))
	for i, a := range existing {
		rules[i] = a.Rule()
	}

	hit, ok := schedule.FindConflict(row.Rule(), rules)
	if !ok {
		return nil
	}

	metrics.IncAvailabilityConflict()
	for _, a := range existing {
		if a.ID == hit.ID {
			return &ConflictError{Existing: a}
		}
	}
	return ErrAvailabilityConflict
}

// buildRow validates in and turns it into a row without an ID.
func buildRow(in Input) (Availability, error) {
	errs := validate.Errors{}

	errs.Check(in.DoctorID != uuid.Nil, "doctor_id", "is required")
	if _, err := schedule.NewTimeOfDay(in.Start.Hour, in.Start.Minute); err != nil {
		errs.Add("start_time", "must be a valid time of day")
	}
	if _, err := schedule.NewTimeOfDay(in.End.Hour, in.End.Minute); err != nil {
		errs.Add("end_time", "must be a valid time of day")
	}
	window := schedule.Interval{Start: in.Start, End: in.End}
	errs.Check(window.Valid(), "end_time", "must be after start_time")

	if in.ValidFrom.IsZero() {
		errs.Add("valid_from", "is required")
	}
	if in.ValidUntil != nil && !in.ValidFrom.IsZero() && schedule.DateOf(*in.ValidUntil).Before(schedule.DateOf(in.ValidFrom)) {
		errs.Add("valid_until", "must not be before valid_from")
	}

	var recurrence schedule.Recurrence
	if in.IsRecurring {
		switch {
		case in.DayOfWeek == nil:
			errs.Add("day_of_week", "is required")
		case *in.DayOfWeek < 0 || *in.DayOfWeek > 6:
			errs.Add("day_of_week", "must be between 0 (Sunday) and 6")
		}
		r, err := schedule.ParseRecurrence(in.Recurrence)
		if err != nil {
			errs.Add("recurrence", "must be weekly, biweekly or monthly")
		}
		recurrence = r
	}
	if err := errs.Err(); err != nil {
		return Availability{}, err
	}

	row := Availability{
		DoctorID:    in.DoctorID,
		StartHour:   in.Start.Hour,
		StartMinute: in.Start.Minute,
		EndHour:     in.End.Hour,
		EndMinute:   in.End.Minute,
		IsRecurring: in.IsRecurring,
		Recurrence:  recurrence,
		ValidFrom:   schedule.DateOf(in.ValidFrom),
	}
	if in.ValidUntil != nil {
		until := schedule.DateOf(*in.ValidUntil)
		row.ValidUntil = &until
	}
	if in.IsRecurring {
		row.DayOfWeek = time.Weekday(*in.DayOfWeek)
	} else {
		// a one-off row occurs on valid_from, so its weekday follows from it
		row.DayOfWeek = row.ValidFrom.Weekday()
	}
	return row, nil
}
