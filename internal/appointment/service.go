package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/metrics"
	redisclient "github.com/hackgods/medbook/internal/redis"
	"github.com/hackgods/medbook/internal/validate"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

const maxNotesLength = 1000

var (
	ErrSlotAlreadyBooked = errors.New("doctor already has an appointment at that time")
	ErrSlotBeingBooked   = errors.New("slot is currently being booked, please retry")
	ErrForbidden         = errors.New("appointment belongs to someone else")
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

// CreateAppointment books a confirmed appointment. A distributed lock on
// (doctor, start) keeps concurrent requests for the same time from both passing
// the double booking check; the unique index backs it up.
func (s *Service) CreateAppointment(ctx context.Context, in CreateInput) (*Appointment, error) {
	errs := validate.Errors{}
	errs.Check(in.DoctorID != uuid.Nil, "doctor_id", "is required")
	errs.Check(in.PatientID != uuid.Nil, "patient_id", "is required")
	errs.Check(!in.StartTime.IsZero(), "start_time", "is required")
	errs.Check(in.EndTime.After(in.StartTime), "end_time", "must be after start_time")
	errs.Check(len(in.Notes) <= maxNotesLength, "notes", "must be at most 1000 characters")
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.mustExist(ctx, s.repo.DoctorExists, in.DoctorID, ErrDoctorNotFound); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, s.repo.PatientExists, in.PatientID, ErrPatientNotFound); err != nil {
		return nil, err
	}

	start := in.StartTime.UTC()
	var created *Appointment

	err := s.locker.WithLock(ctx, redisclient.BookingLockKey(in.DoctorID, start), func(lockCtx context.Context) error {
		// Inside the critical section re-check for an appointment at this start
		existing, err := s.repo.FindAtStart(lockCtx, in.DoctorID, start)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check existing appointment: %w", err)
		}
		if existing != nil {
			return ErrSlotAlreadyBooked
		}

		appt, err := s.repo.CreateAppointment(lockCtx, Appointment{
			ID:        uuid.New(),
			DoctorID:  in.DoctorID,
			PatientID: in.PatientID,
			StartTime: start,
			EndTime:   in.EndTime.UTC(),
			Status:    StatusConfirmed,
			Notes:     in.Notes,
		})
		if err != nil {
			return err
		}
		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"doctor_id":  appt.DoctorID.String(),
			"patient_id": appt.PatientID.String(),
			"start_time": appt.StartTime,
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	metrics.IncAppointmentBooked()
	return created, nil
}

// CancelAppointment deletes an appointment the caller takes part in.
func (s *Service) CancelAppointment(ctx context.Context, by auth.Session, id uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return err
		}
		return fmt.Errorf("load appointment: %w", err)
	}
	if !participant(by, appt) {
		return ErrForbidden
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	s.logEvent(ctx, id, EventAppointmentCancelled, map[string]any{
		"doctor_id":    appt.DoctorID.String(),
		"patient_id":   appt.PatientID.String(),
		"start_time":   appt.StartTime,
		"cancelled_by": string(by.Role),
	})
	metrics.IncAppointmentCancelled()
	return nil
}

// ListAppointments returns appointments in start time order. A zero f.Now means now.
func (s *Service) ListAppointments(ctx context.Context, f ListFilter) ([]AppointmentDetail, error) {
	if f.Now.IsZero() {
		f.Now = s.now()
	}
	appointments, err := s.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

func participant(by auth.Session, a *Appointment) bool {
	switch by.Role {
	case auth.RoleDoctor:
		return a.DoctorID == by.ProfileID
	case auth.RolePatient:
		return a.PatientID == by.ProfileID
	}
	return false
}

func (s *Service) mustExist(ctx context.Context, exists func(context.Context, uuid.UUID) (bool, error), id uuid.UUID, notFound error) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check %v: %w", notFound, err)
	}
	if !ok {
		return notFound
	}
	return nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert event log")
	}
}
