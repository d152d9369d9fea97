package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// For the double booking check
	FindAtStart(ctx context.Context, doctorID uuid.UUID, start time.Time) (*Appointment, error)

	// CreateAppointment returns ErrSlotAlreadyBooked when the doctor already has an
	// appointment starting at a.StartTime.
	CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// ListAppointments orders by start time.
	ListAppointments(ctx context.Context, f ListFilter) ([]AppointmentDetail, error)
	// StartTimesBetween returns start times in [from, until) keyed by doctor.
	StartTimesBetween(ctx context.Context, doctorIDs []uuid.UUID, from, until time.Time) (map[uuid.UUID][]time.Time, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
