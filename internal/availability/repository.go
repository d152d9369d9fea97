package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAvailabilityNotFound = errors.New("availability not found")
	ErrAvailabilityConflict = errors.New("availability conflict")
	ErrExceptionNotFound    = errors.New("availability exception not found")
	ErrExceptionExists      = errors.New("an exception already exists for that date")
	ErrDoctorNotFound       = errors.New("doctor not found")
)

// Repository contains all DB interactions needed by the service.
// Rows are returned with their exceptions loaded.
type Repository interface {
	DoctorExists(ctx context.Context, doctorID uuid.UUID) (bool, error)

	Get(ctx context.Context, id uuid.UUID) (*Availability, error)
	// ListByDoctor returns rows still valid on or after from, open-ended rows included.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Availability, error)
	ListByDoctors(ctx context.Context, doctorIDs []uuid.UUID) ([]Availability, error)
	// ListOneOffOn returns the doctor's non-recurring rows dated day.
	ListOneOffOn(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]Availability, error)

	Create(ctx context.Context, a Availability) (*Availability, error)
	Update(ctx context.Context, a Availability) (*Availability, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateException(ctx context.Context, e Exception) (*Exception, error)
	DeleteException(ctx context.Context, availabilityID, exceptionID uuid.UUID) error
}
