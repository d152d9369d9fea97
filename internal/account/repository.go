package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrLoginTaken      = errors.New("login id already registered")
)

type Repository interface {
	// Registration writes the user and its profile together or not at all.
	CreateDoctor(ctx context.Context, u User, d Doctor) error
	CreatePatient(ctx context.Context, u User, p Patient) error

	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByLoginID(ctx context.Context, loginID string) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error

	GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)

	// ListDoctors returns every doctor when specialty is empty.
	ListDoctors(ctx context.Context, specialty string) ([]Doctor, error)

	UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Upcoming, error)
	UpcomingForPatient(ctx context.Context, patientID uuid.UUID, from time.Time) ([]Upcoming, error)
}
