package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/auth"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type User struct {
	ID           uuid.UUID
	LoginID      string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Phone struct {
	Prefix string
	Number string
}

func (p Phone) String() string {
	return p.Prefix + p.Number
}

type Doctor struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Email     string
	Phone     string
	Gender    Gender
	Specialty string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Email       string
	Phone       string
	Gender      Gender
	DateOfBirth time.Time
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RegisterDoctorInput struct {
	LoginID   string
	Password  string
	Name      string
	Email     string
	Phone     Phone
	Gender    Gender
	Specialty string
}

type RegisterPatientInput struct {
	LoginID     string
	Password    string
	Name        string
	Email       string
	Phone       Phone
	Gender      Gender
	DateOfBirth time.Time
	Address     string
}

// Upcoming is an appointment seen from one side of it; With names the other party.
type Upcoming struct {
	AppointmentID uuid.UUID
	StartTime     time.Time
	EndTime       time.Time
	Notes         string
	WithID        uuid.UUID
	WithName      string
}

// Profile is the caller's own record. Exactly one of Doctor and Patient is set.
type Profile struct {
	Role     auth.Role
	LoginID  string
	Doctor   *Doctor
	Patient  *Patient
	Upcoming []Upcoming
}

type LoginResult struct {
	Token   string
	Session auth.Session
}
