package appointment

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

// Bookings are confirmed on creation; cancelling deletes the row.
const StatusConfirmed AppointmentStatus = "confirmed"

type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Status    AppointmentStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// AppointmentDetail is an appointment with the names a listing shows next to it.
type AppointmentDetail struct {
	Appointment
	DoctorName      string
	DoctorSpecialty string
	PatientName     string
}

type CreateInput struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Notes     string
}

// ListFilter narrows ListAppointments. Nil ids match everything; without
// IncludePast only appointments starting at or after Now are returned.
type ListFilter struct {
	IncludePast bool
	DoctorID    *uuid.UUID
	PatientID   *uuid.UUID
	Now         time.Time
}
