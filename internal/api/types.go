package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/appointment"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/schedule"
)

type ErrorResponse struct {
	Error       string                `json:"error"`
	Details     string                `json:"details,omitempty"`
	Fields      map[string]string     `json:"fields,omitempty"`
	Conflicting *AvailabilityResponse `json:"conflicting,omitempty"`
}

// Accounts

type PhoneRequest struct {
	Prefix string `json:"prefix"`
	Number string `json:"number"`
}

type RegisterDoctorRequest struct {
	LoginID   string       `json:"login_id"`
	Password  string       `json:"password"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     PhoneRequest `json:"phone"`
	Gender    string       `json:"gender"`
	Specialty string       `json:"specialty"`
}

type RegisterPatientRequest struct {
	LoginID     string       `json:"login_id"`
	Password    string       `json:"password"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       PhoneRequest `json:"phone"`
	Gender      string       `json:"gender"`
	DateOfBirth string       `json:"date_of_birth"`
	Address     string       `json:"address"`
}

type LoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	UserID    uuid.UUID `json:"user_id"`
	ProfileID uuid.UUID `json:"profile_id"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Specialty string    `json:"specialty"`
}

type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Gender      string    `json:"gender"`
	DateOfBirth string    `json:"date_of_birth"`
	Address     string    `json:"address"`
}

type UpcomingResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Notes         string    `json:"notes"`
	WithID        uuid.UUID `json:"with_id"`
	WithName      string    `json:"with_name"`
}

type ProfileResponse struct {
	Role                 string             `json:"role"`
	LoginID              string             `json:"login_id"`
	Doctor               *DoctorResponse    `json:"doctor,omitempty"`
	Patient              *PatientResponse   `json:"patient,omitempty"`
	UpcomingAppointments []UpcomingResponse `json:"upcoming_appointments"`
}

func toDoctorResponse(d account.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Gender:    string(d.Gender),
		Specialty: d.Specialty,
	}
}

func toPatientResponse(p account.Patient) PatientResponse {
	return PatientResponse{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		Gender:      string(p.Gender),
		DateOfBirth: p.DateOfBirth.Format(time.DateOnly),
		Address:     p.Address,
	}
}

func toProfileResponse(p *account.Profile) ProfileResponse {
	resp := ProfileResponse{
		Role:                 string(p.Role),
		LoginID:              p.LoginID,
		UpcomingAppointments: make([]UpcomingResponse, 0, len(p.Upcoming)),
	}
	if p.Doctor != nil {
		resp.Doctor = ptr(toDoctorResponse(*p.Doctor))
	}
	if p.Patient != nil {
		resp.Patient = ptr(toPatientResponse(*p.Patient))
	}
	for _, u := range p.Upcoming {
		resp.UpcomingAppointments = append(resp.UpcomingAppointments, UpcomingResponse{
			AppointmentID: u.AppointmentID,
			StartTime:     u.StartTime,
			EndTime:       u.EndTime,
			Notes:         u.Notes,
			WithID:        u.WithID,
			WithName:      u.WithName,
		})
	}
	return resp
}

// Availability

// AvailabilityRequest carries start_time and end_time either as RFC 3339
// timestamps (hours and minutes are taken in UTC) or as "HH:MM".
type AvailabilityRequest struct {
	DoctorID    string  `json:"doctor_id"`
	DayOfWeek   *int    `json:"day_of_week"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	IsRecurring bool    `json:"is_recurring"`
	Recurrence  *string `json:"recurrence"`
	ValidFrom   string  `json:"valid_from"`
	ValidUntil  *string `json:"valid_until"`
}

type ExceptionRequest struct {
	Date        string `json:"date"`
	IsCancelled bool   `json:"is_cancelled"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type ExceptionResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	IsCancelled bool      `json:"is_cancelled"`
	StartTime   *string   `json:"start_time"`
	EndTime     *string   `json:"end_time"`
}

type AvailabilityResponse struct {
	ID          uuid.UUID           `json:"id"`
	DoctorID    uuid.UUID           `json:"doctor_id"`
	DayOfWeek   int                 `json:"day_of_week"`
	StartHour   int                 `json:"start_hour"`
	StartMinute int                 `json:"start_minute"`
	EndHour     int                 `json:"end_hour"`
	EndMinute   int                 `json:"end_minute"`
	StartTime   string              `json:"start_time"`
	EndTime     string              `json:"end_time"`
	IsRecurring bool                `json:"is_recurring"`
	Recurrence  *string             `json:"recurrence"`
	ValidFrom   string              `json:"valid_from"`
	ValidUntil  *string             `json:"valid_until"`
	Exceptions  []ExceptionResponse `json:"exceptions"`
}

func toExceptionResponse(e availability.Exception) ExceptionResponse {
	resp := ExceptionResponse{
		ID:          e.ID,
		Date:        e.Date.Format(time.DateOnly),
		IsCancelled: e.IsCancelled,
	}
	if e.Override != nil {
		resp.StartTime = ptr(e.Override.Start.String())
		resp.EndTime = ptr(e.Override.End.String())
	}
	return resp
}

func toAvailabilityResponse(a availability.Availability) AvailabilityResponse {
	w := a.Window()
	resp := AvailabilityResponse{
		ID:          a.ID,
		DoctorID:    a.DoctorID,
		DayOfWeek:   int(a.DayOfWeek),
		StartHour:   a.StartHour,
		StartMinute: a.StartMinute,
		EndHour:     a.EndHour,
		EndMinute:   a.EndMinute,
		StartTime:   w.Start.String(),
		EndTime:     w.End.String(),
		IsRecurring: a.IsRecurring,
		ValidFrom:   a.ValidFrom.Format(time.DateOnly),
		Exceptions:  make([]ExceptionResponse, 0, len(a.Exceptions)),
	}
	if a.Recurrence != "" {
		resp.Recurrence = ptr(string(a.Recurrence))
	}
	if a.ValidUntil != nil {
		resp.ValidUntil = ptr(a.ValidUntil.Format(time.DateOnly))
	}
	for _, e := range a.Exceptions {
		resp.Exceptions = append(resp.Exceptions, toExceptionResponse(e))
	}
	return resp
}

// Timeslots

type SlotResponse struct {
	ID        uuid.UUID `json:"id"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

type DoctorSlotsResponse struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Specialty      string         `json:"specialty"`
	AvailableSlots []SlotResponse `json:"available_slots"`
}

type DaySlotsResponse struct {
	Date    string                `json:"date"`
	Doctors []DoctorSlotsResponse `json:"doctors"`
}

func toDaySlotsResponse(days []schedule.Day) []DaySlotsResponse {
	out := make([]DaySlotsResponse, 0, len(days))
	for _, d := range days {
		day := DaySlotsResponse{Date: d.Date.Format(time.DateOnly)}
		for _, ds := range d.Doctors {
			doc := DoctorSlotsResponse{
				ID:        ds.Doctor.ID,
				Name:      ds.Doctor.Name,
				Specialty: ds.Doctor.Specialty,
			}
			for _, s := range ds.Slots {
				doc.AvailableSlots = append(doc.AvailableSlots, SlotResponse{
					ID:        s.RuleID,
					StartTime: s.Window.Start.String(),
					EndTime:   s.Window.End.String(),
				})
			}
			day.Doctors = append(day.Doctors, doc)
		}
		out = append(out, day)
	}
	return out
}

// Appointments

type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

type AppointmentDoctor struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

type AppointmentPatient struct {
	Name string `json:"name"`
}

type AppointmentResponse struct {
	ID        uuid.UUID           `json:"id"`
	DoctorID  uuid.UUID           `json:"doctor_id"`
	PatientID uuid.UUID           `json:"patient_id"`
	StartTime time.Time           `json:"start_time"`
	EndTime   time.Time           `json:"end_time"`
	Status    string              `json:"status"`
	Notes     string              `json:"notes"`
	Doctor    *AppointmentDoctor  `json:"doctor,omitempty"`
	Patient   *AppointmentPatient `json:"patient,omitempty"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    string(a.Status),
		Notes:     a.Notes,
	}
}

func toAppointmentDetailResponse(d appointment.AppointmentDetail) AppointmentResponse {
	resp := toAppointmentResponse(d.Appointment)
	resp.Doctor = &AppointmentDoctor{Name: d.DoctorName, Specialty: d.DoctorSpecialty}
	resp.Patient = &AppointmentPatient{Name: d.PatientName}
	return resp
}
