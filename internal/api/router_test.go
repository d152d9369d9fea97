package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/appointment"
	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/memstore"
	redisclient "github.com/hackgods/medbook/internal/redis"
	"github.com/hackgods/medbook/internal/timeslot"
)

var day = time.Date(2030, time.January, 7, 0, 0, 0, 0, time.UTC)

type harness struct {
	t       *testing.T
	handler http.Handler
	store   *memstore.Store
	issuer  *auth.Issuer
}

func okPing(context.Context) error { return nil }

func newHarness(t *testing.T, opts ...func(*RouterConfig)) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memstore.New()
	locker := redisclient.NewRedisLocker(client, 5*time.Second, zerolog.Nop())
	issuer := auth.NewIssuer("test-secret", time.Hour)

	cfg := RouterConfig{
		Accounts:      account.NewService(store, issuer),
		Availability:  availability.NewService(store, locker, zerolog.Nop()),
		Appointments:  appointment.NewService(store, locker, zerolog.Nop()),
		Timeslots:     timeslot.NewService(store, store, store),
		Issuer:        issuer,
		Health:        NewHealthHandler(PingFunc(okPing), PingFunc(okPing), "test", "v0.0.1"),
		Logger:        zerolog.Nop(),
		CORSOrigins:   []string{"http://localhost:3000"},
		AuthRateRPS:   1000,
		AuthRateBurst: 1000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &harness{t: t, handler: NewRouter(cfg), store: store, issuer: issuer}
}

// do sends body as JSON; a string body is sent verbatim.
func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) token(role auth.Role, profileID uuid.UUID) string {
	h.t.Helper()
	tok, err := h.issuer.Issue(auth.Session{UserID: uuid.New(), ProfileID: profileID, Role: role})
	require.NoError(h.t, err)
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func window(date time.Time, start, end string) AvailabilityRequest {
	return AvailabilityRequest{
		StartTime: start,
		EndTime:   end,
		ValidFrom: date.Format(time.DateOnly),
	}
}

func booking(doctorID uuid.UUID, start time.Time) CreateAppointmentRequest {
	return CreateAppointmentRequest{
		DoctorID:  doctorID.String(),
		StartTime: start.Format(time.RFC3339),
		EndTime:   start.Add(30 * time.Minute).Format(time.RFC3339),
	}
}

func TestHealth(t *testing.T) {
	down := PingFunc(func(context.Context) error { return errors.New("down") })

	t.Run("liveness", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(http.MethodGet, "/health/live", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[LivenessResponse](t, rec)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "v0.0.1", resp.Version)
	})

	t.Run("redis down degrades", func(t *testing.T) {
		h := newHarness(t, func(c *RouterConfig) {
			c.Health = NewHealthHandler(PingFunc(okPing), down, "test", "")
		})
		rec := h.do(http.MethodGet, "/health/ready", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ReadinessResponse](t, rec)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "down", resp.Dependencies["redis"])
	})

	t.Run("postgres down fails", func(t *testing.T) {
		h := newHarness(t, func(c *RouterConfig) {
			c.Health = NewHealthHandler(down, PingFunc(okPing), "test", "")
		})
		rec := h.do(http.MethodGet, "/health/ready", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "error", decode[ReadinessResponse](t, rec).Status)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/health/live", "", nil)

	rec := h.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `medbook_http_requests_total{method="GET",route="/health/live",status="200"}`)
}

func TestAvailability_Conflicts(t *testing.T) {
	h := newHarness(t)
	doctor := h.store.SeedDoctor("Dr. Grey", "Cardiology")
	tok := h.token(auth.RoleDoctor, doctor.ID)

	rec := h.do(http.MethodPost, "/availability", tok, window(day, "09:00", "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[AvailabilityResponse](t, rec)
	assert.Equal(t, doctor.ID, first.DoctorID)
	assert.Equal(t, int(day.Weekday()), first.DayOfWeek)

	t.Run("overlap is rejected with the existing window", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/availability", tok, window(day, "09:30", "10:30"))
		require.Equal(t, http.StatusConflict, rec.Code)

		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "availability_conflict", resp.Error)
		require.NotNil(t, resp.Conflicting)
		assert.Equal(t, first.ID, resp.Conflicting.ID)
	})

	t.Run("adjacent window is accepted", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/availability", tok, window(day, "10:00", "11:00"))
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("same hours on another day is accepted", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/availability", tok, window(day.AddDate(0, 0, 1), "09:30", "10:30"))
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("update may not move onto a neighbour", func(t *testing.T) {
		rec := h.do(http.MethodPut, "/availability/"+first.ID.String(), tok, window(day, "09:00", "10:15"))
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = h.do(http.MethodPut, "/availability/"+first.ID.String(), tok, window(day, "08:30", "10:00"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "08:30", decode[AvailabilityResponse](t, rec).StartTime)
	})
}

func TestAvailability_RoundTrip(t *testing.T) {
	h := newHarness(t)
	doctor := h.store.SeedDoctor("Dr. Grey", "Cardiology")
	tok := h.token(auth.RoleDoctor, doctor.ID)

	req := window(day, "2030-01-07T09:30:00Z", "2030-01-07T10:00:00Z")
	rec := h.do(http.MethodPost, "/availability", tok, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[AvailabilityResponse](t, rec)

	rec = h.do(http.MethodGet, "/availability?doctor_id="+doctor.ID.String()+"&start=2030-01-07", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]AvailabilityResponse](t, rec)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 9, got.StartHour)
	assert.Equal(t, 30, got.StartMinute)
	assert.Equal(t, "09:30", got.StartTime)
	assert.Equal(t, "10:00", got.EndTime)
	assert.Equal(t, "2030-01-07", got.ValidFrom)
	assert.False(t, got.IsRecurring)
	assert.Nil(t, got.Recurrence)
	assert.Empty(t, got.Exceptions)
}

func TestAvailability_Access(t *testing.T) {
	h := newHarness(t)
	doctor := h.store.SeedDoctor("Dr. Grey", "Cardiology")
	other := h.store.SeedDoctor("Dr. Shepherd", "Neurology")
	patient := h.store.SeedPatient("Izzie")

	rec := h.do(http.MethodPost, "/availability", "", window(day, "09:00", "10:00"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/availability", h.token(auth.RolePatient, patient.ID), window(day, "09:00", "10:00"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := window(day, "09:00", "10:00")
	req.DoctorID = other.ID.String()
	rec = h.do(http.MethodPost, "/availability", h.token(auth.RoleDoctor, doctor.ID), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/availability", h.token(auth.RoleDoctor, other.ID), window(day, "09:00", "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	owned := decode[AvailabilityResponse](t, rec)

	rec = h.do(http.MethodDelete, "/availability/"+owned.ID.String(), h.token(auth.RoleDoctor, doctor.ID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/availability", "not-a-token", window(day, "09:00", "10:00"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAvailability_InvalidInput(t *testing.T) {
	h := newHarness(t)
	doctor := h.store.SeedDoctor("Dr. Grey", "Cardiology")
	tok := h.token(auth.RoleDoctor, doctor.ID)

	tests := []struct {
		name  string
		body  any
		code  string
		field string
	}{
		{"inverted window", window(day, "10:00", "09:00"), "invalid_input", "end_time"},
		{"zero length window", window(day, "10:00", "10:00"), "invalid_input", "end_time"},
		{"bad time", window(day, "9am", "10:00"), "invalid_input", "start_time"},
		{"missing valid_from", AvailabilityRequest{StartTime: "09:00", EndTime: "10:00"}, "invalid_input", "valid_from"},
		{"recurring without recurrence", AvailabilityRequest{
			StartTime: "09:00", EndTime: "10:00", ValidFrom: "2030-01-07", IsRecurring: true, DayOfWeek: ptr(1),
		}, "invalid_input", "recurrence"},
		{"recurring without day_of_week", AvailabilityRequest{
			StartTime: "09:00", EndTime: "10:00", ValidFrom: "2030-01-07", IsRecurring: true, Recurrence: ptr("weekly"),
		}, "invalid_input", "day_of_week"},
		{"malformed json", `{"start_time":`, "invalid_request_body", ""},
		{"unknown field", `{"start_time":"09:00","colour":"red"}`, "invalid_request_body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(http.MethodPost, "/availability", tok, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Error)
			if tt.field != "" {
				assert.Contains(t, resp.Fields, tt.field)
			}
		})
	}
}

func TestAvailability_Exceptions(t *testing.T) {
	h := newHarness(t)
	doctor := h.store.SeedDoctor("Dr. Grey", "Cardiology")
	tok := h.token(auth.RoleDoctor, doctor.ID)

	weekly := window(day, "09:00", "10:00")
	weekly.IsRecurring = true
	weekly.DayOfWeek = ptr(int(day.Weekday()))
	weekly.Recurrence = ptr("weekly")

	rec := h.do(http.MethodPost, "/availability", tok, weekly)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rule := decode[AvailabilityResponse](t, rec)
	base := "/availability/" + rule.ID.String() + "/exceptions"

	nextWeek := day.AddDate(0, 0, 7).Format(time.DateOnly)
	rec = h.do(http.MethodPost, base, tok, ExceptionRequest{Date: nextWeek, IsCancelled: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ex := decode[ExceptionResponse](t, rec)
	assert.True(t, ex.IsCancelled)
	assert.Nil(t, ex.StartTime)

	rec = h.do(http.MethodPost, base, tok, ExceptionRequest{Date: nextWeek, IsCancelled: true})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodGet, "/timeslots?specialty=Cardiology&date="+nextWeek, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, d := range decode[[]DaySlotsResponse](t, rec) {
		assert.NotEqual(t, nextWeek, d.Date)
	}

	rec = h.do(http.MethodDelete, base+"/"+ex.ID.String(), tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(http.MethodDelete, base+"/"+ex.ID.String(), tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTimeslots_Validation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/timeslots?date=2030-01-07", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "specialty")

	rec = h.do(http.MethodGet, "/timeslots?specialty=Cardiology&date=tomorrow", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "date")

	rec = h.do(http.MethodGet, "/timeslots?type=Cardiology&date=2030-01-07", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAppointments_Booking(t *testing.T) {
	h := newHarness(t)
	doctor := h.store.SeedDoctor("Dr. Grey", "Cardiology")
	patient := h.store.SeedPatient("Izzie")
	otherPatient := h.store.SeedPatient("George")
	patientTok := h.token(auth.RolePatient, patient.ID)
	start := day.Add(9 * time.Hour)

	rec := h.do(http.MethodPost, "/appointments", "", booking(doctor.ID, start))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forOther := booking(doctor.ID, start)
	forOther.PatientID = otherPatient.ID.String()
	rec = h.do(http.MethodPost, "/appointments", patientTok, forOther)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/appointments", patientTok, booking(doctor.ID, start))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decode[AppointmentResponse](t, rec)
	assert.Equal(t, patient.ID, appt.PatientID)
	assert.Equal(t, "confirmed", appt.Status)

	t.Run("same doctor and start is a double booking", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/appointments", h.token(auth.RolePatient, otherPatient.ID), booking(doctor.ID, start))
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "slot_already_booked", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/appointments", patientTok, booking(uuid.New(), start))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("listing is scoped to the caller", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/appointments", h.token(auth.RolePatient, otherPatient.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())

		rec = h.do(http.MethodGet, "/appointments?patient_id="+patient.ID.String(), h.token(auth.RolePatient, otherPatient.ID), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = h.do(http.MethodGet, "/appointments", h.token(auth.RoleDoctor, doctor.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]AppointmentResponse](t, rec)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Patient)
		assert.Equal(t, "Izzie", list[0].Patient.Name)
	})

	t.Run("only participants cancel", func(t *testing.T) {
		rec := h.do(http.MethodDelete, "/appointments/"+appt.ID.String(), h.token(auth.RolePatient, otherPatient.ID), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cancel twice", func(t *testing.T) {
		rec := h.do(http.MethodDelete, "/appointments/"+appt.ID.String(), patientTok, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = h.do(http.MethodDelete, "/appointments/"+appt.ID.String(), patientTok, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "appointment_not_found", decode[ErrorResponse](t, rec).Error)
	})

	rec = h.do(http.MethodDelete, "/appointments/nope", patientTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_RateLimit(t *testing.T) {
	h := newHarness(t, func(c *RouterConfig) {
		c.AuthRateRPS = 0.001
		c.AuthRateBurst = 2
	})

	creds := LoginRequest{LoginID: "nobody", Password: "Secret123"}
	for i := 0; i < 2; i++ {
		rec := h.do(http.MethodPost, "/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := h.do(http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// routes outside /auth are not limited
	rec = h.do(http.MethodGet, "/doctors", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestEndToEnd walks one doctor and one patient through registration, login,
// publishing availability, booking, searching and cancelling.
func TestEndToEnd(t *testing.T) {
	h := newHarness(t)
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	date := tomorrow.Format(time.DateOnly)

	rec := h.do(http.MethodPost, "/auth/register/doctor", "", RegisterDoctorRequest{
		LoginID:   "drgrey",
		Password:  "Secret123",
		Name:      "Meredith Grey",
		Email:     "grey@example.com",
		Phone:     PhoneRequest{Prefix: "+1", Number: "5550101"},
		Gender:    "female",
		Specialty: "Cardiology",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doctor := decode[DoctorResponse](t, rec)

	rec = h.do(http.MethodPost, "/auth/register/patient", "", RegisterPatientRequest{
		LoginID:     "izzie",
		Password:    "Secret123",
		Name:        "Izzie Stevens",
		Email:       "izzie@example.com",
		Phone:       PhoneRequest{Prefix: "+1", Number: "5550102"},
		Gender:      "female",
		DateOfBirth: "1990-04-12",
		Address:     "1 Seattle Way",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	patient := decode[PatientResponse](t, rec)

	rec = h.do(http.MethodPost, "/auth/register/patient", "", RegisterPatientRequest{
		LoginID: "izzie", Password: "Secret123", Name: "Another Izzie", Email: "other@example.com",
		Phone: PhoneRequest{Prefix: "+1", Number: "5550103"}, Gender: "female", DateOfBirth: "1991-01-01",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "login_taken", decode[ErrorResponse](t, rec).Error)

	login := func(id, password string) LoginResponse {
		t.Helper()
		rec := h.do(http.MethodPost, "/auth/login", "", LoginRequest{LoginID: id, Password: password})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[LoginResponse](t, rec)
	}
	doctorLogin := login("drgrey", "Secret123")
	patientLogin := login("izzie", "Secret123")
	assert.Equal(t, doctor.ID, doctorLogin.ProfileID)
	assert.Equal(t, "patient", patientLogin.Role)

	rec = h.do(http.MethodPost, "/auth/login", "", LoginRequest{LoginID: "izzie", Password: "Wrong1234"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decode[ErrorResponse](t, rec).Error)

	rec = h.do(http.MethodGet, "/doctors?specialty=Cardiology", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]DoctorResponse](t, rec), 1)

	rec = h.do(http.MethodPost, "/availability", doctorLogin.Token, window(tomorrow, "09:30", "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rule := decode[AvailabilityResponse](t, rec)

	search := func() []DaySlotsResponse {
		t.Helper()
		rec := h.do(http.MethodGet, "/timeslots?specialty=Cardiology&date="+date, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[[]DaySlotsResponse](t, rec)
	}

	days := search()
	require.Len(t, days, 1)
	assert.Equal(t, date, days[0].Date)
	require.Len(t, days[0].Doctors, 1)
	assert.Equal(t, "Meredith Grey", days[0].Doctors[0].Name)
	require.Len(t, days[0].Doctors[0].AvailableSlots, 1)
	slot := days[0].Doctors[0].AvailableSlots[0]
	assert.Equal(t, rule.ID, slot.ID)
	assert.Equal(t, "09:30", slot.StartTime)
	assert.Equal(t, "10:00", slot.EndTime)

	start := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 30, 0, 0, time.UTC)
	req := booking(doctor.ID, start)
	req.Notes = "chest pain"
	rec = h.do(http.MethodPost, "/appointments", patientLogin.Token, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decode[AppointmentResponse](t, rec)
	assert.Equal(t, patient.ID, appt.PatientID)

	assert.Empty(t, search(), "booked slot is no longer offered")

	rec = h.do(http.MethodGet, "/profile", patientLogin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prof := decode[ProfileResponse](t, rec)
	require.NotNil(t, prof.Patient)
	require.Len(t, prof.UpcomingAppointments, 1)
	assert.Equal(t, "Meredith Grey", prof.UpcomingAppointments[0].WithName)
	assert.Equal(t, "chest pain", prof.UpcomingAppointments[0].Notes)

	rec = h.do(http.MethodGet, "/appointments", patientLogin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]AppointmentResponse](t, rec)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Doctor)
	assert.Equal(t, "Cardiology", list[0].Doctor.Specialty)

	rec = h.do(http.MethodDelete, "/appointments/"+appt.ID.String(), patientLogin.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	days = search()
	require.Len(t, days, 1, "cancelled slot is offered again")
	assert.Equal(t, "09:30", days[0].Doctors[0].AvailableSlots[0].StartTime)

	t.Run("change password", func(t *testing.T) {
		rec := h.do(http.MethodPut, "/profile/password", patientLogin.Token,
			ChangePasswordRequest{OldPassword: "Wrong1234", NewPassword: "Better456"})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "password_mismatch", decode[ErrorResponse](t, rec).Error)

		rec = h.do(http.MethodPut, "/profile/password", patientLogin.Token,
			ChangePasswordRequest{OldPassword: "Secret123", NewPassword: "Better456"})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		login("izzie", "Better456")
	})
}
