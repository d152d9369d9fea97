// Package memstore is an in-memory implementation of the account, availability
// and appointment repositories. It backs service and HTTP tests without Postgres.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/appointment"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/schedule"
)

var (
	_ account.Repository      = (*Store)(nil)
	_ availability.Repository = (*Store)(nil)
	_ appointment.Repository  = (*Store)(nil)
)

type Store struct {
	mu sync.Mutex

	users        map[uuid.UUID]account.User
	doctors      map[uuid.UUID]account.Doctor
	patients     map[uuid.UUID]account.Patient
	availability map[uuid.UUID]availability.Availability
	exceptions   map[uuid.UUID]availability.Exception
	appointments map[uuid.UUID]appointment.Appointment
	events       []appointment.EventLog

	failures map[string]error
}

func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]account.User),
		doctors:      make(map[uuid.UUID]account.Doctor),
		patients:     make(map[uuid.UUID]account.Patient),
		availability: make(map[uuid.UUID]availability.Availability),
		exceptions:   make(map[uuid.UUID]availability.Exception),
		appointments: make(map[uuid.UUID]appointment.Appointment),
		failures:     make(map[string]error),
	}
}

// FailOn makes every later call of the named method return err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// Events returns a copy of the recorded event log.
func (s *Store) Events() []appointment.EventLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appointment.EventLog(nil), s.events...)
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

// account.Repository

func (s *Store) CreateDoctor(ctx context.Context, u account.User, d account.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateDoctor"); err != nil {
		return err
	}
	if err := s.insertUser(u); err != nil {
		return err
	}
	now := time.Now()
	d.UserID, d.CreatedAt, d.UpdatedAt = u.ID, now, now
	s.doctors[d.ID] = d
	return nil
}

func (s *Store) CreatePatient(ctx context.Context, u account.User, p account.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreatePatient"); err != nil {
		return err
	}
	if err := s.insertUser(u); err != nil {
		return err
	}
	now := time.Now()
	p.UserID, p.CreatedAt, p.UpdatedAt = u.ID, now, now
	s.patients[p.ID] = p
	return nil
}

func (s *Store) insertUser(u account.User) error {
	for _, existing := range s.users {
		if existing.LoginID == u.LoginID {
			return account.ErrLoginTaken
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByLoginID(ctx context.Context, loginID string) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByLoginID"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.LoginID == loginID {
			return &u, nil
		}
	}
	return nil, account.ErrUserNotFound
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return account.ErrUserNotFound
	}
	u.PasswordHash, u.UpdatedAt = hash, time.Now()
	s.users[userID] = u
	return nil
}

func (s *Store) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*account.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.doctors {
		if d.UserID == userID {
			return &d, nil
		}
	}
	return nil, account.ErrDoctorNotFound
}

func (s *Store) GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*account.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, account.ErrPatientNotFound
}

func (s *Store) ListDoctors(ctx context.Context, specialty string) ([]account.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListDoctors"); err != nil {
		return nil, err
	}
	var out []account.Doctor
	for _, d := range s.doctors {
		if specialty == "" || d.Specialty == specialty {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]account.Upcoming, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []account.Upcoming
	for _, a := range s.sortedAppointments() {
		if a.DoctorID == doctorID && !a.StartTime.Before(from) {
			out = append(out, upcoming(a, a.PatientID, s.patients[a.PatientID].Name))
		}
	}
	return out, nil
}

func (s *Store) UpcomingForPatient(ctx context.Context, patientID uuid.UUID, from time.Time) ([]account.Upcoming, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []account.Upcoming
	for _, a := range s.sortedAppointments() {
		if a.PatientID == patientID && !a.StartTime.Before(from) {
			out = append(out, upcoming(a, a.DoctorID, s.doctors[a.DoctorID].Name))
		}
	}
	return out, nil
}

func upcoming(a appointment.Appointment, withID uuid.UUID, withName string) account.Upcoming {
	return account.Upcoming{
		AppointmentID: a.ID,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Notes:         a.Notes,
		WithID:        withID,
		WithName:      withName,
	}
}

// availability.Repository

func (s *Store) DoctorExists(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.doctors[doctorID]
	return ok, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*availability.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.availability[id]
	if !ok {
		return nil, availability.ErrAvailabilityNotFound
	}
	a = s.withExceptions(a)
	return &a, nil
}

func (s *Store) ListByDoctor(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]availability.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListByDoctor"); err != nil {
		return nil, err
	}
	from = schedule.DateOf(from)
	return s.selectAvailability(func(a availability.Availability) bool {
		return a.DoctorID == doctorID && (a.ValidUntil == nil || !a.ValidUntil.Before(from))
	}, byValidFrom), nil
}

func (s *Store) ListByDoctors(ctx context.Context, doctorIDs []uuid.UUID) ([]availability.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListByDoctors"); err != nil {
		return nil, err
	}
	want := make(map[uuid.UUID]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		want[id] = true
	}
	return s.selectAvailability(func(a availability.Availability) bool {
		return want[a.DoctorID]
	}, byStart), nil
}

func (s *Store) ListOneOffOn(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]availability.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectAvailability(func(a availability.Availability) bool {
		return a.DoctorID == doctorID && !a.IsRecurring && schedule.SameDay(a.ValidFrom, day)
	}, byStart), nil
}

func (s *Store) Create(ctx context.Context, a availability.Availability) (*availability.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Create"); err != nil {
		return nil, err
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt, a.Exceptions = now, now, nil
	s.availability[a.ID] = a
	return &a, nil
}

func (s *Store) Update(ctx context.Context, a availability.Availability) (*availability.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.availability[a.ID]
	if !ok {
		return nil, availability.ErrAvailabilityNotFound
	}
	a.CreatedAt, a.UpdatedAt, a.Exceptions = existing.CreatedAt, time.Now(), nil
	s.availability[a.ID] = a
	a = s.withExceptions(a)
	return &a, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.availability[id]; !ok {
		return availability.ErrAvailabilityNotFound
	}
	delete(s.availability, id)
	for exID, ex := range s.exceptions {
		if ex.AvailabilityID == id {
			delete(s.exceptions, exID)
		}
	}
	return nil
}

func (s *Store) CreateException(ctx context.Context, e availability.Exception) (*availability.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.exceptions {
		if ex.AvailabilityID == e.AvailabilityID && schedule.SameDay(ex.Date, e.Date) {
			return nil, availability.ErrExceptionExists
		}
	}
	e.CreatedAt = time.Now()
	s.exceptions[e.ID] = e
	return &e, nil
}

func (s *Store) DeleteException(ctx context.Context, availabilityID, exceptionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.exceptions[exceptionID]
	if !ok || ex.AvailabilityID != availabilityID {
		return availability.ErrExceptionNotFound
	}
	delete(s.exceptions, exceptionID)
	return nil
}

func (s *Store) withExceptions(a availability.Availability) availability.Availability {
	a.Exceptions = nil
	for _, ex := range s.exceptions {
		if ex.AvailabilityID == a.ID {
			a.Exceptions = append(a.Exceptions, ex)
		}
	}
	sort.Slice(a.Exceptions, func(i, j int) bool { return a.Exceptions[i].Date.Before(a.Exceptions[j].Date) })
	return a
}

type availabilityOrder func(a, b availability.Availability) bool

func byValidFrom(a, b availability.Availability) bool {
	if !a.ValidFrom.Equal(b.ValidFrom) {
		return a.ValidFrom.Before(b.ValidFrom)
	}
	return a.Window().Start.Before(b.Window().Start)
}

func byStart(a, b availability.Availability) bool {
	if c := a.Window().Start.Compare(b.Window().Start); c != 0 {
		return c < 0
	}
	return a.ValidFrom.Before(b.ValidFrom)
}

func (s *Store) selectAvailability(keep func(availability.Availability) bool, less availabilityOrder) []availability.Availability {
	var out []availability.Availability
	for _, a := range s.availability {
		if keep(a) {
			out = append(out, s.withExceptions(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// appointment.Repository

func (s *Store) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.patients[id]
	return ok, nil
}

func (s *Store) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (s *Store) FindAtStart(ctx context.Context, doctorID uuid.UUID, start time.Time) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.StartTime.Equal(start) {
			return &a, nil
		}
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (s *Store) CreateAppointment(ctx context.Context, a appointment.Appointment) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.appointments {
		if existing.DoctorID == a.DoctorID && existing.StartTime.Equal(a.StartTime) {
			return nil, appointment.ErrSlotAlreadyBooked
		}
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.appointments[a.ID] = a
	return &a, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(s.appointments, id)
	return nil
}

func (s *Store) ListAppointments(ctx context.Context, f appointment.ListFilter) ([]appointment.AppointmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []appointment.AppointmentDetail
	for _, a := range s.sortedAppointments() {
		if !f.IncludePast && a.StartTime.Before(f.Now) {
			continue
		}
		if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
			continue
		}
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		d := s.doctors[a.DoctorID]
		out = append(out, appointment.AppointmentDetail{
			Appointment:     a,
			DoctorName:      d.Name,
			DoctorSpecialty: d.Specialty,
			PatientName:     s.patients[a.PatientID].Name,
		})
	}
	return out, nil
}

func (s *Store) StartTimesBetween(ctx context.Context, doctorIDs []uuid.UUID, from, until time.Time) (map[uuid.UUID][]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("StartTimesBetween"); err != nil {
		return nil, err
	}
	want := make(map[uuid.UUID]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		want[id] = true
	}
	out := make(map[uuid.UUID][]time.Time)
	for _, a := range s.appointments {
		if want[a.DoctorID] && !a.StartTime.Before(from) && a.StartTime.Before(until) {
			out[a.DoctorID] = append(out[a.DoctorID], a.StartTime)
		}
	}
	return out, nil
}

func (s *Store) InsertEvent(ctx context.Context, ev appointment.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertEvent"); err != nil {
		return err
	}
	ev.ID = int64(len(s.events) + 1)
	s.events = append(s.events, ev)
	return nil
}

func (s *Store) sortedAppointments() []appointment.Appointment {
	out := make([]appointment.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
