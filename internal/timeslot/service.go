// Package timeslot answers open slot searches by loading doctors, their
// availability and their bookings once, then running the schedule reconciler.
package timeslot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/metrics"
	"github.com/hackgods/medbook/internal/schedule"
	"github.com/hackgods/medbook/internal/validate"
)

type DoctorSource interface {
	ListDoctors(ctx context.Context, specialty string) ([]account.Doctor, error)
}

type RuleSource interface {
	ListByDoctors(ctx context.Context, doctorIDs []uuid.UUID) ([]availability.Availability, error)
}

type BookingSource interface {
	StartTimesBetween(ctx context.Context, doctorIDs []uuid.UUID, from, until time.Time) (map[uuid.UUID][]time.Time, error)
}

type Service struct {
	doctors  DoctorSource
	rules    RuleSource
	bookings BookingSource
}

func NewService(doctors DoctorSource, rules RuleSource, bookings BookingSource) *Service {
	return &Service{doctors: doctors, rules: rules, bookings: bookings}
}

// Search returns up to schedule.ResultDays days, starting at from, on which at
// least one doctor of specialty has an open slot. Any store error fails the
// whole search.
func (s *Service) Search(ctx context.Context, specialty string, from time.Time) ([]schedule.Day, error) {
	specialty = strings.TrimSpace(specialty)

	errs := validate.Errors{}
	errs.Check(specialty != "", "specialty", "is required")
	errs.Check(!from.IsZero(), "date", "is required")
	if err := errs.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() { metrics.ObserveSlotSearch(time.Since(started)) }()

	agendas, err := s.agendas(ctx, specialty, from)
	if err != nil {
		return nil, err
	}
	return schedule.Search(from, agendas), nil
}

func (s *Service) agendas(ctx context.Context, specialty string, from time.Time) ([]schedule.Agenda, error) {
	doctors, err := s.doctors.ListDoctors(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	if len(doctors) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(doctors))
	for i, d := range doctors {
		ids[i] = d.ID
	}

	rows, err := s.rules.ListByDoctors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	windowStart, windowEnd := schedule.SearchWindow(from)
	booked, err := s.bookings.StartTimesBetween(ctx, ids, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	rulesByDoctor := make(map[uuid.UUID][]schedule.Rule, len(doctors))
	for _, a := range rows {
		rulesByDoctor[a.DoctorID] = append(rulesByDoctor[a.DoctorID], a.Rule())
	}

	agendas := make([]schedule.Agenda, 0, len(doctors))
	for _, d := range doctors {
		agendas = append(agendas, schedule.Agenda{
			Doctor: schedule.Doctor{ID: d.ID, Name: d.Name, Specialty: d.Specialty},
			Rules:  rulesByDoctor[d.ID],
			Booked: booked[d.ID],
		})
	}
	return agendas, nil
}
