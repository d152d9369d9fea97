package memstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/auth"
)

// SeedDoctor inserts a doctor with a throwaway user.
func (s *Store) SeedDoctor(name, specialty string) account.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.seedUser(auth.RoleDoctor)
	d := account.Doctor{ID: uuid.New(), UserID: u.ID, Name: name, Specialty: specialty, Gender: account.GenderOther}
	s.doctors[d.ID] = d
	return d
}

// SeedPatient inserts a patient with a throwaway user.
func (s *Store) SeedPatient(name string) account.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.seedUser(auth.RolePatient)
	p := account.Patient{
		ID:          uuid.New(),
		UserID:      u.ID,
		Name:        name,
		Gender:      account.GenderOther,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.patients[p.ID] = p
	return p
}

func (s *Store) seedUser(role auth.Role) account.User {
	u := account.User{ID: uuid.New(), LoginID: uuid.NewString(), Role: role}
	s.users[u.ID] = u
	return u
}
