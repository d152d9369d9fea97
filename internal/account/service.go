package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid login id or password")
	ErrPasswordMismatch   = errors.New("current password does not match")
)

const maxAge = 120

type Service struct {
	repo     Repository
	issuer   *auth.Issuer
	hashCost int
	now      func() time.Time
}

func NewService(repo Repository, issuer *auth.Issuer) *Service {
	return &Service{
		repo:     repo,
		issuer:   issuer,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// RegisterDoctor creates a doctor user and its profile.
func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*Doctor, error) {
	in.LoginID = strings.TrimSpace(in.LoginID)
	in.Specialty = strings.TrimSpace(in.Specialty)

	errs := validate.Errors{}
	checkIdentity(errs, in.LoginID, in.Password, in.Name, in.Email, in.Phone, in.Gender)
	errs.Check(validate.Length(in.Specialty, 2, 100), "specialty", "must be 2-100 characters")
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user, err := s.newUser(ctx, in.LoginID, in.Password, auth.RoleDoctor)
	if err != nil {
		return nil, err
	}

	d := Doctor{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone.String(),
		Gender:    in.Gender,
		Specialty: in.Specialty,
	}
	if err := s.repo.CreateDoctor(ctx, *user, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// RegisterPatient creates a patient user and its profile.
func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Patient, error) {
	in.LoginID = strings.TrimSpace(in.LoginID)

	errs := validate.Errors{}
	checkIdentity(errs, in.LoginID, in.Password, in.Name, in.Email, in.Phone, in.Gender)

	now := s.now().UTC()
	switch {
	case in.DateOfBirth.IsZero():
		errs.Add("date_of_birth", "is required")
	case in.DateOfBirth.After(now):
		errs.Add("date_of_birth", "cannot be in the future")
	case in.DateOfBirth.Before(now.AddDate(-maxAge, 0, 0)):
		errs.Add("date_of_birth", "must be within the last 120 years")
	}
	errs.Check(validate.Length(in.Address, 0, 500), "address", "must be at most 500 characters")
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user, err := s.newUser(ctx, in.LoginID, in.Password, auth.RolePatient)
	if err != nil {
		return nil, err
	}

	p := Patient{
		ID:          uuid.New(),
		UserID:      user.ID,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone.String(),
		Gender:      in.Gender,
		DateOfBirth: in.DateOfBirth.UTC(),
		Address:     in.Address,
	}
	if err := s.repo.CreatePatient(ctx, *user, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func checkIdentity(errs validate.Errors, loginID, password, name, email string, phone Phone, gender Gender) {
	errs.Check(validate.Length(loginID, 5, 0), "login_id", "must be at least 5 characters")
	errs.Check(validate.Password(password), "password", "must be at least 8 characters with an uppercase letter and a number")
	errs.Check(validate.Length(name, 2, 100), "name", "must be 2-100 characters")
	errs.Check(validate.Email(email), "email", "must be a valid email address")
	errs.Check(validate.PhonePrefix(phone.Prefix), "phone.prefix", "must start with + and contain only digits")
	errs.Check(validate.PhoneNumber(phone.Number), "phone.number", "must be 5-15 digits")
	errs.Check(validate.OneOf(string(gender), string(GenderMale), string(GenderFemale), string(GenderOther)),
		"gender", "must be male, female or other")
}

func (s *Service) newUser(ctx context.Context, loginID, password string, role auth.Role) (*User, error) {
	_, err := s.repo.GetUserByLoginID(ctx, loginID)
	switch {
	case err == nil:
		return nil, ErrLoginTaken
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("check login id: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &User{
		ID:           uuid.New(),
		LoginID:      loginID,
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}

// Login checks the credentials and issues a session token. Unknown login ids and
// wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, loginID, password string) (*LoginResult, error) {
	if strings.TrimSpace(loginID) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByLoginID(ctx, strings.TrimSpace(loginID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	profileID, err := s.profileID(ctx, user)
	if err != nil {
		return nil, err
	}

	sess := auth.Session{UserID: user.ID, ProfileID: profileID, Role: user.Role}
	token, err := s.issuer.Issue(sess)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Session: sess}, nil
}

func (s *Service) profileID(ctx context.Context, user *User) (uuid.UUID, error) {
	switch user.Role {
	case auth.RoleDoctor:
		d, err := s.repo.GetDoctorByUserID(ctx, user.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("load doctor profile: %w", err)
		}
		return d.ID, nil
	case auth.RolePatient:
		p, err := s.repo.GetPatientByUserID(ctx, user.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("load patient profile: %w", err)
		}
		return p.ID, nil
	}
	return uuid.Nil, fmt.Errorf("user %s has unknown role %q", user.ID, user.Role)
}

// Profile returns the caller's profile with appointments starting from now on.
func (s *Service) Profile(ctx context.Context, sess auth.Session) (*Profile, error) {
	user, err := s.repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	prof := &Profile{Role: user.Role, LoginID: user.LoginID}
	now := s.now().UTC()

	switch user.Role {
	case auth.RoleDoctor:
		d, err := s.repo.GetDoctorByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("load doctor profile: %w", err)
		}
		prof.Doctor = d
		prof.Upcoming, err = s.repo.UpcomingForDoctor(ctx, d.ID, now)
		if err != nil {
			return nil, fmt.Errorf("load upcoming appointments: %w", err)
		}
	case auth.RolePatient:
		p, err := s.repo.GetPatientByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("load patient profile: %w", err)
		}
		prof.Patient = p
		prof.Upcoming, err = s.repo.UpcomingForPatient(ctx, p.ID, now)
		if err != nil {
			return nil, fmt.Errorf("load upcoming appointments: %w", err)
		}
	default:
		return nil, fmt.Errorf("user %s has unknown role %q", user.ID, user.Role)
	}
	return prof, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, sess auth.Session, oldPassword, newPassword string) error {
	errs := validate.Errors{}
	errs.Check(oldPassword != "", "old_password", "is required")
	errs.Check(validate.Password(newPassword), "new_password", "must be at least 8 characters with an uppercase letter and a number")
	if err := errs.Err(); err != nil {
		return err
	}

	user, err := s.repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, user.ID, string(hash))
}

func (s *Service) ListDoctors(ctx context.Context, specialty string) ([]Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx, strings.TrimSpace(specialty))
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}
