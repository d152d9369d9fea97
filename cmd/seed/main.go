package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/config"
	"github.com/hackgods/medbook/internal/db"
	"github.com/hackgods/medbook/internal/logger"
	redisclient "github.com/hackgods/medbook/internal/redis"
	"github.com/hackgods/medbook/internal/schedule"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

type seedOptions struct {
	doctors  int
	patients int
	days     int
	density  float64
	password string
	seed     uint64
}

func main() {
	opts := seedOptions{}

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake doctors, patients and availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.IntVar(&opts.doctors, "doctors", 50, "number of doctors to create")
	flags.IntVar(&opts.patients, "patients", 500, "number of patients to create")
	flags.IntVar(&opts.days, "days", 14, "days of availability to publish per doctor, starting tomorrow")
	flags.Float64Var(&opts.density, "density", 0.4, "share of half-hour windows between 08:00 and 17:00 a doctor publishes")
	flags.StringVar(&opts.password, "password", "Password1", "password given to every seeded account")
	flags.Uint64Var(&opts.seed, "seed", 0, "faker seed, 0 picks a random one")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type seeder struct {
	opts         seedOptions
	fake         *gofakeit.Faker
	hash         string
	accounts     *account.PgRepository
	availability *availability.Service
	log          zerolog.Logger
}

func run(ctx context.Context, opts seedOptions) error {
	if opts.density <= 0 || opts.density > 1 {
		return errors.New("--density must be in (0, 1]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)
	log.Info().Int("doctors", opts.doctors).Int("patients", opts.patients).Msg("seed starting")

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	// every account shares one hash so seeding is not bound by bcrypt
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s := &seeder{
		opts:     opts,
		fake:     gofakeit.New(opts.seed),
		hash:     string(hash),
		accounts: account.NewPgRepository(pool),
		availability: availability.NewService(
			availability.NewPgRepository(pool),
			redisclient.NewRedisLocker(rdb, cfg.LockTTL, log),
			log,
		),
		log: log,
	}

	doctors, err := s.seedDoctors(ctx)
	if err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	if err := s.seedPatients(ctx); err != nil {
		return fmt.Errorf("seed patients: %w", err)
	}
	if err := s.seedAvailability(ctx, doctors); err != nil {
		return fmt.Errorf("seed availability: %w", err)
	}

	log.Info().Msg("seed complete")
	return nil
}

func (s *seeder) user(role auth.Role, loginID string) account.User {
	return account.User{ID: uuid.New(), LoginID: loginID, PasswordHash: s.hash, Role: role}
}

func (s *seeder) phone() string {
	return fmt.Sprintf("+1%07d", s.fake.Number(0, 9_999_999))
}

func (s *seeder) gender() account.Gender {
	return account.Gender(s.fake.RandomString([]string{"male", "female", "other"}))
}

func (s *seeder) seedDoctors(ctx context.Context) ([]uuid.UUID, error) {
	runID := s.fake.Number(1000, 9999)
	ids := make([]uuid.UUID, 0, s.opts.doctors)

	for i := 0; i < s.opts.doctors; i++ {
		u := s.user(auth.RoleDoctor, fmt.Sprintf("doctor%d-%04d", runID, i))
		d := account.Doctor{
			ID:        uuid.New(),
			UserID:    u.ID,
			Name:      "Dr. " + s.fake.Name(),
			Email:     s.fake.Email(),
			Phone:     s.phone(),
			Gender:    s.gender(),
			Specialty: specialties[s.fake.Number(0, len(specialties)-1)],
		}
		if err := s.accounts.CreateDoctor(ctx, u, d); err != nil {
			return nil, err
		}
		ids = append(ids, d.ID)
	}

	s.log.Info().Int("count", len(ids)).Int("login_run", runID).Msg("doctors seeded")
	return ids, nil
}

func (s *seeder) seedPatients(ctx context.Context) error {
	runID := s.fake.Number(1000, 9999)
	now := time.Now().UTC()

	for i := 0; i < s.opts.patients; i++ {
		u := s.user(auth.RolePatient, fmt.Sprintf("patient%d-%04d", runID, i))
		p := account.Patient{
			ID:          uuid.New(),
			UserID:      u.ID,
			Name:        s.fake.Name(),
			Email:       s.fake.Email(),
			Phone:       s.phone(),
			Gender:      s.gender(),
			DateOfBirth: schedule.DateOf(s.fake.DateRange(now.AddDate(-90, 0, 0), now.AddDate(-1, 0, 0))),
			Address:     s.fake.Street() + ", " + s.fake.City(),
		}
		if err := s.accounts.CreatePatient(ctx, u, p); err != nil {
			return err
		}

		if (i+1)%500 == 0 {
			s.log.Info().Msgf("patients seeded: %d/%d", i+1, s.opts.patients)
		}
	}

	s.log.Info().Int("count", s.opts.patients).Int("login_run", runID).Msg("patients seeded")
	return nil
}

// seedAvailability publishes one-off half-hour windows for the next days plus
// one weekly rule per doctor. Windows never overlap, so every write should pass
// the conflict check.
func (s *seeder) seedAvailability(ctx context.Context, doctors []uuid.UUID) error {
	tomorrow := schedule.DateOf(time.Now()).AddDate(0, 0, 1)
	created := 0

	for _, doctorID := range doctors {
		for d := 0; d < s.opts.days; d++ {
			date := tomorrow.AddDate(0, 0, d)
			for minute := 8 * 60; minute < 17*60; minute += 30 {
				if s.fake.Float64() >= s.opts.density {
					continue
				}
				_, err := s.availability.Create(ctx, availability.Input{
					DoctorID:  doctorID,
					Start:     schedule.TimeOfDay{Hour: minute / 60, Minute: minute % 60},
					End:       schedule.TimeOfDay{Hour: (minute + 30) / 60, Minute: (minute + 30) % 60},
					ValidFrom: date,
				})
				if err != nil {
					return err
				}
				created++
			}
		}

		// evening clinic, outside the one-off range
		weekday := s.fake.Number(1, 5)
		clinic, err := s.availability.Create(ctx, availability.Input{
			DoctorID:    doctorID,
			DayOfWeek:   &weekday,
			Start:       schedule.TimeOfDay{Hour: 18},
			End:         schedule.TimeOfDay{Hour: 18, Minute: 30},
			IsRecurring: true,
			Recurrence:  string(schedule.Weekly),
			ValidFrom:   tomorrow,
		})
		if err != nil {
			return err
		}
		created++

		if err := s.cancelOneClinic(ctx, clinic, tomorrow); err != nil {
			return err
		}
	}

	s.log.Info().Int("count", created).Msg("availability seeded")
	return nil
}

// cancelOneClinic drops a random evening clinic inside the seeded range so
// searches also see a cancelled occurrence.
func (s *seeder) cancelOneClinic(ctx context.Context, clinic *availability.Availability, from time.Time) error {
	days := clinic.Rule().Occurrences(from, from.AddDate(0, 0, s.opts.days-1))
	if len(days) == 0 {
		return nil
	}
	_, err := s.availability.AddException(ctx, clinic.DoctorID, clinic.ID, availability.ExceptionInput{
		Date:        days[s.fake.Number(0, len(days)-1)],
		IsCancelled: true,
	})
	return err
}
