package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/medbook/internal/api"
	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/config"
	"github.com/hackgods/medbook/internal/db"
	"github.com/hackgods/medbook/internal/logger"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	SearchRatio  float64
	BookingRatio float64
	CancelRatio  float64
	ListRatio    float64
	PatientLimit int
	PostgresDSN  string
	JWTSecret    string
}

type patient struct {
	ID    uuid.UUID
	Token string
}

// candidate is an open slot seen in a search result.
type candidate struct {
	DoctorID uuid.UUID
	Start    time.Time
	End      time.Time
}

type booked struct {
	ID    uuid.UUID
	Token string
}

type DataPool struct {
	Patients    []patient
	Specialties []string

	mu           sync.Mutex
	candidates   []candidate
	appointments []booked
}

func (dp *DataPool) AddCandidates(cs []candidate) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.candidates = append(dp.candidates, cs...)
	// keep the most recent searches only
	if over := len(dp.candidates) - 5000; over > 0 {
		dp.candidates = dp.candidates[over:]
	}
}

// TakeCandidate removes and returns a random candidate.
func (dp *DataPool) TakeCandidate(rng *rand.Rand) (candidate, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.candidates) == 0 {
		return candidate{}, false
	}
	idx := rng.Intn(len(dp.candidates))
	c := dp.candidates[idx]
	dp.candidates[idx] = dp.candidates[len(dp.candidates)-1]
	dp.candidates = dp.candidates[:len(dp.candidates)-1]
	return c, true
}

func (dp *DataPool) AddAppointment(b booked) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, b)
}

// TakeAppointment removes and returns a random booked appointment.
func (dp *DataPool) TakeAppointment(rng *rand.Rand) (booked, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.appointments) == 0 {
		return booked{}, false
	}
	idx := rng.Intn(len(dp.appointments))
	b := dp.appointments[idx]
	dp.appointments[idx] = dp.appointments[len(dp.appointments)-1]
	dp.appointments = dp.appointments[:len(dp.appointments)-1]
	return b, true
}

type Metrics struct {
	Search  OperationMetrics
	Booking OperationMetrics
	Cancel  OperationMetrics
	List    OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	log     zerolog.Logger
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load base config")
	}
	log := logger.New(baseCfg.LogLevel, baseCfg.Env)

	cfg := loadConfig(baseCfg)
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("search", cfg.SearchRatio).
		Float64("booking", cfg.BookingRatio).
		Float64("cancel", cfg.CancelRatio).
		Float64("list", cfg.ListRatio).
		Msg("simulator starting")

	// Load data from Postgres
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}

	log.Info().Int("patients", len(dataPool.Patients)).Int("specialties", len(dataPool.Specialties)).Msg("data loaded")

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}

	sim.Run()
	fmt.Print(sim.Report())
}

func loadConfig(base config.Config) SimConfig {
	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		SearchRatio:  getFloat("SIM_SEARCH_RATIO", 0.4),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.3),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.1),
		ListRatio:    getFloat("SIM_LIST_RATIO", 0.2),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 4000),
		PostgresDSN:  base.PostgresDSN,
		JWTSecret:    base.JWTSecret,
	}

	// Normalize ratios
	total := cfg.SearchRatio + cfg.BookingRatio + cfg.CancelRatio + cfg.ListRatio
	if total > 0 {
		cfg.SearchRatio /= total
		cfg.BookingRatio /= total
		cfg.CancelRatio /= total
		cfg.ListRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

// loadDataPool reads patients and specialties and mints a session token per
// patient with the API's own signing key.
func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.Duration+time.Hour)

	rows, err := pool.Query(ctx, `SELECT id, user_id FROM patients LIMIT $1`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	for rows.Next() {
		var id, userID uuid.UUID
		if err := rows.Scan(&id, &userID); err != nil {
			rows.Close()
			return nil, err
		}
		token, err := issuer.Issue(auth.Session{UserID: userID, ProfileID: id, Role: auth.RolePatient})
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("issue token: %w", err)
		}
		dataPool.Patients = append(dataPool.Patients, patient{ID: id, Token: token})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = pool.Query(ctx, `SELECT DISTINCT specialty FROM doctors ORDER BY specialty`)
	if err != nil {
		return nil, fmt.Errorf("load specialties: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		dataPool.Specialties = append(dataPool.Specialties, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded")
	}
	if len(dataPool.Specialties) == 0 {
		return nil, fmt.Errorf("no doctors loaded")
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	seed := time.Now().UnixNano() + int64(workerID)
	rng := rand.New(rand.NewSource(seed))
	fake := gofakeit.New(uint64(seed))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Select operation based on ratios
		r := rng.Float64()
		switch {
		case r < s.config.SearchRatio:
			s.doSearch(ctx, rng)
		case r < s.config.SearchRatio+s.config.BookingRatio:
			s.doBooking(ctx, rng, fake)
		case r < s.config.SearchRatio+s.config.BookingRatio+s.config.CancelRatio:
			s.doCancel(ctx, rng)
		default:
			s.doList(ctx, rng)
		}
	}
}

// call sends one request and returns the status code; status 0 means transport failure.
func (s *Simulator) call(ctx context.Context, method, path, token string, body any, out any) (int, time.Duration) {
	var rdr io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, rdr)
	if err != nil {
		return 0, 0
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Debug().Err(err).Str("path", path).Msg("request failed")
		}
		return 0, latency
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		_ = json.NewDecoder(resp.Body).Decode(out)
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, latency
}

func (s *Simulator) doSearch(ctx context.Context, rng *rand.Rand) {
	specialty := s.pool.Specialties[rng.Intn(len(s.pool.Specialties))]
	date := time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)

	var days []api.DaySlotsResponse
	path := fmt.Sprintf("/timeslots?specialty=%s&date=%s", url.QueryEscape(specialty), date)
	status, latency := s.call(ctx, http.MethodGet, path, "", nil, &days)
	if ctx.Err() != nil {
		return
	}
	s.metrics.Search.Record(latency, status == http.StatusOK, false)

	var found []candidate
	for _, d := range days {
		day, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			continue
		}
		for _, doc := range d.Doctors {
			for _, slot := range doc.AvailableSlots {
				start, err1 := time.Parse("15:04", slot.StartTime)
				end, err2 := time.Parse("15:04", slot.EndTime)
				if err1 != nil || err2 != nil {
					continue
				}
				found = append(found, candidate{
					DoctorID: doc.ID,
					Start:    day.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute),
					End:      day.Add(time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute),
				})
			}
		}
	}
	s.pool.AddCandidates(found)
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand, fake *gofakeit.Faker) {
	c, ok := s.pool.TakeCandidate(rng)
	if !ok {
		s.doSearch(ctx, rng)
		return
	}
	p := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	req := api.CreateAppointmentRequest{
		DoctorID:  c.DoctorID.String(),
		PatientID: p.ID.String(),
		StartTime: c.Start.Format(time.RFC3339),
		EndTime:   c.End.Format(time.RFC3339),
		Notes:     "load test: " + fake.BuzzWord(),
	}

	var appt api.AppointmentResponse
	status, latency := s.call(ctx, http.MethodPost, "/appointments", p.Token, req, &appt)
	if ctx.Err() != nil {
		return
	}
	s.metrics.Booking.Record(latency, status == http.StatusCreated, status == http.StatusConflict)

	if status == http.StatusCreated && appt.ID != uuid.Nil {
		s.pool.AddAppointment(booked{ID: appt.ID, Token: p.Token})
	}
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pool.TakeAppointment(rng)
	if !ok {
		return
	}

	status, latency := s.call(ctx, http.MethodDelete, "/appointments/"+b.ID.String(), b.Token, nil, nil)
	if ctx.Err() != nil {
		return
	}
	// a 404 means someone else already cancelled it
	s.metrics.Cancel.Record(latency, status == http.StatusNoContent, status == http.StatusNotFound)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	p := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	status, latency := s.call(ctx, http.MethodGet, "/appointments", p.Token, nil, nil)
	if ctx.Err() != nil {
		return
	}
	s.metrics.List.Record(latency, status == http.StatusOK, false)
}

func (s *Simulator) Report() string {
	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("=", 80) + "\n")
	b.WriteString("SIMULATION REPORT\n")
	b.WriteString(strings.Repeat("=", 80) + "\n")
	fmt.Fprintf(&b, "Duration: %s\n", s.config.Duration)
	fmt.Fprintf(&b, "Workers: %d\n\n", s.config.Workers)

	for _, op := range []struct {
		name string
		m    *OperationMetrics
	}{
		{"Search", &s.metrics.Search},
		{"Booking", &s.metrics.Booking},
		{"Cancel", &s.metrics.Cancel},
		{"List", &s.metrics.List},
	} {
		if r := op.m.Report(op.name); r != "" {
			b.WriteString(r + "\n")
		}
	}
	return b.String()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
