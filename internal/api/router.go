package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/appointment"
	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/metrics"
	"github.com/hackgods/medbook/internal/timeslot"
)

type RouterConfig struct {
	Accounts     *account.Service
	Availability *availability.Service
	Appointments *appointment.Service
	Timeslots    *timeslot.Service
	Issuer       *auth.Issuer
	Health       *HealthHandler
	Logger       zerolog.Logger

	CORSOrigins   []string
	AuthRateRPS   float64
	AuthRateBurst int
}

func NewRouter(cfg RouterConfig) http.Handler {
	metrics.Register()

	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoverMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(Authenticate(cfg.Issuer))

	// Health and metrics endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}
	r.Handle("/metrics", promhttp.Handler())

	// Account endpoints
	r.Route("/auth", func(r chi.Router) {
		r.Use(RateLimitMiddleware(cfg.AuthRateRPS, cfg.AuthRateBurst))
		r.Post("/register/patient", registerPatientHandler(cfg.Accounts))
		r.Post("/register/doctor", registerDoctorHandler(cfg.Accounts))
		r.Post("/login", loginHandler(cfg.Accounts))
	})
	r.With(RequireSession).Get("/profile", profileHandler(cfg.Accounts))
	r.With(RequireSession).Put("/profile/password", changePasswordHandler(cfg.Accounts))
	r.Get("/doctors", listDoctorsHandler(cfg.Accounts))

	// Availability endpoints
	r.Route("/availability", func(r chi.Router) {
		r.Get("/", listAvailabilityHandler(cfg.Availability))

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(auth.RoleDoctor))
			r.Post("/", createAvailabilityHandler(cfg.Availability))
			r.Put("/{id}", updateAvailabilityHandler(cfg.Availability))
			r.Delete("/{id}", deleteAvailabilityHandler(cfg.Availability))
			r.Post("/{id}/exceptions", addExceptionHandler(cfg.Availability))
			r.Delete("/{id}/exceptions/{exceptionID}", deleteExceptionHandler(cfg.Availability))
		})
	})

	// Slot search
	r.Get("/timeslots", searchTimeslotsHandler(cfg.Timeslots))

	// Appointment endpoints
	r.Route("/appointments", func(r chi.Router) {
		r.Use(RequireSession)
		r.Get("/", listAppointmentsHandler(cfg.Appointments))
		r.Post("/", createAppointmentHandler(cfg.Appointments))
		r.Delete("/{id}", cancelAppointmentHandler(cfg.Appointments))
	})

	return r
}
