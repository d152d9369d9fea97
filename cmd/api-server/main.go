package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/medbook/internal/account"
	"github.com/hackgods/medbook/internal/api"
	"github.com/hackgods/medbook/internal/appointment"
	"github.com/hackgods/medbook/internal/auth"
	"github.com/hackgods/medbook/internal/availability"
	"github.com/hackgods/medbook/internal/config"
	"github.com/hackgods/medbook/internal/db"
	"github.com/hackgods/medbook/internal/logger"
	"github.com/hackgods/medbook/internal/metrics"
	redisclient "github.com/hackgods/medbook/internal/redis"
	"github.com/hackgods/medbook/internal/timeslot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config load error")
	}

	log := logger.New(cfg.LogLevel, cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	metrics.Register()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	if err := db.RunMigrations(rootCtx, pgPool); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL, log)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)

	accountRepo := account.NewPgRepository(pgPool)
	availabilityRepo := availability.NewPgRepository(pgPool)
	appointmentRepo := appointment.NewPgRepository(pgPool)

	router := api.NewRouter(api.RouterConfig{
		Accounts:     account.NewService(accountRepo, issuer),
		Availability: availability.NewService(availabilityRepo, locker, log),
		Appointments: appointment.NewService(appointmentRepo, locker, log),
		Timeslots:    timeslot.NewService(accountRepo, availabilityRepo, appointmentRepo),
		Issuer:       issuer,
		Health: api.NewHealthHandler(
			api.PingFunc(pgPool.Ping),
			api.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			cfg.Env, cfg.Version,
		),
		Logger:        log,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateRPS:   cfg.AuthRateRPS,
		AuthRateBurst: cfg.AuthRateBurst,
	})

	srv := newHTTPServer(cfg.HTTPPort, router)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newHTTPServer(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
