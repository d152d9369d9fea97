package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/medbook/internal/config"
)

func TestDataPool_TakeRemoves(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dp := &DataPool{}

	_, ok := dp.TakeCandidate(rng)
	assert.False(t, ok)

	doctor := uuid.New()
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	dp.AddCandidates([]candidate{
		{DoctorID: doctor, Start: start, End: start.Add(30 * time.Minute)},
		{DoctorID: doctor, Start: start.Add(time.Hour), End: start.Add(90 * time.Minute)},
	})

	seen := map[time.Time]bool{}
	for i := 0; i < 2; i++ {
		c, ok := dp.TakeCandidate(rng)
		require.True(t, ok)
		seen[c.Start] = true
	}
	assert.Len(t, seen, 2)

	_, ok = dp.TakeCandidate(rng)
	assert.False(t, ok)
}

func TestDataPool_CapsCandidates(t *testing.T) {
	dp := &DataPool{}
	batch := make([]candidate, 3000)
	dp.AddCandidates(batch)
	dp.AddCandidates(batch)
	assert.Len(t, dp.candidates, 5000)
}

func TestDataPool_Appointments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dp := &DataPool{}

	id := uuid.New()
	dp.AddAppointment(booked{ID: id, Token: "t"})

	b, ok := dp.TakeAppointment(rng)
	require.True(t, ok)
	assert.Equal(t, id, b.ID)

	_, ok = dp.TakeAppointment(rng)
	assert.False(t, ok)
}

func TestLoadConfig_NormalizesRatios(t *testing.T) {
	t.Setenv("SIM_SEARCH_RATIO", "2")
	t.Setenv("SIM_BOOKING_RATIO", "1")
	t.Setenv("SIM_CANCEL_RATIO", "1")
	t.Setenv("SIM_LIST_RATIO", "0")

	cfg := loadConfig(config.Config{PostgresDSN: "postgres://x", JWTSecret: "s"})
	assert.InDelta(t, 0.5, cfg.SearchRatio, 1e-9)
	assert.InDelta(t, 0.25, cfg.BookingRatio, 1e-9)
	assert.InDelta(t, 0.25, cfg.CancelRatio, 1e-9)
	assert.Zero(t, cfg.ListRatio)
	assert.NoError(t, validateConfig(cfg))

	cfg.Workers = 0
	assert.Error(t, validateConfig(cfg))
}
