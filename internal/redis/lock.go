package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	ErrLockNotAcquired = errors.New("lock not acquired")
)

// Locker guards check-then-write sequences that must not interleave across API replicas.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// AvailabilityLockKey serialises availability writes of one doctor on one date.
func AvailabilityLockKey(doctorID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("lock:availability:%s:%s", doctorID, day.UTC().Format(time.DateOnly))
}

// BookingLockKey serialises bookings of one doctor at one start instant.
func BookingLockKey(doctorID uuid.UUID, start time.Time) string {
	return fmt.Sprintf("lock:booking:%s:%d", doctorID, start.UTC().Unix())
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisLocker creates a locker that holds one Redis key per critical section
func NewRedisLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (l *redisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		// the key expires after ttl anyway
		if err := l.release(context.WithoutCancel(ctx), key, token); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("lock release failed")
		}
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
