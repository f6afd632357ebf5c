package bookings

import (
	"context"
	"fmt"
	"time"

	"venuely/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "venuely:booking_lock:"

// Locker serializes payment verification and webhook reconciliation for one
// booking across processes. The DB row lock already serializes within a
// transaction; this keeps the two entry points from even starting
// concurrently.
type Locker interface {
	Acquire(ctx context.Context, bookingID uuid.UUID) (release func(), err error)
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisLocker{client: client, ttl: ttl}
}

// checkAndDelete releases the lock only when the stored token is ours, so
// an expired lock re-acquired by another process is never deleted.
var checkAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *redisLocker) Acquire(ctx context.Context, bookingID uuid.UUID) (func(), error) {
	key := lockKeyPrefix + bookingID.String()
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	if !ok {
		return nil, apperr.Conflict("booking is being processed, try again")
	}

	release := func() {
		// Release is best effort; the TTL bounds a leaked lock
		_ = checkAndDelete.Run(context.Background(), l.client, []string{key}, token).Err()
	}
	return release, nil
}
