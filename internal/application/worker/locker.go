package worker

import (
	"context"
	"time"

	"github.com/turtacn/TextCoder/internal/infrastructure/database/redis"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
)

// DefaultClaimTTL is how long a claimed job id stays claimed.
const DefaultClaimTTL = 24 * time.Hour

// RedisLocker claims job ids with a redis SET NX lock.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisLocker returns a RedisLocker. ttl <= 0 selects DefaultClaimTTL.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger logging.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Claim implements Locker.
func (l *RedisLocker) Claim(ctx context.Context, jobID string) (func(), bool, error) {
	m := redis.NewMutex(l.client, "job:"+jobID, l.logger, redis.WithLockTTL(l.ttl))
	ok, err := m.TryLock(ctx)
	if err != nil || !ok {
		return func() {}, false, err
	}
	return func() {
		if err := m.Unlock(context.Background()); err != nil {
			l.logger.Warn("failed to release job claim", logging.String("key", m.Key()), logging.Err(err))
		}
	}, true, nil
}

//Personal.AI order the ending
