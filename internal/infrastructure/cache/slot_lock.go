package cache

import (
	"context"
	"time"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const slotLockKeyPrefix = "booking:lock:"

// releaseLockScript deletes the key only if it still holds our token, so
// a lock that expired and was taken by another request is never released.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisSlotLocker is a SET NX PX lock shared by every API instance.
type RedisSlotLocker struct {
	client     *redis.Client
	log        *logrus.Logger
	retryEvery time.Duration
	maxWait    time.Duration
}

func NewRedisSlotLocker(client *redis.Client, log *logrus.Logger) *RedisSlotLocker {
	return &RedisSlotLocker{
		client:     client,
		log:        log,
		retryEvery: 50 * time.Millisecond,
		maxWait:    2 * time.Second,
	}
}

// Lock waits up to maxWait for the key, then gives up with ErrLockNotAcquired.
func (l *RedisSlotLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := slotLockKeyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, gateway.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryEvery):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseLockScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil {
			l.log.Warnf("Failed to release slot lock %s: %+v", fullKey, err)
		}
	}, nil
}
