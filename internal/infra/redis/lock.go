package redis

import (
	"context"
	"fmt"
	"time"

	"zoo-assistant/internal/domain"

	"github.com/google/uuid"
)

// Locker hands out expiring ownership tokens for keys.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type RedisLocker struct {
	cli RedisClient
}

func NewLocker(c RedisClient) *RedisLocker {
	return &RedisLocker{cli: c}
}

// TryLock makes a single acquisition attempt and retries only on transport
// errors. A key held by someone else yields domain.ErrJobLocked.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	for i := 0; i < 3; i++ {
		ok, err := l.cli.SetNX(ctx, key, token, ttl)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}
		if !ok {
			return "", domain.ErrJobLocked
		}
		return token, nil
	}
	return "", fmt.Errorf("acquire lock %s: %w", key, lastErr)
}

// Unlock releases the key only if token still owns it.
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.cli.DelIfEqual(ctx, key, token)
	return err
}

func JobLockKey(jobID string) string {
	return "job:lock:" + jobID
}
