package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "2fa-attempts:"

// NewClient connects to cfg.RedisAddr and pings it.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// AttemptLimiter counts two-factor code submissions per email in a fixed window.
type AttemptLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewAttemptLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{redis: rdb, maxAttempts: maxAttempts, window: window}
}

// Allow records one attempt for key. It returns a domain.ErrRateLimited-wrapped
// error once the window holds more than maxAttempts. The window is created
// and counted in one MULTI so a counter can never outlive it.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) error {
	k := attemptKeyPrefix + key
	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, l.window)
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return fmt.Errorf("count attempts: %w: %w", domain.ErrStorage, err)
	}
	if incr.Val() > int64(l.maxAttempts) {
		return fmt.Errorf("too many attempts: %w", domain.ErrRateLimited)
	}
	return nil
}

// Reset clears the counter for key after a successful check.
func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, attemptKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w: %w", domain.ErrStorage, err)
	}
	return nil
}
