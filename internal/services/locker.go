// Package services – pair locking
//
// This file provides the optional distributed lock the like ledger takes
// around a toggle when REDIS_URL is configured. Without it the ledger still
// relies on the unique (user_id, photo_id) index and compare-and-set updates.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PairLocker serializes work on a single (user, photo) pair.
type PairLocker interface {
	// Lock blocks until the pair is held or ctx ends. The returned func
	// releases the lock and is safe to call once.
	Lock(ctx context.Context, userID, photoID uint) (unlock func(), err error)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPairLocker implements PairLocker with SET NX PX and a token-checked
// release, so an expired holder can never delete a newer holder's lock.
type RedisPairLocker struct {
	Client redis.Cmdable
	// TTL bounds how long a crashed holder can block the pair.
	TTL time.Duration
	// Retry is the polling interval while the pair is held elsewhere.
	Retry time.Duration
}

// NewRedisPairLocker returns a locker with the given TTL and a 25ms retry.
func NewRedisPairLocker(c redis.Cmdable, ttl time.Duration) *RedisPairLocker {
	return &RedisPairLocker{Client: c, TTL: ttl, Retry: 25 * time.Millisecond}
}

func pairKey(userID, photoID uint) string {
	return fmt.Sprintf("like:%d:%d", userID, photoID)
}

// Lock implements PairLocker. A deadline or cancellation while waiting is
// reported as ErrLockTimeout.
func (l *RedisPairLocker) Lock(ctx context.Context, userID, photoID uint) (func(), error) {
	key := pairKey(userID, photoID)
	token := uuid.NewString()
	retry := l.Retry
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, ErrLockTimeout
			}
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			zerolog.Ctx(ctx).Warn().Str("lock", key).Msg("like lock wait timed out")
			return nil, ErrLockTimeout
		case <-time.After(retry):
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// The request context may already be done; release on a fresh one.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.Client, []string{key}, token).Err(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("lock", key).Msg("like lock release failed")
		}
	}, nil
}

// OpenRedis parses a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}
