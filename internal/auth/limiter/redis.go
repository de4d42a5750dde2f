package limiter

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	dErrors "userdir/pkg/domain-errors"
)

const (
	attemptsKeyPrefix = "login:attempts:"
	lockKeyPrefix     = "login:lock:"
)

// Redis is a Limiter backed by Redis, for deployments running more than
// one instance. Window expiry is delegated to key TTLs: the attempts
// counter lives for the configured window and the lock key for the lock
// duration, so eviction needs no background sweeper.
type Redis struct {
	cfg    Config
	client redis.Cmdable
}

var _ Limiter = (*Redis)(nil)

// NewRedis builds a Redis-backed limiter on an established client.
func NewRedis(client redis.Cmdable, cfg Config) *Redis {
	return &Redis{cfg: cfg.withDefaults(), client: client}
}

func (r *Redis) Check(ctx context.Context, identifier, origin string) error {
	key := lockKeyPrefix + compositeKey(identifier, origin)
	err := r.client.Get(ctx, key).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "lockout check failed")
	default:
		return ErrLocked
	}
}

func (r *Redis) RecordFailure(ctx context.Context, identifier, origin string) (bool, error) {
	key := compositeKey(identifier, origin)

	count, err := r.client.Incr(ctx, attemptsKeyPrefix+key).Result()
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "recording failed attempt")
	}
	if count == 1 {
		if err := r.client.Expire(ctx, attemptsKeyPrefix+key, r.cfg.Window).Err(); err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "setting attempt window")
		}
	}
	if count < int64(r.cfg.MaxFailures) {
		return false, nil
	}

	if err := r.client.Set(ctx, lockKeyPrefix+key, "1", r.cfg.LockDuration).Err(); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "setting lockout")
	}
	if err := r.client.Del(ctx, attemptsKeyPrefix+key).Err(); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "resetting attempt counter")
	}
	return true, nil
}

func (r *Redis) Clear(ctx context.Context, identifier, origin string) error {
	key := compositeKey(identifier, origin)
	if err := r.client.Del(ctx, attemptsKeyPrefix+key, lockKeyPrefix+key).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("clearing lockout state for %s", key))
	}
	return nil
}
