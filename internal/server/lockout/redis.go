package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lockout:"

// RedisStore shares counters between instances. Failure counters expire
// after the cooldown, so failures spread out longer than that never lock.
type RedisStore struct {
	client   redis.UniversalClient
	max      int
	cooldown time.Duration
}

func NewRedisStore(client redis.UniversalClient, maxAttempts int, cooldown time.Duration) *RedisStore {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &RedisStore{client: client, max: maxAttempts, cooldown: cooldown}
}

func failKey(email string) string { return keyPrefix + "fail:" + email }
func lockKey(email string) string { return keyPrefix + "lock:" + email }

func (s *RedisStore) IsLocked(ctx context.Context, email string) (bool, time.Duration, error) {
	if s.max <= 0 {
		return false, 0, nil
	}
	ttl, err := s.client.PTTL(ctx, lockKey(email)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis error: %w", err)
	}
	if ttl > 0 {
		return true, ttl, nil
	}
	return false, 0, nil
}

func (s *RedisStore) RecordFailure(ctx context.Context, email string) error {
	if s.max <= 0 {
		return nil
	}

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, failKey(email))
		pipe.Expire(ctx, failKey(email), s.cooldown)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	if incr.Val() < int64(s.max) {
		return nil
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lockKey(email), 1, s.cooldown)
		pipe.Del(ctx, failKey(email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) RecordSuccess(ctx context.Context, email string) error {
	if s.max <= 0 {
		return nil
	}
	if err := s.client.Del(ctx, failKey(email)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
