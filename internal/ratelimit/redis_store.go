package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// takeScript keeps one sorted set per key scored by hit time in milliseconds.
var takeScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[4]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisStore shares the window log between processes. Keys expire with their
// window, so Sweep has nothing to do.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, error) {
	res, err := takeScript.Run(ctx, s.client, []string{s.prefix + key},
		now.UnixMilli(), now.Add(-window).UnixMilli(), window.Milliseconds(), max, uuid.NewString()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit take %s: %w", key, err)
	}
	return res == 1, nil
}

func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
