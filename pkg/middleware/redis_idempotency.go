package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"roomly/pkg/logger"
)

const redisIdempotencyPrefix = "idempotency:"

// RedisIdempotencyStore shares cached responses across service
// instances, unlike the in-memory store which is per-process.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		rdb: rdb,
		ttl: ttl,
		log: log,
	}
}

func (s *RedisIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := s.rdb.Get(ctx, redisIdempotencyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Failed to read idempotency key from Redis", "key", key, "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("Failed to decode cached idempotency response", "key", key, "error", err)
		return nil, false
	}

	return &cached, true
}

func (s *RedisIdempotencyStore) Set(key string, response *CachedResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("Failed to encode idempotency response", "key", key, "error", err)
		return
	}

	if err := s.rdb.Set(ctx, redisIdempotencyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Failed to store idempotency key in Redis", "key", key, "error", err)
	}
}

// Stop is a no-op; the Redis connection is owned by the shared client.
func (s *RedisIdempotencyStore) Stop() {}
