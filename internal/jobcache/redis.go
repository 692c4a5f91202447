package jobcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alnah/go-docforge/internal/fileutil"
)

// redisOpTimeout bounds each cache operation so a slow Redis cannot stall
// the conversion worker pool.
const redisOpTimeout = 5 * time.Second

// RedisStore implements Store on Redis for multi-process deployments
// where several daemon instances share one dedup cache.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to addr and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	if prefix == "" {
		prefix = "docforge:job:"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Lookup fetches the artifact for key. Like FileStore, a record whose
// artifact is gone from disk is treated as a miss.
func (s *RedisStore) Lookup(ctx context.Context, key string) (string, bool) {
	opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	artifact, err := s.client.Get(opCtx, s.prefix+key).Result()
	if err != nil || artifact == "" {
		return "", false
	}
	if !fileutil.FileExists(artifact) {
		return "", false
	}
	return artifact, true
}

// Record stores the artifact path for key without expiry.
func (s *RedisStore) Record(ctx context.Context, key, artifact string) error {
	opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := s.client.Set(opCtx, s.prefix+key, artifact, 0).Err(); err != nil {
		return fmt.Errorf("writing cache record to redis: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
