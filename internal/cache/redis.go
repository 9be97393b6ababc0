package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache stores entries in Redis with a TTL.
//
// Every key is prefixed with "portfolio:" so the site can share a Redis
// database with other apps. Values are opaque bytes; the caller decides the
// encoding (see repository/cached).
//
// The go-redis client keeps its own connection pool and is safe for
// concurrent use, so one RedisCache serves the whole process.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedis connects lazily; call Ping to verify the server is reachable.
func NewRedis(addr, password string, db int) *RedisCache {
	return newRedis(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisFromURL accepts redis:// and rediss:// URLs, for example
// "redis://:secret@localhost:6379/0". Use rediss:// for TLS.
func NewRedisFromURL(rawURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing redis url: %w", err)
	}
	return newRedis(opts), nil
}

func newRedis(opts *redis.Options) *RedisCache {
	return &RedisCache{client: redis.NewClient(opts), prefix: "portfolio:"}
}

// Ping checks the server is reachable. store.Open calls it once at startup
// and falls back to NoopCache when it fails.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Get returns (nil, false, nil) on a miss. redis.Nil is how go-redis
// reports a missing key; it is not an error here.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key. A zero ttl keeps the key until deleted.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
