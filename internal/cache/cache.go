// Package cache is a small byte-oriented key/value cache used to keep hot
// content documents out of the repository on every page view.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values with a time-to-live. Get reports a miss with
// ok == false and a nil error; errors are reserved for the backend failing.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NoopCache never holds anything. It is used when no Redis is configured.
type NoopCache struct{}

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NoopCache) Delete(context.Context, string) error {
	return nil
}
