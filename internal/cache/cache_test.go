package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCacheAlwaysMisses(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "about", []byte(`{}`), time.Minute))

	val, ok, err := c.Get(ctx, "about")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.NoError(t, c.Delete(ctx, "about"))
}

func TestNewRedisFromURL(t *testing.T) {
	c, err := NewRedisFromURL("redis://:secret@localhost:6380/2")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	opts := c.client.Options()
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestNewRedisFromURL_Invalid(t *testing.T) {
	_, err := NewRedisFromURL("http://localhost:6379")
	assert.Error(t, err)
}
