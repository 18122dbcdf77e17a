package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = ParseOptions("redis://:secret@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = ParseOptions("")
	assert.Error(t, err)

	_, err = ParseOptions("http://localhost")
	assert.Error(t, err)
}

func TestTokenCacheRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	c, err := NewTokenCache(ctx, url, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	id := uuid.New()
	_, err = c.Get(ctx, id)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Put(ctx, id, "eyJyZXN1bHQiOjR9"))
	token, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "eyJyZXN1bHQiOjR9", token)

	require.NoError(t, c.Delete(ctx, id))
	_, err = c.Get(ctx, id)
	assert.ErrorIs(t, err, ErrMiss)
}
