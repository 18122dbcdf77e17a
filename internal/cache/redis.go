package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a token is not cached.
var ErrMiss = errors.New("token not cached")

const keyPrefix = "fairness:token:"

// TokenCache keeps verification tokens in Redis keyed by record ID.
type TokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// ParseOptions accepts a redis:// URL or a bare host:port.
func ParseOptions(url string) (*redis.Options, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	if !strings.Contains(url, "://") {
		return &redis.Options{Addr: url}, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return opts, nil
}

// NewTokenCache connects to Redis and checks the connection.
func NewTokenCache(ctx context.Context, url string, ttl time.Duration) (*TokenCache, error) {
	opts, err := ParseOptions(url)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TokenCache{client: client, ttl: ttl}, nil
}

func tokenKey(id uuid.UUID) string { return keyPrefix + id.String() }

// Put caches token for id. A zero TTL keeps it until evicted.
func (c *TokenCache) Put(ctx context.Context, id uuid.UUID, token string) error {
	if err := c.client.Set(ctx, tokenKey(id), token, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

// Get returns the cached token for id or ErrMiss.
func (c *TokenCache) Get(ctx context.Context, id uuid.UUID) (string, error) {
	token, err := c.client.Get(ctx, tokenKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached token: %w", err)
	}
	return token, nil
}

// Delete drops id from the cache.
func (c *TokenCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, tokenKey(id)).Err()
}

func (c *TokenCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *TokenCache) Close() error {
	return c.client.Close()
}
