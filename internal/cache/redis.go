package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "addrlink"

// Options configures the redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// ErrMissingAddr indicates the redis address is not provided.
var ErrMissingAddr = errors.New("redis address is required")

// RedisCache is a namespaced byte cache backed by redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts Options) (*RedisCache, error) {
	if opts.Addr == "" {
		return nil, ErrMissingAddr
	}
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dialTimeout,
		ReadTimeout: readTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get returns the cached value; ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, namespaced(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, namespaced(key), value, ttl).Err()
}

// Probe checks redis reachability for health endpoints.
func (c *RedisCache) Probe(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func namespaced(key string) string {
	return keyPrefix + ":" + key
}
