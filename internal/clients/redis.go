package clients

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"naijayield/pkg/cache/redis"
)

const defaultRedisPrefix = "naijayield:"

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration

	Prefix string
}

// RedisClient namespaces every key under a prefix so several deployments
// can share one redis.
type RedisClient struct {
	raw    *redis.Client
	prefix string
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*RedisClient, error) {
	rdb, err := redis.NewRedisConnection(ctx, redis.ConnectionInfo{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	return &RedisClient{raw: rdb, prefix: prefix}, nil
}

// IsCacheMiss reports whether err means the key does not exist.
func IsCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (c *RedisClient) Close() {
	if c == nil || c.raw == nil {
		return
	}
	redis.Close(c.raw)
}

func (c *RedisClient) withPrefix(key string) string {
	return c.prefix + key
}

func (c *RedisClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.raw.Set(ctx, c.withPrefix(key), value, ttl).Err(); err != nil {
		return eris.Wrapf(err, "redis: set %s", key)
	}
	return nil
}

// Get returns a wrapped redis.Nil for a missing key; see IsCacheMiss.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	v, err := c.raw.Get(ctx, c.withPrefix(key)).Result()
	if err != nil {
		return "", eris.Wrapf(err, "redis: get %s", key)
	}
	return v, nil
}

func (c *RedisClient) Del(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.withPrefix(k)
	}
	if err := c.raw.Del(ctx, prefixed...).Err(); err != nil {
		return eris.Wrap(err, "redis: del")
	}
	return nil
}

func (c *RedisClient) SAdd(ctx context.Context, key string, members ...any) error {
	if err := c.raw.SAdd(ctx, c.withPrefix(key), members...).Err(); err != nil {
		return eris.Wrapf(err, "redis: sadd %s", key)
	}
	return nil
}

func (c *RedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.raw.SMembers(ctx, c.withPrefix(key)).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "redis: smembers %s", key)
	}
	return members, nil
}
