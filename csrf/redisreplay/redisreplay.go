// Package redisreplay provides a redis backed csrf.ReplayCache.
//
// Cache lets several processes share one replay window: a token validated
// by any instance is rejected by all of them until its TTL elapses. Keys
// are SHA-256 digests of the token so raw tokens never reach redis.
package redisreplay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/JeanGrijp/csrfguard/csrf"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "csrf:replay:"

var _ csrf.ReplayCache = (*Cache)(nil)

// Cache is a redis backed replay cache.
type Cache struct {
	rdb     redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix sets the key prefix. Defaults to DefaultPrefix.
func WithPrefix(prefix string) Option {
	return Option(func(c *Cache) {
		c.prefix = prefix
	})
}

// WithTimeout bounds each redis round trip. Defaults to one second.
func WithTimeout(d time.Duration) Option {
	return Option(func(c *Cache) {
		c.timeout = d
	})
}

// New creates and returns a new Cache using rdb, which may be a single
// node, cluster or failover client.
func New(rdb redis.UniversalClient, opts ...Option) *Cache {
	c := &Cache{rdb: rdb, prefix: DefaultPrefix, timeout: time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAndRecord atomically stores the token with SET NX. The key is
// only created when absent, so a second caller sees replayed == true.
// Expiry is enforced by redis, not by now.
func (c *Cache) CheckAndRecord(token string, _ time.Time, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	created, err := c.rdb.SetNX(ctx, c.key(token), 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

func (c *Cache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}
