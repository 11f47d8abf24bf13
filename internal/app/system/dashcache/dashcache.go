// internal/app/system/dashcache/dashcache.go
// Package dashcache is a read-through cache of computed dashboards in Redis,
// one entry per analytics window. A nil *Cache is valid and caches nothing,
// so callers never need to check whether Redis is configured.
package dashcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratareview/internal/app/system/analytics"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every dashboard entry.
const KeyPrefix = "stratareview:dashboard:"

// DefaultTTL is used when Config.TTL is not positive.
const DefaultTTL = 5 * time.Minute

// Config describes the Redis connection. An empty Addr disables the cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache stores dashboards keyed by window.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// Connect dials Redis and verifies the connection. It returns a nil Cache
// and no error when cfg.Addr is empty.
func Connect(ctx context.Context, cfg Config, log *zap.Logger) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return New(rdb, cfg.TTL, log), nil
}

// New wraps an existing client.
func New(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// Key returns the Redis key for a window.
func Key(w analytics.Window) string {
	return KeyPrefix + string(w)
}

// Enabled reports whether the cache is backed by Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get returns the cached dashboard for w. Misses and decode failures both
// report ok=false.
func (c *Cache) Get(ctx context.Context, w analytics.Window) (*analytics.Dashboard, bool) {
	if !c.Enabled() {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, Key(w)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("dashboard cache read failed", zap.String("window", string(w)), zap.Error(err))
		}
		return nil, false
	}
	var d analytics.Dashboard
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		c.log.Warn("dashboard cache entry unreadable", zap.String("window", string(w)), zap.Error(err))
		return nil, false
	}
	return &d, true
}

// Set stores d under its window.
func (c *Cache) Set(ctx context.Context, d analytics.Dashboard) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(d)
	if err != nil {
		c.log.Warn("dashboard encode failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, Key(d.Window), data, c.ttl).Err(); err != nil {
		c.log.Warn("dashboard cache write failed", zap.String("window", string(d.Window)), zap.Error(err))
	}
}

// Invalidate drops every cached dashboard.
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the Redis client.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
