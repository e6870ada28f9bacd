package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

// Option configures a cache implementation.
type Option func(*options)

type options struct {
	prefix          string
	maxSize         int
	cleanupInterval time.Duration
	defaultTTL      time.Duration
}

func defaultOptions() *options {
	return &options{
		prefix:          "marketclose",
		maxSize:         256,
		cleanupInterval: 5 * time.Minute,
		defaultTTL:      7 * 24 * time.Hour,
	}
}

// WithPrefix namespaces every key of a Redis cache.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithMaxSize bounds the number of entries of a memory cache.
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithCleanupInterval sets how often a memory cache drops expired entries.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

// WithDefaultTTL is used when Set is called with a non-positive expiration.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.defaultTTL = d
		}
	}
}
