// Package xcache provides typed caches on top of eko/gocache, configurable
// as in-memory, redis or a two-level chain of both.
package xcache

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	redis "github.com/redis/go-redis/v9"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/recordhub/recordhub/internal/log"
	redis_store "github.com/recordhub/recordhub/internal/pkg/xcache/redis"
	"github.com/recordhub/recordhub/internal/pkg/xredis"
)

// Cache is the typed cache contract components depend on.
type Cache[T any] = cachelib.CacheInterface[T]

type SetterCache[T any] = cachelib.SetterCacheInterface[T]

type Option = store.Option

func WithExpiration(expiration time.Duration) Option {
	return store.WithExpiration(expiration)
}

// NewMemory creates an in-memory cache on patrickmn/go-cache.
func NewMemory[T any](client *gocache.Cache, options ...Option) SetterCache[T] {
	return cachelib.New[T](gocache_store.NewGoCache(client, options...))
}

// NewMemoryWithOptions builds the go-cache client from the given expiration
// and cleanup interval.
func NewMemoryWithOptions[T any](defaultExpiration, cleanupInterval time.Duration, options ...Option) SetterCache[T] {
	return NewMemory[T](gocache.New(defaultExpiration, cleanupInterval), options...)
}

// NewRedis creates a redis-backed cache with JSON-encoded values.
func NewRedis[T any](client *redis.Client, options ...Option) SetterCache[T] {
	return cachelib.New[T](redis_store.NewStore[T](client, options...))
}

// NewTwoLevel chains a memory cache in front of a redis cache.
func NewTwoLevel[T any](memory, redis SetterCache[T]) Cache[T] {
	return cachelib.NewChain[T](memory, redis)
}

// NewFromConfig builds a typed cache from configuration. An empty or unknown
// mode yields a noop cache so callers never need nil checks.
func NewFromConfig[T any](cfg Config) Cache[T] {
	if cfg.Mode == "" {
		return NewNoop[T]()
	}

	memExpiration := defaultIfZero(cfg.Memory.Expiration, 5*time.Minute)
	memCleanup := defaultIfZero(cfg.Memory.CleanupInterval, 10*time.Minute)

	mem := NewMemoryWithOptions[T](memExpiration, memCleanup, WithExpiration(memExpiration))

	var rds SetterCache[T]

	if (cfg.Redis.Addr != "" || cfg.Redis.URL != "") && cfg.Mode != ModeMemory {
		client, err := xredis.NewClient(cfg.Redis)
		if err != nil {
			panic(fmt.Errorf("failed to connect redis cache: %w", err))
		}

		rds = NewRedis[T](client, WithExpiration(defaultIfZero(cfg.Redis.Expiration, 30*time.Minute)))
	}

	switch cfg.Mode {
	case ModeTwoLevel:
		if rds != nil {
			log.Info(context.Background(), "using two-level cache")
			return NewTwoLevel[T](mem, rds)
		}

		return mem
	case ModeRedis:
		if rds == nil {
			panic(fmt.Errorf("redis cache config is invalid"))
		}

		log.Info(context.Background(), "using redis cache")

		return rds
	case ModeMemory:
		log.Info(context.Background(), "using memory cache")
		return mem
	default:
		log.Info(context.Background(), "cache disabled")
		return NewNoop[T]()
	}
}

func defaultIfZero(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}

	return d
}
