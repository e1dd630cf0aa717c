// Package redis adapts go-redis to the gocache store contract with
// JSON-encoded values, so typed caches can sit on top of it.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lib_store "github.com/eko/gocache/lib/v4/store"
	redis "github.com/redis/go-redis/v9"
)

// Client is the subset of the go-redis client the store needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Set(ctx context.Context, key string, values any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	FlushAll(ctx context.Context) *redis.StatusCmd
}

type Store[T any] struct {
	client  Client
	options *lib_store.Options
}

func NewStore[T any](client Client, options ...lib_store.Option) *Store[T] {
	return &Store[T]{
		client:  client,
		options: lib_store.ApplyOptions(options...),
	}
}

func keyString(key any) (string, error) {
	s, ok := key.(string)
	if !ok {
		return "", fmt.Errorf("expected string key, got %T", key)
	}

	return s, nil
}

func (s *Store[T]) Get(ctx context.Context, key any) (any, error) {
	value, _, err := s.GetWithTTL(ctx, key)
	return value, err
}

func (s *Store[T]) GetWithTTL(ctx context.Context, key any) (any, time.Duration, error) {
	var result T

	k, err := keyString(key)
	if err != nil {
		return result, 0, lib_store.NotFoundWithCause(err)
	}

	payload, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return result, 0, lib_store.NotFoundWithCause(err)
	}

	if err != nil {
		return result, 0, err
	}

	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		var zero T
		return zero, 0, err
	}

	ttl, err := s.client.TTL(ctx, k).Result()
	if err != nil {
		var zero T
		return zero, 0, err
	}

	return result, ttl, nil
}

func (s *Store[T]) Set(ctx context.Context, key any, value any, options ...lib_store.Option) error {
	opts := lib_store.ApplyOptionsWithDefault(s.options, options...)

	k, err := keyString(key)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, k, string(raw), opts.Expiration).Err()
}

func (s *Store[T]) Delete(ctx context.Context, key any) error {
	k, err := keyString(key)
	if err != nil {
		return err
	}

	return s.client.Del(ctx, k).Err()
}

func (s *Store[T]) Invalidate(ctx context.Context, options ...lib_store.InvalidateOption) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *Store[T]) Clear(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *Store[T]) GetType() string {
	return "redis"
}
