package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/chynybekuuludastan/content_studio/internal/settings"
)

const (
	// KeyPrefixSettings prefixes cached setting values
	KeyPrefixSettings = "settings:"

	// DefaultTTL for cached items
	DefaultTTL = 10 * time.Minute
)

// cachedValue keeps "never set" distinct from an empty value
type cachedValue struct {
	Value string `json:"v"`
	OK    bool   `json:"ok"`
}

// CachedStore is a read-through Redis cache in front of a settings.Store.
// A nil client disables caching and every call goes to the backing store.
type CachedStore struct {
	client *redis.Client
	next   settings.Store
	scope  string
	ttl    time.Duration
}

// NewCachedStore wraps next. scope namespaces the keys, usually a user ID.
func NewCachedStore(client *redis.Client, next settings.Store, scope string, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedStore{client: client, next: next, scope: scope, ttl: ttl}
}

// Key returns the Redis key holding a cached setting
func Key(scope, key string) string {
	return KeyPrefixSettings + scope + ":" + key
}

func (s *CachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.client == nil {
		return s.next.Get(ctx, key)
	}

	cacheKey := Key(s.scope, key)
	data, err := s.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var cached cachedValue
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return cached.Value, cached.OK, nil
		}
	} else if err != redis.Nil {
		// Redis trouble degrades to the backing store
		return s.next.Get(ctx, key)
	}

	value, ok, err := s.next.Get(ctx, key)
	if err != nil {
		return "", false, err
	}

	if data, err := json.Marshal(cachedValue{Value: value, OK: ok}); err == nil {
		s.client.Set(ctx, cacheKey, data, s.ttl)
	}
	return value, ok, nil
}

// Set writes through to the backing store and drops the cached entry
func (s *CachedStore) Set(ctx context.Context, key, value string) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		return err
	}
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, Key(s.scope, key)).Err(); err != nil {
		return fmt.Errorf("invalidate cached setting %q: %w", key, err)
	}
	return nil
}

// Invalidate removes every cached setting of scope
func Invalidate(ctx context.Context, client *redis.Client, scope string) error {
	if client == nil {
		return nil
	}
	iter := client.Scan(ctx, 0, KeyPrefixSettings+scope+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
