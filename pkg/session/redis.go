package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter keeps sessions as JSON values with a server-side TTL. Redis
// expires them on its own, so the adapter never needs sweeping.
type RedisAdapter struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	keepTTL bool
}

// NewRedisAdapter creates a redis-backed session adapter. When keepTTL is
// set, rewriting a session's data keeps its remaining lifetime instead of
// resetting it.
func NewRedisAdapter(client redis.UniversalClient, prefix string, ttl time.Duration, keepTTL bool) *RedisAdapter {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisAdapter{client: client, prefix: prefix, ttl: ttl, keepTTL: keepTTL}
}

func (a *RedisAdapter) key(id string) string {
	return a.prefix + ":" + id
}

// Create persists a new session with a full TTL. Creating over a live
// session leaves it untouched.
func (a *RedisAdapter) Create(ctx context.Context, id string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := a.client.SetNX(ctx, a.key(id), payload, a.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Load returns the session data, or ErrSessionNotFound once redis has
// expired the key.
func (a *RedisAdapter) Load(ctx context.Context, id string) (map[string]any, error) {
	raw, err := a.client.Get(ctx, a.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return data, nil
}

// Persist replaces the session data. With keepTTL the remaining lifetime
// survives the write; otherwise the TTL is reset.
func (a *RedisAdapter) Persist(ctx context.Context, id string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	ttl := a.ttl
	if a.keepTTL {
		ttl = redis.KeepTTL
	}
	if err := a.client.Set(ctx, a.key(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Remove deletes the session.
func (a *RedisAdapter) Remove(ctx context.Context, id string) error {
	if err := a.client.Del(ctx, a.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Has reports whether the session key still exists.
func (a *RedisAdapter) Has(ctx context.Context, id string) (bool, error) {
	n, err := a.client.Exists(ctx, a.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
