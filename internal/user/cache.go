package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SW2-receipt/SW-2-backend/internal/logger"
)

// CachedStore serves FindByID through Redis so the per-request
// authentication path does not hit Postgres on every call. Resolve
// writes through, so a login always refreshes the cached copy.
// Cache failures degrade to the underlying store, never to an error.
type CachedStore struct {
	store  Store
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedStore(store Store, client *redis.Client) *CachedStore {
	return &CachedStore{
		store:  store,
		client: client,
		prefix: "user:",
		ttl:    5 * time.Minute,
	}
}

func (c *CachedStore) key(id string) string {
	return c.prefix + id
}

func (c *CachedStore) Resolve(
	ctx context.Context,
	provider, oauthID, email, name string,
) (*User, error) {

	u, err := c.store.Resolve(ctx, provider, oauthID, email, name)
	if err != nil {
		return nil, err
	}
	c.set(ctx, u)
	return u, nil
}

func (c *CachedStore) FindByID(ctx context.Context, id string) (*User, error) {
	val, err := c.client.Get(ctx, c.key(id)).Result()
	if err == nil {
		var u User
		if err := json.Unmarshal([]byte(val), &u); err == nil {
			return &u, nil
		}
		// Unreadable entry: drop it and fall through.
		_ = c.client.Del(ctx, c.key(id)).Err()
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("user cache read failed", map[string]any{
			"error": err.Error(),
		})
	}

	u, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, u)
	return u, nil
}

func (c *CachedStore) set(ctx context.Context, u *User) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(u.ID), data, c.ttl).Err(); err != nil {
		logger.Warn("user cache write failed", map[string]any{
			"error": err.Error(),
		})
	}
}
