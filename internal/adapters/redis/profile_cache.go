package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

const profilePrefix = "profile:"

// ProfileCache keeps short-lived profile snapshots so hot paths don't
// hit the document store on every request. Misses are not errors.
type ProfileCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.ProfileCache = (*ProfileCache)(nil)

// NewProfileCache creates a cache with the given snapshot TTL.
func NewProfileCache(client redis.UniversalClient, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ProfileCache{client: client, prefix: profilePrefix, ttl: ttl}
}

func (c *ProfileCache) Get(ctx context.Context, uid string) (domainauth.Profile, bool, error) {
	if uid == "" {
		return domainauth.Profile{}, false, errors.New("uid cannot be empty")
	}

	data, err := c.client.Get(ctx, c.prefix+uid).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Profile{}, false, nil
		}
		return domainauth.Profile{}, false, fmt.Errorf("redis get: %w", err)
	}

	var profile domainauth.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		// A corrupt entry behaves like a miss; the caller refills it.
		return domainauth.Profile{}, false, nil
	}
	return profile, true, nil
}

func (c *ProfileCache) Put(ctx context.Context, profile domainauth.Profile) error {
	if profile.UID == "" {
		return errors.New("profile UID cannot be empty")
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+profile.UID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *ProfileCache) Invalidate(ctx context.Context, uid string) error {
	if uid == "" {
		return nil
	}
	if err := c.client.Del(ctx, c.prefix+uid).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
