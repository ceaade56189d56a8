package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository"
)

const qrKeyPrefix = "profiles_by_qr:"

type redisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProfileCache builds a profile cache over an existing redis
// client. A zero TTL defaults to one hour.
func NewRedisProfileCache(client *redis.Client, ttl time.Duration) ProfileCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &redisProfileCache{client: client, ttl: ttl}
}

func (c *redisProfileCache) Get(ctx context.Context, qrCodeID string) (*model.PatientProfile, error) {
	data, err := c.client.Get(ctx, qrKeyPrefix+qrCodeID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read profile cache: %w", err)
	}

	var profile model.PatientProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode cached profile: %w", err)
	}
	return &profile, nil
}

func (c *redisProfileCache) Set(ctx context.Context, profile *model.PatientProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return c.client.Set(ctx, qrKeyPrefix+profile.QRCodeID, data, c.ttl).Err()
}

func (c *redisProfileCache) Invalidate(ctx context.Context, qrCodeID string) error {
	return c.client.Del(ctx, qrKeyPrefix+qrCodeID).Err()
}

type redisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore builds the session denylist over redis, shared by
// every instance behind the same deployment.
func NewRedisTokenStore(client *redis.Client) repository.TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.client.Set(ctx, "revoked:"+token, "1", ttl).Err()
}

func (s *redisTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, "revoked:"+token).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token denylist: %w", err)
	}
	return n > 0, nil
}
