package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medalert/ice-api/internal/model"
)

// memoryProfileCache serves deployments without redis. Same JSON
// round-trip as the redis cache so callers see identical copy
// semantics.
type memoryProfileCache struct {
	kv *gocache.Cache
}

func NewMemoryProfileCache(ttl time.Duration) ProfileCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &memoryProfileCache{kv: gocache.New(ttl, 10*time.Minute)}
}

func (c *memoryProfileCache) Get(_ context.Context, qrCodeID string) (*model.PatientProfile, error) {
	raw, found := c.kv.Get(qrKeyPrefix + qrCodeID)
	if !found {
		return nil, ErrCacheMiss
	}

	var profile model.PatientProfile
	if err := json.Unmarshal(raw.([]byte), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *memoryProfileCache) Set(_ context.Context, profile *model.PatientProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	c.kv.SetDefault(qrKeyPrefix+profile.QRCodeID, data)
	return nil
}

func (c *memoryProfileCache) Invalidate(_ context.Context, qrCodeID string) error {
	c.kv.Delete(qrKeyPrefix + qrCodeID)
	return nil
}
