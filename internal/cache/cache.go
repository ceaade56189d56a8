// Package cache holds the ephemeral stores sitting beside the primary
// repositories: the QR resolution cache consulted by the public
// emergency endpoint, and the redis-backed session denylist.
package cache

import (
	"context"
	"errors"

	"github.com/medalert/ice-api/internal/model"
)

// ErrCacheMiss is returned when the QR identifier is not cached.
var ErrCacheMiss = errors.New("cache miss")

// ProfileCache caches profiles keyed by QR identifier. Set is called on
// every profile write so the cache never serves a stale record for
// longer than the TTL.
type ProfileCache interface {
	Get(ctx context.Context, qrCodeID string) (*model.PatientProfile, error)
	Set(ctx context.Context, profile *model.PatientProfile) error
	Invalidate(ctx context.Context, qrCodeID string) error
}
