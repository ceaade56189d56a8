// Package emergency is the public, unauthenticated resolution path: a
// scanned QR code lands here with nothing but the profile identifier.
package emergency

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/medalert/ice-api/internal/cache"
	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository"
	apperrors "github.com/medalert/ice-api/pkg/errors"
)

// ErrProfileNotFound covers every miss. Malformed and unregistered
// identifiers are indistinguishable to the caller.
var ErrProfileNotFound = errors.New("profile not found")

type Service struct {
	profiles repository.ProfileRepository
	qrCache  cache.ProfileCache
}

func NewService(profiles repository.ProfileRepository, qrCache cache.ProfileCache) *Service {
	return &Service{profiles: profiles, qrCache: qrCache}
}

// ResolveByQR returns the profile registered under the QR identifier,
// consulting the cache before the repository and repopulating it on a
// repository hit.
func (s *Service) ResolveByQR(ctx context.Context, qrCodeID string) (*model.PatientProfile, error) {
	if profile, err := s.qrCache.Get(ctx, qrCodeID); err == nil {
		return profile, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Msg("qr cache read failed, falling back to store")
	}

	profile, err := s.profiles.GetByQR(ctx, qrCodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("profile", ErrProfileNotFound)
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.qrCache.Set(ctx, profile); err != nil {
		log.Warn().Err(err).Msg("qr cache repopulation failed")
	}

	return profile, nil
}
