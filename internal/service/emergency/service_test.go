package emergency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medalert/ice-api/internal/cache"
	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository/memory"
	apperrors "github.com/medalert/ice-api/pkg/errors"
)

func TestResolveByQR(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProfileRepository(memory.NewStore())
	svc := NewService(repo, cache.NewMemoryProfileCache(time.Hour))

	profile := model.NewDefaultProfile(uuid.New(), "Ann")
	profile.BloodGroup = "O+"
	require.NoError(t, repo.Create(ctx, profile))

	got, err := svc.ResolveByQR(ctx, profile.QRCodeID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "O+", got.BloodGroup)
}

func TestResolveByQRUnknownIdentifier(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProfileRepository(memory.NewStore())
	svc := NewService(repo, cache.NewMemoryProfileCache(time.Hour))

	for _, id := range []string{"does-not-exist", "", "   ", "drop table users"} {
		_, err := svc.ResolveByQR(ctx, id)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok, "id %q", id)
		assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	}
}

func TestResolveByQRRepopulatesCache(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProfileRepository(memory.NewStore())
	qrCache := cache.NewMemoryProfileCache(time.Hour)
	svc := NewService(repo, qrCache)

	profile := model.NewDefaultProfile(uuid.New(), "Ann")
	require.NoError(t, repo.Create(ctx, profile))

	_, err := qrCache.Get(ctx, profile.QRCodeID)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	_, err = svc.ResolveByQR(ctx, profile.QRCodeID)
	require.NoError(t, err)

	cached, err := qrCache.Get(ctx, profile.QRCodeID)
	require.NoError(t, err)
	assert.Equal(t, profile.QRCodeID, cached.QRCodeID)
}

func TestResolveByQRWithRedisCache(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := memory.NewProfileRepository(memory.NewStore())
	qrCache := cache.NewRedisProfileCache(client, time.Hour)
	svc := NewService(repo, qrCache)

	profile := model.NewDefaultProfile(uuid.New(), "Ann")
	profile.Allergies = model.StringList{"Penicillin"}
	require.NoError(t, repo.Create(ctx, profile))

	first, err := svc.ResolveByQR(ctx, profile.QRCodeID)
	require.NoError(t, err)

	// second resolve is served from redis
	second, err := svc.ResolveByQR(ctx, profile.QRCodeID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, model.StringList{"Penicillin"}, second.Allergies)

	// a dead redis degrades to the repository, not to an error
	mr.Close()
	degraded, err := svc.ResolveByQR(ctx, profile.QRCodeID)
	require.NoError(t, err)
	assert.Equal(t, profile.QRCodeID, degraded.QRCodeID)
}
