package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	user := &model.User{Email: "ann@example.com", Name: "Ann", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEqual(t, uuid.Nil, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", byID.Email)

	// email uniqueness is enforced at the storage layer
	err = repo.Create(ctx, &model.User{Email: "ann@example.com", Name: "Other"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryKeepsPasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	// model.User hides the hash from API encoding; the store must keep
	// it anyway or every sign-in would fail on this driver.
	user := &model.User{Email: "ann@example.com", Name: "Ann", PasswordHash: "bcrypt-hash"}
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash", byEmail.PasswordHash, "password hash must survive storage")

	byID, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash", byID.PasswordHash)
}

func TestProfileRepositoryCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(NewStore())

	profile := model.NewDefaultProfile(uuid.New(), "Ann")
	require.NoError(t, repo.Create(ctx, profile))

	byUser, err := repo.GetByUser(ctx, profile.UserID)
	require.NoError(t, err)
	byQR, err := repo.GetByQR(ctx, profile.QRCodeID)
	require.NoError(t, err)
	assert.Equal(t, byUser, byQR)

	_, err = repo.GetByQR(ctx, "does-not-exist")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileRepositoryRejectsDuplicateQRCode(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(NewStore())

	first := model.NewDefaultProfile(uuid.New(), "Ann")
	require.NoError(t, repo.Create(ctx, first))

	second := model.NewDefaultProfile(uuid.New(), "Ben")
	second.QRCodeID = first.QRCodeID
	assert.ErrorIs(t, repo.Create(ctx, second), repository.ErrDuplicateQRCode)
}

func TestProfileRepositoryUpdateKeepsIndicesConsistent(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(NewStore())

	profile := model.NewDefaultProfile(uuid.New(), "Ann")
	require.NoError(t, repo.Create(ctx, profile))

	updated := *profile
	updated.Allergies = model.StringList{"Penicillin"}
	updated.Name = "Ann Smith"
	require.NoError(t, repo.Update(ctx, &updated))

	byUser, err := repo.GetByUser(ctx, profile.UserID)
	require.NoError(t, err)
	byQR, err := repo.GetByQR(ctx, profile.QRCodeID)
	require.NoError(t, err)

	assert.Equal(t, byUser, byQR)
	assert.Equal(t, "Ann Smith", byQR.Name)
	assert.Equal(t, model.StringList{"Penicillin"}, byQR.Allergies)
}

func TestProfileRepositoryUpdateIgnoresQRCodeChange(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(NewStore())

	profile := model.NewDefaultProfile(uuid.New(), "Ann")
	require.NoError(t, repo.Create(ctx, profile))
	originalQR := profile.QRCodeID

	tampered := *profile
	tampered.QRCodeID = "attacker-chosen"
	require.NoError(t, repo.Update(ctx, &tampered))

	assert.Equal(t, originalQR, tampered.QRCodeID)

	byUser, err := repo.GetByUser(ctx, profile.UserID)
	require.NoError(t, err)
	assert.Equal(t, originalQR, byUser.QRCodeID)

	_, err = repo.GetByQR(ctx, "attacker-chosen")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileRepositoryUpdateWithoutProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(NewStore())

	orphan := model.NewDefaultProfile(uuid.New(), "Nobody")
	assert.ErrorIs(t, repo.Update(ctx, orphan), repository.ErrNotFound)
}

func TestProfileRepositoryEmptyUpdateOnlyTouchesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(NewStore())

	profile := model.NewDefaultProfile(uuid.New(), "Ann")
	require.NoError(t, repo.Create(ctx, profile))

	before, err := repo.GetByUser(ctx, profile.UserID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	unchanged := *before
	require.NoError(t, repo.Update(ctx, &unchanged))

	after, err := repo.GetByUser(ctx, profile.UserID)
	require.NoError(t, err)

	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)
}

func TestQRCodeIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := model.NewQRCodeID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate qr code id after %d generations", i)
		seen[id] = struct{}{}
	}
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "token-a", time.Minute))

	revoked, err = store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)
}
