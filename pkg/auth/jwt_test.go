package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() Config {
	return Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(newTestConfig())
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "a@x.com")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService(newTestConfig())
	userID := uuid.New()

	access, err := svc.GenerateAccessToken(userID, "a@x.com")
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(userID, "a@x.com")
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	cfg := newTestConfig()
	cfg.Expiry = -time.Minute
	svc := NewJWTService(cfg)

	token, err := svc.GenerateAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTamperedToken(t *testing.T) {
	svc := NewJWTService(newTestConfig())

	token, err := svc.GenerateAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecret(t *testing.T) {
	svc := NewJWTService(newTestConfig())
	other := NewJWTService(Config{Secret: "different", RefreshSecret: "also-different", Expiry: time.Hour, RefreshExpiry: time.Hour})

	token, err := svc.GenerateAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
