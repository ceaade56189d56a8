package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medalert/ice-api/internal/email"
	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository/memory"
	pkgauth "github.com/medalert/ice-api/pkg/auth"
	apperrors "github.com/medalert/ice-api/pkg/errors"
	"github.com/medalert/ice-api/pkg/security"
)

func newTestService() *Service {
	store := memory.NewStore()
	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	return NewService(
		memory.NewUserRepository(store),
		memory.NewProfileRepository(store),
		memory.NewTokenStore(),
		jwtSvc,
		security.NewBcryptHasher(bcrypt.MinCost),
		email.NewNoopService(),
		"https://ice.example.com",
	)
}

func TestRegisterCreatesDefaultProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	resp, err := svc.Register(ctx, &model.RegisterRequest{
		Email:    "a@x.com",
		Password: "password1",
		Name:     "Ann",
	})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.NotEqual(t, "password1", resp.User.PasswordHash, "password must not be stored in clear")
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	profile := resp.Profile
	assert.Equal(t, resp.User.ID, profile.UserID)
	assert.Equal(t, "Ann", profile.Name)
	assert.Equal(t, 0, profile.Age)
	assert.Equal(t, model.GenderOther, profile.Gender)
	assert.Empty(t, profile.BloodGroup)
	assert.Empty(t, profile.Allergies)
	assert.Empty(t, profile.CurrentMedications)
	assert.Empty(t, profile.MedicalConditions)
	assert.Empty(t, profile.EmergencyContacts)
	assert.Equal(t, "IN", profile.PhoneCountry)
	assert.NotEmpty(t, profile.QRCodeID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, &model.RegisterRequest{Email: "a@x.com", Password: "password1", Name: "Ann"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &model.RegisterRequest{Email: "a@x.com", Password: "password2", Name: "Ben"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Equal(t, ErrEmailTaken.Error(), appErr.Message)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, &model.RegisterRequest{Email: "not-an-email", Password: "password1", Name: "Ann"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "email")

	_, err = svc.Register(ctx, &model.RegisterRequest{Email: "a@x.com", Password: "password1", Name: "Ann123"})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "name")
}

func TestLoginDistinguishesAccountAndPasswordErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, &model.RegisterRequest{Email: "a@x.com", Password: "password1", Name: "Ann"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "nobody@x.com", Password: "password1"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrNoSuchAccount.Error(), appErr.Message)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "a@x.com", Password: "wrong-password"})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrWrongPassword.Error(), appErr.Message)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
}

func TestLoginReturnsSameProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	reg, err := svc.Register(ctx, &model.RegisterRequest{Email: "a@x.com", Password: "password1", Name: "Ann"})
	require.NoError(t, err)

	login, err := svc.Login(ctx, &model.LoginRequest{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	assert.Equal(t, reg.Profile.QRCodeID, login.Profile.QRCodeID)
	assert.Equal(t, reg.Profile.ID, login.Profile.ID)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	resp, err := svc.Register(ctx, &model.RegisterRequest{Email: "a@x.com", Password: "password1", Name: "Ann"})
	require.NoError(t, err)
	token := resp.Tokens.AccessToken

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, pkgauth.ErrInvalidToken)
}

func TestLogoutWithGarbageTokenIsNoop(t *testing.T) {
	svc := newTestService()
	assert.NoError(t, svc.Logout(context.Background(), "not-a-jwt"))
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	resp, err := svc.Register(ctx, &model.RegisterRequest{Email: "a@x.com", Password: "password1", Name: "Ann"})
	require.NoError(t, err)

	tokens, err := svc.Refresh(ctx, resp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	// an access token is not a valid refresh token
	_, err = svc.Refresh(ctx, resp.Tokens.AccessToken)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestEmergencyURL(t *testing.T) {
	svc := newTestService()
	assert.Equal(t, "https://ice.example.com/emergency/abc-123", svc.EmergencyURL("abc-123"))
}
