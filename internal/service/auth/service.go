package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medalert/ice-api/internal/email"
	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository"
	"github.com/medalert/ice-api/internal/validation"
	"github.com/medalert/ice-api/pkg/auth"
	apperrors "github.com/medalert/ice-api/pkg/errors"
	"github.com/medalert/ice-api/pkg/security"
)

// The three auth failures are deliberately distinct: the account form
// reports "no account" and "wrong password" separately, unlike the
// public resolver which never explains a miss.
var (
	ErrEmailTaken    = errors.New("an account with this email already exists")
	ErrNoSuchAccount = errors.New("no account found with this email")
	ErrWrongPassword = errors.New("incorrect password")
)

type Service struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	tokens   repository.TokenStore
	jwtSvc   auth.TokenService
	hasher   security.PasswordHasher
	emailSvc email.Service
	baseURL  string
}

func NewService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	tokens repository.TokenStore,
	jwtSvc auth.TokenService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	baseURL string,
) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		emailSvc: emailSvc,
		baseURL:  baseURL,
	}
}

// Register creates the credential, the account and its default profile
// with a fresh QR identifier, then signs the caller in.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if res := validation.ValidateEmail(req.Email); !res.Valid {
		return nil, apperrors.Validation(map[string]string{"email": res.Message})
	}
	if res := validation.ValidateName(req.Name); !res.Valid {
		return nil, apperrors.Validation(map[string]string{"name": res.Message})
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("password does not meet requirements", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict(ErrEmailTaken.Error(), err)
		}
		return nil, apperrors.Internal(err)
	}

	profile := model.NewDefaultProfile(user.ID, req.Name)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create default profile: %w", err))
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name, s.EmergencyURL(profile.QRCodeID)); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("welcome email not sent")
	}

	return &model.AuthResponse{User: user, Profile: profile, Tokens: tokens}, nil
}

// Login verifies the credential and resolves the owned profile, creating
// a default one for accounts that somehow predate profiles.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(ErrNoSuchAccount.Error(), err)
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(ErrWrongPassword.Error(), err)
	}

	profile, err := s.profiles.GetByUser(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
		profile = model.NewDefaultProfile(user.ID, defaultProfileName(user))
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to create profile at login: %w", err))
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.AuthResponse{User: user, Profile: profile, Tokens: tokens}, nil
}

// Logout revokes the presented access token for the remainder of its
// lifetime. Stored data is untouched.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtSvc.ValidateAccessToken(token)
	if err != nil {
		// Already unusable; nothing to revoke.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokens.Revoke(ctx, token, ttl); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to revoke token: %w", err))
	}
	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return tokens, nil
}

// ValidateToken checks signature, expiry and the logout denylist. Used
// by the auth middleware on every protected request.
func (s *Service) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// EmergencyURL builds the public resolution URL handed to the QR image
// renderer. The core never renders the image itself.
func (s *Service) EmergencyURL(qrCodeID string) string {
	return fmt.Sprintf("%s/emergency/%s", strings.TrimRight(s.baseURL, "/"), qrCodeID)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// defaultProfileName falls back to the email local part when the account
// has no display name.
func defaultProfileName(user *model.User) string {
	if user.Name != "" {
		return user.Name
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return user.Email
}
