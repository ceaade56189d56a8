package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medalert/ice-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup misses.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a credential already exists
	// for the email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateQRCode is returned when a profile write would reuse
	// an existing QR identifier.
	ErrDuplicateQRCode = errors.New("qr code id already registered")
	// ErrIndexDivergence means the by-user and by-QR lookup paths no
	// longer reference the same record. Treated as fatal, never retried.
	ErrIndexDivergence = errors.New("profile index divergence")
)

// UserRepository owns account credentials, keyed by email.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProfileRepository owns patient profiles and keeps the by-user and
// by-QR lookup paths consistent: after any write both must reference
// the same stored record.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.PatientProfile) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error)
	GetByQR(ctx context.Context, qrCodeID string) (*model.PatientProfile, error)
	Update(ctx context.Context, profile *model.PatientProfile) error
}

// TokenStore is the session token denylist consulted on every
// authenticated request after a logout.
type TokenStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
