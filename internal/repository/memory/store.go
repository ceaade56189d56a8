// Package memory implements the repositories over an in-process
// key-value store. It backs the single-node "local storage" deployment
// mode and doubles as the test substrate. Records are kept
// JSON-serialized, so readers can never alias a half-written struct.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository"
)

const (
	keyUserByID      = "user:"
	keyUserByEmail   = "users_by_email:"
	keyProfileByUser = "profile_by_user:"
	keyProfileByQR   = "profiles_by_qr:"
)

// Store is the shared KV substrate behind the memory repositories.
type Store struct {
	kv *gocache.Cache
}

func NewStore() *Store {
	return &Store{kv: gocache.New(gocache.NoExpiration, 0)}
}

func (s *Store) put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	s.kv.Set(key, data, gocache.NoExpiration)
	return nil
}

func (s *Store) get(key string, v interface{}) error {
	raw, found := s.kv.Get(key)
	if !found {
		return repository.ErrNotFound
	}
	return json.Unmarshal(raw.([]byte), v)
}

func (s *Store) raw(key string) ([]byte, bool) {
	v, found := s.kv.Get(key)
	if !found {
		return nil, false
	}
	return v.([]byte), true
}

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

// credentialRecord is the storage shape of a user. model.User hides the
// password hash from API encoding with json:"-", so persisting the
// model directly would drop the credential; this record carries it.
type credentialRecord struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRecord(user *model.User) *credentialRecord {
	return &credentialRecord{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (rec *credentialRecord) toModel() *model.User {
	return &model.User{
		ID:           rec.ID,
		Email:        rec.Email,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	if _, found := r.store.raw(keyUserByEmail + user.Email); found {
		return repository.ErrDuplicateEmail
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	rec := toRecord(user)
	if err := r.store.put(keyUserByEmail+user.Email, rec); err != nil {
		return err
	}
	return r.store.put(keyUserByID+user.ID.String(), rec)
}

func (r *userRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	var rec credentialRecord
	if err := r.store.get(keyUserByID+id.String(), &rec); err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	var rec credentialRecord
	if err := r.store.get(keyUserByEmail+email, &rec); err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

type profileRepository struct {
	store *Store
}

func NewProfileRepository(store *Store) repository.ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) Create(_ context.Context, profile *model.PatientProfile) error {
	if _, found := r.store.raw(keyProfileByQR + profile.QRCodeID); found {
		return repository.ErrDuplicateQRCode
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = profile.CreatedAt

	return r.register(profile)
}

func (r *profileRepository) GetByUser(_ context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	var profile model.PatientProfile
	if err := r.store.get(keyProfileByUser+userID.String(), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByQR(_ context.Context, qrCodeID string) (*model.PatientProfile, error) {
	var profile model.PatientProfile
	if err := r.store.get(keyProfileByQR+qrCodeID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(_ context.Context, profile *model.PatientProfile) error {
	var existing model.PatientProfile
	if err := r.store.get(keyProfileByUser+profile.UserID.String(), &existing); err != nil {
		return err
	}

	// The QR identifier written at creation is the one re-registered
	// on every update.
	profile.QRCodeID = existing.QRCodeID
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = time.Now()

	return r.register(profile)
}

// register writes the profile into both lookup paths and verifies they
// agree afterwards.
func (r *profileRepository) register(profile *model.PatientProfile) error {
	if err := r.store.put(keyProfileByUser+profile.UserID.String(), profile); err != nil {
		return err
	}
	if err := r.store.put(keyProfileByQR+profile.QRCodeID, profile); err != nil {
		return err
	}

	byUser, _ := r.store.raw(keyProfileByUser + profile.UserID.String())
	byQR, _ := r.store.raw(keyProfileByQR + profile.QRCodeID)
	if !bytes.Equal(byUser, byQR) {
		return repository.ErrIndexDivergence
	}
	return nil
}

// tokenStore is the in-process session denylist. Entries expire on
// their own once the underlying token would have expired anyway.
type tokenStore struct {
	kv *gocache.Cache
}

func NewTokenStore() repository.TokenStore {
	return &tokenStore{kv: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (s *tokenStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	s.kv.Set("revoked:"+token, true, ttl)
	return nil
}

func (s *tokenStore) IsRevoked(_ context.Context, token string) (bool, error) {
	_, found := s.kv.Get("revoked:" + token)
	return found, nil
}
