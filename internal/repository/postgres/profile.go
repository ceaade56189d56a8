package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository"
)

// The patient_profiles table carries UNIQUE constraints on user_id and
// qr_code_id, so both lookup paths resolve to the same row and the QR
// identifier can never be claimed twice.
type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.PatientProfile) error {
	query := `
		INSERT INTO patient_profiles (
			id, user_id, qr_code_id, name, age, gender, blood_group,
			medical_conditions, allergies, current_medications,
			past_medical_history, additional_notes, emergency_contacts,
			doctor_info, address, phone_number, phone_country,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)
	`

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = profile.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.QRCodeID,
		profile.Name,
		profile.Age,
		profile.Gender,
		profile.BloodGroup,
		profile.MedicalConditions,
		profile.Allergies,
		profile.CurrentMedications,
		profile.PastMedicalHistory,
		profile.AdditionalNotes,
		profile.EmergencyContacts,
		profile.DoctorInfo,
		profile.Address,
		profile.PhoneNumber,
		profile.PhoneCountry,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateQRCode
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE user_id = $1`

	var profile model.PatientProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by user: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByQR(ctx context.Context, qrCodeID string) (*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE qr_code_id = $1`

	var profile model.PatientProfile
	if err := r.db.GetContext(ctx, &profile, query, qrCodeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by qr code: %w", err)
	}
	return &profile, nil
}

// Update persists every mutable field. The WHERE clause keys on both id
// and user_id, and qr_code_id is not in the SET list: the identifier
// written at creation is the one the row keeps for life.
func (r *profileRepository) Update(ctx context.Context, profile *model.PatientProfile) error {
	query := `
		UPDATE patient_profiles SET
			name = $1, age = $2, gender = $3, blood_group = $4,
			medical_conditions = $5, allergies = $6,
			current_medications = $7, past_medical_history = $8,
			additional_notes = $9, emergency_contacts = $10,
			doctor_info = $11, address = $12, phone_number = $13,
			phone_country = $14, updated_at = $15
		WHERE id = $16 AND user_id = $17
	`

	profile.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		profile.Name,
		profile.Age,
		profile.Gender,
		profile.BloodGroup,
		profile.MedicalConditions,
		profile.Allergies,
		profile.CurrentMedications,
		profile.PastMedicalHistory,
		profile.AdditionalNotes,
		profile.EmergencyContacts,
		profile.DoctorInfo,
		profile.Address,
		profile.PhoneNumber,
		profile.PhoneCountry,
		profile.UpdatedAt,
		profile.ID,
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
