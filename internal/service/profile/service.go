package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medalert/ice-api/internal/cache"
	"github.com/medalert/ice-api/internal/model"
	"github.com/medalert/ice-api/internal/repository"
	"github.com/medalert/ice-api/internal/validation"
	apperrors "github.com/medalert/ice-api/pkg/errors"
)

// ErrNoActiveProfile is returned when an update targets a user without
// a profile.
var ErrNoActiveProfile = errors.New("no active profile")

type Service struct {
	profiles repository.ProfileRepository
	qrCache  cache.ProfileCache
	baseURL  string
}

func NewService(profiles repository.ProfileRepository, qrCache cache.ProfileCache, baseURL string) *Service {
	return &Service{profiles: profiles, qrCache: qrCache, baseURL: baseURL}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("profile", err)
		}
		return nil, apperrors.Internal(err)
	}
	return profile, nil
}

// Update applies a partial patch over the stored profile. Field errors
// are collected and returned together; nothing is persisted unless the
// whole patch validates. The QR identifier cannot change here: the
// patch type has no field for it.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, patch *model.UpdateProfileRequest) (*model.PatientProfile, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BadRequest(ErrNoActiveProfile.Error(), err)
		}
		return nil, apperrors.Internal(err)
	}

	merged := *profile
	applyPatch(&merged, patch)

	if fieldErrs := validatePatch(patch, &merged); len(fieldErrs) > 0 {
		return nil, apperrors.Validation(fieldErrs)
	}

	assignContactIDs(merged.EmergencyContacts)

	if err := s.profiles.Update(ctx, &merged); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BadRequest(ErrNoActiveProfile.Error(), err)
		}
		return nil, apperrors.Internal(err)
	}

	s.propagate(ctx, &merged)
	return &merged, nil
}

// EmergencyLink returns the public resolution URL for the caller's own
// profile, ready to be fed into a QR image renderer.
func (s *Service) EmergencyLink(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/emergency/%s", strings.TrimRight(s.baseURL, "/"), profile.QRCodeID), nil
}

// propagate writes the updated record through to the QR cache so the
// public resolver and the repository never disagree. On a failed write
// the entry is dropped instead: a miss is safe, a stale hit is not.
func (s *Service) propagate(ctx context.Context, profile *model.PatientProfile) {
	if err := s.qrCache.Set(ctx, profile); err != nil {
		log.Warn().Err(err).Str("qr_code_id", profile.QRCodeID).Msg("qr cache write failed, invalidating")
		if err := s.qrCache.Invalidate(ctx, profile.QRCodeID); err != nil {
			log.Error().Err(err).Str("qr_code_id", profile.QRCodeID).Msg("qr cache invalidation failed")
		}
	}
}

func applyPatch(p *model.PatientProfile, patch *model.UpdateProfileRequest) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.Gender != nil {
		p.Gender = *patch.Gender
	}
	if patch.BloodGroup != nil {
		p.BloodGroup = *patch.BloodGroup
	}
	if patch.MedicalConditions != nil {
		p.MedicalConditions = model.StringList(*patch.MedicalConditions)
	}
	if patch.Allergies != nil {
		p.Allergies = model.StringList(*patch.Allergies)
	}
	if patch.CurrentMedications != nil {
		p.CurrentMedications = model.StringList(*patch.CurrentMedications)
	}
	if patch.PastMedicalHistory != nil {
		p.PastMedicalHistory = *patch.PastMedicalHistory
	}
	if patch.AdditionalNotes != nil {
		p.AdditionalNotes = *patch.AdditionalNotes
	}
	if patch.EmergencyContacts != nil {
		p.EmergencyContacts = model.ContactList(*patch.EmergencyContacts)
	}
	if patch.DoctorInfo != nil {
		p.DoctorInfo = model.DoctorJSON{DoctorInfo: *patch.DoctorInfo}
	}
	if patch.Address != nil {
		p.Address = model.AddressJSON{StructuredAddress: *patch.Address}
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = *patch.PhoneNumber
	}
	if patch.PhoneCountry != nil {
		p.PhoneCountry = *patch.PhoneCountry
	}
}

// validatePatch checks only what the patch touches, against the merged
// record (a contact must not duplicate the owner's number even when
// only one side changes in this request).
func validatePatch(patch *model.UpdateProfileRequest, merged *model.PatientProfile) map[string]string {
	errs := make(map[string]string)

	if patch.Name != nil {
		if res := validation.ValidateName(*patch.Name); !res.Valid {
			errs["name"] = res.Message
		}
	}
	// Age 0 is the "not provided" sentinel and skips validation.
	if patch.Age != nil && *patch.Age != 0 {
		if res := validation.ValidateAge(*patch.Age); !res.Valid {
			errs["age"] = res.Message
		}
	}
	if patch.BloodGroup != nil {
		if res := validation.ValidateBloodGroup(*patch.BloodGroup); !res.Valid {
			errs["blood_group"] = res.Message
		}
	}
	// Changing the country alone can invalidate the stored number, so
	// the merged pair is checked whenever either side moves.
	if (patch.PhoneNumber != nil || patch.PhoneCountry != nil) && merged.PhoneNumber != "" {
		if res := validation.ValidatePhone(merged.PhoneNumber, merged.PhoneCountry); !res.Valid {
			errs["phone_number"] = res.Message
		}
	}
	if patch.DoctorInfo != nil && patch.DoctorInfo.Phone != "" {
		if res := validation.ValidatePhone(patch.DoctorInfo.Phone, patch.DoctorInfo.CountryCode); !res.Valid {
			errs["doctor_info.phone"] = res.Message
		}
	}
	if patch.Address != nil && !patch.Address.IsZero() {
		for field, msg := range validation.ValidateAddress(*patch.Address) {
			errs["address."+field] = msg
		}
	}
	if patch.EmergencyContacts != nil {
		for i, contact := range *patch.EmergencyContacts {
			res := validation.ValidateEmergencyContact(
				contact.Phone, contact.CountryCode,
				merged.PhoneNumber, merged.PhoneCountry,
			)
			if !res.Valid {
				errs[fmt.Sprintf("emergency_contacts[%d].phone", i)] = res.Message
			}
		}
	}

	return errs
}

func assignContactIDs(contacts model.ContactList) {
	for i := range contacts {
		if contacts[i].ID == uuid.Nil {
			contacts[i].ID = uuid.New()
		}
	}
}
