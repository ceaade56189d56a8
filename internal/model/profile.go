package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// BloodGroups lists the accepted blood group values. Empty means not
// provided yet.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-", ""}

// EmergencyContact is a person to call when the profile owner cannot
// respond. IDs are unique within the owning profile.
type EmergencyContact struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	Phone        string    `json:"phone"`
	CountryCode  string    `json:"country_code"`
}

type DoctorInfo struct {
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	Phone       string `json:"phone"`
	Hospital    string `json:"hospital"`
	CountryCode string `json:"country_code"`
}

// StructuredAddress is the normalized postal address form. Earlier
// releases stored the address as one free-text string; UnmarshalJSON
// migrates that legacy form by placing the whole value in Street.
type StructuredAddress struct {
	HouseNumber string `json:"house_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	ZipCode     string `json:"zip_code"`
}

func (a *StructuredAddress) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		*a = StructuredAddress{Street: legacy}
		return nil
	}

	type plain StructuredAddress
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = StructuredAddress(p)
	return nil
}

func (a StructuredAddress) IsZero() bool {
	return a == StructuredAddress{}
}

// PatientProfile is the emergency profile resolved through the public QR
// identifier. QRCodeID is generated once at creation and never changes.
type PatientProfile struct {
	ID                 uuid.UUID         `json:"id" db:"id"`
	UserID             uuid.UUID         `json:"user_id" db:"user_id"`
	QRCodeID           string            `json:"qr_code_id" db:"qr_code_id"`
	Name               string            `json:"name" db:"name"`
	Age                int               `json:"age" db:"age"`
	Gender             Gender            `json:"gender" db:"gender"`
	BloodGroup         string            `json:"blood_group" db:"blood_group"`
	MedicalConditions  StringList        `json:"medical_conditions" db:"medical_conditions"`
	Allergies          StringList        `json:"allergies" db:"allergies"`
	CurrentMedications StringList        `json:"current_medications" db:"current_medications"`
	PastMedicalHistory string            `json:"past_medical_history" db:"past_medical_history"`
	AdditionalNotes    string            `json:"additional_notes" db:"additional_notes"`
	EmergencyContacts  ContactList       `json:"emergency_contacts" db:"emergency_contacts"`
	DoctorInfo         DoctorJSON        `json:"doctor_info" db:"doctor_info"`
	Address            AddressJSON       `json:"address" db:"address"`
	PhoneNumber        string            `json:"phone_number" db:"phone_number"`
	PhoneCountry       string            `json:"phone_country" db:"phone_country"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`
}

// NewDefaultProfile builds the empty profile bound to a fresh account.
// Age 0 means "not provided"; country defaults follow the original
// product's primary market.
func NewDefaultProfile(userID uuid.UUID, name string) *PatientProfile {
	now := time.Now()
	return &PatientProfile{
		ID:                 uuid.New(),
		UserID:             userID,
		QRCodeID:           NewQRCodeID(),
		Name:               name,
		Age:                0,
		Gender:             GenderOther,
		BloodGroup:         "",
		MedicalConditions:  StringList{},
		Allergies:          StringList{},
		CurrentMedications: StringList{},
		EmergencyContacts:  ContactList{},
		DoctorInfo:         DoctorJSON{DoctorInfo: DoctorInfo{CountryCode: "IN"}},
		Address:            AddressJSON{},
		PhoneCountry:       "IN",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// NewQRCodeID returns a fresh public profile identifier.
func NewQRCodeID() string {
	return uuid.New().String()
}

// UpdateProfileRequest is the patch applied over an existing profile.
// Nil fields are left untouched. ID, UserID, QRCodeID and CreatedAt are
// deliberately absent: they cannot be changed through an update.
type UpdateProfileRequest struct {
	Name               *string             `json:"name"`
	Age                *int                `json:"age"`
	Gender             *Gender             `json:"gender" binding:"omitempty,gender"`
	BloodGroup         *string             `json:"blood_group" binding:"omitempty,bloodgroup"`
	MedicalConditions  *[]string           `json:"medical_conditions"`
	Allergies          *[]string           `json:"allergies"`
	CurrentMedications *[]string           `json:"current_medications"`
	PastMedicalHistory *string             `json:"past_medical_history"`
	AdditionalNotes    *string             `json:"additional_notes"`
	EmergencyContacts  *[]EmergencyContact `json:"emergency_contacts"`
	DoctorInfo         *DoctorInfo         `json:"doctor_info"`
	Address            *StructuredAddress  `json:"address"`
	PhoneNumber        *string             `json:"phone_number"`
	PhoneCountry       *string             `json:"phone_country"`
}

// StringList is an ordered list of free-text entries stored as JSONB.
// Duplicates are allowed and insertion order is the display order.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// ContactList stores emergency contacts as JSONB.
type ContactList []EmergencyContact

func (l ContactList) Value() (driver.Value, error) {
	if l == nil {
		l = ContactList{}
	}
	return json.Marshal(l)
}

func (l *ContactList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// DoctorJSON wraps DoctorInfo for JSONB storage.
type DoctorJSON struct {
	DoctorInfo
}

func (d DoctorJSON) Value() (driver.Value, error) {
	return json.Marshal(d.DoctorInfo)
}

func (d *DoctorJSON) Scan(src interface{}) error {
	return scanJSON(src, &d.DoctorInfo)
}

func (d DoctorJSON) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.DoctorInfo)
}

func (d *DoctorJSON) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.DoctorInfo)
}

// AddressJSON wraps StructuredAddress for JSONB storage, carrying the
// legacy free-text migration with it.
type AddressJSON struct {
	StructuredAddress
}

func (a AddressJSON) Value() (driver.Value, error) {
	return json.Marshal(a.StructuredAddress)
}

func (a *AddressJSON) Scan(src interface{}) error {
	return scanJSON(src, &a.StructuredAddress)
}

func (a AddressJSON) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.StructuredAddress)
}

func (a *AddressJSON) UnmarshalJSON(data []byte) error {
	return a.StructuredAddress.UnmarshalJSON(data)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}
