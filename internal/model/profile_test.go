package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredAddressLegacyStringMigration(t *testing.T) {
	var a StructuredAddress
	require.NoError(t, json.Unmarshal([]byte(`"221B Baker Street, London"`), &a))
	assert.Equal(t, "221B Baker Street, London", a.Street)
	assert.Empty(t, a.City)
	assert.False(t, a.IsZero())
}

func TestStructuredAddressObjectForm(t *testing.T) {
	raw := `{"house_number":"12","street":"MG Road","city":"Bengaluru","state":"Karnataka","country":"IN","zip_code":"560001"}`

	var a StructuredAddress
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "12", a.HouseNumber)
	assert.Equal(t, "MG Road", a.Street)
	assert.Equal(t, "560001", a.ZipCode)
}

func TestProfileJSONCarriesLegacyAddress(t *testing.T) {
	// a record written by an older release, address still free text
	raw := `{"name":"Ann","address":"42 Old Lane, Springfield"}`

	var p PatientProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "42 Old Lane, Springfield", p.Address.Street)

	// re-encoding produces the structured form
	out, err := json.Marshal(&p)
	require.NoError(t, err)
	var again PatientProfile
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, p.Address, again.Address)
}

func TestJSONBScanValue(t *testing.T) {
	list := StringList{"Penicillin", "Latex"}
	v, err := list.Value()
	require.NoError(t, err)

	var back StringList
	require.NoError(t, back.Scan(v))
	assert.Equal(t, list, back)

	var fromString StringList
	require.NoError(t, fromString.Scan(`["Aspirin"]`))
	assert.Equal(t, StringList{"Aspirin"}, fromString)

	var fromNil StringList
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	assert.Error(t, new(StringList).Scan(42))
}

func TestNilListValueEncodesEmptyArray(t *testing.T) {
	var l StringList
	v, err := l.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v.([]byte)))

	var c ContactList
	cv, err := c.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(cv.([]byte)))
}

func TestContactListRoundTrip(t *testing.T) {
	list := ContactList{{
		ID:           uuid.New(),
		Name:         "Ben",
		Relationship: "brother",
		Phone:        "9123456780",
		CountryCode:  "IN",
	}}

	v, err := list.Value()
	require.NoError(t, err)

	var back ContactList
	require.NoError(t, back.Scan(v))
	assert.Equal(t, list, back)
}

func TestNewDefaultProfile(t *testing.T) {
	userID := uuid.New()
	p := NewDefaultProfile(userID, "Ann")

	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, 0, p.Age)
	assert.Equal(t, GenderOther, p.Gender)
	assert.Empty(t, p.BloodGroup)
	assert.NotNil(t, p.Allergies)
	assert.NotNil(t, p.EmergencyContacts)
	assert.Equal(t, "IN", p.PhoneCountry)
	assert.Equal(t, "IN", p.DoctorInfo.CountryCode)
	assert.True(t, p.Address.IsZero())
	assert.NotEmpty(t, p.QRCodeID)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	other := NewDefaultProfile(uuid.New(), "Ben")
	assert.NotEqual(t, p.QRCodeID, other.QRCodeID)
}
