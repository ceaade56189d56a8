// Package validation holds the pure, table-driven field validators used
// by profile submissions. Every validator returns a Result (or a map of
// field messages) instead of an error so the caller can aggregate all
// problems in one pass.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/medalert/ice-api/internal/model"
)

// Result is the outcome of a single field validation.
type Result struct {
	Valid   bool
	Message string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(format string, args ...interface{}) Result {
	return Result{Valid: false, Message: fmt.Sprintf(format, args...)}
}

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	phoneClean = strings.NewReplacer(" ", "", "-", "")
)

// ValidatePhone checks a local phone number against the owning country's
// digit rules. Spaces and dashes are stripped before matching.
func ValidatePhone(phone, countryCode string) Result {
	country, found := CountryByCode(countryCode)
	if !found {
		return fail("Please select a country")
	}

	cleaned := phoneClean.Replace(phone)
	if cleaned == "" {
		return fail("Phone number is required")
	}

	if !country.PhoneRegex.MatchString(cleaned) {
		return fail("Invalid phone number for %s. Expected %d digits.", country.Name, country.PhoneLength)
	}

	return ok()
}

// ValidateZipCode checks a postal code against the country's pattern.
// Countries without a defined pattern accept any non-blank value; the
// postal-optional country accepts blank too.
func ValidateZipCode(zipCode, countryCode string) Result {
	trimmed := strings.TrimSpace(zipCode)

	pattern, found := zipPatterns[countryCode]
	if !found {
		if trimmed == "" {
			return fail("ZIP/Postal code is required")
		}
		return ok()
	}

	if trimmed == "" {
		if countryCode == postalOptionalCountry {
			return ok()
		}
		return fail("ZIP/Postal code is required")
	}

	if !pattern.Regex.MatchString(trimmed) {
		return fail("Invalid format. Example: %s", pattern.Example)
	}

	return ok()
}

func ValidateEmail(email string) Result {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return fail("Email is required")
	}

	if !emailRegex.MatchString(trimmed) {
		return fail("Please enter a valid email address")
	}

	return ok()
}

// ValidateAge accepts the closed range [1,120]. Callers treat exactly 0
// as "not yet provided" and skip validation entirely.
func ValidateAge(age int) Result {
	if age < 0 {
		return fail("Please enter a valid age")
	}
	if age < 1 {
		return fail("Age must be at least 1")
	}
	if age > 120 {
		return fail("Please enter a realistic age (1-120)")
	}
	return ok()
}

// ValidateAgeInput parses free-form age input before range checking.
func ValidateAgeInput(age string) Result {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err != nil {
		return fail("Please enter a valid age")
	}
	return ValidateAge(n)
}

func ValidateName(name string) Result {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fail("Name is required")
	}
	if len(trimmed) < 2 {
		return fail("Name must be at least 2 characters")
	}
	if len(trimmed) > 100 {
		return fail("Name must be less than 100 characters")
	}
	if !nameRegex.MatchString(trimmed) {
		return fail("Name can only contain letters, spaces, hyphens, and apostrophes")
	}
	return ok()
}

// ValidateAddress checks every structured address field and returns a
// map of field name to message. An empty map means the address is valid.
func ValidateAddress(addr model.StructuredAddress) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(addr.HouseNumber) == "" {
		errs["house_number"] = "House/Flat number is required"
	}
	if strings.TrimSpace(addr.Street) == "" {
		errs["street"] = "Street/Area is required"
	}
	if strings.TrimSpace(addr.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(addr.State) == "" {
		errs["state"] = "State/Province is required"
	}
	if addr.Country == "" {
		errs["country"] = "Country is required"
	} else if res := ValidateZipCode(addr.ZipCode, addr.Country); !res.Valid {
		errs["zip_code"] = res.Message
	}

	return errs
}

// FormatAddress joins the non-blank address parts for display. The
// country code is replaced with its display name when known.
func FormatAddress(addr model.StructuredAddress) string {
	countryName := addr.Country
	if c, found := CountryByCode(addr.Country); found {
		countryName = c.Name
	}

	parts := []string{
		addr.HouseNumber,
		addr.Street,
		addr.City,
		addr.State,
		countryName,
		addr.ZipCode,
	}

	nonBlank := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonBlank = append(nonBlank, p)
		}
	}

	return strings.Join(nonBlank, ", ")
}

// ValidateEmergencyContact validates a contact's phone and rejects a
// number that, once dial-code-normalized, equals the owner's own number.
func ValidateEmergencyContact(contactPhone, contactCountry, ownerPhone, ownerCountry string) Result {
	res := ValidatePhone(contactPhone, contactCountry)
	if !res.Valid {
		return res
	}

	if ownerPhone != "" && ownerCountry != "" {
		if normalizeNumber(contactPhone, contactCountry) == normalizeNumber(ownerPhone, ownerCountry) {
			return fail("Emergency contact cannot be the same as your phone number")
		}
	}

	return ok()
}

// normalizeNumber produces the globally comparable dialCode+digits form.
func normalizeNumber(phone, countryCode string) string {
	dial := ""
	if c, found := CountryByCode(countryCode); found {
		dial = c.DialCode
	}
	return dial + phoneClean.Replace(phone)
}

// ValidateBloodGroup reports whether the value is one of the accepted
// blood groups (empty meaning not provided).
func ValidateBloodGroup(bg string) Result {
	for _, v := range model.BloodGroups {
		if bg == v {
			return ok()
		}
	}
	return fail("Invalid blood group")
}
