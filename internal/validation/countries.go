package validation

import "regexp"

// Country holds the per-country dialing and phone format rules. Adding
// support for a country is a table entry, not new control flow.
type Country struct {
	Code        string
	Name        string
	DialCode    string
	PhoneLength int
	PhoneRegex  *regexp.Regexp
}

// Countries is the supported country table, in display order.
var Countries = []Country{
	{Code: "IN", Name: "India", DialCode: "+91", PhoneLength: 10, PhoneRegex: regexp.MustCompile(`^[6-9]\d{9}$`)},
	{Code: "US", Name: "United States", DialCode: "+1", PhoneLength: 10, PhoneRegex: regexp.MustCompile(`^\d{10}$`)},
	{Code: "GB", Name: "United Kingdom", DialCode: "+44", PhoneLength: 10, PhoneRegex: regexp.MustCompile(`^\d{10}$`)},
	{Code: "CA", Name: "Canada", DialCode: "+1", PhoneLength: 10, PhoneRegex: regexp.MustCompile(`^\d{10}$`)},
	{Code: "AU", Name: "Australia", DialCode: "+61", PhoneLength: 9, PhoneRegex: regexp.MustCompile(`^\d{9}$`)},
	{Code: "DE", Name: "Germany", DialCode: "+49", PhoneLength: 11, PhoneRegex: regexp.MustCompile(`^\d{10,11}$`)},
	{Code: "FR", Name: "France", DialCode: "+33", PhoneLength: 9, PhoneRegex: regexp.MustCompile(`^\d{9}$`)},
	{Code: "JP", Name: "Japan", DialCode: "+81", PhoneLength: 10, PhoneRegex: regexp.MustCompile(`^\d{10}$`)},
	{Code: "CN", Name: "China", DialCode: "+86", PhoneLength: 11, PhoneRegex: regexp.MustCompile(`^1\d{10}$`)},
	{Code: "AE", Name: "UAE", DialCode: "+971", PhoneLength: 9, PhoneRegex: regexp.MustCompile(`^[5]\d{8}$`)},
	{Code: "SG", Name: "Singapore", DialCode: "+65", PhoneLength: 8, PhoneRegex: regexp.MustCompile(`^[89]\d{7}$`)},
	{Code: "NZ", Name: "New Zealand", DialCode: "+64", PhoneLength: 9, PhoneRegex: regexp.MustCompile(`^\d{8,9}$`)},
	{Code: "ZA", Name: "South Africa", DialCode: "+27", PhoneLength: 9, PhoneRegex: regexp.MustCompile(`^\d{9}$`)},
	{Code: "BR", Name: "Brazil", DialCode: "+55", PhoneLength: 11, PhoneRegex: regexp.MustCompile(`^\d{10,11}$`)},
	{Code: "MX", Name: "Mexico", DialCode: "+52", PhoneLength: 10, PhoneRegex: regexp.MustCompile(`^\d{10}$`)},
}

// ZipPattern is the postal code format for a country, with an example
// shown to the user on mismatch.
type ZipPattern struct {
	Regex   *regexp.Regexp
	Example string
}

// postalOptionalCountry is the one country whose postal code may be left
// blank (the UAE has no mandatory postal system).
const postalOptionalCountry = "AE"

var zipPatterns = map[string]ZipPattern{
	"IN": {Regex: regexp.MustCompile(`^\d{6}$`), Example: "110001"},
	"US": {Regex: regexp.MustCompile(`^\d{5}(-\d{4})?$`), Example: "10001 or 10001-1234"},
	"GB": {Regex: regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]?\s?\d[A-Z]{2}$`), Example: "SW1A 1AA"},
	"CA": {Regex: regexp.MustCompile(`(?i)^[A-Z]\d[A-Z]\s?\d[A-Z]\d$`), Example: "K1A 0B1"},
	"AU": {Regex: regexp.MustCompile(`^\d{4}$`), Example: "2000"},
	"DE": {Regex: regexp.MustCompile(`^\d{5}$`), Example: "10115"},
	"FR": {Regex: regexp.MustCompile(`^\d{5}$`), Example: "75001"},
	"JP": {Regex: regexp.MustCompile(`^\d{3}-?\d{4}$`), Example: "100-0001"},
	"CN": {Regex: regexp.MustCompile(`^\d{6}$`), Example: "100000"},
	"AE": {Regex: regexp.MustCompile(`^.{0,10}$`), Example: "Optional"},
	"SG": {Regex: regexp.MustCompile(`^\d{6}$`), Example: "018956"},
	"NZ": {Regex: regexp.MustCompile(`^\d{4}$`), Example: "1010"},
	"ZA": {Regex: regexp.MustCompile(`^\d{4}$`), Example: "0001"},
	"BR": {Regex: regexp.MustCompile(`^\d{5}-?\d{3}$`), Example: "01310-100"},
	"MX": {Regex: regexp.MustCompile(`^\d{5}$`), Example: "06600"},
}

// CountryByCode looks up a country by its ISO code.
func CountryByCode(code string) (Country, bool) {
	for _, c := range Countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}
