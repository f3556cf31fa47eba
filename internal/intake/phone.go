package intake

import (
	"regexp"
	"strings"
)

// DefaultCountryCode is the Algerian dialing prefix.
const DefaultCountryCode = "213"

var phoneNoise = regexp.MustCompile(`[\s\-()]`)

// ValidPhone accepts 8 to 15 ASCII digits after separators and one leading
// plus sign are removed.
func ValidPhone(s string) bool {
	clean := phoneNoise.ReplaceAllString(s, "")
	clean = strings.TrimPrefix(clean, "+")
	if len(clean) < 8 || len(clean) > 15 {
		return false
	}
	for i := 0; i < len(clean); i++ {
		if clean[i] < '0' || clean[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizePhone rewrites a local number into international form. Numbers
// that already carry a plus sign are returned without separators.
func NormalizePhone(s, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	clean := phoneNoise.ReplaceAllString(s, "")
	switch {
	case strings.HasPrefix(clean, "+"):
		return clean
	case strings.HasPrefix(clean, "0"):
		return "+" + countryCode + clean[1:]
	case !strings.HasPrefix(clean, countryCode):
		return "+" + countryCode + clean
	default:
		return "+" + clean
	}
}
