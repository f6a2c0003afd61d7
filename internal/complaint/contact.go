package complaint

import "strings"

// DefaultCountryCode is Indonesia's calling code.
const DefaultCountryCode = "62"

// CanonicalContact rewrites a reporter phone number into the international
// form stored on complaints and used by the messaging gateway: a leading trunk 0 becomes the country
// code, numbers already carrying the country code pass through, and anything
// else gets the country code prepended. Formatting characters are dropped.
func CanonicalContact(raw, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	phone := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '+', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	switch {
	case phone == "":
		return ""
	case strings.HasPrefix(phone, "0"):
		return countryCode + phone[1:]
	case strings.HasPrefix(phone, countryCode):
		return phone
	default:
		return countryCode + phone
	}
}
