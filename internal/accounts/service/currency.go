package service

import "strings"

// NormalizeCurrency validates a 3-letter alphabetic currency code, ignoring
// case and surrounding whitespace, and returns the uppercase storage form.
func NormalizeCurrency(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if len(code) != 3 {
		return "", false
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", false
		}
	}
	return strings.ToUpper(code), true
}
