// Package email derives display values from email addresses.
package email

import (
	"strings"
	"unicode"
)

// DeriveName builds a display name from the local part of an address, so
// "ada.lovelace+certs@example.org" becomes "Ada Lovelace". The "+tag" suffix
// is dropped. Returns "" when nothing usable remains.
func DeriveName(address string) string {
	local := strings.TrimSpace(address)
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	if plus := strings.IndexByte(local, '+'); plus >= 0 {
		local = local[:plus]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
