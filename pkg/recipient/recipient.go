// Package recipient derives a printable recipient name from an e-mail address
// for issue requests that omit an explicit display name.
package recipient

import (
	"strings"
	"unicode"
)

// DeriveName builds "First Last" from the local part of an e-mail address.
// "jane.doe@example.com" becomes "Jane Doe"; unparseable input falls back to
// the neutral "Certificate Holder" so a PDF is never rendered with an empty
// name line.
func DeriveName(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Certificate Holder"
	}

	first := capitalize(parts[0])
	if len(parts) == 1 {
		return first
	}
	return first + " " + capitalize(parts[len(parts)-1])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
