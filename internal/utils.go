package internal

import (
	"strings"
	"unicode"
)

// SanitizeFilename creates a safe filename from a string. Letters keep their
// accents; everything else that is not a digit, '-' or '_' becomes '_'.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
