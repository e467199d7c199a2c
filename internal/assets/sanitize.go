package assets

import (
	"strings"
	"unicode"
)

// Sanitize maps raw category and product names onto filesystem-safe
// directory names. Word characters, hyphen, underscore, space and the
// Arabic script block (U+0600 through U+06FF, covering Persian names and
// punctuation) pass through; every other rune becomes an underscore.
// The mapping is total and idempotent.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '_' || r == ' ':
			return r
		case r >= 0x0600 && r <= 0x06FF:
			return r
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		default:
			return '_'
		}
	}, name)
}
