// internal/utils/sanitize.go

package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxPageIDLength bounds directory name length on common filesystems
const maxPageIDLength = 100

// SanitizePageID converts an arbitrary page name into a safe directory name:
// accents folded to ASCII, anything outside [a-z0-9._-] collapsed to a single
// underscore, lowercased, and bounded in length.
func SanitizePageID(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	id := strings.Trim(b.String(), "._-")
	if len(id) > maxPageIDLength {
		id = id[:maxPageIDLength]
	}
	if id == "" {
		id = "page"
	}
	return id
}
