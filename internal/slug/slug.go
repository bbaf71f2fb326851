// Package slug converts display names into URL-safe identifiers using the
// same convention the Mealie server applies, so locally computed slugs line
// up with server-assigned ones.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldASCII decomposes accented characters and strips the combining marks,
// leaving the base letters.
var foldASCII = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make slugifies a name: accents folded to ASCII, lowercased, punctuation
// dropped, runs of whitespace and underscores collapsed to single hyphens.
// Characters with no ASCII equivalent are dropped entirely, so Make can
// return "" for fully non-Latin input.
func Make(name string) string {
	if folded, _, err := transform.String(foldASCII, name); err == nil {
		name = folded
	}
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-':
			pendingHyphen = true
		}
	}
	return b.String()
}
