package role

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical role constants
const (
	Admin      = "administrateur"
	Medecin    = "medecin"
	Remplacant = "remplacant"
)

// aliases maps each canonical role to the spellings that resolve to it.
// Matching is case-, diacritic- and whitespace-insensitive.
var aliases = map[string][]string{
	Admin:      {"administrateur", "admin", "administrator", "gestionnaire"},
	Medecin:    {"medecin", "médecin", "doctor", "docteur"},
	Remplacant: {"remplacant", "remplaçant", "replacement", "remplacement"},
}

// stripDiacritics removes combining marks after NFD decomposition.
var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

func clean(s string) string {
	out, _, err := transform.String(stripDiacritics, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}

// Normalize canonicalizes a role string against the alias table.
// Unrecognized non-empty input is returned cleaned (trimmed, lowercased,
// diacritics stripped); empty input yields "".
// INVARIANT: Normalize(Normalize(x)) == Normalize(x)
func Normalize(s string) string {
	cleaned := clean(s)
	if cleaned == "" {
		return ""
	}
	for canonical, list := range aliases {
		for _, alias := range list {
			if clean(alias) == cleaned {
				return canonical
			}
		}
	}
	return cleaned
}

// IsCanonical reports whether s is one of the canonical roles.
func IsCanonical(s string) bool {
	return s == Admin || s == Medecin || s == Remplacant
}
