// Package names formats person names for public payloads. Imported trees
// frequently carry ALLCAPS or all-lowercase exports; formatting here is
// display-only and conservative, the stored records are never changed.
package names

import (
	"regexp"
	"strings"

	"github.com/lineage-works/lineage/pkg/types"
)

var parenEpithetRe = regexp.MustCompile(`^\([^()]{1,80}\)$`)

// Surname particles that stay lowercase, including Dutch/German/French-style
// prefixes ("van der Berg", "von Humboldt", "de la Croix").
var lowerParticles = map[string]bool{
	"van": true, "der": true, "den": true, "de": true, "het": true,
	"ten": true, "ter": true, "te": true, "op": true, "aan": true,
	"in": true, "onder": true, "bij": true, "tot": true, "voor": true,
	"achter": true, "over": true, "uit": true, "von": true, "zu": true,
	"zur": true, "zum": true, "am": true, "im": true, "da": true,
	"di": true, "du": true, "des": true, "del": true, "della": true,
	"la": true, "le": true, "les": true,
}

var romanNumerals = map[string]bool{
	"i": true, "ii": true, "iii": true, "iv": true, "v": true,
	"vi": true, "vii": true, "viii": true, "ix": true, "x": true,
	"xi": true, "xii": true,
}

// SmartTitleCase applies best-effort title casing to a personal name.
// Particles stay lowercase when the name has more than one token, roman
// numeral suffixes go uppercase, and Mc/O'/d'/l' prefixes and hyphenated
// names are handled. The "Private" sentinel passes through untouched.
// Returns nil for empty input.
func SmartTitleCase(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if s == types.DisplayNamePrivate {
		return &s
	}

	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil
	}

	multi := len(tokens) > 1
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		prefix, core, suffix := splitPunct(tok)
		if core == "" {
			out = append(out, tok)
			continue
		}

		if lower := strings.ToLower(core); lowerParticles[lower] && multi {
			out = append(out, prefix+lower+suffix)
			continue
		}

		out = append(out, prefix+capWord(core)+suffix)
	}

	result := strings.Join(out, " ")
	return &result
}

// FormatPublicNames normalizes and title-cases the three public name fields.
// Only called for persons that passed the privacy policy.
func FormatPublicNames(displayName, givenName, surname string) (display, given, sur *string) {
	givenOut, surnameOut := normalizeEpithet(displayName, givenName, surname)
	return SmartTitleCase(displayName), SmartTitleCase(givenOut), SmartTitleCase(surnameOut)
}

// normalizeEpithet moves a parenthetical-only surname back into the given
// name. Some sources store epithets like "(the elder)" in the given name and
// messy exports can drift them into the surname column.
func normalizeEpithet(displayName, givenName, surname string) (given, sur string) {
	s := strings.TrimSpace(surname)
	if s == "" {
		return givenName, surname
	}

	if parenEpithetRe.MatchString(s) {
		dn := strings.TrimSpace(displayName)
		g := strings.TrimSpace(givenName)
		if dn != "" {
			return dn, ""
		}
		if g != "" {
			return g + " " + s, ""
		}
		return s, ""
	}

	return givenName, surname
}

// splitPunct strips leading and trailing non-alphanumeric runes off a token.
func splitPunct(tok string) (prefix, core, suffix string) {
	runes := []rune(tok)
	i := 0
	for i < len(runes) && !isAlnum(runes[i]) {
		i++
	}
	j := len(runes)
	for j > i && !isAlnum(runes[j-1]) {
		j--
	}
	return string(runes[:i]), string(runes[i:j]), string(runes[j:])
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r > 127 // keep accented letters inside the core
}

func capWord(word string) string {
	if word == "" {
		return word
	}

	if strings.Contains(word, "-") {
		parts := strings.Split(word, "-")
		for i, p := range parts {
			parts[i] = capWord(p)
		}
		return strings.Join(parts, "-")
	}

	lower := strings.ToLower(word)
	switch {
	case strings.HasPrefix(lower, "d'") && len(word) > 2:
		return "d'" + capWord(word[2:])
	case strings.HasPrefix(lower, "l'") && len(word) > 2:
		return "l'" + capWord(word[2:])
	case strings.HasPrefix(lower, "o'") && len(word) > 2:
		return "O'" + capWord(word[2:])
	}

	if strings.Contains(word, "'") {
		parts := strings.Split(word, "'")
		out := make([]string, len(parts))
		for i, p := range parts {
			if p == "" {
				out[i] = ""
				continue
			}
			if i == 0 && len(p) == 1 {
				out[i] = strings.ToUpper(p)
				continue
			}
			out[i] = capSimple(p)
		}
		return strings.Join(out, "'")
	}

	return capSimple(word)
}

func capSimple(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)

	if romanNumerals[lower] {
		return strings.ToUpper(lower)
	}

	// McXxxx heuristic.
	if strings.HasPrefix(lower, "mc") && len(word) > 2 {
		return "Mc" + capFirst(word[2:])
	}

	return capFirst(word)
}

// capFirst uppercases the first rune and lowercases the rest.
func capFirst(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
