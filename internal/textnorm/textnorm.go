// Package textnorm canonicalizes free-text product names and splits them
// into tokens for fuzzy matching.
//
// Product names arrive from pasted lists and uploaded spreadsheets, so the
// same product shows up with Unicode ligatures, Latin letters typed inside
// Cyrillic words, fancy dashes, and irregular spacing. Normalize collapses
// all of that into a single canonical form; Tokenize turns the canonical
// form into the word/number tokens the matcher compares.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// latinToCyrillic maps Latin letters onto the Cyrillic letters they are
// visually identical to. This repairs keyboard-layout slips where a user
// typed a Latin look-alike inside a Cyrillic product name.
var latinToCyrillic = map[rune]rune{
	'A': 'А', 'B': 'В', 'C': 'С', 'E': 'Е', 'H': 'Н',
	'K': 'К', 'M': 'М', 'O': 'О', 'P': 'Р', 'T': 'Т',
	'X': 'Х', 'Y': 'У',
	'a': 'а', 'c': 'с', 'e': 'е', 'o': 'о',
	'p': 'р', 'x': 'х', 'y': 'у',
}

var (
	dashReplacer = strings.NewReplacer("–", "-", "—", "-") // en dash, em dash
	whitespaceRe = regexp.MustCompile(`\s+`)
	tokenRe      = regexp.MustCompile(`[0-9]+|[a-zA-Zа-яА-ЯёЁ]+`)
)

// Normalize returns the canonical form of a product name: NFKC composition,
// Latin look-alikes folded to Cyrillic, en/em dashes collapsed to a plain
// hyphen, and whitespace runs collapsed to a single space with the ends
// trimmed. Empty input normalizes to the empty string.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKC.String(text)
	text = strings.Map(func(r rune) rune {
		if cyr, ok := latinToCyrillic[r]; ok {
			return cyr
		}
		return r
	}, text)
	text = dashReplacer.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// Tokenize normalizes and lowercases text, then extracts maximal runs of
// decimal digits or Latin/Cyrillic letters (including ё/Ё). Everything else
// is a separator and is discarded. Token order follows the input; empty
// input yields no tokens.
func Tokenize(text string) []string {
	lowered := strings.ToLower(Normalize(text))
	return tokenRe.FindAllString(lowered, -1)
}

// IsNumericToken reports whether a token consists entirely of decimal
// digits. Numeric tokens are compared only for exact equality during
// matching, so "25" can never stand in for "250".
func IsNumericToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
