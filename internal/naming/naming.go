// Package naming turns free-form test case descriptions into tokens that are
// safe to use as file and directory names on every common filesystem.
package naming

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyIdentifier is returned when nothing usable is left of the input
// after diacritics, illegal characters and whitespace are removed.
var ErrEmptyIdentifier = errors.New("empty identifier")

// illegal lists characters that are rejected or discouraged by at least one
// common filesystem. Periods are dropped so a name can never become hidden.
const illegal = `\/:*?"'<>|.`

// Identifier converts text into a camelCase token.
//
// Accented Latin letters fold to their base letters, other scripts pass
// through untouched, and characters from
// the illegal set are stripped. The first word is lower-cased, every later word
// is title-cased, and the words are joined without a separator.
func Identifier(text string) (string, error) {
	folded, err := stripMarks(text)
	if err != nil {
		return "", err
	}

	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegal, r) {
			return -1
		}
		return r
	}, folded)

	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return "", ErrEmptyIdentifier
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(titleCase(w))
	}
	return b.String(), nil
}

// combiningDiacritic matches the Combining Diacritical Marks block. Marks of
// other scripts (kana voicing, viramas, vowel points) are part of the word.
func combiningDiacritic(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// stripMarks decomposes text and removes combining diacritics, then
// recomposes whatever is left so untouched scripts keep their canonical form.
func stripMarks(text string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(combiningDiacritic)), norm.NFC)
	out, _, err := transform.String(t, text)
	return out, err
}

func titleCase(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	if first == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}
