package analyzer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// prefixMinRunes is the shortest keyword allowed to match inflected tokens.
const prefixMinRunes = 4

// normalize lowercases with Turkish casing rules, folds diacritics and
// collapses whitespace. Casers and transformers are stateful, so both are
// built per call.
func normalize(text string) string {
	lower := cases.Lower(language.Turkish).String(text)
	lower = strings.ReplaceAll(lower, "ı", "i")
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), lower)
	if err != nil {
		folded = lower
	}
	return strings.Join(strings.Fields(folded), " ")
}

// tokenize splits normalized text into letter/digit runs.
func tokenize(normalized string) []string {
	return tokenPattern.FindAllString(normalized, -1)
}

// tokenMatches reports whether a text token satisfies a lexicon word. Long
// words also match as a prefix so Turkish suffixes do not defeat them.
func tokenMatches(token, word string) bool {
	if token == word {
		return true
	}
	return utf8.RuneCountInString(word) >= prefixMinRunes && strings.HasPrefix(token, word)
}

// containsWord reports whether any token matches word.
func containsWord(tokens []string, word string) bool {
	for _, token := range tokens {
		if tokenMatches(token, word) {
			return true
		}
	}
	return false
}

// containsPhrase reports whether the phrase tokens appear contiguously.
func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for j, word := range phrase {
			if !tokenMatches(tokens[i+j], word) {
				continue outer
			}
		}
		return true
	}
	return false
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
