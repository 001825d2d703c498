package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/currency"

	"github.com/doeshing/panel-go/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// symbol before the amount, or amount followed by a code or symbol
	moneyPattern = regexp.MustCompile(`([₺$€£])\s?(\d[\d.,]*)|(\d[\d.,]*)\s?((?i:tl|try|usd|eur|gbp)\b|[A-Z]{3}\b|[₺$€£])`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-().]{8,}\d`)
	// dates and clock times that a phone candidate must not cut through
	dateTimePattern = regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b|\b\d{1,2}[./-]\d{1,2}[./-]\d{4}\b|\b\d{1,2}:\d{2}\b`)
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
	minNameTokens  = 2
	maxNameTokens  = 3
)

var currencySymbols = map[string]string{
	"₺": "TL",
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

type span struct{ start, end int }

func (s span) overlaps(other span) bool {
	return s.start < other.end && other.start < s.end
}

// extractEntities runs every extractor over the original (non-normalized) text.
func extractEntities(text string, personCues map[string]bool) domain.Entities {
	entities := domain.EmptyEntities()
	if text == "" {
		return entities
	}

	emailSpans := make([]span, 0)
	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		entities.Emails = appendUnique(entities.Emails, text[loc[0]:loc[1]])
		emailSpans = append(emailSpans, span{loc[0], loc[1]})
	}

	moneySpans := make([]span, 0)
	for _, m := range moneyPattern.FindAllStringSubmatchIndex(text, -1) {
		var rawAmount, rawCurrency string
		if m[2] >= 0 {
			rawCurrency, rawAmount = text[m[2]:m[3]], text[m[4]:m[5]]
		} else {
			rawAmount, rawCurrency = text[m[6]:m[7]], text[m[8]:m[9]]
		}
		if !knownCurrency(rawCurrency) {
			continue
		}
		amount, ok := parseAmount(rawAmount)
		if !ok {
			continue
		}
		entities.Money = append(entities.Money, domain.Money{Amount: amount, Currency: normalizeCurrency(rawCurrency)})
		moneySpans = append(moneySpans, span{m[0], m[1]})
	}

	dateTimeSpans := make([]span, 0)
	for _, loc := range dateTimePattern.FindAllStringIndex(text, -1) {
		dateTimeSpans = append(dateTimeSpans, span{loc[0], loc[1]})
	}

	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		candidate := span{loc[0], loc[1]}
		if overlapsAny(candidate, moneySpans) || overlapsAny(candidate, emailSpans) || overlapsAny(candidate, dateTimeSpans) {
			continue
		}
		if phone, ok := normalizePhone(text[loc[0]:loc[1]]); ok {
			entities.Phones = appendUnique(entities.Phones, phone)
		}
	}

	for _, person := range extractPersons(text, personCues) {
		entities.Persons = appendUnique(entities.Persons, person)
	}
	return entities
}

// parseAmount accepts both 1.000,50 and 1,000.50. With a single separator
// kind, one separator followed by exactly three digits groups thousands.
func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimRight(raw, ".,")
	if raw == "" {
		return 0, false
	}
	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	var cleaned string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimal, group := ".", ","
		if lastComma > lastDot {
			decimal, group = ",", "."
		}
		cleaned = strings.ReplaceAll(raw, group, "")
		cleaned = strings.Replace(cleaned, decimal, ".", 1)
	case lastDot >= 0 || lastComma >= 0:
		sep := "."
		if lastComma >= 0 {
			sep = ","
		}
		parts := strings.Split(raw, sep)
		if len(parts) == 2 && len(parts[1]) != 3 {
			cleaned = parts[0] + "." + parts[1]
		} else {
			cleaned = strings.Join(parts, "")
		}
	default:
		cleaned = raw
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0, false
	}
	return amount, true
}

// knownCurrency accepts symbols, TL and ISO 4217 codes. Other three-letter
// words such as KOL or PDF are not currencies.
func knownCurrency(raw string) bool {
	if _, ok := currencySymbols[raw]; ok {
		return true
	}
	if strings.EqualFold(raw, "tl") {
		return true
	}
	_, err := currency.ParseISO(strings.ToUpper(raw))
	return err == nil
}

func normalizeCurrency(raw string) string {
	if code, ok := currencySymbols[raw]; ok {
		return code
	}
	return strings.ToUpper(raw)
}

func normalizePhone(raw string) (string, bool) {
	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", false
	}
	return b.String(), true
}

// extractPersons takes 2-3 capitalized tokens that directly follow a cue word.
func extractPersons(text string, cues map[string]bool) []string {
	if len(cues) == 0 {
		return nil
	}
	words := strings.Fields(text)
	var persons []string
	for i := 0; i < len(words); i++ {
		if !cues[normalize(trimPunct(words[i]))] {
			continue
		}
		var name []string
		for j := i + 1; j < len(words) && len(name) < maxNameTokens; j++ {
			word := words[j]
			token := trimPunct(word)
			token = stripSuffix(token)
			if !isCapitalized(token) {
				break
			}
			name = append(name, token)
			if strings.ContainsAny(word[len(word)-1:], ",.;:!?") {
				break
			}
		}
		if len(name) >= minNameTokens {
			persons = append(persons, strings.Join(name, " "))
			i += len(name)
		}
	}
	return persons
}

func trimPunct(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\'' && r != '’'
	})
}

// stripSuffix removes Turkish case suffixes written after an apostrophe.
func stripSuffix(token string) string {
	if idx := strings.IndexAny(token, "'’"); idx > 0 {
		return token[:idx]
	}
	return token
}

// isCapitalized accepts "Ayşe" but rejects "TL" and "ayşe".
func isCapitalized(token string) bool {
	if token == "" {
		return false
	}
	hasLower := false
	for i, r := range token {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) {
			return false
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	return hasLower
}

func overlapsAny(candidate span, spans []span) bool {
	for _, s := range spans {
		if candidate.overlaps(s) {
			return true
		}
	}
	return false
}

func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
