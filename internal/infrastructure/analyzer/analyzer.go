package analyzer

import (
	"math"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// Scoring constants.
const (
	// MaxInputRunes bounds how much of an utterance is scanned.
	MaxInputRunes = 4096
	// PhraseConfidence is the confidence of a full phrase hit.
	PhraseConfidence = 0.9
	// KeywordBaseConfidence is the confidence of a single keyword hit.
	KeywordBaseConfidence = 0.4
	// KeywordStep is added per additional keyword hit.
	KeywordStep = 0.1
	// KeywordConfidenceCap bounds keyword-only confidence below phrase hits.
	KeywordConfidenceCap = 0.7

	sentimentBand   = 0.2
	complexWords    = 20
	complexEntities = 3
	simpleWords     = 8
	simpleEntities  = 1
)

type compiledRule struct {
	intent   string
	phrases  [][]string
	keywords []string
	expects  []domain.EntityKind
}

// Analyzer implements ports.Analyzer with deterministic lexicon rules.
type Analyzer struct {
	rules      []compiledRule
	positive   []string
	negative   []string
	urgentHigh []string
	urgentMed  []string
	personCues map[string]bool
}

// New compiles a lexicon. Lexicon words are normalized the same way as input.
func New(lex Lexicon) *Analyzer {
	a := &Analyzer{
		positive:   normalizeWords(lex.Sentiment.Positive),
		negative:   normalizeWords(lex.Sentiment.Negative),
		urgentHigh: normalizeWords(lex.Urgency.High),
		urgentMed:  normalizeWords(lex.Urgency.Medium),
		personCues: make(map[string]bool, len(lex.PersonCues)),
	}
	for _, cue := range lex.PersonCues {
		a.personCues[normalize(cue)] = true
	}
	for _, rule := range lex.Intents {
		compiled := compiledRule{
			intent:   rule.Intent,
			keywords: normalizeWords(rule.Keywords),
			expects:  rule.Expects,
		}
		for _, phrase := range rule.Phrases {
			if tokens := tokenize(normalize(phrase)); len(tokens) > 0 {
				compiled.phrases = append(compiled.phrases, tokens)
			}
		}
		a.rules = append(a.rules, compiled)
	}
	return a
}

// NewFromFile loads the lexicon at path (or the embedded default) and compiles it.
func NewFromFile(path string) (*Analyzer, error) {
	lex, err := LoadLexicon(path)
	if err != nil {
		return nil, err
	}
	return New(lex), nil
}

// Analyze implements ports.Analyzer. It never fails.
func (a *Analyzer) Analyze(text string) domain.Analysis {
	text = truncateRunes(text, MaxInputRunes)
	tokens := tokenize(normalize(text))
	entities := extractEntities(text, a.personCues)

	intent, rule := a.classify(tokens)
	completeness := 1.0
	if rule != nil {
		completeness = entityCompleteness(rule.expects, entities)
	}

	return domain.Analysis{
		Text:      text,
		Intent:    intent,
		Sentiment: a.sentiment(tokens),
		Entities:  entities,
		ContextSignals: domain.ContextSignals{
			Urgency:    a.urgency(tokens),
			Complexity: complexity(len(tokens), entities.Count()),
		},
		OverallConfidence: math.Min(intent.Confidence, completeness),
	}
}

// classify returns the first rule with a phrase hit, otherwise the first rule
// with keyword hits.
func (a *Analyzer) classify(tokens []string) (domain.Intent, *compiledRule) {
	unknown := domain.Intent{Primary: domain.IntentUnknown, Confidence: 0}
	if len(tokens) == 0 {
		return unknown, nil
	}
	for i := range a.rules {
		rule := &a.rules[i]
		for _, phrase := range rule.phrases {
			if containsPhrase(tokens, phrase) {
				return domain.Intent{Primary: rule.intent, Confidence: PhraseConfidence}, rule
			}
		}
	}
	for i := range a.rules {
		rule := &a.rules[i]
		hits := 0
		for _, keyword := range rule.keywords {
			if containsWord(tokens, keyword) {
				hits++
			}
		}
		if hits > 0 {
			confidence := math.Min(KeywordBaseConfidence+KeywordStep*float64(hits-1), KeywordConfidenceCap)
			return domain.Intent{Primary: rule.intent, Confidence: round2(confidence)}, rule
		}
	}
	return unknown, nil
}

func (a *Analyzer) sentiment(tokens []string) domain.Sentiment {
	pos, neg := countHits(tokens, a.positive), countHits(tokens, a.negative)
	if pos+neg == 0 {
		return domain.Sentiment{Label: domain.SentimentNeutral, Score: 0}
	}
	score := round2(float64(pos-neg) / float64(pos+neg))
	label := domain.SentimentNeutral
	switch {
	case score > sentimentBand:
		label = domain.SentimentPositive
	case score < -sentimentBand:
		label = domain.SentimentNegative
	}
	return domain.Sentiment{Label: label, Score: score}
}

func (a *Analyzer) urgency(tokens []string) domain.Urgency {
	if countHits(tokens, a.urgentHigh) > 0 {
		return domain.UrgencyHigh
	}
	if countHits(tokens, a.urgentMed) > 0 {
		return domain.UrgencyMedium
	}
	return domain.UrgencyLow
}

func complexity(words, entities int) domain.Complexity {
	switch {
	case words > complexWords || entities >= complexEntities:
		return domain.ComplexityComplex
	case words <= simpleWords && entities <= simpleEntities:
		return domain.ComplexitySimple
	default:
		return domain.ComplexityModerate
	}
}

func entityCompleteness(expects []domain.EntityKind, entities domain.Entities) float64 {
	if len(expects) == 0 {
		return 1
	}
	filled := 0
	for _, kind := range expects {
		if entities.Has(kind) {
			filled++
		}
	}
	return round2(float64(filled) / float64(len(expects)))
}

func countHits(tokens, words []string) int {
	hits := 0
	for _, word := range words {
		if containsWord(tokens, word) {
			hits++
		}
	}
	return hits
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, word := range words {
		if n := normalize(word); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ ports.Analyzer = (*Analyzer)(nil)
