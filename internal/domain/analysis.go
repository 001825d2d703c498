package domain

// IntentUnknown is the label produced for input no rule recognizes.
const IntentUnknown = "unknown"

// SentimentLabel buckets a polarity score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Urgency is derived from temporal cue words.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Complexity is derived from utterance length and entity count.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// EntityKind names a typed value the analyzer can extract.
type EntityKind string

const (
	EntityMoney  EntityKind = "money"
	EntityPerson EntityKind = "person"
	EntityPhone  EntityKind = "phone"
	EntityEmail  EntityKind = "email"
	// EntityText is not extracted; it refers to the free text of the utterance.
	EntityText EntityKind = "text"
)

// Intent is the classified purpose of an utterance.
type Intent struct {
	Primary    string  `json:"primary"`
	Confidence float64 `json:"confidence"`
}

// Sentiment is the lexicon polarity of an utterance.
type Sentiment struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// Money is a currency amount found in text.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Entities groups extracted values by kind. Slices are never nil.
type Entities struct {
	Money   []Money  `json:"money"`
	Persons []string `json:"persons"`
	Phones  []string `json:"phones"`
	Emails  []string `json:"emails"`
}

// EmptyEntities returns an Entities value with non-nil empty slices.
func EmptyEntities() Entities {
	return Entities{
		Money:   []Money{},
		Persons: []string{},
		Phones:  []string{},
		Emails:  []string{},
	}
}

// Has reports whether at least one entity of the given kind was found.
func (e Entities) Has(kind EntityKind) bool {
	switch kind {
	case EntityMoney:
		return len(e.Money) > 0
	case EntityPerson:
		return len(e.Persons) > 0
	case EntityPhone:
		return len(e.Phones) > 0
	case EntityEmail:
		return len(e.Emails) > 0
	default:
		return false
	}
}

// Count returns the total number of extracted entities.
func (e Entities) Count() int {
	return len(e.Money) + len(e.Persons) + len(e.Phones) + len(e.Emails)
}

// ContextSignals are coarse hints derived from the utterance shape.
type ContextSignals struct {
	Urgency    Urgency    `json:"urgency"`
	Complexity Complexity `json:"complexity"`
}

// Analysis is the analyzer output for one utterance.
type Analysis struct {
	Text              string         `json:"text"`
	Intent            Intent         `json:"intent"`
	Sentiment         Sentiment      `json:"sentiment"`
	Entities          Entities       `json:"entities"`
	ContextSignals    ContextSignals `json:"context_signals"`
	OverallConfidence float64        `json:"overall_confidence"`
}

// Recognized reports whether an intent other than unknown was classified.
func (a Analysis) Recognized() bool {
	return a.Intent.Primary != "" && a.Intent.Primary != IntentUnknown
}
