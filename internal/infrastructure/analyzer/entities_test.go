package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/panel-go/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: "250", want: 250, ok: true},
		{raw: "1.000,50", want: 1000.5, ok: true},
		{raw: "1,000.50", want: 1000.5, ok: true},
		{raw: "1.000", want: 1000, ok: true},
		{raw: "1,5", want: 1.5, ok: true},
		{raw: "12.345.678", want: 12345678, ok: true},
		{raw: "1,000,000", want: 1000000, ok: true},
		{raw: "99.", want: 99, ok: true},
		{raw: ".,", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseAmount(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestExtractMoney(t *testing.T) {
	got := extractEntities("₺250 ve $1,200.75 ve 30 EUR, bir de 1000 TL'lik bağış", nil)

	assert.Equal(t, []domain.Money{
		{Amount: 250, Currency: "TL"},
		{Amount: 1200.75, Currency: "USD"},
		{Amount: 30, Currency: "EUR"},
		{Amount: 1000, Currency: "TL"},
	}, got.Money)
	assert.Empty(t, got.Phones)
}

func TestExtractMoneyIgnoresNonCurrencyCodes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.Money
	}{
		{name: "parcel count", input: "Bağış ekle: 5 KOL battaniye", want: []domain.Money{}},
		{name: "document count", input: "Yeni görev: 3 PDF hazırla", want: []domain.Money{}},
		{name: "iso code kept", input: "Bağış ekle: 40 CHF", want: []domain.Money{{Amount: 40, Currency: "CHF"}}},
		{name: "mixed", input: "2 KOL ve 100 TRY", want: []domain.Money{{Amount: 100, Currency: "TRY"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractEntities(tt.input, nil)
			assert.Equal(t, tt.want, got.Money)
		})
	}
}

func TestExtractContactsIgnoresDatesAndTimes(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "iso date and time", input: "Mesaj gönder: 2024-10-18 15:30 toplantısı var"},
		{name: "dotted date and time", input: "Toplantı 18.10.2024 14:00 - 16:00 arası"},
		{name: "slashed date", input: "Rapor 18/10/2024 tarihinde 09:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractEntities(tt.input, nil)
			assert.Empty(t, got.Phones)
		})
	}

	got := extractEntities("2024-10-18 günü +90 532 123 45 67 numarasını ara", nil)
	assert.Equal(t, []string{"+905321234567"}, got.Phones)
}

func TestExtractContacts(t *testing.T) {
	got := extractEntities("Ara: +90 532 123 45 67 veya 0532-123-4567, mail ayse@example.org, kısa 123 45", nil)

	assert.Equal(t, []string{"+905321234567", "05321234567"}, got.Phones)
	assert.Equal(t, []string{"ayse@example.org"}, got.Emails)
	assert.Empty(t, got.Money)
}

func TestExtractPersons(t *testing.T) {
	cues := map[string]bool{"sayin": true, "to": true, "for": true, "bagisci": true}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "turkish suffix", input: "Sayın Ayşe Demir'e teşekkür edelim", want: []string{"Ayşe Demir"}},
		{name: "trailing colon", input: "send message to Mehmet Öz: toplantı yarın", want: []string{"Mehmet Öz"}},
		{name: "three tokens", input: "Bağışçı Ali Rıza Kaya 500 TL", want: []string{"Ali Rıza Kaya"}},
		{name: "single token ignored", input: "report for March", want: []string{}},
		{name: "lowercase ignored", input: "to do list", want: []string{}},
		{name: "acronym ignored", input: "for TL USD", want: []string{}},
		{name: "no cue", input: "Ayşe Demir geldi", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractEntities(tt.input, cues)
			assert.Equal(t, tt.want, got.Persons)
		})
	}
}

func TestLoadLexicon(t *testing.T) {
	t.Run("embedded default", func(t *testing.T) {
		lex, err := LoadLexicon("")
		require.NoError(t, err)
		assert.Contains(t, lex.IntentNames(), "add_donation")
		assert.NotEmpty(t, lex.PersonCues)
	})

	t.Run("missing file falls back", func(t *testing.T) {
		lex, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Contains(t, lex.IntentNames(), "add_donation")
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.yaml")
		content := "intents:\n  - intent: ping\n    keywords: [ping]\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		lex, err := LoadLexicon(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"ping"}, lex.IntentNames())
	})
}

func TestParseLexiconRejectsInvalidRules(t *testing.T) {
	tests := map[string]string{
		"empty":          "intents: []\n",
		"duplicate":      "intents:\n  - {intent: a, keywords: [x]}\n  - {intent: a, keywords: [y]}\n",
		"no matchers":    "intents:\n  - {intent: a}\n",
		"unknown entity": "intents:\n  - {intent: a, keywords: [x], expects: [iban]}\n",
		"reserved name":  "intents:\n  - {intent: unknown, keywords: [x]}\n",
		"bad yaml":       "intents: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLexicon([]byte(content))
			assert.Error(t, err)
		})
	}
}
