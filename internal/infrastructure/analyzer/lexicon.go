package analyzer

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/panel-go/assets"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/pkg/filesystem"
)

// IntentRule is one entry of the prioritized intent catalog.
type IntentRule struct {
	Intent   string              `yaml:"intent"`
	Phrases  []string            `yaml:"phrases"`
	Keywords []string            `yaml:"keywords"`
	Expects  []domain.EntityKind `yaml:"expects"`
}

// Lexicon is the YAML schema root of the analyzer rules.
type Lexicon struct {
	Intents   []IntentRule `yaml:"intents"`
	Sentiment struct {
		Positive []string `yaml:"positive"`
		Negative []string `yaml:"negative"`
	} `yaml:"sentiment"`
	Urgency struct {
		High   []string `yaml:"high"`
		Medium []string `yaml:"medium"`
	} `yaml:"urgency"`
	PersonCues []string `yaml:"person_cues"`
}

// LoadLexicon reads rules from path, falling back to the embedded defaults
// when the path is empty or missing.
func LoadLexicon(path string) (Lexicon, error) {
	data := assets.DefaultLexiconYAML
	if path != "" {
		raw, err := os.ReadFile(filesystem.ExpandPath(path))
		switch {
		case err == nil:
			data = raw
		case errors.Is(err, os.ErrNotExist):
			// fall back to defaults
		default:
			return Lexicon{}, errors.Wrapf(err, "read lexicon %s", path)
		}
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes and validates a YAML lexicon.
func ParseLexicon(data []byte) (Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, errors.Wrap(err, "decode lexicon")
	}
	if err := lex.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lex, nil
}

// Validate rejects rules that can never match or that expect unknown entities.
func (l Lexicon) Validate() error {
	if len(l.Intents) == 0 {
		return errors.New("lexicon defines no intents")
	}
	seen := map[string]bool{}
	for i, rule := range l.Intents {
		name := strings.TrimSpace(rule.Intent)
		if name == "" || name == domain.IntentUnknown {
			return errors.Newf("intent rule %d has an invalid name %q", i, rule.Intent)
		}
		if seen[name] {
			return errors.Newf("intent %q is defined twice", name)
		}
		seen[name] = true
		if len(rule.Phrases) == 0 && len(rule.Keywords) == 0 {
			return errors.Newf("intent %q has neither phrases nor keywords", name)
		}
		for _, kind := range rule.Expects {
			switch kind {
			case domain.EntityMoney, domain.EntityPerson, domain.EntityPhone, domain.EntityEmail:
			default:
				return errors.Newf("intent %q expects unknown entity %q", name, kind)
			}
		}
	}
	return nil
}

// IntentNames lists intents in priority order.
func (l Lexicon) IntentNames() []string {
	names := make([]string, 0, len(l.Intents))
	for _, rule := range l.Intents {
		names = append(names, rule.Intent)
	}
	return names
}

// Expectations maps each intent to the entity kinds it expects.
func (l Lexicon) Expectations() map[string][]domain.EntityKind {
	out := make(map[string][]domain.EntityKind, len(l.Intents))
	for _, rule := range l.Intents {
		out[rule.Intent] = rule.Expects
	}
	return out
}
