package resolver

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/panel-go/assets"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/pkg/filesystem"
)

// Catalog is the YAML schema root of the command catalog.
type Catalog struct {
	Commands []domain.CatalogEntry `yaml:"commands"`
}

// LoadCatalog reads the catalog at path, falling back to the embedded
// defaults when the path is empty or missing.
func LoadCatalog(path string) (Catalog, error) {
	data := assets.DefaultCatalogYAML
	if path != "" {
		raw, err := os.ReadFile(filesystem.ExpandPath(path))
		switch {
		case err == nil:
			data = raw
		case errors.Is(err, os.ErrNotExist):
			// fall back to defaults
		default:
			return Catalog{}, errors.Wrapf(err, "read catalog %s", path)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, errors.Wrap(err, "decode catalog")
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// Validate rejects entries the resolver cannot turn into commands.
func (c Catalog) Validate() error {
	if len(c.Commands) == 0 {
		return errors.New("catalog defines no commands")
	}
	intents := map[string]bool{}
	for i, entry := range c.Commands {
		if strings.TrimSpace(entry.Intent) == "" {
			return errors.Newf("catalog entry %d has no intent", i)
		}
		if intents[entry.Intent] {
			return errors.Newf("intent %q is mapped twice", entry.Intent)
		}
		intents[entry.Intent] = true

		if strings.TrimSpace(entry.ActionType) == "" {
			return errors.Newf("intent %q has no action_type", entry.Intent)
		}
		if strings.TrimSpace(entry.TargetModule) == "" {
			return errors.Newf("intent %q has no target_module", entry.Intent)
		}
		if _, ok := domain.ParseRiskLevel(entry.Risk); !ok {
			return errors.Newf("intent %q has unknown risk_level %q", entry.Intent, entry.Risk)
		}
		if entry.BaseDurationSeconds < 0 || entry.SecondsPerParameter < 0 {
			return errors.Newf("intent %q has a negative duration estimate", entry.Intent)
		}
		if err := validateSlots(entry); err != nil {
			return err
		}
	}
	return nil
}

func validateSlots(entry domain.CatalogEntry) error {
	names := map[string]bool{}
	for _, slot := range entry.Slots {
		if strings.TrimSpace(slot.Name) == "" {
			return errors.Newf("intent %q has a slot without a name", entry.Intent)
		}
		if names[slot.Name] {
			return errors.Newf("intent %q defines slot %q twice", entry.Intent, slot.Name)
		}
		names[slot.Name] = true

		switch slot.Source {
		case domain.EntityMoney, domain.EntityPerson, domain.EntityPhone, domain.EntityEmail, domain.EntityText:
		case domain.SourceContext:
			if slot.Required {
				return errors.Newf("intent %q slot %q is required but only filled from context", entry.Intent, slot.Name)
			}
		default:
			return errors.Newf("intent %q slot %q has unknown source %q", entry.Intent, slot.Name, slot.Source)
		}

		switch slot.Fallback {
		case domain.FallbackNone, domain.FallbackActingUser, domain.FallbackLocale:
		default:
			return errors.Newf("intent %q slot %q has unknown fallback %q", entry.Intent, slot.Name, slot.Fallback)
		}
	}
	return nil
}

// Lookup returns the entry for an intent.
func (c Catalog) Lookup(intent string) (domain.CatalogEntry, bool) {
	for _, entry := range c.Commands {
		if entry.Intent == intent {
			return entry, true
		}
	}
	return domain.CatalogEntry{}, false
}

// Modules lists the distinct target modules in catalog order.
func (c Catalog) Modules() []string {
	seen := map[string]bool{}
	var modules []string
	for _, entry := range c.Commands {
		if !seen[entry.TargetModule] {
			seen[entry.TargetModule] = true
			modules = append(modules, entry.TargetModule)
		}
	}
	return modules
}
