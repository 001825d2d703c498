package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// Options tune the resolver thresholds.
type Options struct {
	ConfidenceFloor       float64
	ConfirmationThreshold float64
	// NewID generates command ids. Defaults to random UUIDs.
	NewID func() string
}

// Resolver implements ports.Resolver over a static catalog.
type Resolver struct {
	catalog   Catalog
	floor     float64
	threshold float64
	newID     func() string
}

// New builds a resolver. Zero thresholds fall back to package defaults.
func New(catalog Catalog, opts Options) *Resolver {
	r := &Resolver{
		catalog:   catalog,
		floor:     opts.ConfidenceFloor,
		threshold: opts.ConfirmationThreshold,
		newID:     opts.NewID,
	}
	if r.floor <= 0 {
		r.floor = domain.DefaultConfidenceFloor
	}
	if r.threshold <= 0 {
		r.threshold = domain.DefaultConfirmationThreshold
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r
}

// Catalog returns the catalog the resolver was built with.
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}

// Resolve implements ports.Resolver. It has no side effects besides id generation.
func (r *Resolver) Resolve(a domain.Analysis, sc domain.SessionContext) domain.Resolution {
	if !a.Recognized() {
		return unrecognized("intent not recognized")
	}
	if a.Intent.Confidence < r.floor {
		return unrecognized(fmt.Sprintf("intent confidence %.2f below floor %.2f", a.Intent.Confidence, r.floor))
	}
	entry, ok := r.catalog.Lookup(a.Intent.Primary)
	if !ok {
		return unrecognized(fmt.Sprintf("no command for intent %s", a.Intent.Primary))
	}

	params := make(map[string]string, len(entry.Slots)+1)
	var missing []string
	for _, slot := range entry.Slots {
		if fillSlot(params, slot, a) {
			continue
		}
		if slot.Required {
			missing = append(missing, slot.Name)
			continue
		}
		if value, ok := fallbackValue(slot, sc); ok {
			params[slot.Name] = value
		}
	}
	if len(missing) > 0 {
		return domain.Resolution{
			Kind:         domain.ResolutionNeedsClarification,
			MissingSlots: missing,
			Reason:       "missing required parameters: " + strings.Join(missing, ", "),
		}
	}

	risk := entry.RiskLevel()
	cmd := &domain.StructuredCommand{
		ID:                       r.newID(),
		ActionType:               entry.ActionType,
		TargetModule:             entry.TargetModule,
		Parameters:               params,
		RequiresConfirmation:     risk != domain.RiskNone || a.OverallConfidence < r.threshold,
		EstimatedDurationSeconds: entry.BaseDurationSeconds + entry.SecondsPerParameter*len(params),
		RiskLevel:                risk,
		Confidence:               a.OverallConfidence,
	}
	return domain.Resolution{Kind: domain.ResolutionResolved, Command: cmd}
}

// fillSlot copies the first matching entity into params.
func fillSlot(params map[string]string, slot domain.SlotDefinition, a domain.Analysis) bool {
	switch slot.Source {
	case domain.EntityMoney:
		if len(a.Entities.Money) == 0 {
			return false
		}
		money := a.Entities.Money[0]
		params[slot.Name] = strconv.FormatFloat(money.Amount, 'f', -1, 64)
		params["currency"] = money.Currency
		return true
	case domain.EntityPerson:
		return firstInto(params, slot.Name, a.Entities.Persons)
	case domain.EntityPhone:
		return firstInto(params, slot.Name, a.Entities.Phones)
	case domain.EntityEmail:
		return firstInto(params, slot.Name, a.Entities.Emails)
	case domain.EntityText:
		if value, ok := textAfterColon(a.Text); ok {
			params[slot.Name] = value
			return true
		}
	}
	return false
}

func firstInto(params map[string]string, name string, values []string) bool {
	if len(values) == 0 {
		return false
	}
	params[name] = values[0]
	return true
}

// textAfterColon returns what follows the first colon that is not part of a
// clock time such as 14:30.
func textAfterColon(text string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != ':' || isClockColon(text, i) {
			continue
		}
		rest := strings.TrimSpace(text[i+1:])
		return rest, rest != ""
	}
	return "", false
}

func isClockColon(text string, i int) bool {
	return i > 0 && i+1 < len(text) && isDigit(text[i-1]) && isDigit(text[i+1])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// fallbackValue prefers an explicit session default over the named context field.
func fallbackValue(slot domain.SlotDefinition, sc domain.SessionContext) (string, bool) {
	if value, ok := sc.Default(slot.Name); ok {
		return value, true
	}
	switch slot.Fallback {
	case domain.FallbackActingUser:
		return sc.ActingUser, sc.ActingUser != ""
	case domain.FallbackLocale:
		return sc.Locale, sc.Locale != ""
	default:
		return "", false
	}
}

func unrecognized(reason string) domain.Resolution {
	return domain.Resolution{Kind: domain.ResolutionUnrecognized, Reason: reason}
}

var _ ports.Resolver = (*Resolver)(nil)
