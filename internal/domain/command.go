package domain

import (
	"sort"
	"strings"
)

// RiskLevel classifies how dangerous a command is to run without a human check.
type RiskLevel string

const (
	RiskNone RiskLevel = "none"
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// ParseRiskLevel maps free-form catalog values onto the closed set.
func ParseRiskLevel(value string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "safe":
		return RiskNone, true
	case "low", "medium":
		return RiskLow, true
	case "high", "critical":
		return RiskHigh, true
	default:
		return RiskNone, false
	}
}

// StructuredCommand is the executable form of a resolved request.
type StructuredCommand struct {
	ID                       string            `json:"id"`
	ActionType               string            `json:"action_type"`
	TargetModule             string            `json:"target_module"`
	Parameters               map[string]string `json:"parameters"`
	RequiresConfirmation     bool              `json:"requires_confirmation"`
	EstimatedDurationSeconds int               `json:"estimated_duration_seconds"`
	RiskLevel                RiskLevel         `json:"risk_level"`
	Confidence               float64           `json:"confidence"`
}

// Describe renders the command as "action k=v k=v" with sorted keys.
func (c StructuredCommand) Describe() string {
	keys := make([]string, 0, len(c.Parameters))
	for k := range c.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(c.ActionType)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(c.Parameters[k])
	}
	return b.String()
}

// ResolutionKind tells the caller what to do with a resolver outcome.
type ResolutionKind string

const (
	ResolutionResolved           ResolutionKind = "resolved"
	ResolutionUnrecognized       ResolutionKind = "unrecognized"
	ResolutionNeedsClarification ResolutionKind = "needs_clarification"
)

// Resolution is the resolver output. Command is set only for ResolutionResolved.
type Resolution struct {
	Kind         ResolutionKind
	Command      *StructuredCommand
	MissingSlots []string
	Reason       string
}

// SlotSource names where a command parameter is taken from.
type SlotSource = EntityKind

// SourceContext marks a slot filled only from session defaults or its fallback.
const SourceContext SlotSource = "context"

// SlotFallback names a session context field used for unfilled optional slots.
type SlotFallback string

const (
	FallbackNone       SlotFallback = ""
	FallbackActingUser SlotFallback = "acting_user"
	FallbackLocale     SlotFallback = "locale"
)

// SlotDefinition describes one command parameter.
type SlotDefinition struct {
	Name     string       `yaml:"name"`
	Source   SlotSource   `yaml:"source"`
	Required bool         `yaml:"required"`
	Fallback SlotFallback `yaml:"fallback,omitempty"`
}

// CatalogEntry maps an intent onto an executable command template.
type CatalogEntry struct {
	Intent              string           `yaml:"intent"`
	ActionType          string           `yaml:"action_type"`
	TargetModule        string           `yaml:"target_module"`
	Risk                string           `yaml:"risk_level"`
	BaseDurationSeconds int              `yaml:"base_duration_seconds"`
	SecondsPerParameter int              `yaml:"seconds_per_parameter"`
	Slots               []SlotDefinition `yaml:"slots"`
}

// RiskLevel returns the parsed risk, treating unknown values as high.
func (e CatalogEntry) RiskLevel() RiskLevel {
	level, ok := ParseRiskLevel(e.Risk)
	if !ok {
		return RiskHigh
	}
	return level
}

// ExpectedEntities lists the entity kinds that required slots draw from.
func (e CatalogEntry) ExpectedEntities() []EntityKind {
	var kinds []EntityKind
	seen := map[EntityKind]bool{}
	for _, slot := range e.Slots {
		if !slot.Required || slot.Source == EntityText || slot.Source == SourceContext || seen[slot.Source] {
			continue
		}
		seen[slot.Source] = true
		kinds = append(kinds, slot.Source)
	}
	return kinds
}
