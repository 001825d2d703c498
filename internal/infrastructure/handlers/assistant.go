package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// ModuleAssistant is the target module served by Assistant.
const ModuleAssistant = "assistant"

// Assistant answers help requests from the command catalog.
type Assistant struct {
	catalog []domain.CatalogEntry
}

// NewAssistant builds a help handler.
func NewAssistant(catalog []domain.CatalogEntry) *Assistant {
	return &Assistant{catalog: catalog}
}

// Handle implements ports.Handler.
func (a *Assistant) Handle(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.HandlerResponse{}, err
	}
	if req.ActionType != "assistant.help" {
		return domain.HandlerResponse{}, unsupportedAction(ModuleAssistant, req.ActionType)
	}

	lines := make([]string, 0, len(a.catalog))
	for _, entry := range a.catalog {
		if entry.TargetModule == ModuleAssistant {
			continue
		}
		line := entry.Intent
		if required := requiredSlots(entry); len(required) > 0 {
			line += " (needs " + strings.Join(required, ", ") + ")"
		}
		if entry.RiskLevel() != domain.RiskNone {
			line += " [confirm]"
		}
		lines = append(lines, line)
	}
	return domain.HandlerResponse{
		Message:   fmt.Sprintf("I can handle %d commands", len(lines)),
		Data:      map[string]any{"commands": lines},
		NextSteps: lines,
	}, nil
}

func requiredSlots(entry domain.CatalogEntry) []string {
	var names []string
	for _, slot := range entry.Slots {
		if slot.Required {
			names = append(names, slot.Name)
		}
	}
	return names
}

var _ ports.Handler = (*Assistant)(nil)
