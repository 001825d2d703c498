// Package handlers provides in-memory domain handlers so the pipeline can run
// end to end without the hosted backend.
package handlers

import (
	"fmt"
	"time"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// Clock returns the current time.
type Clock func() time.Time

func clockOrNow(clock Clock) Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

func unsupportedAction(module, action string) error {
	return domain.NewHandlerError(module, fmt.Sprintf("action %s is not supported", action))
}

// Set bundles the reference handlers.
type Set struct {
	Donations *DonationLedger
	Tasks     *TaskBoard
	Reports   *ReportBuilder
	Messages  *Outbox
	Assistant *Assistant
}

// NewSet wires the reference handlers together. Catalog entries feed the help text.
func NewSet(clock Clock, catalog []domain.CatalogEntry) *Set {
	donations := NewDonationLedger(clock)
	tasks := NewTaskBoard(clock)
	return &Set{
		Donations: donations,
		Tasks:     tasks,
		Reports:   NewReportBuilder(donations, tasks, clock),
		Messages:  NewOutbox(clock),
		Assistant: NewAssistant(catalog),
	}
}

// ByModule maps target modules to handlers.
func (s *Set) ByModule() map[string]ports.Handler {
	return map[string]ports.Handler{
		ModuleDonations: s.Donations,
		ModuleTasks:     s.Tasks,
		ModuleReports:   s.Reports,
		ModuleMessages:  s.Messages,
		ModuleAssistant: s.Assistant,
	}
}
