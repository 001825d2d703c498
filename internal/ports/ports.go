// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the command pipeline core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces let the pipeline stay independent of
// specific implementations like archives, message buses, schedulers, or the
// CLI framework.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Analyzer, Dispatcher, HistoryArchive)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/panel-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.panel/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Analyzer turns raw input text into a structured analysis. It never fails.
type Analyzer interface {
	Analyze(text string) domain.Analysis
}

// Resolver maps an analysis plus session context onto zero or one structured command.
type Resolver interface {
	Resolve(analysis domain.Analysis, sc domain.SessionContext) domain.Resolution
}

// ConfirmationGate holds at most one live confirmation ticket per session.
type ConfirmationGate interface {
	Submit(sessionID, userID, text string, cmd domain.StructuredCommand) (*domain.ConfirmationTicket, bool)
	Accept(sessionID, ticketID string) (domain.ConfirmationTicket, error)
	Reject(sessionID, ticketID string) error
	Pending(sessionID string) (domain.ConfirmationTicket, bool)
	State(sessionID string) domain.GateState
}

// Dispatcher routes a command to its domain handler and normalizes the outcome.
type Dispatcher interface {
	Execute(ctx context.Context, cmd domain.StructuredCommand, userID string) domain.ExecutionResult
}

// Handler executes commands for one target module (donation ledger, tasks, ...).
// Handlers are external collaborators; they may block on I/O and may fail.
type Handler interface {
	Handle(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
	return f(ctx, req)
}

// HistoryRepository is the bounded, append-only command log with derived analytics.
type HistoryRepository interface {
	Record(entry domain.HistoryEntry)
	Entries(filter domain.HistoryFilter, limit int) []domain.HistoryEntry
	Snapshot(filter domain.HistoryFilter) domain.AnalyticsSnapshot
	Clear() error
}

// HistoryArchive persists history entries beyond the in-memory window.
type HistoryArchive interface {
	Append(ctx context.Context, entry domain.HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Clear(ctx context.Context) error
	Close() error
}

// InsightGenerator produces unsolicited insights for one monitoring tick.
type InsightGenerator interface {
	Generate(ctx context.Context, userID string, kind domain.MonitorKind) []domain.Insight
}

// InsightSink receives insights emitted by monitoring sessions.
type InsightSink interface {
	Deliver(ctx context.Context, insight domain.Insight) error
}

// MonitoringController manages idempotent background insight sessions per (user, kind).
type MonitoringController interface {
	Start(userID string, kind domain.MonitorKind) (bool, error)
	Stop(userID string, kind domain.MonitorKind) bool
	Active(userID string, kind domain.MonitorKind) bool
	Sessions() []domain.MonitoringSession
	StopAll()
}

// SessionProvider supplies the identity and session-scoped context of the caller.
type SessionProvider interface {
	Current(ctx context.Context) (userID string, sc domain.SessionContext)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
