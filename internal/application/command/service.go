// Package command is the conversational command pipeline: it analyzes free
// text, resolves it to a command, gates risky commands behind confirmation,
// dispatches to domain handlers and records every dispatch in history.
package command

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/pkg/keylock"
	"github.com/doeshing/panel-go/internal/ports"
)

// InsightQueue hands out insights queued for a user.
type InsightQueue interface {
	Drain(userID string) []domain.Insight
}

// SubmitRequest is one free-text submission. A nil Context is filled from
// the session provider.
type SubmitRequest struct {
	SessionID string
	UserID    string
	Text      string
	Context   *domain.SessionContext
}

// Service wires the pipeline stages. Requests for the same session run one
// at a time; different sessions proceed in parallel.
type Service struct {
	Analyzer   ports.Analyzer
	Resolver   ports.Resolver
	Gate       ports.ConfirmationGate
	Dispatcher ports.Dispatcher
	History    ports.HistoryRepository
	Monitoring ports.MonitoringController
	Insights   InsightQueue
	Sessions   ports.SessionProvider
	Logger     ports.Logger
	Clock      func() time.Time

	locks keylock.Map
}

// SubmitCommand runs one request through the pipeline. It never fails; every
// problem is reported through the outcome kind.
func (s *Service) SubmitCommand(ctx context.Context, req SubmitRequest) domain.SubmitOutcome {
	unlock := s.locks.Lock(req.SessionID)
	defer unlock()

	userID, sc := s.identify(ctx, req)
	request := domain.NewCommandRequest(req.SessionID, userID, req.Text, sc, s.now())

	analysis := s.Analyzer.Analyze(request.RawText)
	resolution := s.Resolver.Resolve(analysis, request.Context)
	s.debug("command resolved", map[string]interface{}{
		"session_id": request.SessionID,
		"intent":     analysis.Intent.Primary,
		"confidence": analysis.Intent.Confidence,
		"kind":       string(resolution.Kind),
	})

	switch resolution.Kind {
	case domain.ResolutionNeedsClarification:
		return domain.SubmitOutcome{Kind: domain.SubmitNeedsClarification, MissingSlots: resolution.MissingSlots, Analysis: analysis}
	case domain.ResolutionResolved:
		if resolution.Command == nil {
			break
		}
		cmd := *resolution.Command
		if ticket, pending := s.Gate.Submit(request.SessionID, userID, request.RawText, cmd); pending {
			return domain.SubmitOutcome{Kind: domain.SubmitNeedsConfirmation, Ticket: ticket, Analysis: analysis}
		}
		result := s.dispatch(ctx, request.SessionID, userID, request.RawText, cmd)
		return domain.SubmitOutcome{Kind: domain.SubmitResolved, Result: &result, Analysis: analysis}
	}
	return domain.SubmitOutcome{Kind: domain.SubmitUnrecognized, Analysis: analysis}
}

// Confirm answers the session's pending confirmation. Accepting a matching,
// unexpired ticket dispatches its command exactly once.
func (s *Service) Confirm(ctx context.Context, sessionID, ticketID string, accept bool) domain.ConfirmOutcome {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if !accept {
		if err := s.Gate.Reject(sessionID, ticketID); err != nil {
			return confirmFailure(err)
		}
		return domain.ConfirmOutcome{Kind: domain.ConfirmCancelled}
	}

	ticket, err := s.Gate.Accept(sessionID, ticketID)
	if err != nil {
		return confirmFailure(err)
	}
	result := s.dispatch(ctx, sessionID, ticket.UserID, ticket.RequestText, ticket.Command)
	return domain.ConfirmOutcome{Kind: domain.ConfirmExecuted, Result: &result}
}

// PendingConfirmation returns the session's live ticket, if any.
func (s *Service) PendingConfirmation(sessionID string) (domain.ConfirmationTicket, bool) {
	return s.Gate.Pending(sessionID)
}

// GetHistory returns up to limit entries, newest first.
func (s *Service) GetHistory(filter domain.HistoryFilter, limit int) []domain.HistoryEntry {
	return s.History.Entries(filter, limit)
}

// GetAnalytics derives analytics over the retained history.
func (s *Service) GetAnalytics(filter domain.HistoryFilter) domain.AnalyticsSnapshot {
	return s.History.Snapshot(filter)
}

// StartMonitoring starts a background session. Starting an active one is a no-op.
func (s *Service) StartMonitoring(userID string, kind domain.MonitorKind) error {
	if s.Monitoring == nil {
		return errors.New("monitoring is not configured")
	}
	started, err := s.Monitoring.Start(userID, kind)
	if err != nil {
		return errors.Wrapf(err, "start %s monitoring", kind)
	}
	if started {
		s.debug("monitoring requested", map[string]interface{}{"user_id": userID, "kind": string(kind)})
	}
	return nil
}

// StopMonitoring stops a background session. Stopping an inactive one is a no-op.
func (s *Service) StopMonitoring(userID string, kind domain.MonitorKind) {
	if s.Monitoring != nil {
		s.Monitoring.Stop(userID, kind)
	}
}

// PendingInsights drains the insights queued for a user.
func (s *Service) PendingInsights(userID string) []domain.Insight {
	if s.Insights == nil {
		return nil
	}
	return s.Insights.Drain(userID)
}

func (s *Service) dispatch(ctx context.Context, sessionID, userID, text string, cmd domain.StructuredCommand) domain.ExecutionResult {
	result := s.Dispatcher.Execute(ctx, cmd, userID)
	s.History.Record(domain.HistoryEntry{
		Command:      text,
		ActionType:   cmd.ActionType,
		TargetModule: cmd.TargetModule,
		UserID:       userID,
		SessionID:    sessionID,
		Timestamp:    s.now(),
		Result:       result,
		Success:      result.Succeeded(),
	})
	return result
}

func (s *Service) identify(ctx context.Context, req SubmitRequest) (string, domain.SessionContext) {
	var userID string
	var sc domain.SessionContext
	if s.Sessions != nil {
		userID, sc = s.Sessions.Current(ctx)
	}
	if req.UserID != "" {
		userID = req.UserID
	}
	if req.Context != nil {
		sc = *req.Context
	}
	if sc.ActingUser == "" {
		sc.ActingUser = userID
	}
	return userID, sc
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) debug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}

func confirmFailure(err error) domain.ConfirmOutcome {
	if errors.Is(err, domain.ErrTicketExpired) {
		return domain.ConfirmOutcome{Kind: domain.ConfirmExpired}
	}
	return domain.ConfirmOutcome{Kind: domain.ConfirmNoMatch}
}
