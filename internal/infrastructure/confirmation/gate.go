package confirmation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// Options configure a Gate.
type Options struct {
	TTL    time.Duration
	Clock  func() time.Time
	NewID  func() string
	Logger ports.Logger
}

// Gate keeps at most one live ticket per session. Expiry is lazy: a ticket
// past its deadline is dropped when its session is observed or when any
// session submits.
type Gate struct {
	mu      sync.Mutex
	tickets map[string]domain.ConfirmationTicket
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
	log     ports.Logger
}

// New builds a Gate with defaults for unset options.
func New(opts Options) *Gate {
	g := &Gate{
		tickets: make(map[string]domain.ConfirmationTicket),
		ttl:     opts.TTL,
		now:     opts.Clock,
		newID:   opts.NewID,
		log:     opts.Logger,
	}
	if g.ttl <= 0 {
		g.ttl = domain.DefaultConfirmationTTL
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	return g
}

// Submit cancels the session's live ticket and, when the command requires
// confirmation, opens a new one.
func (g *Gate) Submit(sessionID, userID, text string, cmd domain.StructuredCommand) (*domain.ConfirmationTicket, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if stale, ok := g.tickets[sessionID]; ok {
		delete(g.tickets, sessionID)
		g.debug("confirmation superseded", stale)
	}
	g.sweep(now)
	if !cmd.RequiresConfirmation {
		return nil, false
	}

	ticket := domain.ConfirmationTicket{
		ID:          g.newID(),
		SessionID:   sessionID,
		UserID:      userID,
		RequestText: text,
		Command:     cmd,
		CreatedAt:   now,
		ExpiresAt:   now.Add(g.ttl),
	}
	g.tickets[sessionID] = ticket
	g.debug("confirmation pending", ticket)
	return &ticket, true
}

// Accept consumes the live ticket when ticketID matches it.
func (g *Gate) Accept(sessionID, ticketID string) (domain.ConfirmationTicket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ticket, err := g.take(sessionID, ticketID)
	if err != nil {
		return domain.ConfirmationTicket{}, err
	}
	g.debug("confirmation accepted", ticket)
	return ticket, nil
}

// Reject cancels the live ticket when ticketID matches it.
func (g *Gate) Reject(sessionID, ticketID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ticket, err := g.take(sessionID, ticketID)
	if err != nil {
		return err
	}
	g.debug("confirmation cancelled", ticket)
	return nil
}

// take removes and returns the matching live ticket. Caller holds g.mu.
func (g *Gate) take(sessionID, ticketID string) (domain.ConfirmationTicket, error) {
	ticket, ok := g.tickets[sessionID]
	if !ok {
		return domain.ConfirmationTicket{}, domain.ErrNoMatchingTicket
	}
	if ticket.Expired(g.now()) {
		delete(g.tickets, sessionID)
		g.debug("confirmation expired", ticket)
		if ticket.ID == ticketID {
			return domain.ConfirmationTicket{}, domain.ErrTicketExpired
		}
		return domain.ConfirmationTicket{}, domain.ErrNoMatchingTicket
	}
	if ticket.ID != ticketID {
		return domain.ConfirmationTicket{}, domain.ErrNoMatchingTicket
	}
	delete(g.tickets, sessionID)
	return ticket, nil
}

// Pending returns the session's live ticket, expiring it if its deadline passed.
func (g *Gate) Pending(sessionID string) (domain.ConfirmationTicket, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ticket, ok := g.tickets[sessionID]
	if !ok {
		return domain.ConfirmationTicket{}, false
	}
	if ticket.Expired(g.now()) {
		delete(g.tickets, sessionID)
		g.debug("confirmation expired", ticket)
		return domain.ConfirmationTicket{}, false
	}
	return ticket, true
}

// State reports the session's gate state.
func (g *Gate) State(sessionID string) domain.GateState {
	if _, ok := g.Pending(sessionID); ok {
		return domain.GatePendingConfirmation
	}
	return domain.GateIdle
}

// sweep drops expired tickets of every session. Caller holds g.mu.
func (g *Gate) sweep(now time.Time) {
	for sessionID, ticket := range g.tickets {
		if ticket.Expired(now) {
			delete(g.tickets, sessionID)
			g.debug("confirmation expired", ticket)
		}
	}
}

func (g *Gate) debug(msg string, ticket domain.ConfirmationTicket) {
	if g.log == nil {
		return
	}
	g.log.Debug(msg, map[string]interface{}{
		"session_id": ticket.SessionID,
		"ticket_id":  ticket.ID,
		"action":     ticket.Command.ActionType,
	})
}

var _ ports.ConfirmationGate = (*Gate)(nil)
