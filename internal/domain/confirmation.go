package domain

import "time"

// GateState is the observable state of one session in the confirmation gate.
type GateState string

const (
	GateIdle                GateState = "idle"
	GatePendingConfirmation GateState = "pending_confirmation"
)

// GateTransition names the terminal transitions out of PendingConfirmation.
type GateTransition string

const (
	TransitionConfirmed GateTransition = "confirmed"
	TransitionCancelled GateTransition = "cancelled"
	TransitionExpired   GateTransition = "expired"
)

// ConfirmationTicket gates execution of one risky command for one session.
type ConfirmationTicket struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"session_id"`
	UserID      string            `json:"user_id"`
	RequestText string            `json:"request_text"`
	Command     StructuredCommand `json:"command"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// Expired reports whether the ticket can no longer be accepted at now.
func (t ConfirmationTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative.
func (t ConfirmationTicket) Remaining(now time.Time) time.Duration {
	if t.Expired(now) {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}
