package domain

import (
	"strings"
	"time"
)

// SessionContext is supplied by the identity/session provider for every request.
// Defaults hold fallback values for optional command parameters.
type SessionContext struct {
	ActingUser string            `json:"acting_user" yaml:"acting_user"`
	Locale     string            `json:"locale" yaml:"locale"`
	Defaults   map[string]string `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// Default returns the configured default for a parameter name.
func (c SessionContext) Default(name string) (string, bool) {
	if c.Defaults == nil {
		return "", false
	}
	value, ok := c.Defaults[name]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// CommandRequest captures one free-text submission. Treat it as read-only after construction.
type CommandRequest struct {
	RawText     string
	UserID      string
	SessionID   string
	Context     SessionContext
	SubmittedAt time.Time
}

// NewCommandRequest builds a request, copying the context defaults so later
// mutation of the caller's map cannot leak into the request.
func NewCommandRequest(sessionID, userID, text string, sc SessionContext, at time.Time) CommandRequest {
	defaults := make(map[string]string, len(sc.Defaults))
	for k, v := range sc.Defaults {
		defaults[k] = v
	}
	sc.Defaults = defaults
	return CommandRequest{
		RawText:     strings.TrimSpace(text),
		UserID:      userID,
		SessionID:   sessionID,
		Context:     sc,
		SubmittedAt: at,
	}
}
