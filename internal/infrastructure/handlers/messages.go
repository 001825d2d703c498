package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// ModuleMessages is the target module served by Outbox.
const ModuleMessages = "messages"

// Message is one queued outgoing message.
type Message struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Channel   string    `json:"channel"`
	Body      string    `json:"body"`
	From      string    `json:"from"`
	CreatedAt time.Time `json:"created_at"`
}

// Outbox queues messages in memory instead of sending them.
type Outbox struct {
	mu    sync.Mutex
	items []Message
	clock Clock
}

// NewOutbox builds an empty outbox.
func NewOutbox(clock Clock) *Outbox {
	return &Outbox{clock: clockOrNow(clock)}
}

// Handle implements ports.Handler.
func (o *Outbox) Handle(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.HandlerResponse{}, err
	}
	if req.ActionType != "message.send" {
		return domain.HandlerResponse{}, unsupportedAction(ModuleMessages, req.ActionType)
	}

	body := strings.TrimSpace(req.Parameters["body"])
	if body == "" {
		return domain.HandlerResponse{}, domain.NewHandlerError(ModuleMessages, "message body is empty")
	}
	to, channel := recipient(req.Parameters)
	if to == "" {
		return domain.HandlerResponse{}, domain.NewHandlerError(ModuleMessages, "no recipient given; add a name, email or phone")
	}

	o.mu.Lock()
	msg := Message{
		ID:        fmt.Sprintf("M-%04d", len(o.items)+1),
		To:        to,
		Channel:   channel,
		Body:      body,
		From:      req.UserID,
		CreatedAt: o.clock(),
	}
	o.items = append(o.items, msg)
	o.mu.Unlock()

	return domain.HandlerResponse{
		Message: fmt.Sprintf("Message %s queued to %s via %s", msg.ID, to, channel),
		Data:    map[string]any{"message": msg},
	}, nil
}

// Sent returns a copy of the queued messages.
func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.items...)
}

func recipient(params map[string]string) (string, string) {
	switch {
	case params["email"] != "":
		return params["email"], "email"
	case params["phone"] != "":
		return params["phone"], "sms"
	case params["recipient"] != "":
		return params["recipient"], "internal"
	default:
		return "", ""
	}
}

var _ ports.Handler = (*Outbox)(nil)
