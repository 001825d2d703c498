package handlers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// ModuleDonations is the target module served by DonationLedger.
const ModuleDonations = "donations"

// Donation is one ledger record.
type Donation struct {
	ID         string    `json:"id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Donor      string    `json:"donor,omitempty"`
	RecordedBy string    `json:"recorded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DonationLedger is an in-memory donation ledger.
type DonationLedger struct {
	mu    sync.Mutex
	items []Donation
	seq   int
	clock Clock
}

// NewDonationLedger builds an empty ledger.
func NewDonationLedger(clock Clock) *DonationLedger {
	return &DonationLedger{clock: clockOrNow(clock)}
}

// Handle implements ports.Handler.
func (l *DonationLedger) Handle(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.HandlerResponse{}, err
	}
	switch req.ActionType {
	case "donation.create":
		return l.create(req)
	case "donation.list":
		return l.list(), nil
	case "donation.delete":
		return l.remove(req.Parameters["record"])
	default:
		return domain.HandlerResponse{}, unsupportedAction(ModuleDonations, req.ActionType)
	}
}

func (l *DonationLedger) create(req domain.HandlerRequest) (domain.HandlerResponse, error) {
	amount, err := strconv.ParseFloat(req.Parameters["amount"], 64)
	if err != nil {
		return domain.HandlerResponse{}, domain.NewHandlerErrorWithCause(ModuleDonations, "amount is not a number", err)
	}
	if amount <= 0 {
		return domain.HandlerResponse{}, domain.NewHandlerError(ModuleDonations, "amount must be positive")
	}
	currency := req.Parameters["currency"]
	if currency == "" {
		currency = "TL"
	}
	recordedBy := req.Parameters["recorded_by"]
	if recordedBy == "" {
		recordedBy = req.UserID
	}

	l.mu.Lock()
	l.seq++
	donation := Donation{
		ID:         fmt.Sprintf("D-%04d", l.seq),
		Amount:     amount,
		Currency:   currency,
		Donor:      req.Parameters["donor"],
		RecordedBy: recordedBy,
		CreatedAt:  l.clock(),
	}
	l.items = append(l.items, donation)
	l.mu.Unlock()

	msg := fmt.Sprintf("Donation %s of %s %s recorded", donation.ID, formatAmount(amount), currency)
	if donation.Donor != "" {
		msg += " for " + donation.Donor
	}
	return domain.HandlerResponse{
		Message:   msg,
		Data:      map[string]any{"donation": donation},
		NextSteps: []string{"send a thank-you message", "list donations"},
	}, nil
}

func (l *DonationLedger) list() domain.HandlerResponse {
	l.mu.Lock()
	items := append([]Donation(nil), l.items...)
	l.mu.Unlock()

	if len(items) == 0 {
		return domain.HandlerResponse{Message: "No donations recorded yet", Data: map[string]any{"donations": items}}
	}
	totals := Totals(items)
	return domain.HandlerResponse{
		Message: fmt.Sprintf("%d donations, total %s", len(items), formatTotals(totals)),
		Data:    map[string]any{"donations": items, "totals": totals},
	}
}

func (l *DonationLedger) remove(record string) (domain.HandlerResponse, error) {
	record = strings.TrimSpace(record)
	if record == "" {
		return domain.HandlerResponse{}, domain.NewHandlerError(ModuleDonations, "which donation should be deleted?")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, item := range l.items {
		if strings.EqualFold(item.ID, record) || (item.Donor != "" && strings.EqualFold(item.Donor, record)) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return domain.HandlerResponse{
				Message: fmt.Sprintf("Donation %s deleted", item.ID),
				Data:    map[string]any{"donation": item},
			}, nil
		}
	}
	return domain.HandlerResponse{}, domain.NewHandlerError(ModuleDonations, fmt.Sprintf("no donation matches %q", record))
}

// Snapshot returns a copy of the ledger.
func (l *DonationLedger) Snapshot() []Donation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Donation(nil), l.items...)
}

// Totals sums donations per currency.
func Totals(items []Donation) map[string]float64 {
	totals := make(map[string]float64)
	for _, item := range items {
		totals[item.Currency] += item.Amount
	}
	return totals
}

func formatTotals(totals map[string]float64) string {
	currencies := make([]string, 0, len(totals))
	for currency := range totals {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	parts := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		parts = append(parts, formatAmount(totals[currency])+" "+currency)
	}
	return strings.Join(parts, ", ")
}

func formatAmount(amount float64) string {
	return humanize.CommafWithDigits(amount, 2)
}

var _ ports.Handler = (*DonationLedger)(nil)
