package command

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/infrastructure/analyzer"
	"github.com/doeshing/panel-go/internal/infrastructure/confirmation"
	"github.com/doeshing/panel-go/internal/infrastructure/dispatcher"
	"github.com/doeshing/panel-go/internal/infrastructure/handlers"
	"github.com/doeshing/panel-go/internal/infrastructure/history"
	"github.com/doeshing/panel-go/internal/infrastructure/monitoring"
	"github.com/doeshing/panel-go/internal/infrastructure/resolver"
	"github.com/doeshing/panel-go/internal/pkg/logger"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc      *Service
	clock    *clock
	handlers *handlers.Set
	history  *history.RingStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}

	a, err := analyzer.NewFromFile("")
	require.NoError(t, err)
	catalog, err := resolver.LoadCatalog("")
	require.NoError(t, err)

	set := handlers.NewSet(clk.Now, catalog.Commands)
	d := dispatcher.New(time.Second, logger.NewNop())
	for module, handler := range set.ByModule() {
		d.Register(module, handler)
	}
	store := history.NewRingStore(history.Options{Capacity: 50, Clock: clk.Now})

	return &fixture{
		svc: &Service{
			Analyzer:   a,
			Resolver:   resolver.New(catalog, resolver.Options{}),
			Gate:       confirmation.New(confirmation.Options{TTL: 120 * time.Second, Clock: clk.Now}),
			Dispatcher: d,
			History:    store,
			Logger:     logger.NewNop(),
			Clock:      clk.Now,
		},
		clock:    clk,
		handlers: set,
		history:  store,
	}
}

func (f *fixture) submit(session, text string) domain.SubmitOutcome {
	return f.svc.SubmitCommand(context.Background(), SubmitRequest{
		SessionID: session,
		UserID:    "ayse",
		Text:      text,
		Context:   &domain.SessionContext{ActingUser: "ayse", Locale: "tr-TR"},
	})
}

func TestDonationNeedsConfirmationThenExecutes(t *testing.T) {
	f := newFixture(t)

	out := f.submit("s1", "Yeni bağış ekle: 1000 TL")
	require.Equal(t, domain.SubmitNeedsConfirmation, out.Kind)
	require.NotNil(t, out.Ticket)
	assert.Equal(t, "add_donation", out.Analysis.Intent.Primary)
	assert.GreaterOrEqual(t, out.Analysis.Intent.Confidence, 0.6)
	assert.Equal(t, domain.RiskHigh, out.Ticket.Command.RiskLevel)
	assert.Empty(t, f.handlers.Donations.Snapshot(), "nothing runs before confirmation")
	assert.Zero(t, f.history.Len())

	pending, ok := f.svc.PendingConfirmation("s1")
	require.True(t, ok)
	assert.Equal(t, out.Ticket.ID, pending.ID)

	f.clock.Advance(30 * time.Second)
	confirmed := f.svc.Confirm(context.Background(), "s1", out.Ticket.ID, true)
	require.Equal(t, domain.ConfirmExecuted, confirmed.Kind)
	require.NotNil(t, confirmed.Result)
	assert.Equal(t, domain.StatusOK, confirmed.Result.Status)
	assert.Equal(t, "Donation D-0001 of 1,000 TL recorded", confirmed.Result.Message)

	entries := f.svc.GetHistory(domain.HistoryFilter{SessionID: "s1"}, 10)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Success)
	assert.Equal(t, "Yeni bağış ekle: 1000 TL", entries[0].Command)
	assert.Equal(t, "donation.create", entries[0].ActionType)
	assert.Equal(t, "ayse", entries[0].UserID)

	again := f.svc.Confirm(context.Background(), "s1", out.Ticket.ID, true)
	assert.Equal(t, domain.ConfirmNoMatch, again.Kind, "a ticket is consumed once")
	assert.Len(t, f.handlers.Donations.Snapshot(), 1)
}

func TestUnrecognizedIsNotRecorded(t *testing.T) {
	f := newFixture(t)

	out := f.submit("s1", "asdkjasd")
	assert.Equal(t, domain.SubmitUnrecognized, out.Kind)
	assert.Equal(t, domain.IntentUnknown, out.Analysis.Intent.Primary)
	assert.Nil(t, out.Result)
	assert.Zero(t, f.history.Len())

	empty := f.submit("s1", "")
	assert.Equal(t, domain.SubmitUnrecognized, empty.Kind)
}

func TestStaleTicketReturnsNoMatch(t *testing.T) {
	f := newFixture(t)

	first := f.submit("s1", "Yeni bağış ekle: 1000 TL")
	second := f.submit("s1", "Yeni bağış ekle: 250 TL")
	require.Equal(t, domain.SubmitNeedsConfirmation, first.Kind)
	require.Equal(t, domain.SubmitNeedsConfirmation, second.Kind)
	require.NotEqual(t, first.Ticket.ID, second.Ticket.ID)

	stale := f.svc.Confirm(context.Background(), "s1", first.Ticket.ID, true)
	assert.Equal(t, domain.ConfirmNoMatch, stale.Kind)
	assert.Empty(t, f.handlers.Donations.Snapshot())

	live := f.svc.Confirm(context.Background(), "s1", second.Ticket.ID, true)
	require.Equal(t, domain.ConfirmExecuted, live.Kind)
	assert.Equal(t, "Donation D-0001 of 250 TL recorded", live.Result.Message)
}

func TestExpiredTicketNeverExecutes(t *testing.T) {
	f := newFixture(t)

	out := f.submit("s1", "Yeni bağış ekle: 1000 TL")
	require.Equal(t, domain.SubmitNeedsConfirmation, out.Kind)

	f.clock.Advance(121 * time.Second)
	expired := f.svc.Confirm(context.Background(), "s1", out.Ticket.ID, true)
	assert.Equal(t, domain.ConfirmExpired, expired.Kind)
	assert.Nil(t, expired.Result)
	assert.Empty(t, f.handlers.Donations.Snapshot())
	assert.Zero(t, f.history.Len())

	_, ok := f.svc.PendingConfirmation("s1")
	assert.False(t, ok)
}

func TestRejectCancels(t *testing.T) {
	f := newFixture(t)

	out := f.submit("s1", "Yeni bağış ekle: 1000 TL")
	cancelled := f.svc.Confirm(context.Background(), "s1", out.Ticket.ID, false)
	assert.Equal(t, domain.ConfirmCancelled, cancelled.Kind)

	after := f.svc.Confirm(context.Background(), "s1", out.Ticket.ID, true)
	assert.Equal(t, domain.ConfirmNoMatch, after.Kind)
	assert.Zero(t, f.history.Len())
}

func TestSafeCommandDispatchesImmediately(t *testing.T) {
	f := newFixture(t)

	out := f.submit("s1", "Görevleri listele")
	require.Equal(t, domain.SubmitResolved, out.Kind)
	require.NotNil(t, out.Result)
	assert.Equal(t, "0 tasks, 0 open", out.Result.Message)

	entries := f.svc.GetHistory(domain.HistoryFilter{UserID: "ayse"}, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "task.list", entries[0].ActionType)
}

func TestClarificationKeepsPendingTicket(t *testing.T) {
	f := newFixture(t)

	pending := f.submit("s1", "Yeni bağış ekle: 1000 TL")
	clarify := f.submit("s1", "bağış ekle")
	require.Equal(t, domain.SubmitNeedsClarification, clarify.Kind)
	assert.Equal(t, []string{"amount"}, clarify.MissingSlots)

	unknown := f.submit("s1", "asdkjasd")
	require.Equal(t, domain.SubmitUnrecognized, unknown.Kind)

	out := f.svc.Confirm(context.Background(), "s1", pending.Ticket.ID, true)
	assert.Equal(t, domain.ConfirmExecuted, out.Kind)
}

func TestHandlerFailureIsRecorded(t *testing.T) {
	f := newFixture(t)

	out := f.submit("s1", "Görevi tamamla: hayalet")
	require.Equal(t, domain.SubmitNeedsConfirmation, out.Kind)

	confirmed := f.svc.Confirm(context.Background(), "s1", out.Ticket.ID, true)
	require.Equal(t, domain.ConfirmExecuted, confirmed.Kind)
	assert.Equal(t, domain.StatusError, confirmed.Result.Status)
	assert.Equal(t, `no open task matches "hayalet"`, confirmed.Result.Message)

	entries := f.svc.GetHistory(domain.HistoryFilter{}, 0)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)

	snapshot := f.svc.GetAnalytics(domain.HistoryFilter{})
	assert.Equal(t, 1, snapshot.TotalCommands)
	assert.Zero(t, snapshot.SuccessRate)
}

func TestSessionsDoNotShareTickets(t *testing.T) {
	f := newFixture(t)

	a := f.submit("s1", "Yeni bağış ekle: 1000 TL")
	b := f.submit("s2", "Yeni bağış ekle: 500 TL")

	assert.Equal(t, domain.ConfirmNoMatch, f.svc.Confirm(context.Background(), "s2", a.Ticket.ID, true).Kind)
	assert.Equal(t, domain.ConfirmExecuted, f.svc.Confirm(context.Background(), "s1", a.Ticket.ID, true).Kind)
	assert.Equal(t, domain.ConfirmExecuted, f.svc.Confirm(context.Background(), "s2", b.Ticket.ID, true).Kind)
}

func TestConcurrentSessions(t *testing.T) {
	f := newFixture(t)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		session := fmt.Sprintf("s%d", i)
		g.Go(func() error {
			out := f.submit(session, "list tasks")
			if out.Kind != domain.SubmitResolved {
				return fmt.Errorf("%s: got %s", session, out.Kind)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 20, f.history.Len())
	assert.InDelta(t, 1.0, f.svc.GetAnalytics(domain.HistoryFilter{}).SuccessRate, 1e-9)
}

type staticSession struct{}

func (staticSession) Current(context.Context) (string, domain.SessionContext) {
	return "mehmet", domain.SessionContext{ActingUser: "mehmet", Locale: "tr-TR"}
}

func TestSessionProviderFillsIdentity(t *testing.T) {
	f := newFixture(t)
	f.svc.Sessions = staticSession{}

	out := f.svc.SubmitCommand(context.Background(), SubmitRequest{SessionID: "s1", Text: "Yeni bağış ekle: 75 TL"})
	require.Equal(t, domain.SubmitNeedsConfirmation, out.Kind)
	assert.Equal(t, "mehmet", out.Ticket.UserID)
	assert.Equal(t, "mehmet", out.Ticket.Command.Parameters["recorded_by"])
}

func TestMonitoring(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.svc.StartMonitoring("ayse", domain.MonitorRealtime), "unconfigured")
	f.svc.StopMonitoring("ayse", domain.MonitorRealtime)
	assert.Nil(t, f.svc.PendingInsights("ayse"))

	sink := monitoring.NewMemorySink(8)
	controller := monitoring.NewController(monitoring.Options{
		Generator:        monitoring.NewHistoryInsights(f.history, f.clock.Now),
		Sink:             sink,
		RealtimeInterval: time.Hour,
	})
	t.Cleanup(controller.StopAll)
	f.svc.Monitoring = controller
	f.svc.Insights = sink

	require.NoError(t, f.svc.StartMonitoring("ayse", domain.MonitorRealtime))
	require.NoError(t, f.svc.StartMonitoring("ayse", domain.MonitorRealtime))
	assert.Len(t, controller.Sessions(), 1)
	assert.Error(t, f.svc.StartMonitoring("ayse", domain.MonitorKind("weekly")))

	require.NoError(t, sink.Deliver(context.Background(), domain.Insight{ID: "i1", UserID: "ayse"}))
	assert.Len(t, f.svc.PendingInsights("ayse"), 1)

	f.svc.StopMonitoring("ayse", domain.MonitorRealtime)
	assert.False(t, controller.Active("ayse", domain.MonitorRealtime))
}
