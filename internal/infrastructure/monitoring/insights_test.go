package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/infrastructure/history"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func record(store *history.RingStore, command string, ok bool, at time.Time) {
	result := domain.OKResult("done", nil, nil)
	if !ok {
		result = domain.ErrorResult("handler refused")
	}
	store.Record(domain.HistoryEntry{Command: command, ActionType: "task." + command, UserID: "ayse", Timestamp: at, Result: result})
}

func titles(insights []domain.Insight) []string {
	out := make([]string, 0, len(insights))
	for _, in := range insights {
		out = append(out, in.Title)
	}
	return out
}

func TestHistoryInsightsRealtime(t *testing.T) {
	store := history.NewRingStore(history.Options{Clock: func() time.Time { return now }})
	gen := NewHistoryInsights(store, func() time.Time { return now })

	assert.Empty(t, gen.Generate(context.Background(), "ayse", domain.MonitorRealtime))

	record(store, "create", true, now.Add(-4*time.Minute))
	record(store, "complete", false, now.Add(-3*time.Minute))
	record(store, "complete", false, now.Add(-2*time.Minute))
	record(store, "complete", false, now.Add(-1*time.Minute))

	insights := gen.Generate(context.Background(), "ayse", domain.MonitorRealtime)
	assert.Equal(t, []string{"Recent commands failed", "Low success rate"}, titles(insights))
	assert.Contains(t, insights[0].Message, "3 new failed command(s)")
	assert.Equal(t, domain.SeverityWarning, insights[0].Severity)
	assert.NotEmpty(t, insights[0].ID)
	assert.Equal(t, now, insights[0].CreatedAt)

	again := gen.Generate(context.Background(), "ayse", domain.MonitorRealtime)
	assert.Equal(t, []string{"Low success rate"}, titles(again), "failures are reported once")
}

func TestHistoryInsightsProactive(t *testing.T) {
	store := history.NewRingStore(history.Options{Clock: func() time.Time { return now }})
	gen := NewHistoryInsights(store, func() time.Time { return now })

	idle := gen.Generate(context.Background(), "ayse", domain.MonitorProactive)
	assert.Equal(t, []string{"No activity today"}, titles(idle))

	record(store, "list", true, now.Add(-time.Hour))
	record(store, "list", true, now.Add(-30*time.Minute))
	record(store, "create", true, now.Add(-10*time.Minute))

	insights := gen.Generate(context.Background(), "ayse", domain.MonitorProactive)
	require.Equal(t, []string{"Frequent command"}, titles(insights))
	assert.Equal(t, "You ran task.list 2 times (100% succeeded)", insights[0].Message)
	assert.Equal(t, domain.SeverityInfo, insights[0].Severity)
}

func TestHistoryInsightsCancelled(t *testing.T) {
	store := history.NewRingStore(history.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, NewHistoryInsights(store, nil).Generate(ctx, "ayse", domain.MonitorProactive))
}
