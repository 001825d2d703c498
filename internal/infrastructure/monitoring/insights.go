package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

const (
	// recentWindow is how many of a user's newest entries realtime checks look at.
	recentWindow = 10
	// minSampleForRate avoids warning about the success rate of one or two commands.
	minSampleForRate = 4
	lowSuccessRate   = 0.5
)

// HistoryInsights derives insights from the command history.
type HistoryInsights struct {
	history ports.HistoryRepository
	now     func() time.Time

	mu sync.Mutex
	// lastFailure remembers the newest failure already reported per user.
	lastFailure map[string]time.Time
}

// NewHistoryInsights builds a generator over history.
func NewHistoryInsights(history ports.HistoryRepository, clock func() time.Time) *HistoryInsights {
	if clock == nil {
		clock = time.Now
	}
	return &HistoryInsights{history: history, now: clock, lastFailure: map[string]time.Time{}}
}

// Generate implements ports.InsightGenerator.
func (h *HistoryInsights) Generate(ctx context.Context, userID string, kind domain.MonitorKind) []domain.Insight {
	if ctx.Err() != nil {
		return nil
	}
	switch kind {
	case domain.MonitorRealtime:
		return h.realtime(userID)
	case domain.MonitorProactive:
		return h.proactive(userID)
	default:
		return nil
	}
}

func (h *HistoryInsights) realtime(userID string) []domain.Insight {
	filter := domain.HistoryFilter{UserID: userID}
	recent := h.history.Entries(filter, recentWindow)

	var insights []domain.Insight
	h.mu.Lock()
	seen := h.lastFailure[userID]
	var failures []domain.HistoryEntry
	for _, entry := range recent {
		if !entry.Success && entry.Timestamp.After(seen) {
			failures = append(failures, entry)
		}
	}
	if len(failures) > 0 {
		h.lastFailure[userID] = failures[0].Timestamp
	}
	h.mu.Unlock()

	if len(failures) > 0 {
		insights = append(insights, h.insight(userID, domain.MonitorRealtime, domain.SeverityWarning,
			"Recent commands failed",
			fmt.Sprintf("%d new failed command(s); latest %q: %s", len(failures), failures[0].Command, failures[0].Result.Message)))
	}

	if len(recent) >= minSampleForRate {
		succeeded := 0
		for _, entry := range recent {
			if entry.Success {
				succeeded++
			}
		}
		rate := float64(succeeded) / float64(len(recent))
		if rate < lowSuccessRate {
			insights = append(insights, h.insight(userID, domain.MonitorRealtime, domain.SeverityWarning,
				"Low success rate",
				fmt.Sprintf("Only %.0f%% of your last %d commands succeeded", rate*100, len(recent))))
		}
	}
	return insights
}

func (h *HistoryInsights) proactive(userID string) []domain.Insight {
	snapshot := h.history.Snapshot(domain.HistoryFilter{UserID: userID})

	var insights []domain.Insight
	if len(snapshot.LearnedPatterns) > 0 {
		top := snapshot.LearnedPatterns[0]
		insights = append(insights, h.insight(userID, domain.MonitorProactive, domain.SeverityInfo,
			"Frequent command",
			fmt.Sprintf("You ran %s %d times (%.0f%% succeeded)", top.Pattern, top.UsageCount, top.SuccessRate*100)))
	}
	if trend := snapshot.DailyTrend; len(trend) > 0 && trend[len(trend)-1].Count == 0 {
		insights = append(insights, h.insight(userID, domain.MonitorProactive, domain.SeverityInfo,
			"No activity today",
			"Nothing has been recorded today; try \"yardım\" to see what I can do"))
	}
	return insights
}

func (h *HistoryInsights) insight(userID string, kind domain.MonitorKind, severity domain.InsightSeverity, title, message string) domain.Insight {
	return domain.Insight{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Severity:  severity,
		Title:     title,
		Message:   message,
		CreatedAt: h.now(),
	}
}

var _ ports.InsightGenerator = (*HistoryInsights)(nil)
