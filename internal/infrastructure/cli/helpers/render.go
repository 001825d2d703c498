package helpers

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/panel-go/internal/domain"
)

// RenderSubmitOutcome prints what happened to a submission.
func RenderSubmitOutcome(out io.Writer, outcome domain.SubmitOutcome, now time.Time) {
	switch outcome.Kind {
	case domain.SubmitResolved:
		RenderResult(out, outcome.Result)
	case domain.SubmitNeedsConfirmation:
		if outcome.Ticket == nil {
			fmt.Fprintln(out, "Confirmation required.")
			return
		}
		ticket := outcome.Ticket
		fmt.Fprintf(out, "Confirmation required (%s risk)\n", strings.ToUpper(string(ticket.Command.RiskLevel)))
		fmt.Fprintf(out, "Command:\n  %s\n", ticket.Command.Describe())
		fmt.Fprintf(out, "Ticket %s expires in %s\n", ticket.ID, ticket.Remaining(now).Round(time.Second))
	case domain.SubmitNeedsClarification:
		fmt.Fprintf(out, "More detail needed: %s\n", strings.Join(outcome.MissingSlots, ", "))
	default:
		fmt.Fprintln(out, "Command not recognized. Try rephrasing, e.g. \"Görevleri listele\".")
	}
}

// RenderConfirmOutcome prints the answer to a confirmation.
func RenderConfirmOutcome(out io.Writer, outcome domain.ConfirmOutcome) {
	switch outcome.Kind {
	case domain.ConfirmExecuted:
		RenderResult(out, outcome.Result)
	case domain.ConfirmCancelled:
		fmt.Fprintln(out, "Cancelled.")
	case domain.ConfirmExpired:
		fmt.Fprintln(out, "Confirmation expired; submit the command again.")
	default:
		fmt.Fprintln(out, "Nothing is waiting for confirmation.")
	}
}

// RenderResult prints an execution result with its data and next steps.
func RenderResult(out io.Writer, result *domain.ExecutionResult) {
	if result == nil {
		return
	}
	if result.Succeeded() {
		fmt.Fprintf(out, "OK: %s\n", result.Message)
	} else {
		fmt.Fprintf(out, "Failed: %s\n", result.Message)
	}

	keys := make([]string, 0, len(result.Data))
	for key := range result.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "  %s: %v\n", key, result.Data[key])
	}

	if len(result.NextSteps) > 0 {
		fmt.Fprintln(out, "Next steps:")
		for _, step := range result.NextSteps {
			fmt.Fprintf(out, "  - %s\n", step)
		}
	}
}

// RenderInsights prints queued insights.
func RenderInsights(out io.Writer, insights []domain.Insight) {
	for _, insight := range insights {
		fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(string(insight.Severity)), insight.Title, insight.Message)
	}
}

// RenderHistory prints entries with timestamps relative to now.
func RenderHistory(out io.Writer, entries []domain.HistoryEntry, now time.Time) {
	for _, entry := range entries {
		status := "ok"
		if !entry.Success {
			status = "failed"
		}
		fmt.Fprintf(out, "%s | %s | %s | %s | %s\n",
			humanize.RelTime(entry.Timestamp, now, "ago", "from now"),
			entry.UserID,
			status,
			entry.Command,
			entry.Result.Message)
	}
}

// RenderAnalytics prints an analytics snapshot.
func RenderAnalytics(out io.Writer, snapshot domain.AnalyticsSnapshot) {
	fmt.Fprintf(out, "Commands: %s\nSuccess rate: %.1f%%\n",
		humanize.Comma(int64(snapshot.TotalCommands)),
		snapshot.SuccessRate*100)

	if len(snapshot.MostUsedCommands) > 0 {
		fmt.Fprintln(out, "Top commands:")
		for _, stat := range snapshot.MostUsedCommands {
			fmt.Fprintf(out, "  %s (%d)\n", stat.Command, stat.Count)
		}
	}

	if len(snapshot.LearnedPatterns) > 0 {
		fmt.Fprintln(out, "Patterns:")
		for _, pattern := range snapshot.LearnedPatterns {
			fmt.Fprintf(out, "  %s: %d uses, %.0f%% ok\n", pattern.Pattern, pattern.UsageCount, pattern.SuccessRate*100)
		}
	}

	fmt.Fprintln(out, "Daily trend:")
	for _, day := range snapshot.DailyTrend {
		fmt.Fprintf(out, "  %s %s\n", day.Day, strings.Repeat("#", day.Count))
	}
}

// RenderDoctorReport prints one line per health check.
func RenderDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}
