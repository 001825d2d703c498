package domain

import "time"

// HistoryEntry records one dispatched command attempt.
type HistoryEntry struct {
	ID           string          `json:"id"`
	Command      string          `json:"command"`
	ActionType   string          `json:"action_type"`
	TargetModule string          `json:"target_module"`
	UserID       string          `json:"user_id"`
	SessionID    string          `json:"session_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Result       ExecutionResult `json:"result"`
	Success      bool            `json:"success"`
}

// HistoryFilter narrows history to a session or a user. Empty fields match all.
type HistoryFilter struct {
	UserID    string
	SessionID string
}

// Matches reports whether the entry belongs to the filter's scope.
func (f HistoryFilter) Matches(entry HistoryEntry) bool {
	if f.UserID != "" && entry.UserID != f.UserID {
		return false
	}
	if f.SessionID != "" && entry.SessionID != f.SessionID {
		return false
	}
	return true
}

// CommandCount is a frequency bucket for a command string.
type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// LearnedPattern aggregates outcomes of one class of commands.
type LearnedPattern struct {
	Pattern     string    `json:"pattern"`
	SuccessRate float64   `json:"success_rate"`
	UsageCount  int       `json:"usage_count"`
	LastUsed    time.Time `json:"last_used"`
}

// DayCount is one bucket of the daily trend.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// AnalyticsSnapshot is derived from the retained history window on demand.
type AnalyticsSnapshot struct {
	TotalCommands    int              `json:"total_commands"`
	SuccessRate      float64          `json:"success_rate"`
	MostUsedCommands []CommandCount   `json:"most_used_commands"`
	LearnedPatterns  []LearnedPattern `json:"learned_patterns"`
	DailyTrend       []DayCount       `json:"daily_trend"`
}
