package domain

import (
	"strings"
	"time"
)

// MonitorKind selects which background insight generator runs.
type MonitorKind string

const (
	MonitorRealtime  MonitorKind = "realtime"
	MonitorProactive MonitorKind = "proactive"
)

// ParseMonitorKind validates a user supplied kind.
func ParseMonitorKind(value string) (MonitorKind, bool) {
	switch MonitorKind(strings.ToLower(strings.TrimSpace(value))) {
	case MonitorRealtime:
		return MonitorRealtime, true
	case MonitorProactive:
		return MonitorProactive, true
	default:
		return "", false
	}
}

// MonitoringSession describes one background generator for a user.
type MonitoringSession struct {
	UserID    string      `json:"user_id"`
	Kind      MonitorKind `json:"kind"`
	Active    bool        `json:"active"`
	StartedAt time.Time   `json:"started_at"`
}

// InsightSeverity ranks unsolicited insights.
type InsightSeverity string

const (
	SeverityInfo    InsightSeverity = "info"
	SeverityWarning InsightSeverity = "warning"
)

// Insight is an unsolicited message produced by a monitoring session.
type Insight struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      MonitorKind     `json:"kind"`
	Severity  InsightSeverity `json:"severity"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
}
