package commands

import "time"

// CLI defaults
const (
	// DefaultSessionID is used when --session is not given.
	DefaultSessionID = "cli"
	// DefaultMonitorDuration bounds `monitor` when --duration is not given.
	DefaultMonitorDuration = time.Minute
	// InsightPollInterval is how often `monitor` and `chat` drain insights.
	InsightPollInterval = time.Second
)

// Chat commands
const (
	chatPrompt = "panel> "
	chatExit   = "exit"
	chatQuit   = "quit"
)

// Error messages
const (
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrUnknownMonitorKind       = "unknown monitor kind %q (want realtime or proactive)"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgNoHistoryRecorded  = "No history recorded yet."
	MsgHistoryCleared     = "History cleared (%d entries).\n"
)
