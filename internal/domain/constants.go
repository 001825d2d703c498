package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Resolution constants
const (
	// DefaultConfidenceFloor is the intent confidence below which input is unrecognized
	DefaultConfidenceFloor = 0.35
	// DefaultConfirmationThreshold is the overall confidence below which confirmation is required
	DefaultConfirmationThreshold = 0.6
)

// Timeout and duration constants
const (
	// DefaultConfirmationTTL is how long a confirmation ticket stays acceptable
	DefaultConfirmationTTL = 120 * time.Second
	// DefaultDispatchTimeout bounds a single handler invocation
	DefaultDispatchTimeout = 10 * time.Second
	// DefaultRealtimeInterval is the tick of realtime monitoring
	DefaultRealtimeInterval = 30 * time.Second
	// DefaultProactiveSchedule is the cron spec of proactive monitoring
	DefaultProactiveSchedule = "@every 5m"
)

// History constants
const (
	// DefaultHistoryCapacity is the ring buffer bound
	DefaultHistoryCapacity = 100
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// TrendDays is the width of the daily trend window
	TrendDays = 7
	// TrendDayFormat formats daily trend buckets
	TrendDayFormat = "2006-01-02"
)

// Archive drivers
const (
	ArchiveSQLite = "sqlite"
	ArchiveRedis  = "redis"
	ArchiveJSONL  = "jsonl"
	ArchiveNone   = "none"
)

// Monitoring constants
const (
	// DefaultInsightBuffer is the per-user queue size of the memory sink
	DefaultInsightBuffer = 32
	// DefaultNATSSubject is the subject prefix insights are published under
	DefaultNATSSubject = "panel.insights"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
