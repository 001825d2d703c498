package domain

// Config mirrors ~/.panel/config.yaml.
type Config struct {
	ConfigFormatVersion string               `yaml:"config_format_version"`
	Analyzer            AnalyzerSettings     `yaml:"analyzer"`
	Resolver            ResolverSettings     `yaml:"resolver"`
	Confirmation        ConfirmationSettings `yaml:"confirmation"`
	Dispatch            DispatchSettings     `yaml:"dispatch"`
	History             HistorySettings      `yaml:"history"`
	Monitoring          MonitoringSettings   `yaml:"monitoring"`
	Session             SessionSettings      `yaml:"session"`
	Logging             LoggingSettings      `yaml:"logging"`
}

// AnalyzerSettings points at the intent/sentiment lexicon.
type AnalyzerSettings struct {
	LexiconFile string `yaml:"lexicon_file"`
}

// ResolverSettings configures the command catalog and confidence thresholds.
// A nil threshold is unset and takes its default.
type ResolverSettings struct {
	CatalogFile           string   `yaml:"catalog_file"`
	ConfidenceFloor       *float64 `yaml:"confidence_floor,omitempty"`
	ConfirmationThreshold *float64 `yaml:"confirmation_threshold,omitempty"`
}

// ConfirmationSettings controls ticket lifetime.
type ConfirmationSettings struct {
	TTL string `yaml:"ttl"`
}

// DispatchSettings controls handler invocation.
type DispatchSettings struct {
	Timeout string `yaml:"timeout"`
}

// HistorySettings bounds the in-memory log and selects its archive.
type HistorySettings struct {
	Capacity int             `yaml:"capacity"`
	Archive  ArchiveSettings `yaml:"archive"`
}

// ArchiveSettings selects where history entries are persisted.
type ArchiveSettings struct {
	Driver        string `yaml:"driver"`
	Path          string `yaml:"path,omitempty"`
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisKey      string `yaml:"redis_key,omitempty"`
}

// MonitoringSettings configures background insight generators.
type MonitoringSettings struct {
	RealtimeInterval  string       `yaml:"realtime_interval"`
	ProactiveSchedule string       `yaml:"proactive_schedule"`
	InsightBuffer     int          `yaml:"insight_buffer"`
	NATS              NATSSettings `yaml:"nats"`
}

// NATSSettings enables publishing insights to a NATS subject.
type NATSSettings struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// SessionSettings seeds the session context for CLI sessions.
type SessionSettings struct {
	ActingUser string            `yaml:"acting_user,omitempty"`
	Locale     string            `yaml:"locale,omitempty"`
	Defaults   map[string]string `yaml:"defaults,omitempty"`
}

// LoggingSettings configures the zap logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
