package domain

import (
	"strings"
	"time"
)

// Getters below fall back to package defaults so callers never see zero values.

// GetConfidenceFloor returns the intent confidence floor.
func (c *Config) GetConfidenceFloor() float64 {
	if c.Resolver.ConfidenceFloor == nil {
		return DefaultConfidenceFloor
	}
	return *c.Resolver.ConfidenceFloor
}

// GetConfirmationThreshold returns the overall confidence below which a command needs confirmation.
func (c *Config) GetConfirmationThreshold() float64 {
	if c.Resolver.ConfirmationThreshold == nil {
		return DefaultConfirmationThreshold
	}
	return *c.Resolver.ConfirmationThreshold
}

// GetConfirmationTTL returns the ticket time-to-live.
func (c *Config) GetConfirmationTTL() time.Duration {
	return parseDurationOr(c.Confirmation.TTL, DefaultConfirmationTTL)
}

// GetDispatchTimeout returns the bounded wait for a handler.
func (c *Config) GetDispatchTimeout() time.Duration {
	return parseDurationOr(c.Dispatch.Timeout, DefaultDispatchTimeout)
}

// GetHistoryCapacity returns the ring buffer bound.
func (c *Config) GetHistoryCapacity() int {
	if c.History.Capacity <= 0 {
		return DefaultHistoryCapacity
	}
	return c.History.Capacity
}

// GetArchiveDriver returns the normalized archive driver name.
func (c *Config) GetArchiveDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.History.Archive.Driver))
	if driver == "" {
		return ArchiveNone
	}
	return driver
}

// GetRealtimeInterval returns the realtime monitoring tick.
func (c *Config) GetRealtimeInterval() time.Duration {
	return parseDurationOr(c.Monitoring.RealtimeInterval, DefaultRealtimeInterval)
}

// GetProactiveSchedule returns the proactive monitoring cron spec.
func (c *Config) GetProactiveSchedule() string {
	if strings.TrimSpace(c.Monitoring.ProactiveSchedule) == "" {
		return DefaultProactiveSchedule
	}
	return c.Monitoring.ProactiveSchedule
}

// GetInsightBuffer returns the per-user memory sink size.
func (c *Config) GetInsightBuffer() int {
	if c.Monitoring.InsightBuffer <= 0 {
		return DefaultInsightBuffer
	}
	return c.Monitoring.InsightBuffer
}

// IsNATSEnabled checks if insights should also be published to NATS.
func (c *Config) IsNATSEnabled() bool {
	return strings.TrimSpace(c.Monitoring.NATS.URL) != ""
}

// GetNATSSubject returns the insight subject prefix.
func (c *Config) GetNATSSubject() string {
	if c.Monitoring.NATS.Subject == "" {
		return DefaultNATSSubject
	}
	return c.Monitoring.NATS.Subject
}

// SessionContext builds the default session context for CLI sessions.
func (c *Config) SessionContext(actingUser string) SessionContext {
	user := c.Session.ActingUser
	if actingUser != "" {
		user = actingUser
	}
	locale := c.Session.Locale
	if locale == "" {
		locale = "tr-TR"
	}
	defaults := make(map[string]string, len(c.Session.Defaults))
	for k, v := range c.Session.Defaults {
		defaults[k] = v
	}
	return SessionContext{ActingUser: user, Locale: locale, Defaults: defaults}
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
