package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/doeshing/panel-go/internal/domain"
)

// Validate ensures config values are usable. Empty values are allowed where
// a built-in default applies.
func Validate(cfg domain.Config) error {
	if err := validateResolver(cfg); err != nil {
		return err
	}
	durations := []struct {
		field string
		value string
	}{
		{"confirmation.ttl", cfg.Confirmation.TTL},
		{"dispatch.timeout", cfg.Dispatch.Timeout},
		{"monitoring.realtime_interval", cfg.Monitoring.RealtimeInterval},
	}
	for _, d := range durations {
		if err := validateDuration(d.field, d.value); err != nil {
			return err
		}
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	return validateMonitoring(cfg.Monitoring)
}

func validateResolver(cfg domain.Config) error {
	if err := validateRatio("resolver.confidence_floor", cfg.Resolver.ConfidenceFloor); err != nil {
		return err
	}
	if err := validateRatio("resolver.confirmation_threshold", cfg.Resolver.ConfirmationThreshold); err != nil {
		return err
	}
	if cfg.GetConfidenceFloor() > cfg.GetConfirmationThreshold() {
		return domain.NewConfigError("resolver.confidence_floor", "must not exceed confirmation_threshold")
	}
	return nil
}

// validateRatio accepts an unset value or one in (0,1].
func validateRatio(field string, value *float64) error {
	if value == nil {
		return nil
	}
	if *value <= 0 || *value > 1 {
		return domain.NewConfigError(field, fmt.Sprintf("must be within (0,1], got %v", *value))
	}
	return nil
}

func validateDuration(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return domain.NewConfigErrorWithCause(field, fmt.Sprintf("invalid duration %q", value), err)
	}
	if d <= 0 {
		return domain.NewConfigError(field, "must be positive")
	}
	return nil
}

func validateHistory(h domain.HistorySettings) error {
	if h.Capacity < 0 {
		return domain.NewConfigError("history.capacity", "must be > 0")
	}
	switch driver := strings.ToLower(strings.TrimSpace(h.Archive.Driver)); driver {
	case "", domain.ArchiveNone, domain.ArchiveJSONL, domain.ArchiveSQLite:
	case domain.ArchiveRedis:
		if strings.TrimSpace(h.Archive.RedisAddr) == "" {
			return domain.NewConfigError("history.archive.redis_addr", "required for the redis driver")
		}
	default:
		return domain.NewConfigError("history.archive.driver", fmt.Sprintf("must be sqlite|redis|jsonl|none, got %s", driver))
	}
	return nil
}

func validateMonitoring(m domain.MonitoringSettings) error {
	if m.InsightBuffer < 0 {
		return domain.NewConfigError("monitoring.insight_buffer", "must be >= 0")
	}
	if m.ProactiveSchedule != "" {
		if _, err := cron.ParseStandard(m.ProactiveSchedule); err != nil {
			return domain.NewConfigErrorWithCause("monitoring.proactive_schedule", fmt.Sprintf("invalid cron spec %q", m.ProactiveSchedule), err)
		}
	}
	return nil
}
