package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/panel-go/internal/domain"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel", "config.yaml")
	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.35, cfg.GetConfidenceFloor())
	assert.Equal(t, 100, cfg.History.Capacity)
	assert.Equal(t, "TL", cfg.Session.Defaults["currency"])
	assert.Equal(t, domain.DefaultConfirmationTTL, cfg.GetConfirmationTTL())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.SecureFilePermissions), info.Mode().Perm())
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  capacity: 7\n  archive:\n    driver: none\n"), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.History.Capacity)
	assert.Equal(t, domain.ArchiveNone, cfg.GetArchiveDriver())
	assert.Equal(t, 0.6, cfg.GetConfirmationThreshold())
	assert.Equal(t, "@every 5m", cfg.Monitoring.ProactiveSchedule)
}

func TestLoadKeepsExplicitZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolver:\n  confirmation_threshold: 0\n"), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg.Resolver.ConfirmationThreshold)
	assert.Equal(t, 0.0, *cfg.Resolver.ConfirmationThreshold)
	assert.Equal(t, 0.35, cfg.GetConfidenceFloor())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history: [unclosed"), 0o600))

	_, err := NewFileLoader(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))
}

func TestPathResolution(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/panel/config.yaml")
	assert.Equal(t, "/etc/panel/config.yaml", NewFileLoader("").Path())
	assert.Equal(t, "/tmp/x.yaml", NewFileLoader("/tmp/x.yaml").Path())

	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, "config.yaml", filepath.Base(NewFileLoader("").Path()))
}
