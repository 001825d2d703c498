package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/panel-go/internal/application/command"
	"github.com/doeshing/panel-go/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBuildContainerWarmStartsFromArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "history.jsonl")
	path := writeConfig(t, fmt.Sprintf(`
history:
  capacity: 5
  archive:
    driver: jsonl
    path: %s
logging:
  level: error
`, archive))

	first, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	out := first.CommandService.SubmitCommand(context.Background(), command.SubmitRequest{
		SessionID: "s1",
		UserID:    "ayse",
		Text:      "Görevleri listele",
	})
	require.Equal(t, domain.SubmitResolved, out.Kind)
	require.NoError(t, first.Close())

	second, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	defer second.Close()

	entries := second.History.Entries(domain.HistoryFilter{}, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "Görevleri listele", entries[0].Command)
	assert.Equal(t, 5, second.History.Capacity())
}

func TestBuildContainerRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
resolver:
  confidence_floor: 0.9
  confirmation_threshold: 0.5
`)

	_, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))
}

func TestBuildContainerRejectsZeroThresholds(t *testing.T) {
	for _, key := range []string{"confidence_floor", "confirmation_threshold"} {
		t.Run(key, func(t *testing.T) {
			path := writeConfig(t, fmt.Sprintf("resolver:\n  %s: 0\n", key))

			_, err := BuildContainer(context.Background(), Options{ConfigPath: path})
			require.Error(t, err)
			assert.True(t, domain.IsConfigError(err))
			assert.Contains(t, err.Error(), "resolver."+key)
		})
	}
}

func TestBuildContainerFallsBackWhenArchiveUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	path := writeConfig(t, fmt.Sprintf(`
history:
  archive:
    driver: sqlite
    path: %s
logging:
  level: error
`, filepath.Join(blocker, "history.db")))

	c, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	defer c.Close()

	report, err := c.DoctorService.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Failed())
	for _, check := range report.Checks {
		if check.Name == "History archive" {
			assert.Equal(t, domain.HealthWarn, check.Status)
		}
	}
}
