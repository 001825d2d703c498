package history

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/pkg/logger"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func entry(command string, ok bool) domain.HistoryEntry {
	result := domain.OKResult("done", nil, nil)
	if !ok {
		result = domain.ErrorResult("failed")
	}
	return domain.HistoryEntry{Command: command, ActionType: "action." + command, UserID: "ayse", Result: result}
}

type recordingArchive struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
	cleared bool
}

func (a *recordingArchive) Append(_ context.Context, e domain.HistoryEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingArchive) Recent(context.Context, int) ([]domain.HistoryEntry, error) {
	return nil, nil
}

func (a *recordingArchive) Clear(context.Context) error {
	a.cleared = true
	return nil
}

func (a *recordingArchive) Close() error { return nil }

func TestRingStoreEvictsOldest(t *testing.T) {
	store := NewRingStore(Options{Capacity: 3, Clock: func() time.Time { return baseTime }})
	for i := 1; i <= 4; i++ {
		store.Record(entry(fmt.Sprintf("c%d", i), true))
	}

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 3, store.Capacity())
	var commands []string
	for _, e := range store.Entries(domain.HistoryFilter{}, 0) {
		commands = append(commands, e.Command)
	}
	assert.Equal(t, []string{"c4", "c3", "c2"}, commands)

	limited := store.Entries(domain.HistoryFilter{}, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "c4", limited[0].Command)
}

func TestRingStoreRecordNormalizes(t *testing.T) {
	store := NewRingStore(Options{Clock: func() time.Time { return baseTime }})
	assert.Equal(t, domain.DefaultHistoryCapacity, store.Capacity())

	e := entry("ok", true)
	e.Success = false
	store.Record(e)
	store.Record(domain.HistoryEntry{Command: "weird", Result: domain.ExecutionResult{Status: "maybe", Message: "?"}})

	got := store.Entries(domain.HistoryFilter{}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StatusError, got[0].Result.Status)
	assert.False(t, got[0].Success)
	assert.True(t, got[1].Success, "success mirrors the result status")
	assert.NotEmpty(t, got[1].ID)
	assert.Equal(t, baseTime, got[1].Timestamp)
}

func TestRingStoreFilter(t *testing.T) {
	store := NewRingStore(Options{})
	store.Record(entry("a", true))
	other := entry("b", true)
	other.UserID = "mehmet"
	other.SessionID = "s2"
	store.Record(other)

	assert.Len(t, store.Entries(domain.HistoryFilter{UserID: "ayse"}, 0), 1)
	assert.Len(t, store.Entries(domain.HistoryFilter{SessionID: "s2"}, 0), 1)
	assert.Equal(t, 1, store.Snapshot(domain.HistoryFilter{UserID: "mehmet"}).TotalCommands)
}

func TestRingStoreArchiveWriteThrough(t *testing.T) {
	archive := &recordingArchive{}
	store := NewRingStore(Options{Archive: archive})
	store.Record(entry("a", true))
	require.Len(t, archive.entries, 1)
	assert.NotEmpty(t, archive.entries[0].ID)

	require.NoError(t, store.Clear())
	assert.True(t, archive.cleared)
	assert.Zero(t, store.Len())
}

func TestRingStoreArchiveFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	archive := &recordingArchive{err: errors.New("disk full")}
	store := NewRingStore(Options{Archive: archive, Logger: logger.Wrap(zap.New(core))})

	store.Record(entry("a", true))

	assert.Equal(t, 1, store.Len(), "the in-memory window still records")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "history archive append failed", logs.All()[0].Message)
}

func TestRingStoreRestore(t *testing.T) {
	archive := &recordingArchive{}
	store := NewRingStore(Options{Capacity: 2, Archive: archive})
	store.Restore([]domain.HistoryEntry{entry("a", true), entry("b", true), entry("c", true)})

	assert.Empty(t, archive.entries)
	got := store.Entries(domain.HistoryFilter{}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Command)
	assert.Equal(t, "b", got[1].Command)
}

func TestRingStoreConcurrentRecords(t *testing.T) {
	store := NewRingStore(Options{Capacity: 100})
	var g errgroup.Group
	for i := 0; i < 50; i++ {
		i := i
		g.Go(func() error {
			store.Record(entry(fmt.Sprintf("c%d", i), i%2 == 0))
			_ = store.Entries(domain.HistoryFilter{}, 5)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 50, store.Len())
	snapshot := store.Snapshot(domain.HistoryFilter{})
	assert.Equal(t, 50, snapshot.TotalCommands)
	assert.InDelta(t, 0.5, snapshot.SuccessRate, 1e-9)
}
