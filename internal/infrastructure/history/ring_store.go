package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// archiveTimeout bounds a single write-through to the archive.
const archiveTimeout = 2 * time.Second

// Options configure a RingStore.
type Options struct {
	Capacity int
	Archive  ports.HistoryArchive
	Logger   ports.Logger
	Clock    func() time.Time
}

// RingStore is the bounded in-memory history. The oldest entry is evicted
// once capacity is reached. Writes go through to the archive best-effort.
type RingStore struct {
	mu      sync.RWMutex
	buf     []domain.HistoryEntry
	start   int
	size    int
	archive ports.HistoryArchive
	log     ports.Logger
	now     func() time.Time
}

// NewRingStore builds an empty store.
func NewRingStore(opts Options) *RingStore {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = domain.DefaultHistoryCapacity
	}
	s := &RingStore{
		buf:     make([]domain.HistoryEntry, capacity),
		archive: opts.Archive,
		log:     opts.Logger,
		now:     opts.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Record appends an entry, filling in the id and timestamp when missing.
// Success always mirrors the result status.
func (s *RingStore) Record(entry domain.HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if !entry.Result.Valid() {
		entry.Result = domain.ErrorResult("malformed result: %s", entry.Result.Message)
	}
	entry.Success = entry.Result.Succeeded()

	s.mu.Lock()
	s.push(entry)
	s.mu.Unlock()

	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := s.archive.Append(ctx, entry); err != nil && s.log != nil {
		s.log.Error("history archive append failed", err, map[string]interface{}{"entry_id": entry.ID})
	}
}

// push writes at the tail. Caller holds s.mu.
func (s *RingStore) push(entry domain.HistoryEntry) {
	capacity := len(s.buf)
	if s.size < capacity {
		s.buf[(s.start+s.size)%capacity] = entry
		s.size++
		return
	}
	s.buf[s.start] = entry
	s.start = (s.start + 1) % capacity
}

// chronological returns retained entries matching filter, oldest first. Caller holds s.mu.
func (s *RingStore) chronological(filter domain.HistoryFilter) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, s.size)
	for i := 0; i < s.size; i++ {
		entry := s.buf[(s.start+i)%len(s.buf)]
		if filter.Matches(entry) {
			out = append(out, entry)
		}
	}
	return out
}

// Entries returns up to limit matching entries, newest first. A non-positive
// limit returns everything retained.
func (s *RingStore) Entries(filter domain.HistoryFilter, limit int) []domain.HistoryEntry {
	s.mu.RLock()
	entries := s.chronological(filter)
	s.mu.RUnlock()

	reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Snapshot derives analytics over the retained window.
func (s *RingStore) Snapshot(filter domain.HistoryFilter) domain.AnalyticsSnapshot {
	s.mu.RLock()
	entries := s.chronological(filter)
	s.mu.RUnlock()
	return Analyze(entries, s.now())
}

// Restore loads entries (oldest first) without writing them to the archive.
func (s *RingStore) Restore(entries []domain.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.push(entry)
	}
}

// Clear empties the window and the archive.
func (s *RingStore) Clear() error {
	s.mu.Lock()
	s.buf = make([]domain.HistoryEntry, len(s.buf))
	s.start, s.size = 0, 0
	s.mu.Unlock()

	if s.archive == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	return s.archive.Clear(ctx)
}

// Len returns the number of retained entries.
func (s *RingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Capacity returns the retention bound.
func (s *RingStore) Capacity() int {
	return len(s.buf)
}

var _ ports.HistoryRepository = (*RingStore)(nil)
