package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// JSONLArchive appends history entries to a jsonl file.
type JSONLArchive struct {
	path string
	mu   sync.Mutex
}

// NewJSONLArchive stores entries at path. The file is created on first append.
func NewJSONLArchive(path string) *JSONLArchive {
	return &JSONLArchive{path: path}
}

// Append writes one line.
func (f *JSONLArchive) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode history entry")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", f.path)
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", f.path)
	}
	defer file.Close()
	_, err = file.Write(append(data, '\n'))
	return errors.Wrapf(err, "write %s", f.path)
}

// Recent loads the file and returns the last limit entries, oldest first.
// Unreadable lines are skipped.
func (f *JSONLArchive) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read %s", f.path)
	}

	var entries []domain.HistoryEntry
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Clear removes the file.
func (f *JSONLArchive) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "remove %s", f.path)
	}
	return nil
}

// Close is a no-op; the file is opened per append.
func (f *JSONLArchive) Close() error { return nil }

// Path returns the backing file path.
func (f *JSONLArchive) Path() string {
	return f.path
}

// ExportJSONL writes entries to w, one JSON object per line.
func ExportJSONL(w io.Writer, entries []domain.HistoryEntry) error {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return errors.Wrapf(err, "export entry %s", entry.ID)
		}
	}
	return errors.Wrap(buf.Flush(), "flush export")
}

var _ ports.HistoryArchive = (*JSONLArchive)(nil)
