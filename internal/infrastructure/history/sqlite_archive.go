package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// SQLiteArchive persists history entries in a SQLite database.
type SQLiteArchive struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLiteArchive creates (or opens) the database at path.
// ":memory:" keeps everything in process.
func OpenSQLiteArchive(path string) (*SQLiteArchive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create archive directory for %s", path)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite archive %s", path)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	archive := &SQLiteArchive{db: db, path: path}
	if err := archive.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return archive, nil
}

func (s *SQLiteArchive) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS history_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		command TEXT,
		action_type TEXT,
		target_module TEXT,
		user_id TEXT,
		session_id TEXT,
		success INTEGER,
		result TEXT
	);`)
	return errors.Wrap(err, "create history_entries table")
}

// Append inserts one entry.
func (s *SQLiteArchive) Append(ctx context.Context, entry domain.HistoryEntry) error {
	result, err := json.Marshal(entry.Result)
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO history_entries
		(id, ts, command, action_type, target_module, user_id, session_id, success, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UnixNano(),
		entry.Command,
		entry.ActionType,
		entry.TargetModule,
		entry.UserID,
		entry.SessionID,
		boolToInt(entry.Success),
		string(result),
	)
	return errors.Wrap(err, "insert history entry")
}

// Recent returns up to limit of the newest entries in chronological order.
// A non-positive limit returns everything.
func (s *SQLiteArchive) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `SELECT id, ts, command, action_type, target_module, user_id, session_id, success, result
		FROM history_entries ORDER BY ts DESC, seq DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query history entries")
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var ts int64
		var success int
		var result string
		if err := rows.Scan(&entry.ID, &ts, &entry.Command, &entry.ActionType, &entry.TargetModule,
			&entry.UserID, &entry.SessionID, &success, &result); err != nil {
			return nil, errors.Wrap(err, "scan history entry")
		}
		entry.Timestamp = time.Unix(0, ts)
		entry.Success = success == 1
		if err := json.Unmarshal([]byte(result), &entry.Result); err != nil {
			entry.Result = domain.ErrorResult("unreadable archived result")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate history entries")
	}
	reverse(entries)
	return entries, nil
}

// Clear deletes all archived entries.
func (s *SQLiteArchive) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM history_entries")
	return errors.Wrap(err, "clear history entries")
}

// Close releases the database handle.
func (s *SQLiteArchive) Close() error {
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteArchive) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func reverse(entries []domain.HistoryEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}

var _ ports.HistoryArchive = (*SQLiteArchive)(nil)
