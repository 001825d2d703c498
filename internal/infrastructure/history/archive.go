package history

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/pkg/filesystem"
	"github.com/doeshing/panel-go/internal/ports"
)

// dialTimeout bounds connecting to a remote archive.
const dialTimeout = 3 * time.Second

// NopArchive discards everything.
type NopArchive struct{}

func (NopArchive) Append(context.Context, domain.HistoryEntry) error { return nil }

func (NopArchive) Recent(context.Context, int) ([]domain.HistoryEntry, error) { return nil, nil }

func (NopArchive) Clear(context.Context) error { return nil }

func (NopArchive) Close() error { return nil }

// OpenArchive builds the archive selected by the config.
func OpenArchive(cfg *domain.Config) (ports.HistoryArchive, error) {
	settings := cfg.History.Archive
	switch driver := cfg.GetArchiveDriver(); driver {
	case domain.ArchiveNone:
		return NopArchive{}, nil
	case domain.ArchiveSQLite:
		return OpenSQLiteArchive(archivePath(settings.Path, "history.db"))
	case domain.ArchiveJSONL:
		return NewJSONLArchive(archivePath(settings.Path, "history.jsonl")), nil
	case domain.ArchiveRedis:
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		addr := settings.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		return OpenRedisArchive(ctx, addr, settings.RedisPassword, settings.RedisKey, cfg.GetHistoryCapacity())
	default:
		return nil, domain.NewConfigError("history.archive.driver", fmt.Sprintf("unknown driver %q", driver))
	}
}

func archivePath(configured, fallback string) string {
	if configured == "" {
		return filesystem.AppPath(fallback)
	}
	return filesystem.ExpandPath(configured)
}

var _ ports.HistoryArchive = NopArchive{}
