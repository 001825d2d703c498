package history

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// DefaultRedisKey is the list holding archived entries.
const DefaultRedisKey = "panel:history"

// RedisArchive keeps the newest entries in a capped Redis list, newest at the head.
type RedisArchive struct {
	client   *redis.Client
	key      string
	capacity int64
}

// NewRedisArchive wraps an existing client. The list is trimmed to capacity
// after each append; a non-positive capacity disables trimming.
func NewRedisArchive(client *redis.Client, key string, capacity int) *RedisArchive {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisArchive{client: client, key: key, capacity: int64(capacity)}
}

// OpenRedisArchive dials addr and checks the connection.
func OpenRedisArchive(ctx context.Context, addr, password, key string, capacity int) (*RedisArchive, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connect to redis at %s", addr)
	}
	return NewRedisArchive(client, key, capacity), nil
}

// Append pushes the entry and trims the list.
func (r *RedisArchive) Append(ctx context.Context, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode history entry")
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, data)
	if r.capacity > 0 {
		pipe.LTrim(ctx, r.key, 0, r.capacity-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "append to %s", r.key)
	}
	return nil
}

// Recent returns up to limit of the newest entries in chronological order.
func (r *RedisArchive) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	items, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", r.key)
	}
	entries := make([]domain.HistoryEntry, 0, len(items))
	for _, item := range items {
		var entry domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	reverse(entries)
	return entries, nil
}

// Clear deletes the list.
func (r *RedisArchive) Clear(ctx context.Context) error {
	return errors.Wrapf(r.client.Del(ctx, r.key).Err(), "clear %s", r.key)
}

// Close closes the client.
func (r *RedisArchive) Close() error {
	return r.client.Close()
}

var _ ports.HistoryArchive = (*RedisArchive)(nil)
